package assets

import (
	"encoding/binary"
	"math"
	"math/rand/v2"
)

// SampleRate is the rate every synthesized sound is rendered at.
const SampleRate = 44100

// Tone describes a short synthesized one-shot: a sine at Freq mixed with
// white noise, shaped by an exponential decay.
type Tone struct {
	Freq     float64
	Duration float64
	Noise    float64
	Decay    float64
}

// PCM renders the tone as 16-bit little-endian stereo at SampleRate.
func (t Tone) PCM(seed uint64) []byte {
	n := int(t.Duration * SampleRate)
	if n <= 0 {
		return nil
	}
	decay := t.Decay
	if decay <= 0 {
		decay = 6 / t.Duration
	}
	noise := math.Max(0, math.Min(t.Noise, 1))
	rng := rand.New(rand.NewPCG(seed, uint64(n)))

	out := make([]byte, n*4)
	for i := 0; i < n; i++ {
		at := float64(i) / SampleRate
		v := (1-noise)*math.Sin(2*math.Pi*t.Freq*at) + noise*(rng.Float64()*2-1)
		v *= math.Exp(-decay * at)
		s := uint16(int16(math.Max(-1, math.Min(v, 1)) * math.MaxInt16))
		binary.LittleEndian.PutUint16(out[i*4:], s)
		binary.LittleEndian.PutUint16(out[i*4+2:], s)
	}
	return out
}
