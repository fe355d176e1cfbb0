package system

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/sync/errgroup"
)

const (
	FallbackClipWidth  = 640
	FallbackClipHeight = 360
	DefaultClipFrames  = 24
	DefaultClipFPS     = 12.0
)

// NoiseClip is a looping clip of generated tape static. Pixel data is built
// off the frame thread by Prepare; GPU images are created lazily on the
// first Ready call after preparation finishes.
type NoiseClip struct {
	width, height int
	fps           float64
	seed          uint64

	pixels   [][]byte
	prepared atomic.Bool
	mu       sync.Mutex
	err      error

	images  []*ebiten.Image
	index   int
	elapsed float64
}

// NewNoiseClip sizes the clip; non-positive dimensions fall back to 640x360.
func NewNoiseClip(width, height, frames int, fps float64, seed uint64) *NoiseClip {
	if width <= 0 || height <= 0 {
		width, height = FallbackClipWidth, FallbackClipHeight
	}
	if frames <= 0 {
		frames = DefaultClipFrames
	}
	if fps <= 0 {
		fps = DefaultClipFPS
	}
	return &NoiseClip{
		width:  width,
		height: height,
		fps:    fps,
		seed:   seed,
		pixels: make([][]byte, frames),
	}
}

func (c *NoiseClip) Size() (int, int) { return c.width, c.height }

func (c *NoiseClip) Len() int {
	if c.images != nil {
		return len(c.images)
	}
	return len(c.pixels)
}

// Prepare generates every frame concurrently and returns immediately.
// done, if non-nil, receives the preparation result.
func (c *NoiseClip) Prepare(ctx context.Context, done func(error)) {
	go func() {
		err := c.prepare(ctx)
		if done != nil {
			done(err)
		}
	}()
}

func (c *NoiseClip) prepare(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := range c.pixels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c.pixels[i] = noiseFrame(c.width, c.height, c.seed, uint64(i))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		err = fmt.Errorf("clip: prepare: %w", err)
		c.mu.Lock()
		c.err = err
		c.mu.Unlock()
		return err
	}
	c.prepared.Store(true)
	return nil
}

// Prepared reports whether pixel data for every frame exists.
func (c *NoiseClip) Prepared() bool { return c.prepared.Load() }

func (c *NoiseClip) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *NoiseClip) Ready() bool {
	if !c.prepared.Load() {
		return false
	}
	if c.images == nil {
		c.images = make([]*ebiten.Image, len(c.pixels))
		for i, px := range c.pixels {
			img := ebiten.NewImage(c.width, c.height)
			img.WritePixels(px)
			c.images[i] = img
		}
		c.pixels = nil
	}
	return true
}

func (c *NoiseClip) Frame() *ebiten.Image {
	if len(c.images) == 0 {
		return nil
	}
	return c.images[c.index]
}

func (c *NoiseClip) Advance(dt float64) bool {
	n := c.Len()
	if n == 0 || dt <= 0 {
		return false
	}
	step := 1 / c.fps
	looped := false
	c.elapsed += dt
	for c.elapsed >= step {
		c.elapsed -= step
		c.index++
		if c.index >= n {
			c.index = 0
			looped = true
		}
	}
	return looped
}

// noiseFrame renders one RGBA frame of static: grain, a soft rolling band
// and a bright tracking line, all derived from (seed, frame).
func noiseFrame(w, h int, seed, frame uint64) []byte {
	rng := rand.New(rand.NewPCG(seed, frame))
	px := make([]byte, w*h*4)

	band := rng.Float64() * float64(h)
	bandWidth := float64(h) * (0.08 + rng.Float64()*0.08)
	tracking := rng.IntN(h)

	for y := 0; y < h; y++ {
		d := math.Abs(float64(y) - band)
		lift := 0.0
		if d < bandWidth {
			lift = 0.25 * (1 - d/bandWidth)
		}
		line := 0.0
		if y == tracking || y == tracking+1 {
			line = 0.6
		}
		for x := 0; x < w; x++ {
			v := math.Min(rng.Float64()*0.55+lift+line, 1)
			g := byte(v * 255)
			o := (y*w + x) * 4
			px[o] = g
			px[o+1] = g
			px[o+2] = g
			px[o+3] = 0xff
		}
	}
	return px
}
