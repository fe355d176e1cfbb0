package system

import (
	"math"
	"math/rand/v2"

	"github.com/milk9111/liminal/common"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
)

const (
	blipMinScale    = 0.2
	blipMaxScale    = 0.6
	blipMinDuration = 0.02
	blipMaxDuration = 0.06
	minFlickerDelay = 0.001
	maxFlickerSteps = 64
)

// FlickerSystem animates lights like a failing fluorescent tube: new random
// brightness on a random interval, with the occasional short dip.
type FlickerSystem struct {
	rng *rand.Rand
}

func NewFlickerSystem(rng *rand.Rand) *FlickerSystem {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &FlickerSystem{rng: rng}
}

func (s *FlickerSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach2(w, component.FlickerComponent.Kind(), component.LightComponent.Kind(), func(e ecs.Entity, f *component.Flicker, light *component.Light) {
		emissive, _ := ecs.Ref(w, e, component.EmissiveComponent)

		if !f.Initialized {
			light.Intensity = f.MaxIntensity
			f.TargetIntensity = f.MaxIntensity
			f.TargetEmission = f.MaxEmission
			if emissive != nil {
				emissive.Value = f.MaxEmission
			}
			s.pick(f, light, emissive)
			f.Initialized = true
		}

		if f.Smooth {
			t := common.Clamp(dt*f.SmoothSpeed, 0, 1)
			light.Intensity = common.Lerp(light.Intensity, f.TargetIntensity, t)
			if emissive != nil {
				emissive.Value = common.Lerp(emissive.Value, f.TargetEmission, t)
			}
		}

		f.Timer -= dt
		for steps := 0; f.Timer <= 0 && steps < maxFlickerSteps; steps++ {
			if f.Phase == component.FlickerHold && s.rng.Float64() < f.BlipChance {
				s.blip(f, light, emissive)
				continue
			}
			s.pick(f, light, emissive)
		}
	})
}

// pick chooses the next brightness and how long to hold it.
func (s *FlickerSystem) pick(f *component.Flicker, light *component.Light, emissive *component.Emissive) {
	f.TargetIntensity = s.between(f.MinIntensity, f.MaxIntensity)
	f.TargetEmission = common.Lerp(f.MinEmission, f.MaxEmission, common.InverseLerp(f.MinIntensity, f.MaxIntensity, f.TargetIntensity))
	f.Phase = component.FlickerHold
	f.Timer += math.Max(s.between(f.MinDelay, f.MaxDelay), minFlickerDelay)
	s.snap(f, light, emissive)
}

func (s *FlickerSystem) blip(f *component.Flicker, light *component.Light, emissive *component.Emissive) {
	f.TargetIntensity = s.between(f.MinIntensity*blipMinScale, f.MinIntensity*blipMaxScale)
	f.TargetEmission = math.Max(f.MinEmission*blipMinScale, 0)
	f.Phase = component.FlickerBlip
	f.Timer += s.between(blipMinDuration, blipMaxDuration)
	s.snap(f, light, emissive)
}

func (s *FlickerSystem) snap(f *component.Flicker, light *component.Light, emissive *component.Emissive) {
	if f.Smooth {
		return
	}
	light.Intensity = f.TargetIntensity
	if emissive != nil {
		emissive.Value = f.TargetEmission
	}
}

func (s *FlickerSystem) between(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Float64()*(hi-lo)
}
