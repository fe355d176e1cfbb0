package system

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/milk9111/liminal/common"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/stretchr/testify/require"
)

func testFlicker() component.Flicker {
	return component.Flicker{
		MinIntensity: 0.5,
		MaxIntensity: 2,
		MinDelay:     0.05,
		MaxDelay:     0.3,
		MinEmission:  0.4,
		MaxEmission:  3,
		SmoothSpeed:  10,
		BlipChance:   0.12,
	}
}

func flickerWorld(t *testing.T, f component.Flicker, emissive bool) (*ecs.World, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, component.LightComponent, component.Light{}))
	require.NoError(t, ecs.Add(w, e, component.FlickerComponent, f))
	if emissive {
		require.NoError(t, ecs.Add(w, e, component.EmissiveComponent, component.Emissive{Tint: [3]float64{1, 0.5, 0.25}}))
	}
	w.SetDeltaTime(1.0 / 60)
	return w, e
}

func TestFlickerStartsAtMax(t *testing.T) {
	f := testFlicker()
	f.Smooth = true
	f.SmoothSpeed = 0
	w, e := flickerWorld(t, f, true)

	NewFlickerSystem(rand.New(rand.NewPCG(1, 1))).Update(w)

	light, _ := ecs.Get(w, e, component.LightComponent)
	em, _ := ecs.Get(w, e, component.EmissiveComponent)
	require.Equal(t, 2.0, light.Intensity)
	require.Equal(t, 3.0, em.Value)
}

func TestFlickerSnapStaysInBounds(t *testing.T) {
	w, e := flickerWorld(t, testFlicker(), true)
	s := NewFlickerSystem(rand.New(rand.NewPCG(2, 3)))

	sawBlip := false
	for i := 0; i < 5000; i++ {
		s.Update(w)

		f, _ := ecs.Get(w, e, component.FlickerComponent)
		light, _ := ecs.Get(w, e, component.LightComponent)
		em, _ := ecs.Get(w, e, component.EmissiveComponent)

		switch f.Phase {
		case component.FlickerHold:
			require.GreaterOrEqual(t, light.Intensity, f.MinIntensity)
			require.LessOrEqual(t, light.Intensity, f.MaxIntensity)
			want := common.Lerp(f.MinEmission, f.MaxEmission, common.InverseLerp(f.MinIntensity, f.MaxIntensity, light.Intensity))
			require.InDelta(t, want, em.Value, 1e-9)
		case component.FlickerBlip:
			sawBlip = true
			require.GreaterOrEqual(t, light.Intensity, f.MinIntensity*0.2)
			require.LessOrEqual(t, light.Intensity, f.MinIntensity*0.6)
			require.InDelta(t, math.Max(f.MinEmission*0.2, 0), em.Value, 1e-9)
		}

		c := em.Color()
		require.InDelta(t, em.Value, c[0], 1e-9)
		require.InDelta(t, em.Value*0.5, c[1], 1e-9)
		require.InDelta(t, em.Value*0.25, c[2], 1e-9)
	}
	require.True(t, sawBlip, "expected at least one blip in 5000 frames")
}

func TestFlickerHoldDelay(t *testing.T) {
	f := testFlicker()
	f.BlipChance = 0
	w, e := flickerWorld(t, f, false)
	dt := w.DeltaTime()

	NewFlickerSystem(rand.New(rand.NewPCG(4, 5))).Update(w)

	got, _ := ecs.Get(w, e, component.FlickerComponent)
	require.Equal(t, component.FlickerHold, got.Phase)
	require.GreaterOrEqual(t, got.Timer+dt, f.MinDelay-1e-12)
	require.LessOrEqual(t, got.Timer+dt, f.MaxDelay+1e-12)
}

func TestFlickerNeverBlipsWithZeroChance(t *testing.T) {
	f := testFlicker()
	f.BlipChance = 0
	w, e := flickerWorld(t, f, false)
	s := NewFlickerSystem(rand.New(rand.NewPCG(6, 7)))

	for i := 0; i < 2000; i++ {
		s.Update(w)
		got, _ := ecs.Get(w, e, component.FlickerComponent)
		require.Equal(t, component.FlickerHold, got.Phase)
	}
}

func TestFlickerBlipReturnsToHold(t *testing.T) {
	f := testFlicker()
	f.BlipChance = 1
	w, e := flickerWorld(t, f, false)
	s := NewFlickerSystem(rand.New(rand.NewPCG(8, 9)))

	var phases []component.FlickerPhase
	for i := 0; i < 600; i++ {
		s.Update(w)
		got, _ := ecs.Get(w, e, component.FlickerComponent)
		if len(phases) == 0 || phases[len(phases)-1] != got.Phase {
			phases = append(phases, got.Phase)
		}
	}
	require.Greater(t, len(phases), 4)
	for i := 1; i < len(phases); i++ {
		require.NotEqual(t, phases[i-1], phases[i])
	}
}

func TestFlickerSmoothLerp(t *testing.T) {
	f := testFlicker()
	f.Smooth = true
	f.Initialized = true
	f.Timer = 10
	f.TargetIntensity = 1
	f.TargetEmission = 1
	w, e := flickerWorld(t, f, true)
	light, _ := ecs.Ref(w, e, component.LightComponent)
	light.Intensity = 2
	em, _ := ecs.Ref(w, e, component.EmissiveComponent)
	em.Value = 3
	w.SetDeltaTime(0.05)

	NewFlickerSystem(rand.New(rand.NewPCG(1, 2))).Update(w)

	require.InDelta(t, 1.5, light.Intensity, 1e-12)
	require.InDelta(t, 2.0, em.Value, 1e-12)

	// Large steps clamp at the target.
	w.SetDeltaTime(1)
	got, _ := ecs.Ref(w, e, component.FlickerComponent)
	got.Timer = 10
	NewFlickerSystem(rand.New(rand.NewPCG(1, 2))).Update(w)
	require.InDelta(t, 1.0, light.Intensity, 1e-12)
	require.InDelta(t, 1.0, em.Value, 1e-12)
}

func TestFlickerWithoutEmissive(t *testing.T) {
	w, e := flickerWorld(t, testFlicker(), false)
	s := NewFlickerSystem(nil)
	require.NotPanics(t, func() {
		for i := 0; i < 100; i++ {
			s.Update(w)
		}
	})
	light, _ := ecs.Get(w, e, component.LightComponent)
	require.Greater(t, light.Intensity, 0.0)
}
