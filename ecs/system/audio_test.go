package system

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
	"github.com/stretchr/testify/require"
)

// newWalker builds a player whose audio has no players, so requests are
// observable through Play until the system clears them.
func newWalker(t *testing.T, speed float64, grounded bool) (*ecs.World, ecs.Entity) {
	t.Helper()
	w := ecs.NewWorld()
	w.SetDeltaTime(0.25)
	e := w.CreateEntity()
	anim := component.NewAnimator()
	anim.Floats[locomotion.ParamSpeed] = speed
	require.NoError(t, ecs.Add(w, e, component.PlayerTagComponent, component.PlayerTag{}))
	require.NoError(t, ecs.Add(w, e, component.AnimatorComponent, anim))
	require.NoError(t, ecs.Add(w, e, component.CharacterBodyComponent, component.CharacterBody{Grounded: grounded}))
	require.NoError(t, ecs.Add(w, e, component.AudioComponent, component.Audio{
		Names:   []string{"step", "pickup"},
		Players: make([]*audio.Player, 2),
		Volume:  []float64{1, 1},
		Play:    make([]bool, 2),
	}))
	require.NoError(t, ecs.Add(w, e, component.FootstepsComponent, component.Footsteps{Sound: "step", Interval: 0.5}))
	return w, e
}

func TestAudioRequest(t *testing.T) {
	a := component.Audio{Names: []string{"a", "b"}, Play: make([]bool, 2)}
	require.True(t, a.Request("b"))
	require.Equal(t, []bool{false, true}, a.Play)
	require.False(t, a.Request("c"))
}

func TestFootstepsPace(t *testing.T) {
	w, e := newWalker(t, 1, true)
	s := NewAudioSystem()

	timers := []float64{}
	for range 4 {
		s.Update(w)
		steps, _ := ecs.Get(w, e, component.FootstepsComponent)
		timers = append(timers, steps.Timer)
	}
	// A step fires immediately, then every 0.5s of walking at unit speed.
	require.InDeltaSlice(t, []float64{0.25, 0.5, 0.25, 0.5}, timers, 1e-9)

	a, _ := ecs.Get(w, e, component.AudioComponent)
	require.Equal(t, []bool{false, false}, a.Play, "requests are consumed")
}

func TestFootstepsResetWhenStopped(t *testing.T) {
	cases := []struct {
		name     string
		speed    float64
		grounded bool
	}{
		{"idle", 0, true},
		{"airborne", 1, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w, e := newWalker(t, c.speed, c.grounded)
			steps, _ := ecs.Ref(w, e, component.FootstepsComponent)
			steps.Timer = 0.3

			NewAudioSystem().Update(w)
			got, _ := ecs.Get(w, e, component.FootstepsComponent)
			require.Zero(t, got.Timer)
		})
	}
}

func TestAudioPeeksPickupEvents(t *testing.T) {
	w, _ := newWalker(t, 0, true)
	w.Events().Push(ecs.Event{Type: ecs.EventPickupCollected, Data: ecs.PickupCollectedEvent{Name: "Key"}})

	NewAudioSystem().Update(w)
	require.Equal(t, 1, w.Events().Len(), "events are left for the HUD")
}
