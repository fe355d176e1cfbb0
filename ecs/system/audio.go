package system

import (
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
)

const (
	DefaultPickupSound  = "pickup"
	footstepMinSpeed    = 0.1
	defaultStepInterval = 0.55
)

// AudioSystem turns footsteps and pickup events into sound requests and plays
// them. It reads events without draining them, so it must run before
// HUDSystem.
type AudioSystem struct {
	PickupSound string
}

func NewAudioSystem() *AudioSystem {
	return &AudioSystem{PickupSound: DefaultPickupSound}
}

func (a *AudioSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	dt := w.DeltaTime()

	ecs.ForEach(w, component.FootstepsComponent.Kind(), func(e ecs.Entity, steps *component.Footsteps) {
		audioComp, ok := ecs.Ref(w, e, component.AudioComponent)
		if !ok {
			return
		}
		anim, _ := ecs.Get(w, e, component.AnimatorComponent)
		body, _ := ecs.Get(w, e, component.CharacterBodyComponent)

		speed := anim.Floats[locomotion.ParamSpeed]
		if speed < footstepMinSpeed || !body.Grounded {
			steps.Timer = 0
			return
		}
		interval := steps.Interval
		if interval <= 0 {
			interval = defaultStepInterval
		}
		steps.Timer -= dt * speed
		if steps.Timer <= 0 {
			audioComp.Request(steps.Sound)
			steps.Timer += interval
		}
	})

	for _, evt := range w.Events().Peek() {
		if evt.Type != ecs.EventPickupCollected {
			continue
		}
		if player, ok := w.First(component.PlayerTagComponent.Kind()); ok {
			if audioComp, ok := ecs.Ref(w, player, component.AudioComponent); ok {
				audioComp.Request(a.PickupSound)
			}
		}
	}

	ecs.ForEach(w, component.AudioComponent.Kind(), func(_ ecs.Entity, audioComp *component.Audio) {
		count := min(len(audioComp.Play), len(audioComp.Players))
		for i := 0; i < count; i++ {
			if !audioComp.Play[i] {
				continue
			}
			audioComp.Play[i] = false

			player := audioComp.Players[i]
			if player == nil {
				continue
			}
			player.SetVolume(audioComp.Volume[i])
			_ = player.Rewind()
			player.Play()
		}
		for i := count; i < len(audioComp.Play); i++ {
			audioComp.Play[i] = false
		}
	})
}
