package entity

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/liminal/assets"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/prefabs"
)

func addAudio(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	specs, err := prefabs.DecodeComponentSpec[[]prefabs.AudioClipSpec](raw)
	if err != nil {
		return err
	}
	comp, err := buildAudioComponent(audio.CurrentContext(), specs)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.AudioComponent, comp)
}

// buildAudioComponent synthesizes each clip. Without a context the names and
// volumes are kept but no players are made.
func buildAudioComponent(ctx *audio.Context, specs []prefabs.AudioClipSpec) (component.Audio, error) {
	n := len(specs)
	comp := component.Audio{
		Names:   make([]string, 0, n),
		Players: make([]*audio.Player, 0, n),
		Volume:  make([]float64, 0, n),
		Play:    make([]bool, n),
	}
	for i, clip := range specs {
		if clip.Name == "" {
			return component.Audio{}, fmt.Errorf("audio clip %d has no name", i)
		}
		if clip.Duration <= 0 {
			return component.Audio{}, fmt.Errorf("audio clip %q needs a positive duration", clip.Name)
		}

		var player *audio.Player
		if ctx != nil {
			tone := assets.Tone{Freq: clip.Freq, Duration: clip.Duration, Noise: clip.Noise, Decay: clip.Decay}
			player = ctx.NewPlayerFromBytes(tone.PCM(uint64(i + 1)))
		}
		volume := clip.Volume
		if volume <= 0 {
			volume = 1
		}
		comp.Names = append(comp.Names, clip.Name)
		comp.Players = append(comp.Players, player)
		comp.Volume = append(comp.Volume, volume)
	}
	return comp, nil
}

func addFootsteps(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.FootstepsComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Sound == "" {
		return fmt.Errorf("footsteps need a sound")
	}
	if !ecs.Has(w, e, component.AudioComponent) {
		return fmt.Errorf("footsteps need an audio component")
	}
	return ecs.Add(w, e, component.FootstepsComponent, component.Footsteps{
		Sound:    spec.Sound,
		Interval: spec.Interval,
	})
}
