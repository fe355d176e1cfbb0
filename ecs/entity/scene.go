package entity

import (
	"fmt"

	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/prefabs"
)

const defaultWallThickness = 0.2

// Scene is what BuildScene created.
type Scene struct {
	Name     string
	Player   ecs.Entity
	Entities []ecs.Entity
}

// BuildScene attaches pw to w, adds the scene's walls and builds every
// placed prefab. A scene must place exactly one player.
func BuildScene(w *ecs.World, pw *ecs.PhysicsWorld, spec prefabs.SceneSpec) (Scene, error) {
	if w == nil || pw == nil {
		return Scene{}, fmt.Errorf("build scene: world and physics world are required")
	}
	w.SetPhysicsWorld(pw)

	thickness := spec.WallThickness
	if thickness <= 0 {
		thickness = defaultWallThickness
	}
	for _, wall := range spec.Walls {
		pw.AddWall(wall.AX, wall.AZ, wall.BX, wall.BZ, thickness)
	}

	scene := Scene{Name: spec.Name}
	for i, p := range spec.Entities {
		e, err := BuildEntityWith(w, p.Prefab, p.Components)
		if err != nil {
			return scene, fmt.Errorf("build scene %q: entity %d: %w", spec.Name, i, err)
		}
		scene.Entities = append(scene.Entities, e)
		if ecs.Has(w, e, component.PlayerTagComponent) {
			if scene.Player.Valid() {
				return scene, fmt.Errorf("build scene %q: more than one player", spec.Name)
			}
			scene.Player = e
		}
	}
	if !scene.Player.Valid() {
		return scene, fmt.Errorf("build scene %q: no player placed", spec.Name)
	}
	return scene, nil
}

// ReloadLocomotion re-reads the locomotion tuning from prefabPath onto every
// player and bumps its revision so the controller is rebuilt. Players that
// were disabled get another chance.
func ReloadLocomotion(w *ecs.World, prefabPath string) (int, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, err
	}
	raw, ok := spec.Components["locomotion"]
	if !ok {
		return 0, fmt.Errorf("reload %q: no locomotion component", prefabPath)
	}
	loco, err := prefabs.DecodeComponentSpec[prefabs.LocomotionComponentSpec](raw)
	if err != nil {
		return 0, fmt.Errorf("reload %q: %w", prefabPath, err)
	}
	cfg := loco.Config()
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("reload %q: %w", prefabPath, err)
	}

	n := 0
	ecs.ForEach(w, component.LocomotionComponent.Kind(), func(e ecs.Entity, l *component.Locomotion) {
		if !ecs.Has(w, e, component.PlayerTagComponent) {
			return
		}
		l.Config = cfg
		l.Revision++
		l.Disabled = false
		l.Err = ""
		n++
	})
	return n, nil
}

// ReloadOverlay re-reads the overlay tuning from prefabPath, keeping the
// current scanline phases.
func ReloadOverlay(w *ecs.World, prefabPath string) (int, error) {
	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, err
	}
	overlay, err := prefabs.DecodeComponentSpec[prefabs.VHSOverlayComponentSpec](spec.Components["vhs_overlay"])
	if err != nil {
		return 0, fmt.Errorf("reload %q: %w", prefabPath, err)
	}
	n := 0
	ecs.ForEach(w, component.VHSOverlayComponent.Kind(), func(e ecs.Entity, o *component.VHSOverlay) {
		*o = OverlayFromSpec(overlay, *o)
		n++
	})
	return n, nil
}
