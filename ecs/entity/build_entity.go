package entity

import (
	"errors"
	"fmt"
	"sort"

	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/ecs/system"
	"github.com/milk9111/liminal/prefabs"
)

const defaultBlipChance = 0.12

var (
	ErrNoPhysicsWorld = errors.New("build entity: world has no physics world")
	ErrNoTransform    = errors.New("build entity: transform must be built first")
)

type buildContext struct {
	PrefabPath string
}

type componentBuildFn func(w *ecs.World, e ecs.Entity, raw any, ctx *buildContext) error

var componentRegistry = map[string]componentBuildFn{
	"player_tag":     addPlayerTag,
	"pickup_tag":     addPickupTag,
	"transform":      addTransform,
	"input":          addInput,
	"character_body": addCharacterBody,
	"camera_rig":     addCameraRig,
	"animator":       addAnimator,
	"inventory":      addInventory,
	"locomotion":     addLocomotion,
	"audio":          addAudio,
	"footsteps":      addFootsteps,
	"light":          addLight,
	"emissive":       addEmissive,
	"flicker":        addFlicker,
	"pickup":         addPickup,
	"prompt":         addPrompt,
	"vhs_overlay":    addVHSOverlay,
}

var componentBuildOrder = []string{
	"player_tag",
	"pickup_tag",
	"transform",
	"input",
	"character_body",
	"camera_rig",
	"animator",
	"inventory",
	"locomotion",
	"audio",
	"footsteps",
	"light",
	"emissive",
	"flicker",
	"pickup",
	"prompt",
	"vhs_overlay",
}

func BuildEntity(w *ecs.World, prefabPath string) (ecs.Entity, error) {
	return BuildEntityWith(w, prefabPath, nil)
}

// BuildEntityWith builds a prefab with overrides merged over its components.
func BuildEntityWith(w *ecs.World, prefabPath string, overrides map[string]any) (ecs.Entity, error) {
	if w == nil {
		return 0, fmt.Errorf("build entity: world is nil")
	}

	spec, err := prefabs.LoadEntityBuildSpec(prefabPath)
	if err != nil {
		return 0, fmt.Errorf("build entity: load %q: %w", prefabPath, err)
	}
	components := prefabs.MergeComponents(spec.Components, overrides)
	if len(components) == 0 {
		return 0, fmt.Errorf("build entity: prefab %q does not define components", prefabPath)
	}

	e := w.CreateEntity()
	ctx := &buildContext{PrefabPath: prefabPath}

	remaining := make(map[string]any, len(components))
	for k, v := range components {
		remaining[k] = v
	}

	for _, name := range componentBuildOrder {
		raw, ok := remaining[name]
		if !ok {
			continue
		}
		if err := buildComponent(w, e, name, raw, ctx); err != nil {
			return 0, err
		}
		delete(remaining, name)
	}

	if len(remaining) > 0 {
		names := make([]string, 0, len(remaining))
		for name := range remaining {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if err := buildComponent(w, e, name, remaining[name], ctx); err != nil {
				return 0, err
			}
		}
	}

	return e, nil
}

func buildComponent(w *ecs.World, e ecs.Entity, name string, raw any, ctx *buildContext) error {
	builder, ok := componentRegistry[name]
	if !ok {
		destroy(w, e)
		return fmt.Errorf("build entity: %q: no builder for component %q", ctx.PrefabPath, name)
	}
	if err := builder(w, e, raw, ctx); err != nil {
		destroy(w, e)
		return fmt.Errorf("build entity: %q: add %q: %w", ctx.PrefabPath, name, err)
	}
	return nil
}

func destroy(w *ecs.World, e ecs.Entity) {
	w.PhysicsWorld().RemoveEntity(e)
	w.DestroyEntity(e)
}

func addPlayerTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PlayerTagComponent, component.PlayerTag{})
}

func addPickupTag(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.PickupTagComponent, component.PickupTag{})
}

func addTransform(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.TransformComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.TransformComponent, component.Transform{
		X:   spec.X,
		Y:   spec.Y,
		Z:   spec.Z,
		Yaw: spec.Yaw,
	})
}

func addInput(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InputComponent, component.Input{})
}

func addCharacterBody(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CharacterBodyComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Radius <= 0 || spec.Height <= 0 {
		return fmt.Errorf("character body needs a positive radius and height, got %v/%v", spec.Radius, spec.Height)
	}
	centerY := spec.CenterY
	if centerY == 0 {
		centerY = spec.Height / 2
	}
	return ecs.Add(w, e, component.CharacterBodyComponent, component.CharacterBody{
		Radius:  spec.Radius,
		Height:  spec.Height,
		CenterY: centerY,
	})
}

func addCameraRig(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.CameraRigComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.CameraRigComponent, component.CameraRig{
		OffsetY: spec.OffsetY,
		OffsetZ: spec.OffsetZ,
		Pitch:   spec.Pitch,
		FOV:     spec.FOV,
	})
}

func addAnimator(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.AnimatorComponent, component.NewAnimator())
}

func addInventory(w *ecs.World, e ecs.Entity, _ any, _ *buildContext) error {
	return ecs.Add(w, e, component.InventoryComponent, component.Inventory{})
}

func addLocomotion(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.LocomotionComponentSpec](raw)
	if err != nil {
		return err
	}
	cfg := spec.Config()
	if err := cfg.Validate(); err != nil {
		return err
	}
	return ecs.Add(w, e, component.LocomotionComponent, component.Locomotion{Config: cfg})
}

func addLight(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.LightComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.LightComponent, component.Light{
		Intensity: spec.Intensity,
		Range:     spec.Range,
		Color:     spec.Color.ToRGBA(),
	})
}

func addEmissive(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.EmissiveComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.EmissiveComponent, component.Emissive{Tint: spec.Tint, Value: spec.Value})
}

func addFlicker(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.FlickerComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.MaxIntensity < spec.MinIntensity || spec.MaxDelay < spec.MinDelay || spec.MinDelay < 0 {
		return fmt.Errorf("flicker ranges are inverted or negative: %+v", spec)
	}
	chance := defaultBlipChance
	if spec.BlipChance != nil {
		chance = *spec.BlipChance
	}
	return ecs.Add(w, e, component.FlickerComponent, component.Flicker{
		MinIntensity: spec.MinIntensity,
		MaxIntensity: spec.MaxIntensity,
		MinDelay:     spec.MinDelay,
		MaxDelay:     spec.MaxDelay,
		MinEmission:  spec.MinEmission,
		MaxEmission:  spec.MaxEmission,
		Smooth:       spec.Smooth,
		SmoothSpeed:  spec.SmoothSpeed,
		BlipChance:   chance,
	})
}

func addPickup(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PickupComponentSpec](raw)
	if err != nil {
		return err
	}
	if spec.Radius <= 0 {
		return fmt.Errorf("pickup %q needs a positive radius", spec.Name)
	}
	t, ok := ecs.Get(w, e, component.TransformComponent)
	if !ok {
		return ErrNoTransform
	}
	pw := w.PhysicsWorld()
	if pw == nil {
		return ErrNoPhysicsWorld
	}

	if err := ecs.Add(w, e, component.PickupComponent, component.Pickup{
		Name:   spec.Name,
		Radius: spec.Radius,
		Height: spec.Height,
		Script: spec.Script,
		Active: true,
	}); err != nil {
		return err
	}
	pw.AddPickup(e, t.X, t.Y, t.Z, spec.Radius, spec.Height)
	return nil
}

func addPrompt(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.PromptComponentSpec](raw)
	if err != nil {
		return err
	}
	text := spec.Text
	if text == "" {
		text = system.DefaultPromptText
	}
	return ecs.Add(w, e, component.PromptComponent, component.Prompt{Text: text})
}

func addVHSOverlay(w *ecs.World, e ecs.Entity, raw any, _ *buildContext) error {
	spec, err := prefabs.DecodeComponentSpec[prefabs.VHSOverlayComponentSpec](raw)
	if err != nil {
		return err
	}
	return ecs.Add(w, e, component.VHSOverlayComponent, OverlayFromSpec(spec, component.VHSOverlay{}))
}

// OverlayFromSpec applies spec's tuning to o, keeping its current phases.
func OverlayFromSpec(spec prefabs.VHSOverlayComponentSpec, o component.VHSOverlay) component.VHSOverlay {
	o.YRate = system.DefaultYScanlineRate
	o.XRate = system.DefaultXScanlineRate
	o.RerollChance = system.DefaultRerollChance
	o.Enabled = true
	if spec.YRate != nil {
		o.YRate = *spec.YRate
	}
	if spec.XRate != nil {
		o.XRate = *spec.XRate
	}
	if spec.RerollChance != nil {
		o.RerollChance = *spec.RerollChance
	}
	if spec.Enabled != nil {
		o.Enabled = *spec.Enabled
	}
	return o
}
