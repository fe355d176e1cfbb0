package system

import (
	"fmt"
	"math"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
	"go.uber.org/zap"
)

const (
	DefaultPickupRange = 3.0
	DefaultPromptText  = "Press E to pick up"
)

// ScriptLoader resolves a pickup script name to tengo source.
type ScriptLoader func(name string) ([]byte, error)

// PickupSystem casts a ray from the player's eye along the camera's forward
// axis each frame. A live pickup under the crosshair shows the prompt; the
// interact key collects it.
type PickupSystem struct {
	Range float64

	logger  *zap.Logger
	load    ScriptLoader
	scripts map[string]*tengo.Compiled
}

func NewPickupSystem(logger *zap.Logger, load ScriptLoader) *PickupSystem {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PickupSystem{
		Range:   DefaultPickupRange,
		logger:  logger,
		load:    load,
		scripts: make(map[string]*tengo.Compiled),
	}
}

func (s *PickupSystem) Update(w *ecs.World) {
	if w == nil {
		return
	}
	promptEntity, ok := w.First(component.PromptComponent.Kind())
	if !ok {
		return
	}
	prompt, _ := ecs.Ref(w, promptEntity, component.PromptComponent)
	prompt.Visible = false
	prompt.Target = 0

	player, ok := w.First(component.PlayerTagComponent.Kind())
	if !ok {
		return
	}
	origin, dir, ok := EyeRay(w, player)
	if !ok {
		return
	}

	hit, ok := w.PhysicsWorld().Raycast(origin, dir, s.Range)
	if !ok || hit.Wall {
		return
	}
	pickup, ok := ecs.Ref(w, hit.Entity, component.PickupComponent)
	if !ok || !pickup.Active || !ecs.Has(w, hit.Entity, component.PickupTagComponent) {
		return
	}

	if prompt.Text == "" {
		prompt.Text = DefaultPromptText
	}
	prompt.Visible = true
	prompt.Target = uint64(hit.Entity)

	input, _ := ecs.Get(w, player, component.InputComponent)
	if !input.InteractPressed {
		return
	}
	s.collect(w, player, hit.Entity, pickup)
	prompt.Visible = false
	prompt.Target = 0
}

func (s *PickupSystem) collect(w *ecs.World, player, item ecs.Entity, pickup *component.Pickup) {
	pickup.Active = false
	w.PhysicsWorld().RemoveEntity(item)

	total := 1
	if inv, ok := ecs.Ref(w, player, component.InventoryComponent); ok {
		inv.Items = append(inv.Items, pickup.Name)
		total = len(inv.Items)
	}

	s.logger.Info("picked up", zap.String("item", pickup.Name), zap.Int("total", total))

	message := ""
	if pickup.Script != "" {
		msg, err := s.runScript(pickup.Script, pickup.Name, total)
		if err != nil {
			s.logger.Warn("pickup script failed", zap.String("script", pickup.Script), zap.Error(err))
		}
		message = msg
	}
	if message == "" {
		message = fmt.Sprintf("Picked up %s", pickup.Name)
	}

	w.Events().Push(ecs.Event{
		Type: ecs.EventPickupCollected,
		Data: ecs.PickupCollectedEvent{Entity: item, Name: pickup.Name, Total: total, Message: message},
	})
}

// runScript runs a pickup script with `name` and `total` set and returns
// the script's `message` global, if it defines one.
func (s *PickupSystem) runScript(path, name string, total int) (string, error) {
	compiled, err := s.compile(path)
	if err != nil {
		return "", err
	}
	run := compiled.Clone()
	if err := run.Set("name", name); err != nil {
		return "", err
	}
	if err := run.Set("total", total); err != nil {
		return "", err
	}
	if err := run.Run(); err != nil {
		return "", fmt.Errorf("pickup: run %s: %w", path, err)
	}
	if !run.IsDefined("message") {
		return "", nil
	}
	return strings.TrimSpace(run.Get("message").String()), nil
}

func (s *PickupSystem) compile(path string) (*tengo.Compiled, error) {
	if c, ok := s.scripts[path]; ok {
		return c, nil
	}
	if s.load == nil {
		return nil, fmt.Errorf("pickup: no script loader for %s", path)
	}
	src, err := s.load(path)
	if err != nil {
		return nil, fmt.Errorf("pickup: load %s: %w", path, err)
	}
	script := tengo.NewScript(src)
	_ = script.Add("name", "")
	_ = script.Add("total", 0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("pickup: compile %s: %w", path, err)
	}
	s.scripts[path] = compiled
	return compiled, nil
}

// InvalidateScripts drops compiled scripts so the next pickup reloads them.
func (s *PickupSystem) InvalidateScripts() {
	s.scripts = make(map[string]*tengo.Compiled)
}

// EyeRay returns the world position of e's camera and its forward axis.
func EyeRay(w *ecs.World, e ecs.Entity) (origin, dir locomotion.Vec3, ok bool) {
	t, okT := ecs.Get(w, e, component.TransformComponent)
	rig, okR := ecs.Get(w, e, component.CameraRigComponent)
	if !okT || !okR {
		return origin, dir, false
	}
	yaw := (t.Yaw + rig.Yaw) * math.Pi / 180
	pitch := rig.Pitch * math.Pi / 180
	sy, cy := math.Sincos(yaw)
	sp, cp := math.Sincos(pitch)

	dir = locomotion.Vec3{X: sy * cp, Y: -sp, Z: cy * cp}
	origin = locomotion.Vec3{
		X: t.X + sy*rig.OffsetZ,
		Y: t.Y + rig.OffsetY,
		Z: t.Z + cy*rig.OffsetZ,
	}
	return origin, dir, true
}
