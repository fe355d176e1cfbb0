package system

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/liminal/ecs"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
	"golang.org/x/image/colornames"
)

const (
	DefaultFloorScale = 48.0
	lampGlowRadius    = 0.6
	viewConeLength    = 3.0
)

var floorColor = color.RGBA{R: 0x1a, G: 0x18, B: 0x12, A: 0xff}

// RenderSystem draws the floor-plan view of the scene around the player: walls
// and pickups from the physics space, lamps glowing at their current
// intensity, the player's capsule and view cone, and a debug readout.
type RenderSystem struct {
	Scale float64
	Debug bool
}

func NewRenderSystem(debug bool) *RenderSystem {
	return &RenderSystem{Scale: DefaultFloorScale, Debug: debug}
}

func (r *RenderSystem) Draw(w *ecs.World, screen *ebiten.Image) {
	if r == nil || w == nil || screen == nil {
		return
	}
	screen.Fill(floorColor)

	bounds := screen.Bounds()
	view := floorView{
		scale: r.Scale,
		cx:    float64(bounds.Dx()) / 2,
		cy:    float64(bounds.Dy()) / 2,
	}
	if view.scale <= 0 {
		view.scale = DefaultFloorScale
	}

	player, hasPlayer := w.First(component.PlayerTagComponent.Kind())
	if hasPlayer {
		if t, ok := ecs.Get(w, player, component.TransformComponent); ok {
			view.focusX, view.focusZ = t.X, t.Z
		}
	}

	r.drawLamps(w, view, screen)
	DrawPhysicsDebug(w.PhysicsWorld(), view, screen)
	if hasPlayer {
		r.drawPlayer(w, player, view, screen)
		if r.Debug {
			DrawPlayerDebug(w, player, screen)
		}
	}
}

func (r *RenderSystem) drawLamps(w *ecs.World, view floorView, screen *ebiten.Image) {
	ecs.ForEach2(w, component.LightComponent.Kind(), component.TransformComponent.Kind(), func(e ecs.Entity, light *component.Light, t *component.Transform) {
		level := light.Intensity
		if f, ok := ecs.Get(w, e, component.FlickerComponent); ok && f.MaxIntensity > 0 {
			level = light.Intensity / f.MaxIntensity
		}
		level = math.Max(0, math.Min(level, 1))

		glow := light.Color
		if glow.A == 0 {
			glow = colornames.Lightyellow
		}
		radius := lampGlowRadius
		if light.Range > 0 {
			radius = light.Range * 0.25
		}

		x, y := view.toScreen(t.X, t.Z)
		halo := color.RGBA{
			R: uint8(float64(glow.R) * level * 0.35),
			G: uint8(float64(glow.G) * level * 0.35),
			B: uint8(float64(glow.B) * level * 0.35),
			A: uint8(255 * level * 0.35),
		}
		vector.FillCircle(screen, float32(x), float32(y), float32(radius*view.scale), halo, true)

		core := glow
		if em, ok := ecs.Get(w, e, component.EmissiveComponent); ok {
			c := em.Color()
			core = color.RGBA{R: hdrByte(c[0]), G: hdrByte(c[1]), B: hdrByte(c[2]), A: 0xff}
		}
		vector.FillCircle(screen, float32(x), float32(y), 4, core, true)
	})
}

func (r *RenderSystem) drawPlayer(w *ecs.World, player ecs.Entity, view floorView, screen *ebiten.Image) {
	t, ok := ecs.Get(w, player, component.TransformComponent)
	if !ok {
		return
	}
	radius := 0.3
	if body, ok := ecs.Get(w, player, component.CharacterBodyComponent); ok && body.Radius > 0 {
		radius = body.Radius
	}
	fov := 70.0
	if rig, ok := ecs.Get(w, player, component.CameraRigComponent); ok && rig.FOV > 0 {
		fov = rig.FOV
	}

	x, y := view.toScreen(t.X, t.Z)
	vector.StrokeCircle(screen, float32(x), float32(y), float32(radius*view.scale), 2, colornames.Skyblue, true)

	for _, off := range []float64{-fov / 2, 0, fov / 2} {
		yaw := (t.Yaw + off) * math.Pi / 180
		ex, ey := view.toScreen(t.X+math.Sin(yaw)*viewConeLength, t.Z+math.Cos(yaw)*viewConeLength)
		width := float32(1)
		if off == 0 {
			width = 2
		}
		vector.StrokeLine(screen, float32(x), float32(y), float32(ex), float32(ey), width, colornames.Skyblue, true)
	}
}

// DrawPlayerDebug prints the controller's state in the top-left corner.
func DrawPlayerDebug(w *ecs.World, player ecs.Entity, screen *ebiten.Image) {
	if w == nil || screen == nil {
		return
	}
	ebitenutil.DebugPrintAt(screen, PlayerDebugText(w, player), 10, 10)
}

// PlayerDebugText formats the player's locomotion state for the debug readout.
func PlayerDebugText(w *ecs.World, player ecs.Entity) string {
	loco, _ := ecs.Get(w, player, component.LocomotionComponent)
	if loco.Disabled {
		return fmt.Sprintf("Locomotion disabled: %s", loco.Err)
	}
	rig, _ := ecs.Get(w, player, component.CameraRigComponent)
	body, _ := ecs.Get(w, player, component.CharacterBodyComponent)
	anim, _ := ecs.Get(w, player, component.AnimatorComponent)
	inv, _ := ecs.Get(w, player, component.InventoryComponent)

	return fmt.Sprintf(
		"Stance: %s\nSpeed: %.2f\nIdle: %v (%.1fs)\nPitch: %.1f\nGrounded: %v\nVertical: %.2f\nHeight: %.2f\nItems: %d",
		loco.Stance,
		anim.Floats[locomotion.ParamSpeed],
		anim.Bools[locomotion.ParamIdle],
		loco.IdleElapsed,
		rig.Pitch,
		body.Grounded,
		loco.VerticalVelocity,
		body.Height,
		len(inv.Items),
	)
}

func hdrByte(v float64) uint8 {
	return uint8(math.Max(0, math.Min(v, 1)) * 255)
}
