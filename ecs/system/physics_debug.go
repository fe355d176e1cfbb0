package system

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/liminal/ecs"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
)

// floorView maps floor-plan coordinates (cp X = world X, cp Y = world Z) to
// screen pixels around a focus point, with +Z pointing up the screen.
type floorView struct {
	focusX, focusZ float64
	scale          float64
	cx, cy         float64
}

func (v floorView) toScreen(x, z float64) (float64, float64) {
	return v.cx + (x-v.focusX)*v.scale, v.cy - (z-v.focusZ)*v.scale
}

// DrawPhysicsDebug draws every shape in the floor plan.
func DrawPhysicsDebug(pw *ecs.PhysicsWorld, view floorView, screen *ebiten.Image) {
	if pw == nil || pw.Space() == nil || screen == nil {
		return
	}
	drawer := &physicsDebugDrawer{
		screen: screen,
		view:   view,
		pw:     pw,
	}
	cp.DrawSpace(pw.Space(), drawer)
}

type physicsDebugDrawer struct {
	screen *ebiten.Image
	view   floorView
	pw     *ecs.PhysicsWorld
}

func (d *physicsDebugDrawer) DrawCircle(pos cp.Vector, angle, radius float64, outline, fill cp.FColor, data interface{}) {
	if radius <= 0 {
		return
	}
	d.drawCircle(pos, radius, outline)
}

func (d *physicsDebugDrawer) DrawSegment(a, b cp.Vector, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, fill)
}

func (d *physicsDebugDrawer) DrawFatSegment(a, b cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	d.drawLine(a, b, outline)
	if radius <= 0 {
		return
	}
	n := b.Sub(a)
	if n.LengthSq() == 0 {
		d.drawCircle(a, radius, outline)
		return
	}
	n = cp.Vector{X: -n.Y, Y: n.X}.Normalize().Mult(radius)
	d.drawLine(a.Add(n), b.Add(n), outline)
	d.drawLine(a.Sub(n), b.Sub(n), outline)
}

func (d *physicsDebugDrawer) DrawPolygon(count int, verts []cp.Vector, radius float64, outline, fill cp.FColor, data interface{}) {
	if count <= 0 {
		return
	}
	d.drawPolygon(verts[:count], outline)
}

func (d *physicsDebugDrawer) DrawDot(size float64, pos cp.Vector, fill cp.FColor, data interface{}) {
	if size <= 0 {
		size = debugDotSize
	}
	half := size / 2 / d.view.scale
	d.drawLine(cp.Vector{X: pos.X - half, Y: pos.Y}, cp.Vector{X: pos.X + half, Y: pos.Y}, fill)
	d.drawLine(cp.Vector{X: pos.X, Y: pos.Y - half}, cp.Vector{X: pos.X, Y: pos.Y + half}, fill)
}

func (d *physicsDebugDrawer) Flags() uint {
	return cp.DRAW_SHAPES
}

func (d *physicsDebugDrawer) OutlineColor() cp.FColor {
	return cp.FColor{R: 0.75, G: 0.72, B: 0.55, A: 1}
}

func (d *physicsDebugDrawer) ShapeColor(shape *cp.Shape, data interface{}) cp.FColor {
	if d.pw.IsWall(shape) {
		return cp.FColor{R: 0.75, G: 0.72, B: 0.55, A: 1}
	}
	return cp.FColor{R: 0.3, G: 0.9, B: 0.6, A: 1}
}

func (d *physicsDebugDrawer) ConstraintColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.5, B: 0.1, A: 0.9}
}

func (d *physicsDebugDrawer) CollisionPointColor() cp.FColor {
	return cp.FColor{R: 1, G: 0.2, B: 0.2, A: 0.9}
}

func (d *physicsDebugDrawer) Data() interface{} {
	return nil
}

func (d *physicsDebugDrawer) drawLine(a, b cp.Vector, color cp.FColor) {
	x1, y1 := d.view.toScreen(a.X, a.Y)
	x2, y2 := d.view.toScreen(b.X, b.Y)
	ebitenutil.DrawLine(d.screen, x1, y1, x2, y2, toNRGBA(color))
}

func (d *physicsDebugDrawer) drawPolygon(verts []cp.Vector, color cp.FColor) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], color)
	}
}

func (d *physicsDebugDrawer) drawCircle(center cp.Vector, radius float64, color cp.FColor) {
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, color)
}

func toNRGBA(c cp.FColor) color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp01(c.R) * 255),
		G: uint8(clamp01(c.G) * 255),
		B: uint8(clamp01(c.B) * 255),
		A: uint8(clamp01(c.A) * 255),
	}
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
