package ecs

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
)

// The scene's floor plan lives in a Chipmunk space: world X maps to cp X and
// world Z maps to cp Y. Height (world Y) is handled here against a flat floor.

const (
	categoryWall uint = 1 << iota
	categoryPickup
)

const (
	collisionTypeWall cp.CollisionType = iota + 1
	collisionTypePickup
)

const (
	skinWidth          = 0.01
	maxSlideIterations = 3
	maxRaySteps        = 8
)

var solidFilter = cp.ShapeFilter{Group: cp.NO_GROUP, Categories: cp.ALL_CATEGORIES, Mask: categoryWall | categoryPickup}

// RayHit is the first thing a Raycast touched.
type RayHit struct {
	Entity   Entity
	Wall     bool
	Distance float64
	Point    locomotion.Vec3
}

type shapeInfo struct {
	entity Entity
	bottom float64
	top    float64
	wall   bool
}

// PhysicsWorld owns the Chipmunk space and static collision shapes.
type PhysicsWorld struct {
	space  *cp.Space
	floorY float64

	shapes       map[*cp.Shape]shapeInfo
	entityShapes map[Entity][]*cp.Shape
}

// NewPhysicsWorld creates an empty floor plan with the floor at floorY.
func NewPhysicsWorld(floorY float64) *PhysicsWorld {
	space := cp.NewSpace()
	space.Iterations = 20

	return &PhysicsWorld{
		space:        space,
		floorY:       floorY,
		shapes:       make(map[*cp.Shape]shapeInfo),
		entityShapes: make(map[Entity][]*cp.Shape),
	}
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

func (pw *PhysicsWorld) FloorY() float64 {
	if pw == nil {
		return 0
	}
	return pw.floorY
}

// AddWall adds a floor-to-ceiling wall between two floor-plan points.
func (pw *PhysicsWorld) AddWall(ax, az, bx, bz, thickness float64) *cp.Shape {
	if pw == nil {
		return nil
	}
	shape := cp.NewSegment(pw.space.StaticBody, cp.Vector{X: ax, Y: az}, cp.Vector{X: bx, Y: bz}, thickness/2)
	shape.SetCollisionType(collisionTypeWall)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryWall, cp.ALL_CATEGORIES))
	pw.space.AddShape(shape)
	pw.shapes[shape] = shapeInfo{wall: true, bottom: math.Inf(-1), top: math.Inf(1)}
	return shape
}

// AddPickup registers a pickup's cylinder for ray and body queries.
func (pw *PhysicsWorld) AddPickup(e Entity, x, y, z, radius, height float64) *cp.Shape {
	if pw == nil || radius <= 0 {
		return nil
	}
	shape := cp.NewCircle(pw.space.StaticBody, radius, cp.Vector{X: x, Y: z})
	shape.SetCollisionType(collisionTypePickup)
	shape.SetFilter(cp.NewShapeFilter(cp.NO_GROUP, categoryPickup, cp.ALL_CATEGORIES))
	pw.space.AddShape(shape)
	pw.shapes[shape] = shapeInfo{entity: e, bottom: y, top: y + height}
	pw.entityShapes[e] = append(pw.entityShapes[e], shape)
	return shape
}

// RemoveEntity drops every shape registered for e.
func (pw *PhysicsWorld) RemoveEntity(e Entity) {
	if pw == nil {
		return
	}
	for _, shape := range pw.entityShapes[e] {
		pw.space.RemoveShape(shape)
		delete(pw.shapes, shape)
	}
	delete(pw.entityShapes, e)
}

// Raycast casts a ray of at most maxDist along dir (unit length) and reports
// the nearest wall or pickup it touches. Pickups are upright cylinders, so a
// ray can enter one through its side or through its top or bottom cap.
func (pw *PhysicsWorld) Raycast(origin, dir locomotion.Vec3, maxDist float64) (RayHit, bool) {
	if pw == nil || maxDist <= 0 {
		return RayHit{}, false
	}

	var best RayHit
	found := false
	limit := maxDist

	// Pickups directly above or below the eye can only be entered through a cap.
	start := cp.Vector{X: origin.X, Y: origin.Z}
	for shape, meta := range pw.shapes {
		if meta.wall || shape.PointQuery(start).Distance > 0 {
			continue
		}
		if hit, ok := pw.capHit(shape, meta, origin, dir, 0, limit); ok {
			best, found, limit = hit, true, hit.Distance
		}
	}
	if math.Hypot(dir.X, dir.Z) < 1e-9 {
		return best, found
	}

	travelled := 0.0
	for i := 0; i < maxRaySteps && travelled < limit; i++ {
		end := cp.Vector{X: origin.X + dir.X*limit, Y: origin.Z + dir.Z*limit}
		info := pw.space.SegmentQueryFirst(start, end, 0, solidFilter)
		if info.Shape == nil {
			break
		}
		dist := travelled + info.Alpha*(limit-travelled)
		y := origin.Y + dir.Y*dist
		meta := pw.shapes[info.Shape]
		if y >= pw.floorY && y >= meta.bottom && y <= meta.top {
			return RayHit{
				Entity:   meta.entity,
				Wall:     meta.wall,
				Distance: dist,
				Point:    locomotion.Vec3{X: info.Point.X, Y: y, Z: info.Point.Y},
			}, true
		}
		if hit, ok := pw.capHit(info.Shape, meta, origin, dir, dist, limit); ok {
			best, found, limit = hit, true, hit.Distance
		}
		// Passed over or under the side; continue just past the entry point.
		travelled = dist + 1e-4
		start = cp.Vector{X: origin.X + dir.X*travelled, Y: origin.Z + dir.Z*travelled}
	}
	return best, found
}

// capHit reports where the ray crosses the top cap (descending) or bottom cap
// (ascending) of a pickup cylinder, if that happens within [from, limit].
func (pw *PhysicsWorld) capHit(shape *cp.Shape, meta shapeInfo, origin, dir locomotion.Vec3, from, limit float64) (RayHit, bool) {
	if meta.wall {
		return RayHit{}, false
	}
	var capY float64
	switch {
	case dir.Y < 0 && origin.Y >= meta.top:
		capY = meta.top
	case dir.Y > 0 && origin.Y <= meta.bottom:
		capY = meta.bottom
	default:
		return RayHit{}, false
	}
	if capY < pw.floorY {
		return RayHit{}, false
	}
	dist := (capY - origin.Y) / dir.Y
	if dist < from || dist > limit {
		return RayHit{}, false
	}
	p := cp.Vector{X: origin.X + dir.X*dist, Y: origin.Z + dir.Z*dist}
	if shape.PointQuery(p).Distance > 0 {
		return RayHit{}, false
	}
	return RayHit{
		Entity:   meta.entity,
		Distance: dist,
		Point:    locomotion.Vec3{X: p.X, Y: capY, Z: p.Y},
	}, true
}

// NewCapsuleBody binds a capsule mover to an entity's transform and body
// components. The pointers must stay valid for the mover's lifetime.
func (pw *PhysicsWorld) NewCapsuleBody(t *component.Transform, b *component.CharacterBody) *CapsuleBody {
	if pw == nil || t == nil || b == nil {
		return nil
	}
	return &CapsuleBody{world: pw, transform: t, body: b}
}

// CapsuleBody moves an upright capsule through the floor plan, sliding along
// walls and resting on the floor. It implements locomotion.Mover.
type CapsuleBody struct {
	world     *PhysicsWorld
	transform *component.Transform
	body      *component.CharacterBody
}

var _ locomotion.Mover = (*CapsuleBody)(nil)

// Move applies d immediately; Grounded reflects this call.
func (c *CapsuleBody) Move(d locomotion.Vec3) {
	if d.X != 0 || d.Z != 0 {
		c.slide(d.X, d.Z)
	}
	c.moveVertical(d.Y)
}

func (c *CapsuleBody) Grounded() bool {
	return c.body.Grounded
}

func (c *CapsuleBody) Yaw() float64 {
	return c.transform.Yaw
}

func (c *CapsuleBody) SetYaw(deg float64) {
	c.transform.Yaw = deg
}

func (c *CapsuleBody) Capsule() (float64, float64) {
	return c.body.Height, c.body.CenterY
}

func (c *CapsuleBody) SetCapsule(height, centerY float64) {
	c.body.Height = height
	c.body.CenterY = centerY
}

// Bottom is the capsule's lowest point in world space.
func (c *CapsuleBody) Bottom() float64 {
	return c.transform.Y + c.body.CenterY - c.body.Height/2
}

func (c *CapsuleBody) moveVertical(dy float64) {
	bottom := c.Bottom()
	floor := c.world.floorY
	if dy <= 0 && bottom+dy <= floor+skinWidth {
		c.transform.Y += floor - bottom
		c.body.Grounded = true
		return
	}
	c.transform.Y += dy
	c.body.Grounded = false
}

func (c *CapsuleBody) slide(dx, dz float64) {
	space := c.world.space
	radius := c.body.Radius
	pos := cp.Vector{X: c.transform.X, Y: c.transform.Z}
	delta := cp.Vector{X: dx, Y: dz}

	for i := 0; i < maxSlideIterations && delta.LengthSq() > 1e-12; i++ {
		end := pos.Add(delta)
		hit := space.SegmentQueryFirst(pos, end, radius, solidFilter)
		if hit.Shape == nil {
			pos = end
			break
		}
		length := delta.Length()
		travel := math.Max(hit.Alpha*length-skinWidth, 0)
		pos = pos.Add(delta.Mult(travel / length))

		remaining := delta.Mult(1 - hit.Alpha)
		if into := remaining.Dot(hit.Normal); into < 0 {
			remaining = remaining.Sub(hit.Normal.Mult(into))
		}
		delta = remaining
	}

	if info := space.PointQueryNearest(pos, radius, solidFilter); info != nil && info.Shape != nil && info.Distance < radius {
		pos = pos.Add(info.Gradient.Mult(radius - info.Distance + skinWidth))
	}

	c.transform.X = pos.X
	c.transform.Z = pos.Y
}

// IsWall reports whether shape is one of the static walls.
func (pw *PhysicsWorld) IsWall(shape *cp.Shape) bool {
	if pw == nil {
		return false
	}
	info, ok := pw.shapes[shape]
	return ok && info.wall
}
