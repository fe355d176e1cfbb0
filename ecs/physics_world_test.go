package ecs

import (
	"math"
	"testing"

	"github.com/milk9111/liminal/ecs/component"
	"github.com/milk9111/liminal/locomotion"
)

func newTestCapsule(pw *PhysicsWorld) (*CapsuleBody, *component.Transform, *component.CharacterBody) {
	t := &component.Transform{}
	b := &component.CharacterBody{Radius: 0.4, Height: 2, CenterY: 1}
	return pw.NewCapsuleBody(t, b), t, b
}

func TestCapsuleBlockedByWall(t *testing.T) {
	pw := NewPhysicsWorld(0)
	pw.AddWall(2, -10, 2, 10, 0.2)
	body, tr, _ := newTestCapsule(pw)

	body.Move(locomotion.Vec3{X: 5})
	if tr.X >= 1.5 || tr.X < 1.45 {
		t.Fatalf("expected capsule to stop just short of the wall, x=%v", tr.X)
	}
}

func TestCapsuleSlidesAlongWall(t *testing.T) {
	pw := NewPhysicsWorld(0)
	pw.AddWall(2, -10, 2, 10, 0.2)
	body, tr, _ := newTestCapsule(pw)

	body.Move(locomotion.Vec3{X: 5, Z: 5})
	if tr.X >= 1.5 {
		t.Fatalf("capsule passed through wall, x=%v", tr.X)
	}
	if tr.Z < 4.9 {
		t.Fatalf("expected tangential motion to be kept, z=%v", tr.Z)
	}
}

func TestCapsuleFreeMove(t *testing.T) {
	pw := NewPhysicsWorld(0)
	body, tr, _ := newTestCapsule(pw)

	body.Move(locomotion.Vec3{X: -1.5, Z: 2})
	if math.Abs(tr.X+1.5) > 1e-9 || math.Abs(tr.Z-2) > 1e-9 {
		t.Fatalf("unexpected position %+v", tr)
	}
}

func TestCapsuleGrounding(t *testing.T) {
	pw := NewPhysicsWorld(0)
	body, tr, _ := newTestCapsule(pw)

	steps := []struct {
		dy       float64
		wantY    float64
		grounded bool
	}{
		{-0.1, 0, true},
		{0.5, 0.5, false},
		{-0.2, 0.3, false},
		{-1, 0, true},
		{0, 0, true},
	}
	for i, s := range steps {
		body.Move(locomotion.Vec3{Y: s.dy})
		if math.Abs(tr.Y-s.wantY) > 1e-9 || body.Grounded() != s.grounded {
			t.Fatalf("step %d: y=%v grounded=%v, want y=%v grounded=%v", i, tr.Y, body.Grounded(), s.wantY, s.grounded)
		}
	}
}

func TestCapsuleBottomFollowsCapsule(t *testing.T) {
	pw := NewPhysicsWorld(0)
	body, _, _ := newTestCapsule(pw)

	body.SetCapsule(1.4, 0.7)
	if h, c := body.Capsule(); h != 1.4 || c != 0.7 {
		t.Fatalf("capsule not stored: %v %v", h, c)
	}
	if body.Bottom() != 0 {
		t.Fatalf("expected bottom 0, got %v", body.Bottom())
	}
}

func TestRaycast(t *testing.T) {
	eye := locomotion.Vec3{Y: 1.6}
	down := locomotion.Vec3{Y: -0.6, Z: 2}
	l := math.Sqrt(down.Y*down.Y + down.Z*down.Z)
	down = down.Scale(1 / l)

	cases := []struct {
		name     string
		dir      locomotion.Vec3
		withWall bool
		wantHit  bool
		wantWall bool
		wantDist float64
	}{
		{"look_at_pickup", down, false, true, false, 1.7 / down.Z},
		{"over_pickup_nothing_behind", locomotion.Vec3{Z: 1}, false, false, false, 0},
		{"over_pickup_hits_wall", locomotion.Vec3{Z: 1}, true, true, true, 2.4},
		{"straight_up", locomotion.Vec3{Y: 1}, true, false, false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			pw := NewPhysicsWorld(0)
			item := w.CreateEntity()
			pw.AddPickup(item, 0, 0.8, 2, 0.3, 0.5)
			if c.withWall {
				pw.AddWall(-5, 2.5, 5, 2.5, 0.2)
			}

			hit, ok := pw.Raycast(eye, c.dir, 3)
			if ok != c.wantHit {
				t.Fatalf("hit=%v want %v (%+v)", ok, c.wantHit, hit)
			}
			if !ok {
				return
			}
			if hit.Wall != c.wantWall {
				t.Fatalf("wall=%v want %v", hit.Wall, c.wantWall)
			}
			if !c.wantWall && hit.Entity != item {
				t.Fatalf("expected pickup entity, got %v", hit.Entity)
			}
			if math.Abs(hit.Distance-c.wantDist) > 0.01 {
				t.Fatalf("distance=%v want %v", hit.Distance, c.wantDist)
			}
		})
	}
}

func TestRaycastThroughCaps(t *testing.T) {
	unit := func(v locomotion.Vec3) locomotion.Vec3 {
		return v.Scale(1 / math.Sqrt(v.X*v.X+v.Y*v.Y+v.Z*v.Z))
	}

	cases := []struct {
		name     string
		eye      locomotion.Vec3
		dir      locomotion.Vec3
		wantHit  bool
		wantDist float64
	}{
		{"look_down_onto_top_face", locomotion.Vec3{Y: 1.6}, unit(locomotion.Vec3{Y: -0.3, Z: 2}), true, math.Sqrt(0.09 + 4)},
		{"straight_down_from_above", locomotion.Vec3{Y: 1.6, Z: 2}, locomotion.Vec3{Y: -1}, true, 0.3},
		{"look_up_into_bottom_face", locomotion.Vec3{Y: 0.2, Z: 1}, unit(locomotion.Vec3{Y: 0.6, Z: 1}), true, math.Sqrt(0.36 + 1)},
		{"passes_over_top_face", locomotion.Vec3{Y: 1.6}, unit(locomotion.Vec3{Y: -0.3, Z: 2.5}), false, 0},
		{"straight_up_from_above", locomotion.Vec3{Y: 1.6, Z: 2}, locomotion.Vec3{Y: 1}, false, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			pw := NewPhysicsWorld(0)
			item := w.CreateEntity()
			pw.AddPickup(item, 0, 0.8, 2, 0.3, 0.5)

			hit, ok := pw.Raycast(c.eye, c.dir, 3)
			if ok != c.wantHit {
				t.Fatalf("hit=%v want %v (%+v)", ok, c.wantHit, hit)
			}
			if !ok {
				return
			}
			if hit.Wall || hit.Entity != item {
				t.Fatalf("expected pickup entity, got %+v", hit)
			}
			if math.Abs(hit.Distance-c.wantDist) > 0.01 {
				t.Fatalf("distance=%v want %v", hit.Distance, c.wantDist)
			}
		})
	}
}

func TestRaycastCapBehindWall(t *testing.T) {
	w := NewWorld()
	pw := NewPhysicsWorld(0)
	item := w.CreateEntity()
	pw.AddPickup(item, 0, 0.8, 2, 0.3, 0.5)
	pw.AddWall(-5, 1, 5, 1, 0.2)

	dir := locomotion.Vec3{Y: -0.3, Z: 2}
	dir = dir.Scale(1 / math.Sqrt(dir.Y*dir.Y+dir.Z*dir.Z))
	hit, ok := pw.Raycast(locomotion.Vec3{Y: 1.6}, dir, 3)
	if !ok || !hit.Wall {
		t.Fatalf("expected the wall in front of the pickup, got %+v ok=%v", hit, ok)
	}
}

func TestRaycastRangeAndRemoval(t *testing.T) {
	w := NewWorld()
	pw := NewPhysicsWorld(0)
	item := w.CreateEntity()
	pw.AddPickup(item, 0, 0, 5, 0.3, 2)

	eye := locomotion.Vec3{Y: 1}
	fwd := locomotion.Vec3{Z: 1}
	if _, ok := pw.Raycast(eye, fwd, 3); ok {
		t.Fatalf("pickup beyond range should not be hit")
	}
	if _, ok := pw.Raycast(eye, fwd, 6); !ok {
		t.Fatalf("pickup within range should be hit")
	}
	pw.RemoveEntity(item)
	if _, ok := pw.Raycast(eye, fwd, 6); ok {
		t.Fatalf("removed pickup should not be hit")
	}
}
