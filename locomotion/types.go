package locomotion

import "math"

// Vec2 is a raw 2-D input axis pair.
type Vec2 struct {
	X float64
	Y float64
}

func (v Vec2) SqrMagnitude() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.SqrMagnitude())
}

// Vec3 is a world-space displacement. Y is up.
type Vec3 struct {
	X float64
	Y float64
	Z float64
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// PivotOffset is the camera pivot's local offset from the body origin.
type PivotOffset struct {
	Y float64
	Z float64
}

type Stance int

const (
	Standing Stance = iota
	Crouching
)

func (s Stance) String() string {
	switch s {
	case Standing:
		return "standing"
	case Crouching:
		return "crouching"
	default:
		return "unknown"
	}
}

// Input is the snapshot of player intent read at the start of a frame.
type Input struct {
	Move   Vec2
	Look   Vec2
	Run    bool
	Crouch bool
}

// State is everything the controller carries between frames.
type State struct {
	VerticalVelocity float64
	Pitch            float64
	IdleElapsed      float64
	Idle             bool
	Stance           Stance
	CameraOffset     PivotOffset
	CapsuleHeight    float64
	CapsuleCenterY   float64
	AnimSpeed        float64
}

// CapsuleBottom is the lowest point of the capsule in body space.
func (s State) CapsuleBottom() float64 {
	return s.CapsuleCenterY - s.CapsuleHeight/2
}
