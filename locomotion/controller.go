// Package locomotion drives a first-person character: stance and speed
// selection, gravity, capsule and camera coupling, mouse look and the
// animation parameters derived from all of it. It runs once per frame and
// talks to the rest of the scene only through the interfaces below.
package locomotion

import (
	"errors"
	"fmt"
	"math"

	"github.com/milk9111/liminal/common"
)

// Animation parameter names written to the AnimationSink.
const (
	ParamSpeed     = "speed"
	ParamCrouching = "crouching"
	ParamIdle      = "idle"
)

var (
	ErrMissingMover    = errors.New("locomotion: missing mover")
	ErrMissingCamera   = errors.New("locomotion: missing camera")
	ErrMissingAnimator = errors.New("locomotion: missing animation sink")
)

// Mover is the collision-aware character body.
//
// Move applies immediately: Grounded reflects the most recent Move call.
type Mover interface {
	Move(d Vec3)
	Grounded() bool
	Yaw() float64
	SetYaw(deg float64)
	Capsule() (height, centerY float64)
	SetCapsule(height, centerY float64)
}

// Camera is the camera pivot attached to the body.
type Camera interface {
	LocalOffset() PivotOffset
	SetLocalOffset(o PivotOffset)
	SetLocalRotation(pitch, yaw, roll float64)
}

// AnimationSink receives named animation parameters. Fire and forget.
type AnimationSink interface {
	SetFloat(name string, v float64)
	SetBool(name string, v bool)
}

// Controller owns one character's locomotion state and drives its
// collaborators once per Step.
type Controller struct {
	cfg   Config
	mover Mover
	cam   Camera
	anim  AnimationSink

	// Camera offset and capsule height seen at construction; unset stance
	// targets resolve to these for the controller's lifetime.
	observedOffset PivotOffset
	observedHeight float64

	standOffset  PivotOffset
	crouchOffset PivotOffset
	standHeight  float64
	crouchHeight float64

	state State
}

// New validates the configuration, resolves unset stance targets from the
// collaborators' current values and returns a controller in the standing
// stance.
func New(cfg Config, mover Mover, cam Camera, anim AnimationSink) (*Controller, error) {
	if mover == nil {
		return nil, ErrMissingMover
	}
	if cam == nil {
		return nil, ErrMissingCamera
	}
	if anim == nil {
		return nil, ErrMissingAnimator
	}
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("locomotion: new controller: %w", err)
	}

	height, centerY := mover.Capsule()
	observedOffset := cam.LocalOffset()

	c := &Controller{
		mover:          mover,
		cam:            cam,
		anim:           anim,
		observedOffset: observedOffset,
		observedHeight: height,
	}
	c.apply(cfg)

	c.state = State{
		Stance:         Standing,
		CameraOffset:   observedOffset,
		CapsuleHeight:  height,
		CapsuleCenterY: centerY,
	}
	return c, nil
}

// Reconfigure swaps in new tuning. State carries over, and unset stance
// targets keep resolving to the values observed at construction.
func (c *Controller) Reconfigure(cfg Config) error {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("locomotion: reconfigure: %w", err)
	}
	c.apply(cfg)
	return nil
}

func (c *Controller) apply(cfg Config) {
	c.cfg = cfg
	c.standOffset, c.crouchOffset = c.observedOffset, c.observedOffset
	c.standHeight, c.crouchHeight = c.observedHeight, c.observedHeight
	if cfg.StandCameraOffset != nil {
		c.standOffset = *cfg.StandCameraOffset
	}
	if cfg.CrouchCameraOffset != nil {
		c.crouchOffset = *cfg.CrouchCameraOffset
	}
	if cfg.StandHeight > 0 {
		c.standHeight = cfg.StandHeight
	}
	if cfg.CrouchHeight > 0 {
		c.crouchHeight = cfg.CrouchHeight
	}
}

// Config returns the resolved tuning in use.
func (c *Controller) Config() Config {
	return c.cfg
}

// State returns a copy of the controller's per-frame state.
func (c *Controller) State() State {
	return c.state
}

// Step advances the controller by one frame of dt seconds. Negative or NaN
// dt is treated as zero.
func (c *Controller) Step(in Input, dt float64) {
	if dt < 0 || math.IsNaN(dt) {
		dt = 0
	}

	move := in.Move
	if move.SqrMagnitude() > 1 {
		m := move.Magnitude()
		move = Vec2{X: move.X / m, Y: move.Y / m}
	}

	stance := Standing
	if in.Crouch {
		stance = Crouching
	}
	c.state.Stance = stance
	speed := c.speed(stance, in.Run)

	c.integrateVertical(dt)
	c.move(move, speed, dt)
	c.interpolateStance(stance, dt)
	c.look(in.Look, stance)
	c.animate(in, move, stance, dt)
}

func (c *Controller) speed(stance Stance, run bool) float64 {
	switch {
	case stance == Crouching:
		return c.cfg.CrouchSpeed
	case run:
		return c.cfg.RunSpeed
	default:
		return c.cfg.WalkSpeed
	}
}

func (c *Controller) integrateVertical(dt float64) {
	// Strictly negative: a body resting at vy == 0 only picks up gravity.
	if c.mover.Grounded() && c.state.VerticalVelocity < 0 {
		c.state.VerticalVelocity = c.cfg.GroundBias
	}
	c.state.VerticalVelocity += c.cfg.Gravity * dt
}

// move submits horizontal then vertical displacement as two calls; the
// second call's collision decides next frame's grounded state.
func (c *Controller) move(move Vec2, speed, dt float64) {
	forward, right := basis(c.mover.Yaw())
	horizontal := right.Scale(move.X).Add(forward.Scale(move.Y)).Scale(speed * dt)
	c.mover.Move(horizontal)
	c.mover.Move(Vec3{Y: c.state.VerticalVelocity * dt})
}

func (c *Controller) interpolateStance(stance Stance, dt float64) {
	targetOffset, targetHeight := c.standOffset, c.standHeight
	if stance == Crouching {
		targetOffset, targetHeight = c.crouchOffset, c.crouchHeight
	}

	c.state.CameraOffset = moveTowardsOffset(c.state.CameraOffset, targetOffset, c.cfg.CameraRate*dt)
	c.cam.SetLocalOffset(c.state.CameraOffset)

	bottom := c.state.CapsuleCenterY - c.state.CapsuleHeight/2
	c.state.CapsuleHeight = common.MoveTowards(c.state.CapsuleHeight, targetHeight, c.cfg.HeightRate*dt)
	c.state.CapsuleCenterY = bottom + c.state.CapsuleHeight/2
	c.mover.SetCapsule(c.state.CapsuleHeight, c.state.CapsuleCenterY)
}

func (c *Controller) look(delta Vec2, stance Stance) {
	sens := c.cfg.Sensitivity
	c.state.Pitch = common.Clamp(c.state.Pitch-delta.Y*sens, c.cfg.minPitch(stance), MaxPitch)

	if delta.X != 0 {
		c.mover.SetYaw(wrapDegrees(c.mover.Yaw() + delta.X*sens))
	}
	c.cam.SetLocalRotation(c.state.Pitch, 0, 0)
}

func (c *Controller) animate(in Input, move Vec2, stance Stance, dt float64) {
	if in.Move.X != 0 || in.Move.Y != 0 {
		c.state.IdleElapsed = 0
		c.state.Idle = false
	} else {
		c.state.IdleElapsed += dt
		if c.state.IdleElapsed >= c.cfg.IdleThreshold {
			c.state.Idle = true
		}
	}

	target := 0.0
	if stance == Standing {
		mag := move.Magnitude()
		switch {
		case mag == 0:
		case in.Run:
			target = 1 + mag
		default:
			target = mag
		}
	}
	c.state.AnimSpeed = common.MoveTowards(c.state.AnimSpeed, target, c.cfg.AnimRate*dt)

	c.anim.SetFloat(ParamSpeed, c.state.AnimSpeed)
	c.anim.SetBool(ParamCrouching, stance == Crouching)
	c.anim.SetBool(ParamIdle, c.state.Idle)
}

// basis returns the body's forward and right vectors for a yaw in degrees
// about +Y, with yaw 0 facing +Z.
func basis(yawDeg float64) (forward, right Vec3) {
	sin, cos := math.Sincos(yawDeg * math.Pi / 180)
	forward = Vec3{X: sin, Z: cos}
	right = Vec3{X: cos, Z: -sin}
	return forward, right
}

func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

func moveTowardsOffset(current, target PivotOffset, maxDelta float64) PivotOffset {
	dy := target.Y - current.Y
	dz := target.Z - current.Z
	dist := math.Hypot(dy, dz)
	if dist <= maxDelta || dist == 0 {
		return target
	}
	if maxDelta <= 0 {
		return current
	}
	return PivotOffset{
		Y: current.Y + dy/dist*maxDelta,
		Z: current.Z + dz/dist*maxDelta,
	}
}
