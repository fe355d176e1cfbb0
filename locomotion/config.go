package locomotion

import (
	"errors"
	"fmt"
	"math"
)

const (
	MaxPitch = 90.0

	DefaultGroundBias    = -1.0
	DefaultAnimRate      = 10.0
	DefaultIdleThreshold = 20.0
)

var ErrInvalidConfig = errors.New("locomotion: invalid config")

// Config is fixed for a Controller until Reconfigure replaces it.
//
// StandCameraOffset, CrouchCameraOffset, StandHeight and CrouchHeight are
// optional: a nil offset or a height <= 0 is resolved from the collaborators
// when the controller is built.
type Config struct {
	WalkSpeed   float64
	RunSpeed    float64
	CrouchSpeed float64
	Sensitivity float64
	Gravity     float64

	StandMinPitch  float64
	CrouchMinPitch float64

	StandCameraOffset  *PivotOffset
	CrouchCameraOffset *PivotOffset
	StandHeight        float64
	CrouchHeight       float64

	CameraRate float64
	HeightRate float64
	AnimRate   float64

	IdleThreshold float64
	GroundBias    float64
}

func DefaultConfig() Config {
	return Config{
		WalkSpeed:          3,
		RunSpeed:           6,
		CrouchSpeed:        1.5,
		Sensitivity:        2,
		Gravity:            -19.62,
		StandMinPitch:      -90,
		CrouchMinPitch:     -60,
		CrouchCameraOffset: &PivotOffset{Y: 1.0, Z: 0.15},
		StandHeight:        2.0,
		CrouchHeight:       1.4,
		CameraRate:         6,
		HeightRate:         12,
		AnimRate:           DefaultAnimRate,
		IdleThreshold:      DefaultIdleThreshold,
		GroundBias:         DefaultGroundBias,
	}
}

func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"walk_speed":   c.WalkSpeed,
		"run_speed":    c.RunSpeed,
		"crouch_speed": c.CrouchSpeed,
		"camera_rate":  c.CameraRate,
		"height_rate":  c.HeightRate,
		"anim_rate":    c.AnimRate,
	} {
		if v < 0 || math.IsNaN(v) {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, name, v)
		}
	}
	if c.Gravity > 0 {
		return fmt.Errorf("%w: gravity must be <= 0, got %v", ErrInvalidConfig, c.Gravity)
	}
	if c.StandMinPitch > MaxPitch || c.CrouchMinPitch > MaxPitch {
		return fmt.Errorf("%w: min pitch above %v", ErrInvalidConfig, MaxPitch)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.AnimRate == 0 {
		c.AnimRate = DefaultAnimRate
	}
	if c.IdleThreshold <= 0 {
		c.IdleThreshold = DefaultIdleThreshold
	}
	if c.GroundBias == 0 {
		c.GroundBias = DefaultGroundBias
	}
	return c
}

func (c Config) minPitch(s Stance) float64 {
	if s == Crouching {
		return c.CrouchMinPitch
	}
	return c.StandMinPitch
}
