package component

import "github.com/milk9111/liminal/locomotion"

// Locomotion carries the tuning for a first-person controller. Revision is
// bumped when the tuning is reloaded so the controller gets rebuilt.
type Locomotion struct {
	Config   locomotion.Config
	Revision int
	Disabled bool
	Err      string

	// Mirrors of the controller state, refreshed every frame for HUD and debug.
	Stance           locomotion.Stance
	VerticalVelocity float64
	IdleElapsed      float64
}

var LocomotionComponent = NewComponent[Locomotion]()
