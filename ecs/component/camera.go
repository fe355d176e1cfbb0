package component

// CameraRig is the first-person camera pivot parented to the player body.
type CameraRig struct {
	OffsetY float64
	OffsetZ float64
	Pitch   float64
	Yaw     float64
	Roll    float64
	FOV     float64
}

var CameraRigComponent = NewComponent[CameraRig]()
