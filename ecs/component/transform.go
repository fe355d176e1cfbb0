package component

// Transform places an entity in the scene. Y is up; Yaw is degrees about +Y
// with 0 facing +Z.
type Transform struct {
	X   float64
	Y   float64
	Z   float64
	Yaw float64
}

var TransformComponent = NewComponent[Transform]()
