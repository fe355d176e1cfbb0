package component

// Input stores per-frame input state for an entity.
type Input struct {
	MoveX           float64
	MoveY           float64
	LookX           float64
	LookY           float64
	Run             bool
	Crouch          bool
	InteractPressed bool
}

var InputComponent = NewComponent[Input]()
