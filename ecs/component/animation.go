package component

// Animator collects named animation parameters for whatever plays the rig.
type Animator struct {
	Floats map[string]float64
	Bools  map[string]bool
}

func NewAnimator() Animator {
	return Animator{
		Floats: map[string]float64{},
		Bools:  map[string]bool{},
	}
}

var AnimatorComponent = NewComponent[Animator]()
