package component

// CharacterBody is the capsule collider of a walking character, in the
// owning entity's local space. The capsule's bottom sits at
// CenterY - Height/2.
type CharacterBody struct {
	Radius   float64
	Height   float64
	CenterY  float64
	Grounded bool
}

var CharacterBodyComponent = NewComponent[CharacterBody]()
