package component

// Pickup is an item the player can look at and collect.
type Pickup struct {
	Name   string
	Radius float64
	Height float64
	Script string
	Active bool
}

var PickupComponent = NewComponent[Pickup]()

// Prompt is the on-screen interaction hint.
type Prompt struct {
	Text    string
	Visible bool
	// Target is the pickup currently under the crosshair, zero when none.
	Target uint64
}

var PromptComponent = NewComponent[Prompt]()

// Inventory counts what the player has picked up.
type Inventory struct {
	Items []string
}

var InventoryComponent = NewComponent[Inventory]()
