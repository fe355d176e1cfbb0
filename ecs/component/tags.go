package component

type PlayerTag struct{}

var PlayerTagComponent = NewComponent[PlayerTag]()

type PickupTag struct{}

var PickupTagComponent = NewComponent[PickupTag]()
