package component

import "image/color"

// Light is a point light's brightness.
type Light struct {
	Intensity float64
	Range     float64
	Color     color.RGBA
}

var LightComponent = NewComponent[Light]()

// Emissive is a glowing material. Color is Tint scaled by Value.
type Emissive struct {
	Tint  [3]float64
	Value float64
}

// Color returns the HDR emissive colour tint * value.
func (e Emissive) Color() [3]float64 {
	return [3]float64{e.Tint[0] * e.Value, e.Tint[1] * e.Value, e.Tint[2] * e.Value}
}

var EmissiveComponent = NewComponent[Emissive]()

type FlickerPhase int

const (
	FlickerHold FlickerPhase = iota
	FlickerBlip
)

// Flicker drives a Light and an optional Emissive on a randomised schedule.
type Flicker struct {
	MinIntensity float64
	MaxIntensity float64
	MinDelay     float64
	MaxDelay     float64
	MinEmission  float64
	MaxEmission  float64
	Smooth       bool
	SmoothSpeed  float64
	BlipChance   float64

	Phase           FlickerPhase
	Timer           float64
	TargetIntensity float64
	TargetEmission  float64
	Initialized     bool
}

var FlickerComponent = NewComponent[Flicker]()
