package component

// VHSOverlay holds the scrolling scanline phases fed to the overlay shader.
type VHSOverlay struct {
	YScanline    float64
	XScanline    float64
	YRate        float64
	XRate        float64
	RerollChance float64
	Enabled      bool
}

var VHSOverlayComponent = NewComponent[VHSOverlay]()
