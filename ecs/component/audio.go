package component

import "github.com/hajimehoshi/ebiten/v2/audio"

// Audio holds an entity's one-shot sounds by name. Players may be nil when no
// audio context exists; requests on those are dropped.
type Audio struct {
	Names   []string
	Players []*audio.Player
	Volume  []float64
	Play    []bool
}

// Request marks the named sound to play this frame.
func (a *Audio) Request(name string) bool {
	for i, n := range a.Names {
		if n == name && i < len(a.Play) {
			a.Play[i] = true
			return true
		}
	}
	return false
}

// Footsteps paces step sounds by distance walked. Interval is the time
// between steps at unit speed.
type Footsteps struct {
	Sound    string
	Interval float64
	Timer    float64
}

var (
	AudioComponent     = NewComponent[Audio]()
	FootstepsComponent = NewComponent[Footsteps]()
)
