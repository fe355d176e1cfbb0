package prefabs

import (
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Fingerprint hashes prefab content so reloads of unchanged files can be
// skipped.
func Fingerprint(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// Fingerprints remembers the last content hash seen per prefab name.
type Fingerprints struct {
	mu   sync.Mutex
	seen map[string]uint64
}

func NewFingerprints() *Fingerprints {
	return &Fingerprints{seen: make(map[string]uint64)}
}

// Changed records data under name and reports whether it differs from the
// previous content. The first sighting of a name counts as a change.
func (f *Fingerprints) Changed(name string, data []byte) bool {
	sum := Fingerprint(data)
	f.mu.Lock()
	defer f.mu.Unlock()
	prev, ok := f.seen[name]
	f.seen[name] = sum
	return !ok || prev != sum
}
