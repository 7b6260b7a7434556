package importer

import (
	"fmt"
	"sort"
	"sync"
)

// Profile is one import target: a key, a data-sheet title, the column
// table, and optional note lines printed under the template header.
type Profile struct {
	Key     string
	Name    string
	Title   string
	Columns []ColumnSpec
	Notes   []string
}

var (
	registry   = make(map[string]*Profile)
	registryMu sync.RWMutex
)

// Register adds a profile to the registry.
// Panics if a profile with the same key is already registered.
func Register(p *Profile) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[p.Key]; exists {
		panic(fmt.Sprintf("import profile already registered: %s", p.Key))
	}
	registry[p.Key] = p
}

// Get returns a profile by key.
// Returns false if not found.
func Get(key string) (*Profile, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	p, ok := registry[key]
	return p, ok
}

// All returns every registered profile, sorted by key for consistent
// ordering.
func All() []*Profile {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]*Profile, 0, len(registry))
	for _, p := range registry {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}
