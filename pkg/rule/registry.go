package rule

import (
	"fmt"
	"sync"
)

// Constructor builds a Rule instance from its declared Spec.
type Constructor func(spec Spec) (Rule, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Constructor)
)

// Register adds a named rule constructor to the global registry. Called
// from each reference rule's package init() (holdequal, holdtopn,
// macdcrossover) and by any caller extending the catalogue — spec.md
// §4.5's "the catalogue is open-ended" makes this the extension point.
func Register(name string, ctor Constructor) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = ctor
}

// Build constructs the named rule from spec, or returns an error if name
// is unregistered.
func Build(spec Spec) (Rule, error) {
	registryMu.RLock()
	ctor, ok := registry[spec.Name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("rule: unknown rule %q", spec.Name)
	}
	return ctor(spec)
}

// Names returns every registered rule name, for CLI/introspection use.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}
