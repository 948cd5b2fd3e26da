package backend

import (
	"sort"
	"sync"
)

// EmitterFactory creates a new emitter instance.
type EmitterFactory func() Emitter

// registry holds registered emitters.
var (
	registryMu sync.RWMutex
	emitters   = make(map[string]EmitterFactory)
	// Priority order for emitter selection (first available wins).
	emitterPriority = []string{BackendWGSL}
)

// Register registers an emitter factory with the given name.
// This is typically called from init() functions in backend packages.
// If an emitter with the same name is already registered, it will be replaced.
func Register(name string, factory EmitterFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	emitters[name] = factory
}

// Available returns the registered emitter names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get returns an emitter instance by name.
// Returns nil if the emitter is not registered.
func Get(name string) Emitter {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, ok := emitters[name]
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available emitter based on priority.
// Returns nil if no emitters are registered.
func Default() Emitter {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range emitterPriority {
		if factory, ok := emitters[name]; ok {
			if e := factory(); e != nil {
				return e
			}
		}
	}

	// Fallback: first available in name order.
	names := make([]string, 0, len(emitters))
	for name := range emitters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if e := emitters[name](); e != nil {
			return e
		}
	}
	return nil
}
