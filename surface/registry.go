package surface

import (
	"sync"

	"github.com/gogpu/vg"
)

// Factory creates a new backend of a registered surface type.
type Factory func(content vg.Content, width, height int) (Backend, error)

// Well-known backend names.
const (
	BackendImage = "image"
	BackendGPU   = "gpu"
)

// registry holds registered surface backends.
var (
	registryMu sync.RWMutex
	factories  = make(map[string]Factory)
	// Priority order for similar-surface fallback (first available wins).
	// The image backend is the universal software fallback.
	factoryPriority = []string{BackendGPU, BackendImage}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	factories[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(factories, name)
}

// Available returns the registered backend names.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	return names
}

// IsRegistered checks whether a backend with the given name exists.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// Lookup returns a registered factory by name, or nil.
func Lookup(name string) Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return factories[name]
}

// defaultFactory returns the best available factory based on priority.
func defaultFactory() Factory {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, name := range factoryPriority {
		if f, ok := factories[name]; ok {
			return f
		}
	}
	return nil
}

// New creates a surface of a registered backend type. A surface is
// always returned; if the backend name is unknown or construction
// fails, the surface carries the error as its sticky status.
func New(name string, content vg.Content, width, height int) *Surface {
	f := Lookup(name)
	if f == nil {
		return NewInError(vg.ErrUnsupported)
	}
	if width < 0 || height < 0 {
		return NewInError(vg.ErrInvalidSize)
	}
	b, err := f(content, width, height)
	if err != nil {
		return NewInError(err)
	}
	return NewFromBackend(b)
}
