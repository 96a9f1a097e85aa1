package module

import (
	"errors"
	"sync"
)

// provider is a recorded (identity, factory) pair awaiting registration.
type provider struct {
	info    Info
	factory Factory
}

var (
	providersMu sync.Mutex
	providers   []provider
)

// Provide records module type M for registration with managers built later.
// Call it from a package init function; the recorded order (Go package
// initialization order) is the order ApplyProviders registers in. Provide
// has no dependency on any manager, any other provider, or load state, so
// declaration order across packages never matters for correctness.
func Provide[M Module](factory func() M) {
	info := InfoOf[M]()
	var f Factory
	if factory != nil {
		f = func() Module { return factory() }
	}
	providersMu.Lock()
	providers = append(providers, provider{info: info, factory: f})
	providersMu.Unlock()
}

// ApplyProviders registers every recorded provider with the manager, in the
// order they were provided. Individual failures (for example a duplicate
// from calling ApplyProviders twice on the same manager) are logged by the
// manager and collected; the remaining providers still register.
func ApplyProviders(m *Manager) error {
	providersMu.Lock()
	snapshot := make([]provider, len(providers))
	copy(snapshot, providers)
	providersMu.Unlock()

	var errs []error
	for _, p := range snapshot {
		if err := m.Register(p.info, p.factory); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var (
	defaultOnce    sync.Once
	defaultManager *Manager
)

// Default returns the process-wide manager, creating it on first use and
// registering every provided module type. Programs that want isolated
// registries (tests above all) use NewManager and ApplyProviders instead.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager()
		// Errors are already logged per entry; a broken provider must not
		// take the default registry down with it.
		_ = ApplyProviders(defaultManager)
	})
	return defaultManager
}
