package module

// Module is the capability contract every registered component satisfies.
// Both hooks default to no-ops when Base is embedded; concrete modules are
// free to expose any additional methods beyond the contract.
type Module interface {
	// OnStartup is called exactly once per load, after the instance has
	// been constructed and before it is published to other consumers.
	OnStartup()

	// OnShutdown is called exactly once per unload or teardown, before the
	// instance is unpublished.
	OnShutdown()
}

// Base provides default no-op implementations of the lifecycle hooks.
// Modules embed this to avoid implementing hooks they don't need.
type Base struct{}

func (Base) OnStartup()  {}
func (Base) OnShutdown() {}

// Factory constructs a new owned instance of a module. Factories take no
// arguments; modules pull their dependencies lazily through the manager
// instead of receiving them at construction time.
type Factory func() Module
