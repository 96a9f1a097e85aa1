// Package module implements the leafs registry: a process-wide table of
// named, lifecycle-managed components for monolithic programs that want
// plugin-like decoupling without dynamic loading.
//
// Every module is compiled into the binary. "Loading" means constructing an
// instance of an already-registered type, running its startup hook, and
// publishing it for other modules to resolve; "unloading" runs the shutdown
// hook and unpublishes it. Registration and loading are separate phases: a
// registered module costs nothing until someone loads it or resolves it.
//
// Module packages declare themselves from init:
//
//	func init() {
//		module.Provide(func() *Greeter { return &Greeter{} })
//	}
//
// and dependents reach them lazily through a typed accessor:
//
//	greeter, err := module.Get[*Greeter](mgr)
//
// Get resolves through the recovery path: a registered-but-unloaded
// dependency is loaded on first access, so callers never have to sequence
// explicit loads by hand.
package module
