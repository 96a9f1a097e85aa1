package module

import (
	"reflect"

	"github.com/FelixKahle/leafs/errors"
)

// RegisterType puts module type M on file with the given constructor.
func RegisterType[M Module](m *Manager, factory func() M) error {
	info := InfoOf[M]()
	if factory == nil {
		return m.Register(info, nil)
	}
	return m.Register(info, func() Module { return factory() })
}

// LoadType constructs and activates module type M.
func LoadType[M Module](m *Manager) error {
	return m.Load(InfoOf[M]())
}

// UnloadType deactivates module type M.
func UnloadType[M Module](m *Manager) error {
	return m.Unload(InfoOf[M]())
}

// IsLoadedType reports whether module type M has a live instance.
func IsLoadedType[M Module](m *Manager) bool {
	return m.IsLoaded(InfoOf[M]())
}

// IsRegisteredType reports whether module type M is on file.
func IsRegisteredType[M Module](m *Manager) bool {
	return m.IsRegistered(InfoOf[M]())
}

// Get resolves module type M through the recovery path and narrows the
// result to the concrete type. A loaded instance whose concrete type is not
// M fails with ErrCodeTypeMismatch; there is no unchecked access.
func Get[M Module](m *Manager) (M, error) {
	var zero M
	info := InfoOf[M]()

	instance, err := m.Resolve(info)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(M)
	if !ok {
		return zero, errors.TypeMismatch(
			info.Name(),
			reflect.TypeOf((*M)(nil)).Elem().String(),
			reflect.TypeOf(instance).String(),
		)
	}
	return typed, nil
}

// Require ensures module type M is loaded, loading it on demand. A module
// that is already loaded satisfies the requirement. Use this when intent
// matters more than the handle.
func Require[M Module](m *Manager) error {
	err := LoadType[M](m)
	if err != nil && errors.IsCode(err, errors.ErrCodeAlreadyLoaded) {
		return nil
	}
	return err
}

// Handle is a non-owning accessor for module type M on a fixed manager.
// It stores only the manager and the identity, never the instance, so every
// Get revalidates against the registry: a dependency unloaded since the last
// call surfaces as an error, not as a stale reference. Dependents hold a
// Handle instead of caching instances across lifecycle boundaries.
type Handle[M Module] struct {
	m    *Manager
	info Info
}

// NewHandle creates an accessor for module type M on the given manager.
func NewHandle[M Module](m *Manager) Handle[M] {
	return Handle[M]{m: m, info: InfoOf[M]()}
}

// Get returns the live instance, loading the module on demand if it is
// registered but not yet loaded.
func (h Handle[M]) Get() (M, error) {
	return Get[M](h.m)
}

// Info returns the identity this handle resolves.
func (h Handle[M]) Info() Info { return h.info }
