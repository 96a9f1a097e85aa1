package module

import (
	"path"
	"reflect"
	"sync"
)

// Info identifies a module type. Two Info values compare equal iff they
// denote the same concrete Go type, so Info is usable directly as a map key.
// The zero Info identifies nothing.
type Info struct {
	key  reflect.Type
	name string
}

// Name returns the human-readable module name used in diagnostics.
func (i Info) Name() string { return i.name }

// Valid reports whether the Info identifies a module type.
func (i Info) Valid() bool { return i.key != nil }

func (i Info) String() string { return i.name }

// infos interns one Info per concrete type for the life of the process.
// Interning keeps identity construction idempotent under concurrency.
var infos sync.Map // reflect.Type -> Info

// InfoOf returns the identity of module type M, creating it on first use.
func InfoOf[M Module]() Info {
	return infoForType(reflect.TypeOf((*M)(nil)).Elem())
}

// InfoFor returns the identity of a live module instance.
func InfoFor(m Module) Info {
	return infoForType(reflect.TypeOf(m))
}

func infoForType(t reflect.Type) Info {
	if v, ok := infos.Load(t); ok {
		return v.(Info)
	}
	v, _ := infos.LoadOrStore(t, Info{key: t, name: typeName(t)})
	return v.(Info)
}

// typeName derives a pkg-qualified diagnostic name, e.g. "greeter.Module".
func typeName(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.PkgPath() != "" {
		return path.Base(t.PkgPath()) + "." + t.Name()
	}
	return t.String()
}
