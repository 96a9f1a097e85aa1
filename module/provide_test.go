package module

import (
	"testing"

	"github.com/FelixKahle/leafs/errors"
)

type providedA struct {
	Base
	started bool
}

func (p *providedA) OnStartup() { p.started = true }

type providedB struct {
	Base
}

func TestProvideAndApply(t *testing.T) {
	Provide(func() *providedA { return &providedA{} })
	Provide(func() *providedB { return &providedB{} })

	m := NewManager()
	if err := ApplyProviders(m); err != nil {
		t.Fatalf("ApplyProviders failed: %v", err)
	}

	if !IsRegisteredType[*providedA](m) || !IsRegisteredType[*providedB](m) {
		t.Error("expected provided types to be registered")
	}
	if m.Count() != 0 {
		t.Error("providers must register, never load")
	}

	// Providers register with any number of managers independently.
	m2 := NewManager()
	if err := ApplyProviders(m2); err != nil {
		t.Fatalf("ApplyProviders on a second manager failed: %v", err)
	}
	if !IsRegisteredType[*providedA](m2) {
		t.Error("expected provided types on the second manager")
	}

	// Applying twice to the same manager reports the duplicates but is safe.
	err := ApplyProviders(m)
	if err == nil {
		t.Fatal("expected duplicate registration errors on second apply")
	}
	if !errors.IsAppError(err) {
		t.Errorf("expected structured registry errors, got %v", err)
	}
	if m.RegisteredCount() < 2 {
		t.Error("existing registrations must survive a second apply")
	}
}

func TestDefaultManagerRegistersProviders(t *testing.T) {
	Provide(func() *providedA { return &providedA{} })

	d := Default()
	if d == nil {
		t.Fatal("expected default manager")
	}
	if d != Default() {
		t.Error("Default must return the same manager on every call")
	}
	if !IsRegisteredType[*providedA](d) {
		t.Error("default manager must register provided types")
	}
}
