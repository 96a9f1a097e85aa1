package module

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/FelixKahle/leafs/errors"
)

// hookLog records lifecycle hook invocations across modules.
type hookLog struct {
	mu     sync.Mutex
	events []string
}

func (l *hookLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *hookLog) count(e string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, ev := range l.events {
		if ev == e {
			n++
		}
	}
	return n
}

// alpha is a plain module with tracked hooks.
type alpha struct {
	Base
	log *hookLog
}

func (a *alpha) OnStartup()  { a.log.add("alpha:startup") }
func (a *alpha) OnShutdown() { a.log.add("alpha:shutdown") }
func (a *alpha) Greet() string {
	return "hello from alpha"
}

// beta pulls alpha in from its own startup hook.
type beta struct {
	Base
	mgr      *Manager
	log      *hookLog
	greeting string
}

func (b *beta) OnStartup() {
	b.log.add("beta:startup")
	if err := Require[*alpha](b.mgr); err != nil {
		b.log.add("beta:require-failed")
		return
	}
	a, err := Get[*alpha](b.mgr)
	if err != nil {
		b.log.add("beta:get-failed")
		return
	}
	b.greeting = a.Greet()
}

func (b *beta) OnShutdown() { b.log.add("beta:shutdown") }

// gamma embeds Base without overriding any hook.
type gamma struct {
	Base
}

func newTestManager() (*Manager, *hookLog) {
	return NewManager(), &hookLog{}
}

func TestRegister(t *testing.T) {
	m, log := newTestManager()

	if err := RegisterType(m, func() *alpha { return &alpha{log: log} }); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if !IsRegisteredType[*alpha](m) {
		t.Error("expected alpha to be registered")
	}
	if IsLoadedType[*alpha](m) {
		t.Error("registration must not load the module")
	}
	if log.count("alpha:startup") != 0 {
		t.Error("registration must not run lifecycle hooks")
	}
}

func TestRegisterInvalidIdentity(t *testing.T) {
	m, _ := newTestManager()

	err := m.Register(Info{}, func() Module { return &gamma{} })
	if err == nil {
		t.Fatal("expected error for zero identity")
	}
	if !errors.IsCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected code %s, got %v", errors.ErrCodeInvalidInput, err)
	}
	if m.RegisteredCount() != 0 {
		t.Error("zero identity must not be registered")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	err := RegisterType(m, func() *alpha { return &alpha{log: log} })
	if !errors.IsCode(err, errors.ErrCodeAlreadyRegistered) {
		t.Fatalf("expected ALREADY_REGISTERED, got %v", err)
	}
	if !IsRegisteredType[*alpha](m) {
		t.Error("first registration must survive the rejected duplicate")
	}
}

func TestRegisterNilFactory(t *testing.T) {
	m, _ := newTestManager()

	err := m.Register(InfoOf[*gamma](), nil)
	if !errors.IsCode(err, errors.ErrCodeNilFactory) {
		t.Fatalf("expected NIL_FACTORY, got %v", err)
	}
	if IsRegisteredType[*gamma](m) {
		t.Error("nil factory must not be registered")
	}
}

func TestLoad(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	if err := LoadType[*alpha](m); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !IsLoadedType[*alpha](m) {
		t.Error("expected alpha to be loaded")
	}
	if got := log.count("alpha:startup"); got != 1 {
		t.Errorf("expected exactly 1 startup hook invocation, got %d", got)
	}
	if m.Count() != 1 {
		t.Errorf("expected Count() == 1, got %d", m.Count())
	}
}

func TestLoadNotRegistered(t *testing.T) {
	m, _ := newTestManager()

	err := LoadType[*gamma](m)
	if !errors.IsCode(err, errors.ErrCodeNotRegistered) {
		t.Fatalf("expected NOT_REGISTERED, got %v", err)
	}
	if IsLoadedType[*gamma](m) {
		t.Error("failed load must not mark the module loaded")
	}
	if m.Count() != 0 {
		t.Errorf("expected loaded table unchanged, got Count() == %d", m.Count())
	}
}

func TestLoadTwice(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	if err := LoadType[*alpha](m); err != nil {
		t.Fatalf("first Load failed: %v", err)
	}
	err := LoadType[*alpha](m)
	if !errors.IsCode(err, errors.ErrCodeAlreadyLoaded) {
		t.Fatalf("expected ALREADY_LOADED, got %v", err)
	}
	if got := log.count("alpha:startup"); got != 1 {
		t.Errorf("rejected load must not run startup again, got %d invocations", got)
	}
}

func TestLoadNilInstance(t *testing.T) {
	m, _ := newTestManager()
	m.Register(InfoOf[*gamma](), func() Module { return nil })

	err := LoadType[*gamma](m)
	if !errors.IsCode(err, errors.ErrCodeNilInstance) {
		t.Fatalf("expected NIL_INSTANCE, got %v", err)
	}
	if IsLoadedType[*gamma](m) {
		t.Error("nil instance must not be published")
	}
}

func TestUnload(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	LoadType[*alpha](m)

	if err := UnloadType[*alpha](m); err != nil {
		t.Fatalf("Unload failed: %v", err)
	}
	if IsLoadedType[*alpha](m) {
		t.Error("expected alpha to be unloaded")
	}
	if !IsRegisteredType[*alpha](m) {
		t.Error("unload must not deregister the module")
	}
	if got := log.count("alpha:shutdown"); got != 1 {
		t.Errorf("expected exactly 1 shutdown hook invocation, got %d", got)
	}
}

func TestUnloadNotLoaded(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	err := UnloadType[*alpha](m)
	if !errors.IsCode(err, errors.ErrCodeNotLoaded) {
		t.Fatalf("expected NOT_LOADED, got %v", err)
	}
	if log.count("alpha:shutdown") != 0 {
		t.Error("rejected unload must not run any hook")
	}
}

func TestUnloadTwice(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	LoadType[*alpha](m)

	if err := UnloadType[*alpha](m); err != nil {
		t.Fatalf("first Unload failed: %v", err)
	}
	err := UnloadType[*alpha](m)
	if !errors.IsCode(err, errors.ErrCodeNotLoaded) {
		t.Fatalf("expected NOT_LOADED, got %v", err)
	}
	if got := log.count("alpha:shutdown"); got != 1 {
		t.Errorf("expected exactly 1 shutdown, got %d", got)
	}
}

func TestReloadAfterUnload(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	LoadType[*alpha](m)
	UnloadType[*alpha](m)
	if err := LoadType[*alpha](m); err != nil {
		t.Fatalf("reload after unload failed: %v", err)
	}
	if got := log.count("alpha:startup"); got != 2 {
		t.Errorf("expected 2 startups across 2 loads, got %d", got)
	}
}

func TestResolveRecovery(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	// Not loaded yet: Resolve must load on the caller's behalf.
	instance, err := m.Resolve(InfoOf[*alpha]())
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if instance == nil {
		t.Fatal("expected live instance from recovery")
	}
	if !IsLoadedType[*alpha](m) {
		t.Error("recovery must leave the module loaded")
	}
	if got := log.count("alpha:startup"); got != 1 {
		t.Errorf("expected 1 startup via recovery, got %d", got)
	}

	// Second resolve returns the same live instance without another load.
	again, err := m.Resolve(InfoOf[*alpha]())
	if err != nil {
		t.Fatalf("second Resolve failed: %v", err)
	}
	if again != instance {
		t.Error("expected the same instance on repeated resolve")
	}
	if got := log.count("alpha:startup"); got != 1 {
		t.Errorf("repeated resolve must not load again, got %d startups", got)
	}
}

func TestResolveNotRegistered(t *testing.T) {
	m, _ := newTestManager()

	_, err := m.Resolve(InfoOf[*gamma]())
	if !errors.IsCode(err, errors.ErrCodeNotRegistered) {
		t.Fatalf("expected NOT_REGISTERED, got %v", err)
	}
}

func TestDependentStartupPullsDependency(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	RegisterType(m, func() *beta { return &beta{mgr: m, log: log} })

	// Loading only beta must pull alpha in through recovery.
	if err := LoadType[*beta](m); err != nil {
		t.Fatalf("Load beta failed: %v", err)
	}

	if m.Count() != 2 {
		t.Errorf("expected both modules loaded, Count() == %d", m.Count())
	}
	if !IsLoadedType[*alpha](m) || !IsLoadedType[*beta](m) {
		t.Error("expected alpha and beta loaded")
	}

	b, err := Get[*beta](m)
	if err != nil {
		t.Fatalf("Get beta failed: %v", err)
	}
	if b.greeting != "hello from alpha" {
		t.Errorf("beta's startup hook did not observe a valid alpha, greeting %q", b.greeting)
	}
}

func TestTearDown(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	RegisterType(m, func() *beta { return &beta{mgr: m, log: log} })
	LoadType[*alpha](m)
	LoadType[*beta](m)

	m.TearDown()

	if m.Count() != 0 {
		t.Errorf("expected Count() == 0 after teardown, got %d", m.Count())
	}
	if got := log.count("alpha:shutdown"); got != 1 {
		t.Errorf("expected alpha shutdown exactly once, got %d", got)
	}
	if got := log.count("beta:shutdown"); got != 1 {
		t.Errorf("expected beta shutdown exactly once, got %d", got)
	}
	if !IsRegisteredType[*alpha](m) {
		t.Error("teardown must not deregister modules")
	}
}

func TestTearDownIdempotent(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	LoadType[*alpha](m)

	m.TearDown()
	m.TearDown()

	if got := log.count("alpha:shutdown"); got != 1 {
		t.Errorf("second teardown must not re-run hooks, got %d shutdowns", got)
	}
}

func TestSnapshot(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	RegisterType(m, func() *gamma { return &gamma{} })
	LoadType[*alpha](m)
	LoadType[*gamma](m)

	statuses := m.Snapshot()
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}
	// Sorted by name.
	if statuses[0].Name > statuses[1].Name {
		t.Errorf("expected snapshot sorted by name, got %q before %q", statuses[0].Name, statuses[1].Name)
	}
	for _, s := range statuses {
		if s.InstanceID == "" {
			t.Errorf("expected instance id for %s", s.Name)
		}
		if s.LoadedAt.IsZero() {
			t.Errorf("expected load time for %s", s.Name)
		}
	}
}

func TestInfoByName(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	info, ok := m.InfoByName(InfoOf[*alpha]().Name())
	if !ok {
		t.Fatal("expected to find alpha by name")
	}
	if info != InfoOf[*alpha]() {
		t.Error("expected identity equality for same module type")
	}

	if _, ok := m.InfoByName("no.SuchModule"); ok {
		t.Error("expected lookup miss for unknown name")
	}
}

func TestConcurrentLoadSingleEntry(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Either the load wins or it reports already-loaded; both are fine.
			LoadType[*alpha](m)
		}()
	}
	wg.Wait()

	if m.Count() != 1 {
		t.Fatalf("expected exactly one loaded entry, got %d", m.Count())
	}
	// Every started instance that lost the race must have been shut down:
	// startups == shutdowns + 1 (the surviving instance).
	starts := log.count("alpha:startup")
	stops := log.count("alpha:shutdown")
	if starts != stops+1 {
		t.Errorf("started %d instances but shut down %d; one live instance expected", starts, stops)
	}
}

func TestConcurrentUnloadSingleShutdown(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	if err := LoadType[*alpha](m); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	var wg sync.WaitGroup
	var wins atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := UnloadType[*alpha](m); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("expected exactly one unload to win, got %d", wins.Load())
	}
	// The instance is claimed under the write lock before its hook runs,
	// so the losing unloads never touch it.
	if stops := log.count("alpha:shutdown"); stops != 1 {
		t.Errorf("expected exactly one shutdown hook, got %d", stops)
	}
	if m.Count() != 0 {
		t.Errorf("expected empty loaded table, got %d", m.Count())
	}
}

func TestTearDownRacingUnloadShutsDownOnce(t *testing.T) {
	m, log := newTestManager()
	RegisterType(m, func() *alpha { return &alpha{log: log} })
	if err := LoadType[*alpha](m); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		UnloadType[*alpha](m)
	}()
	go func() {
		defer wg.Done()
		m.TearDown()
	}()
	wg.Wait()

	if stops := log.count("alpha:shutdown"); stops != 1 {
		t.Errorf("expected exactly one shutdown hook, got %d", stops)
	}
	if m.Count() != 0 {
		t.Errorf("expected empty loaded table, got %d", m.Count())
	}
}

type loadObserver struct {
	mu       sync.Mutex
	loaded   []string
	unloaded []string
}

func (o *loadObserver) ModuleLoaded(info Info) {
	o.mu.Lock()
	o.loaded = append(o.loaded, info.Name())
	o.mu.Unlock()
}

func (o *loadObserver) ModuleUnloaded(info Info) {
	o.mu.Lock()
	o.unloaded = append(o.unloaded, info.Name())
	o.mu.Unlock()
}

func TestObserverNotifications(t *testing.T) {
	obs := &loadObserver{}
	log := &hookLog{}
	m := NewManager(WithObserver(obs))
	RegisterType(m, func() *alpha { return &alpha{log: log} })

	LoadType[*alpha](m)
	UnloadType[*alpha](m)

	if len(obs.loaded) != 1 || len(obs.unloaded) != 1 {
		t.Fatalf("expected 1 load and 1 unload notification, got %d/%d", len(obs.loaded), len(obs.unloaded))
	}
	if obs.loaded[0] != InfoOf[*alpha]().Name() {
		t.Errorf("unexpected module name in notification: %s", obs.loaded[0])
	}
}
