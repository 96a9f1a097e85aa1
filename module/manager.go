package module

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FelixKahle/leafs/errors"
	"github.com/FelixKahle/leafs/logger"
)

// loadedEntry is a live module instance together with its diagnostics.
type loadedEntry struct {
	instance Module
	id       uuid.UUID
	loadedAt time.Time
}

// Status describes one loaded module for diagnostics and the admin surface.
type Status struct {
	Name       string    `json:"name"`
	InstanceID string    `json:"instance_id"`
	LoadedAt   time.Time `json:"loaded_at"`
}

// Observer receives lifecycle notifications from a Manager. Callbacks run
// synchronously on the calling goroutine after the state change is visible;
// they must not block.
type Observer interface {
	ModuleLoaded(info Info)
	ModuleUnloaded(info Info)
}

// Manager is the module registry. It owns two independent tables: registered
// module types (identity to factory) and loaded instances (identity to live
// instance). Each table is guarded by its own reader/writer lock.
//
// Factories and lifecycle hooks always run with no manager lock held, so a
// startup hook may re-enter the manager to pull in its own dependencies.
// The price is that Load is not atomic end-to-end: two goroutines loading
// the same identity concurrently may both construct and start an instance.
// The insert re-checks under the write lock; the loser runs OnShutdown on
// its own instance and returns ErrCodeAlreadyLoaded, so no started instance
// is ever dropped without its shutdown hook.
type Manager struct {
	regMu      sync.RWMutex
	registered map[Info]Factory

	loadMu sync.RWMutex
	loaded map[Info]*loadedEntry

	log      *logger.Logger
	observer Observer
}

// Option configures a Manager during construction.
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(m *Manager) { m.log = l }
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// NewManager creates an empty module manager. Managers are plain objects;
// tests construct as many independent ones as they need.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		registered: make(map[Info]Factory),
		loaded:     make(map[Info]*loadedEntry),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.log == nil {
		m.log = logger.Get("registry")
	}
	return m
}

// SetObserver attaches a lifecycle observer after construction. Attach it
// before the manager is shared across goroutines: the field is read without
// synchronization on every load and unload.
func (m *Manager) SetObserver(o Observer) { m.observer = o }

// Register puts a module type on file. It is a pure insertion; no lifecycle
// hook runs. Registering the same identity twice fails with
// ErrCodeAlreadyRegistered and leaves the first registration in place.
// There is no deregistration path.
func (m *Manager) Register(info Info, factory Factory) error {
	if !info.Valid() {
		err := errors.InvalidIdentity()
		m.log.Error("register rejected: invalid identity")
		return err
	}
	if factory == nil {
		err := errors.NilFactory(info.Name())
		m.log.Error("register rejected: nil factory", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}

	m.regMu.Lock()
	if _, exists := m.registered[info]; exists {
		m.regMu.Unlock()
		err := errors.AlreadyRegistered(info.Name())
		m.log.Error("register rejected: already registered", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}
	m.registered[info] = factory
	m.regMu.Unlock()

	m.log.Info("module registered", logger.Fields(logger.FieldModule, info.Name()))
	return nil
}

// IsRegistered reports whether a factory is on file for the module.
func (m *Manager) IsRegistered(info Info) bool {
	m.regMu.RLock()
	_, ok := m.registered[info]
	m.regMu.RUnlock()
	return ok
}

// IsLoaded reports whether the module currently has a live instance.
// This is a point-in-time query; see Load for the non-atomicity it implies.
func (m *Manager) IsLoaded(info Info) bool {
	m.loadMu.RLock()
	_, ok := m.loaded[info]
	m.loadMu.RUnlock()
	return ok
}

// Count returns the number of currently loaded modules.
func (m *Manager) Count() int {
	m.loadMu.RLock()
	n := len(m.loaded)
	m.loadMu.RUnlock()
	return n
}

// RegisteredCount returns the number of registered module types.
func (m *Manager) RegisteredCount() int {
	m.regMu.RLock()
	n := len(m.registered)
	m.regMu.RUnlock()
	return n
}

// Load constructs and activates the module: factory, then OnStartup, then
// publication in the loaded table. Fails with ErrCodeAlreadyLoaded if a live
// instance exists and ErrCodeNotRegistered if no factory is on file.
func (m *Manager) Load(info Info) error {
	if m.IsLoaded(info) {
		err := errors.AlreadyLoaded(info.Name())
		m.log.Error("load rejected: already loaded", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}

	m.regMu.RLock()
	factory, ok := m.registered[info]
	m.regMu.RUnlock()
	if !ok {
		err := errors.NotRegistered(info.Name())
		m.log.Error("load rejected: not registered", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}

	// Construction and startup run without any manager lock held, so the
	// hook may call back into the manager (e.g. to require a dependency).
	instance := factory()
	if instance == nil {
		err := errors.NilInstance(info.Name())
		m.log.Error("load failed: nil instance from factory", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}
	instance.OnStartup()

	entry := &loadedEntry{
		instance: instance,
		id:       uuid.New(),
		loadedAt: time.Now(),
	}

	m.loadMu.Lock()
	if _, exists := m.loaded[info]; exists {
		// Lost a concurrent load of the same identity. Unwind the instance
		// we just started instead of overwriting the winner.
		m.loadMu.Unlock()
		instance.OnShutdown()
		err := errors.AlreadyLoaded(info.Name())
		m.log.Error("load lost race: concurrent load won", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}
	m.loaded[info] = entry
	m.loadMu.Unlock()

	m.log.Info("module loaded", logger.Fields(
		logger.FieldModule, info.Name(),
		logger.FieldInstanceID, entry.id.String(),
	))
	if m.observer != nil {
		m.observer.ModuleLoaded(info)
	}
	return nil
}

// Unload deactivates the module: removal from the loaded table, then
// OnShutdown on the removed instance. Claiming the entry under the write
// lock before running the hook keeps the hook outside all locks and makes
// shutdown exactly-once per instance even when unloads and teardown race.
// Fails with ErrCodeNotLoaded if no live instance exists. The registration
// stays on file, so the module can be loaded again later.
func (m *Manager) Unload(info Info) error {
	m.loadMu.Lock()
	entry, ok := m.loaded[info]
	if !ok {
		m.loadMu.Unlock()
		err := errors.NotLoaded(info.Name())
		m.log.Error("unload rejected: not loaded", logger.Fields(logger.FieldModule, info.Name()))
		return err
	}
	delete(m.loaded, info)
	m.loadMu.Unlock()

	// Same discipline as Load: the hook runs with no manager lock held.
	entry.instance.OnShutdown()

	m.log.Info("module unloaded", logger.Fields(
		logger.FieldModule, info.Name(),
		logger.FieldInstanceID, entry.id.String(),
	))
	if m.observer != nil {
		m.observer.ModuleUnloaded(info)
	}
	return nil
}

// Resolve returns the live instance for the module. If the module is not
// loaded it attempts recovery by loading it on the caller's behalf; a module
// that was registered but never explicitly loaded becomes available through
// this path alone. Fails with ErrCodeNotRegistered when recovery cannot
// construct an instance.
func (m *Manager) Resolve(info Info) (Module, error) {
	m.loadMu.RLock()
	entry, ok := m.loaded[info]
	m.loadMu.RUnlock()
	if ok {
		return entry.instance, nil
	}

	if err := m.Load(info); err != nil && !errors.IsCode(err, errors.ErrCodeAlreadyLoaded) {
		m.log.Error("resolve failed", logger.Fields(
			logger.FieldModule, info.Name(),
			logger.FieldError, err.Error(),
		))
		return nil, err
	}

	m.loadMu.RLock()
	entry, ok = m.loaded[info]
	m.loadMu.RUnlock()
	if !ok {
		// Loaded a moment ago but unloaded concurrently: currently unavailable.
		return nil, errors.NotLoaded(info.Name())
	}
	return entry.instance, nil
}

// TearDown claims every loaded entry under the write lock, then invokes
// OnShutdown on each outside the locks. An entry a concurrent Unload claimed
// first is not in the claimed set, so every instance gets exactly one
// shutdown hook. Iteration order is the table's native order; modules must
// not assume shutdown order relative to other modules. Registrations
// survive. TearDown is safe to call more than once.
func (m *Manager) TearDown() {
	m.loadMu.Lock()
	snapshot := m.loaded
	m.loaded = make(map[Info]*loadedEntry)
	m.loadMu.Unlock()

	for _, entry := range snapshot {
		entry.instance.OnShutdown()
	}

	for info := range snapshot {
		if m.observer != nil {
			m.observer.ModuleUnloaded(info)
		}
	}
	m.log.Info("registry torn down", logger.Fields(logger.FieldCount, len(snapshot)))
}

// Snapshot returns the status of every loaded module, sorted by name.
func (m *Manager) Snapshot() []Status {
	m.loadMu.RLock()
	statuses := make([]Status, 0, len(m.loaded))
	for info, entry := range m.loaded {
		statuses = append(statuses, Status{
			Name:       info.Name(),
			InstanceID: entry.id.String(),
			LoadedAt:   entry.loadedAt,
		})
	}
	m.loadMu.RUnlock()

	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

// RegisteredNames returns the names of all registered module types, sorted.
func (m *Manager) RegisteredNames() []string {
	m.regMu.RLock()
	names := make([]string, 0, len(m.registered))
	for info := range m.registered {
		names = append(names, info.Name())
	}
	m.regMu.RUnlock()

	sort.Strings(names)
	return names
}

// InfoByName looks up a registered identity by its diagnostic name. Intended
// for surfaces that address modules by string, like the admin API.
func (m *Manager) InfoByName(name string) (Info, bool) {
	m.regMu.RLock()
	defer m.regMu.RUnlock()
	for info := range m.registered {
		if info.Name() == name {
			return info, true
		}
	}
	return Info{}, false
}
