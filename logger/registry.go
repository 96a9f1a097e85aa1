package logger

import "sync"

// Named loggers let long-lived components (the module registry above all)
// share one configured logger per component name instead of rebuilding the
// same scoped logger at every call site.
var (
	namedMu sync.RWMutex
	named   = make(map[string]*Logger)
)

// Register stores l under the component name, replacing any previous entry.
func Register(name string, l *Logger) {
	namedMu.Lock()
	named[name] = l
	namedMu.Unlock()
}

// Get returns the logger registered under name. An unregistered name falls
// back to the global logger tagged with name as its component, so a manager
// can ask for its logger before anything is wired explicitly.
func Get(name string) *Logger {
	namedMu.RLock()
	l, ok := named[name]
	namedMu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}
