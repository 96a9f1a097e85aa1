package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Registration errors
const (
	// ErrCodeAlreadyRegistered indicates a factory is already on file for the module.
	ErrCodeAlreadyRegistered ErrorCode = "ALREADY_REGISTERED"
	// ErrCodeNotRegistered indicates no factory is on file for the module.
	ErrCodeNotRegistered ErrorCode = "NOT_REGISTERED"
	// ErrCodeNilFactory indicates a nil factory was supplied at registration.
	ErrCodeNilFactory ErrorCode = "NIL_FACTORY"
)

// Lifecycle errors
const (
	// ErrCodeAlreadyLoaded indicates the module already has a live instance.
	ErrCodeAlreadyLoaded ErrorCode = "ALREADY_LOADED"
	// ErrCodeNotLoaded indicates the module has no live instance.
	ErrCodeNotLoaded ErrorCode = "NOT_LOADED"
	// ErrCodeNilInstance indicates a factory produced no usable instance.
	ErrCodeNilInstance ErrorCode = "NIL_INSTANCE"
)

// Access errors
const (
	// ErrCodeTypeMismatch indicates a loaded instance does not have the requested concrete type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates the supplied configuration is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL"
)
