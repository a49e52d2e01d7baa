package blade

import "errors"

var (
	// ErrInvalidConfiguration is returned when a compiler is built without a cache path.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrInvalidDirectiveName is returned when registering a directive whose
	// name is not made of word characters with an optional namespace.
	ErrInvalidDirectiveName = errors.New("invalid directive name")
	// ErrUnknownCondition is returned by Registry.Check for names never registered with If.
	ErrUnknownCondition = errors.New("unknown condition")
	// ErrViewNotFound is returned by the engine for view names it has not loaded.
	ErrViewNotFound = errors.New("view not found")
)
