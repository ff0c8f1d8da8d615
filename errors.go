package mobsquid

import "errors"

var (
	// ErrConfiguration reports an invalid or missing setting, such as an
	// empty application token or context key.
	ErrConfiguration = errors.New("mobsquid: invalid configuration")

	// ErrNotStarted is returned by operations that need a session when
	// Start has not been called.
	ErrNotStarted = errors.New("mobsquid: client not started, call Start() first")

	// ErrAlreadyStarted is returned when Start is called with a token
	// different from the active one.
	ErrAlreadyStarted = errors.New("mobsquid: already started with a different application token")

	// ErrInvalidEvent reports an empty or over-long event name.
	ErrInvalidEvent = errors.New("mobsquid: invalid event")

	// ErrInvalidValue reports a property or context value that is not a
	// string, bool or number.
	ErrInvalidValue = errors.New("mobsquid: invalid value")
)
