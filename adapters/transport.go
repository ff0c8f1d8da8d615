package adapters

import (
	"context"
	"errors"
	"fmt"
)

// Transport delivers batches of events to a remote collector.
// Implement this interface to plug in a custom delivery mechanism.
type Transport interface {
	// Send delivers events in order.
	//
	// Returns nil on success, a *PermanentError when the collector
	// rejected the batch for good, or a *TransientError when the
	// batch may be retried. Any other error is treated as transient.
	Send(ctx context.Context, events []Event) error
}

// TransientError is a retryable delivery failure such as a network
// timeout or a 5xx response.
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transient transport failure: status %d", e.Status)
	}
	return fmt.Sprintf("transient transport failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// PermanentError is a non-retryable delivery failure such as a
// malformed batch rejected by the collector.
type PermanentError struct {
	Status int
	Err    error
}

func (e *PermanentError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("permanent transport failure: status %d", e.Status)
	}
	return fmt.Sprintf("permanent transport failure: %v", e.Err)
}

func (e *PermanentError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried. Only errors that
// carry a *PermanentError in their chain are final.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var permanent *PermanentError
	return !errors.As(err, &permanent)
}
