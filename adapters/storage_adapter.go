package adapters

// StorageAdapter persists the events still waiting for delivery so they
// survive a restart. Implement this interface to use custom storage
// backends.
type StorageAdapter interface {
	// Save replaces the persisted set with events.
	//
	// Returns error if save fails.
	Save(events []Event) error

	// Load retrieves persisted events in queue order.
	//
	// Returns an empty slice when nothing was persisted.
	Load() ([]Event, error)

	// Clear removes all persisted events.
	Clear() error
}
