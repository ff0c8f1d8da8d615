package adapters

// NoOpStorageAdapter is a storage adapter that performs no operations.
// Useful when losing queued events on restart is acceptable.
type NoOpStorageAdapter struct{}

// Ensure NoOpStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*NoOpStorageAdapter)(nil)

// NewNoOpStorageAdapter creates a new NoOpStorageAdapter instance.
func NewNoOpStorageAdapter() *NoOpStorageAdapter {
	return &NoOpStorageAdapter{}
}

// Save does nothing and always returns nil.
func (n *NoOpStorageAdapter) Save(events []Event) error {
	return nil
}

// Load returns an empty slice and nil error.
func (n *NoOpStorageAdapter) Load() ([]Event, error) {
	return []Event{}, nil
}

// Clear does nothing and always returns nil.
func (n *NoOpStorageAdapter) Clear() error {
	return nil
}
