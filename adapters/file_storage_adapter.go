package adapters

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"github.com/rogpeppe/go-internal/lockedfile"
)

// FileStorageAdapter is the default storage adapter implementation using file system.
// Stores events as JSON in a file guarded by an OS-level file lock.
type FileStorageAdapter struct {
	filepath string
}

// Ensure FileStorageAdapter implements StorageAdapter interface
var _ StorageAdapter = (*FileStorageAdapter)(nil)

// NewFileStorageAdapter creates a new FileStorageAdapter instance.
//
// Parameters:
//   - filepath: Path to the file where events will be stored
func NewFileStorageAdapter(filepath string) *FileStorageAdapter {
	return &FileStorageAdapter{filepath: filepath}
}

// Save persists events to a JSON file.
func (f *FileStorageAdapter) Save(events []Event) error {
	data, err := json.Marshal(events)
	if err != nil {
		return errors.Wrap(err, "failed to marshal events")
	}
	return lockedfile.Write(f.filepath, bytes.NewReader(data), 0600)
}

// Load retrieves events from a JSON file.
// Returns empty array if file doesn't exist.
func (f *FileStorageAdapter) Load() ([]Event, error) {
	data, err := lockedfile.Read(f.filepath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []Event{}, nil
	}
	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, errors.Wrapf(err, "corrupted event file %s", f.filepath)
	}
	return events, nil
}

// Clear removes the storage file. A missing file is not an error.
func (f *FileStorageAdapter) Clear() error {
	if err := os.Remove(f.filepath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
