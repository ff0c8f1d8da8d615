package mobsquid

import (
	"fmt"
	"time"
)

// DebugEntry is one message recorded on the debug channel.
type DebugEntry struct {
	Time    time.Time
	Message string
}

// DebugLog is the SDK's internal diagnostic channel. Messages are always
// written to the logger at debug level and, unless disabled, kept in a
// bounded ring buffer for inspection. It never influences delivery.
type DebugLog struct {
	logger  LoggerAdapter
	history *Ring[DebugEntry]
}

// NewDebugLog creates a debug channel keeping up to size entries. A
// non-positive size disables the history.
func NewDebugLog(logger LoggerAdapter, size int) *DebugLog {
	d := &DebugLog{logger: logger}
	if size > 0 {
		d.history = NewRing[DebugEntry](size)
	}
	return d
}

// Printf records a formatted message.
func (d *DebugLog) Printf(format string, args ...any) {
	message := fmt.Sprintf(format, args...)
	d.logger.Debug("%s", message)
	if d.history != nil {
		d.history.Add(DebugEntry{Time: time.Now(), Message: message})
	}
}

// Entries returns recorded messages, oldest first. It is nil when the
// history is disabled.
func (d *DebugLog) Entries() []DebugEntry {
	if d.history == nil {
		return nil
	}
	return d.history.Items()
}
