package adapters

// NoOpLoggerAdapter discards every message. Tests and hosts that collect
// SDK diagnostics elsewhere use it to silence the client.
type NoOpLoggerAdapter struct{}

var _ LoggerAdapter = NoOpLoggerAdapter{}

// NewNoOpLoggerAdapter returns a logger that drops everything.
func NewNoOpLoggerAdapter() LoggerAdapter {
	return NoOpLoggerAdapter{}
}

func (NoOpLoggerAdapter) Debug(string, ...any) {}
func (NoOpLoggerAdapter) Info(string, ...any)  {}
func (NoOpLoggerAdapter) Warn(string, ...any)  {}
func (NoOpLoggerAdapter) Error(string, ...any) {}
