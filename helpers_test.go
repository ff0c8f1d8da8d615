package mobsquid

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mobsquid/mobsquid-go/adapters"
)

type mockTransport struct {
	mu       sync.Mutex
	batches  [][]Event
	tokens   []string
	results  []error
	fallback error
	block    bool
}

func (m *mockTransport) Send(ctx context.Context, events []Event) error {
	m.mu.Lock()
	m.batches = append(m.batches, append([]Event(nil), events...))
	m.tokens = append(m.tokens, adapters.ApplicationTokenFromContext(ctx))
	block := m.block
	var err error
	if len(m.results) > 0 {
		err = m.results[0]
		m.results = m.results[1:]
	} else {
		err = m.fallback
	}
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return &adapters.TransientError{Err: ctx.Err()}
	}
	return err
}

func (m *mockTransport) sent() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, 0, len(m.batches))
	for _, batch := range m.batches {
		out = append(out, eventNames(batch))
	}
	return out
}

func (m *mockTransport) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.batches)
}

type mockStorage struct {
	mu      sync.Mutex
	saved   []Event
	loaded  []Event
	clears  int
	loadErr error
	saveErr error
}

func (m *mockStorage) Save(events []Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = append([]Event(nil), events...)
	return nil
}

func (m *mockStorage) Load() ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.loaded, nil
}

func (m *mockStorage) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = nil
	m.clears++
	return nil
}

func (m *mockStorage) savedNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return eventNames(m.saved)
}

type logLine struct {
	level   string
	message string
}

type recordingLogger struct {
	mu    sync.Mutex
	lines []logLine
}

func (r *recordingLogger) record(level, message string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, logLine{level: level, message: fmt.Sprintf(message, args...)})
}

func (r *recordingLogger) Debug(message string, args ...interface{}) { r.record("DEBUG", message, args...) }
func (r *recordingLogger) Info(message string, args ...interface{})  { r.record("INFO", message, args...) }
func (r *recordingLogger) Warn(message string, args ...interface{})  { r.record("WARN", message, args...) }
func (r *recordingLogger) Error(message string, args ...interface{}) { r.record("ERROR", message, args...) }

func (r *recordingLogger) messages(level string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, line := range r.lines {
		if line.level == level {
			out = append(out, line.message)
		}
	}
	return out
}

// eventually polls cond until it holds or the deadline passes.
func eventually(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}
