package mobsquid

import (
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mobsquid/mobsquid-go/adapters"
)

// SessionContext owns the application token, SDK version, session ID and
// the context map merged into every tracked event.
type SessionContext struct {
	mu        sync.RWMutex
	token     string
	version   string
	sessionID string
	active    bool
	context   map[string]any
}

// NewSessionContext creates an inactive session for the given SDK version.
func NewSessionContext(version string) *SessionContext {
	return &SessionContext{
		version: version,
		context: make(map[string]any),
	}
}

// Start activates the session with token. It reports whether this call
// activated the session; a repeated Start with the active token succeeds
// without changes, while a different token yields ErrAlreadyStarted.
func (s *SessionContext) Start(token string) (bool, error) {
	if token == "" {
		return false, errors.Wrap(ErrConfiguration, "application token cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active {
		if s.token != token {
			return false, ErrAlreadyStarted
		}
		return false, nil
	}

	s.token = token
	s.sessionID = uuid.NewString()
	s.active = true
	return true, nil
}

// Stop deactivates the session. The context map is kept.
func (s *SessionContext) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = false
}

// Active reports whether Start succeeded and Stop was not called since.
func (s *SessionContext) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Token returns the application token, empty before the first Start.
func (s *SessionContext) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SessionID returns the identifier generated by the last activation.
func (s *SessionContext) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}

// Version returns the SDK build identifier.
func (s *SessionContext) Version() string {
	return s.version
}

// Set stores a context value. Keys must be non-empty and values primitive.
func (s *SessionContext) Set(key string, value any) error {
	if key == "" {
		return errors.Wrap(ErrConfiguration, "context key cannot be empty")
	}
	if !adapters.IsPrimitive(value) {
		return errors.Wrapf(ErrInvalidValue, "context %q has unsupported type %T", key, value)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.context[key] = value
	return nil
}

// Remove deletes a context key. Missing keys are ignored.
func (s *SessionContext) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.context, key)
}

// Clear removes all context values.
func (s *SessionContext) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.context = make(map[string]any)
}

// Snapshot returns a copy of the context map.
func (s *SessionContext) Snapshot() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]any, len(s.context))
	for k, v := range s.context {
		result[k] = v
	}
	return result
}
