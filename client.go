package mobsquid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/mobsquid/mobsquid-go/adapters"
)

var serverPlatform = &Platform{Type: "server"}

// Client is the SDK entry point. One Client is normally created per
// process and passed explicitly to the code that tracks events. It is
// safe for concurrent use.
type Client struct {
	config   ClientConfig
	session  *SessionContext
	location *LocationCache
	debug    *DebugLog
	pipeline *Pipeline
	logger   LoggerAdapter
}

// NewClient creates a Client from config, applying defaults to zero
// fields. Either Endpoint or Transport must be set. Without a
// StorageAdapter, pending events are kept in StoragePath.
func NewClient(config ClientConfig) (*Client, error) {
	if config.Transport == nil && config.Endpoint == "" {
		return nil, errors.Wrap(ErrConfiguration, "endpoint or transport must be provided in config")
	}
	config.applyDefaults()

	client := &Client{
		config:  config,
		session: NewSessionContext(Version),
	}

	// Use provided adapters or defaults
	if config.LoggerAdapter != nil {
		client.logger = config.LoggerAdapter
	} else {
		client.logger = adapters.NewApexLoggerAdapter(nil, adapters.ParseLogLevel(config.LogLevel))
	}

	transport := config.Transport
	if transport == nil {
		transport = adapters.NewHTTPTransport(config.Endpoint, nil, config.SendTimeout)
	}

	storage := config.StorageAdapter
	if storage == nil {
		storage = adapters.NewFileStorageAdapter(config.StoragePath)
	}

	historySize := config.DebugHistorySize
	if config.DisableDebugHistory {
		historySize = 0
	}
	client.debug = NewDebugLog(client.logger, historySize)
	client.location = NewLocationCache(historySize)
	client.pipeline = NewPipeline(config.pipelineConfig(), client.session, transport, storage, client.logger, client.debug)

	return client, nil
}

// Start registers the application token and starts delivering events.
// Calling it again with the same token re-arms the pipeline; a different
// token is rejected with ErrAlreadyStarted until Dispose is called.
func (c *Client) Start(appToken string) error {
	activated, err := c.session.Start(appToken)
	if err != nil {
		return err
	}

	if activated {
		c.debug.Printf("Session %s started, SDK %s", c.session.SessionID(), c.session.Version())
		if c.config.CollectDeviceInfo {
			c.seedDeviceContext()
		}
	}

	c.pipeline.Start()
	return nil
}

func (c *Client) seedDeviceContext() {
	facts, err := deviceContext(context.Background())
	if err != nil {
		c.logger.Warn("Failed to collect device info: %v", err)
		return
	}
	for k, v := range facts {
		c.session.Set(k, v)
	}
}

// ReceiveLocation caches the latest location reading. Subsequent events
// carry a snapshot of it. It always succeeds, also before Start.
func (c *Client) ReceiveLocation(location Location) {
	c.location.Receive(location)
}

// Track enqueues a named event. Properties override context values with
// the same key. It fails with ErrNotStarted before Start.
func (c *Client) Track(name string, properties map[string]any) error {
	if !c.session.Active() {
		return ErrNotStarted
	}

	nameLen := len(name)
	if nameLen == 0 {
		return errors.Wrap(ErrInvalidEvent, "event name cannot be empty")
	}
	if nameLen > maxNameLength {
		return errors.Wrap(ErrInvalidEvent, "event name cannot exceed 255 characters")
	}

	merged := c.session.Snapshot()
	for k, v := range properties {
		if !adapters.IsPrimitive(v) {
			return errors.Wrapf(ErrInvalidValue, "property %q has unsupported type %T", k, v)
		}
		merged[k] = v
	}

	event := Event{
		ID:         uuid.NewString(),
		Name:       name,
		Properties: merged,
		Timestamp:  time.Now().UTC(),
		Location:   c.location.Snapshot(),
		SessionID:  c.session.SessionID(),
		SDKVersion: c.session.Version(),
		Platform:   serverPlatform,
	}

	c.logger.Debug("Tracking event: %s", name)
	c.pipeline.Enqueue(event)
	return nil
}

// SetContext sets a value merged into every subsequent event.
func (c *Client) SetContext(key string, value any) error {
	return c.session.Set(key, value)
}

// GetContext returns a copy of the current context.
func (c *Client) GetContext() map[string]any {
	return c.session.Snapshot()
}

// RemoveContext deletes a context key.
func (c *Client) RemoveContext(key string) {
	c.session.Remove(key)
}

// ClearContext removes every context value.
func (c *Client) ClearContext() {
	c.session.Clear()
}

// SessionID returns the identifier of the current session, empty before Start.
func (c *Client) SessionID() string {
	return c.session.SessionID()
}

// QueueLen returns the number of events waiting for delivery.
func (c *Client) QueueLen() int {
	return c.pipeline.Len()
}

// Flush delivers queued events now. Delivery failures are handled by the
// pipeline and never returned; only ErrNotStarted and ctx errors are.
func (c *Client) Flush(ctx context.Context) error {
	if !c.session.Active() {
		return ErrNotStarted
	}
	c.logger.Debug("Flushing events")
	return c.pipeline.Flush(ctx)
}

// DebugMessage records a message on the diagnostic channel.
func (c *Client) DebugMessage(message string) {
	c.debug.Printf("%s", message)
}

// DebugMessages returns the recorded diagnostic messages, oldest first.
func (c *Client) DebugMessages() []DebugEntry {
	return c.debug.Entries()
}

// DebugSensorHistory writes the recorded location readings to the
// diagnostic channel and returns them, oldest first.
func (c *Client) DebugSensorHistory() []Location {
	history := c.location.History()
	for i, l := range history {
		c.debug.Printf("sensor[%d] lat=%f lng=%f acc=%.1f at=%s",
			i, l.Latitude, l.Longitude, l.Accuracy, l.CapturedAt.Format(time.RFC3339))
	}
	return history
}

// Dispose stops the client, attempts a final delivery bounded by ctx and
// persists whatever is left.
func (c *Client) Dispose(ctx context.Context) error {
	if !c.session.Active() {
		return nil
	}
	c.logger.Info("Disposing client")
	c.session.Stop()
	return c.pipeline.Stop(ctx, true)
}

// DisposeWithoutFlush stops the client and persists events to storage without flushing to server
func (c *Client) DisposeWithoutFlush() error {
	if !c.session.Active() {
		return nil
	}
	c.logger.Info("Disposing client without flush")
	c.session.Stop()
	return c.pipeline.Stop(context.Background(), false)
}
