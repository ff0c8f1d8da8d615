package adapters

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// BatchAck is the collector's reply to a batch frame on a WebSocket.
type BatchAck struct {
	OK    bool   `json:"ok"`
	Retry bool   `json:"retry"`
	Error string `json:"error,omitempty"`
}

// BatchFrame is the message written for every batch on a WebSocket.
type BatchFrame struct {
	Events []Event `json:"events"`
}

// WebSocketTransport keeps one connection to the collector open and
// writes a frame per batch, waiting for an ack before returning.
type WebSocketTransport struct {
	url     string
	dialer  *websocket.Dialer
	timeout time.Duration

	mu   sync.Mutex
	conn *websocket.Conn
}

// Ensure WebSocketTransport implements Transport interface
var _ Transport = (*WebSocketTransport)(nil)

// NewWebSocketTransport creates a transport for a ws:// or wss:// URL.
// The connection is dialed lazily on the first Send.
func NewWebSocketTransport(url string, timeout time.Duration) *WebSocketTransport {
	if timeout <= 0 {
		timeout = DefaultTransportTimeout
	}
	return &WebSocketTransport{
		url:     url,
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
		timeout: timeout,
	}
}

// Send writes events as one frame and waits for the collector's ack.
// Connection failures are transient and drop the connection so the next
// Send redials.
func (w *WebSocketTransport) Send(ctx context.Context, events []Event) error {
	frame, err := json.Marshal(BatchFrame{Events: events})
	if err != nil {
		return &PermanentError{Err: errors.Wrap(err, "failed to marshal events")}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	conn, err := w.connect(ctx)
	if err != nil {
		return &TransientError{Err: errors.Wrap(err, "failed to dial collector")}
	}

	deadline := time.Now().Add(w.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	conn.SetWriteDeadline(deadline)
	conn.SetReadDeadline(deadline)

	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		w.resetLocked()
		return &TransientError{Err: errors.Wrap(err, "failed to write batch")}
	}

	var ack BatchAck
	if err := conn.ReadJSON(&ack); err != nil {
		w.resetLocked()
		return &TransientError{Err: errors.Wrap(err, "failed to read ack")}
	}

	switch {
	case ack.OK:
		return nil
	case ack.Retry:
		return &TransientError{Err: errors.New(ack.Error)}
	default:
		return &PermanentError{Err: errors.New(ack.Error)}
	}
}

// Close closes the underlying connection, if any.
func (w *WebSocketTransport) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return nil
	}
	w.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	err := w.conn.Close()
	w.conn = nil
	return err
}

func (w *WebSocketTransport) connect(ctx context.Context) (*websocket.Conn, error) {
	if w.conn != nil {
		return w.conn, nil
	}
	header := http.Header{}
	if token := ApplicationTokenFromContext(ctx); token != "" {
		header.Set(ApplicationTokenHeader, token)
	}
	conn, _, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		return nil, err
	}
	w.conn = conn
	return conn, nil
}

func (w *WebSocketTransport) resetLocked() {
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
	}
}
