package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultTransportTimeout bounds a single delivery request.
const DefaultTransportTimeout = 10 * time.Second

// HTTPTransport posts batches as JSON to a collector endpoint using net/http.
type HTTPTransport struct {
	client   *http.Client
	endpoint string
	headers  map[string]string
}

// Ensure HTTPTransport implements Transport interface
var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport.
//
// Parameters:
//   - endpoint: The collector URL receiving POST requests
//   - headers: Optional extra headers sent with every request
//   - timeout: Per-request timeout, DefaultTransportTimeout when zero
func NewHTTPTransport(endpoint string, headers map[string]string, timeout time.Duration) *HTTPTransport {
	if timeout <= 0 {
		timeout = DefaultTransportTimeout
	}
	return &HTTPTransport{
		client:   &http.Client{Timeout: timeout},
		endpoint: endpoint,
		headers:  headers,
	}
}

// Send posts events as {"events": [...]} and classifies the outcome.
func (h *HTTPTransport) Send(ctx context.Context, events []Event) error {
	payload := map[string]any{
		"events": events,
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return &PermanentError{Err: errors.Wrap(err, "failed to marshal events")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return &PermanentError{Err: errors.Wrap(err, "failed to create request")}
	}

	req.Header.Set("Content-Type", "application/json")
	if token := ApplicationTokenFromContext(ctx); token != "" {
		req.Header.Set(ApplicationTokenHeader, token)
	}
	for key, value := range h.headers {
		req.Header.Set(key, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return &TransientError{Err: errors.Wrap(err, "failed to send request")}
	}
	defer func() {
		// drain so the keep-alive connection is reused for the next batch
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	return classifyStatus(resp.StatusCode)
}

// classifyStatus maps a collector response code to a Transport result.
func classifyStatus(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		return &TransientError{Status: status}
	case status >= 400 && status < 500:
		return &PermanentError{Status: status}
	default:
		// 5xx and anything unexpected are worth another try
		return &TransientError{Status: status}
	}
}
