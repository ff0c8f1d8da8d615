package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPTransport_Send(t *testing.T) {
	var received struct {
		Events []Event `json:"events"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("expected Content-Type: application/json")
		}
		if r.Header.Get(ApplicationTokenHeader) != "tok1" {
			t.Errorf("expected application token header, got %q", r.Header.Get(ApplicationTokenHeader))
		}
		if r.Header.Get("X-Extra") != "yes" {
			t.Error("expected custom header")
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	transport := NewHTTPTransport(server.URL, map[string]string{"X-Extra": "yes"}, time.Second)
	ctx := WithApplicationToken(context.Background(), "tok1")

	err := transport.Send(ctx, []Event{{Name: "open_app"}, {Name: "ping"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(received.Events) != 2 || received.Events[0].Name != "open_app" || received.Events[1].Name != "ping" {
		t.Fatalf("collector received wrong events: %+v", received.Events)
	}
}

func TestHTTPTransport_StatusClassification(t *testing.T) {
	tests := []struct {
		status    int
		wantErr   bool
		transient bool
	}{
		{http.StatusOK, false, false},
		{http.StatusAccepted, false, false},
		{http.StatusBadRequest, true, false},
		{http.StatusUnauthorized, true, false},
		{http.StatusRequestTimeout, true, true},
		{http.StatusTooManyRequests, true, true},
		{http.StatusInternalServerError, true, true},
		{http.StatusServiceUnavailable, true, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			err := NewHTTPTransport(server.URL, nil, time.Second).Send(context.Background(), []Event{{Name: "x"}})
			if (err != nil) != tt.wantErr {
				t.Fatalf("status %d: unexpected error %v", tt.status, err)
			}
			if err != nil && IsTransient(err) != tt.transient {
				t.Fatalf("status %d: transient = %v, want %v", tt.status, IsTransient(err), tt.transient)
			}
		})
	}
}

func TestHTTPTransport_ReusesConnection(t *testing.T) {
	var conns atomic.Int32
	server := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"received":"` + strings.Repeat("x", 16<<10) + `"}`))
	}))
	server.Config.ConnState = func(c net.Conn, state http.ConnState) {
		if state == http.StateNew {
			conns.Add(1)
		}
	}
	server.Start()
	defer server.Close()

	transport := NewHTTPTransport(server.URL, nil, time.Second)
	for i := 0; i < 3; i++ {
		if err := transport.Send(context.Background(), []Event{{Name: "test"}}); err != nil {
			t.Fatalf("send %d failed: %v", i, err)
		}
	}
	if got := conns.Load(); got != 1 {
		t.Fatalf("expected one connection for all batches, got %d", got)
	}
}

func TestHTTPTransport_NetworkErrorIsTransient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewHTTPTransport(url, nil, time.Second).Send(context.Background(), []Event{{Name: "x"}})
	var transient *TransientError
	if !errors.As(err, &transient) {
		t.Fatalf("expected TransientError, got %v", err)
	}
}

func TestHTTPTransport_MarshalErrorIsPermanent(t *testing.T) {
	transport := NewHTTPTransport("http://test.com", nil, time.Second)
	events := []Event{{
		Name:       "test",
		Properties: map[string]any{"invalid": make(chan int)},
	}}

	err := transport.Send(context.Background(), events)
	if err == nil || IsTransient(err) {
		t.Fatalf("expected permanent error for unmarshalable data, got %v", err)
	}
}

func TestHTTPTransport_InvalidURLIsPermanent(t *testing.T) {
	err := NewHTTPTransport("ht!tp://invalid", nil, time.Second).Send(context.Background(), []Event{{Name: "x"}})
	if err == nil || IsTransient(err) {
		t.Fatalf("expected permanent error for invalid URL, got %v", err)
	}
}

func TestHTTPTransport_DefaultTimeout(t *testing.T) {
	transport := NewHTTPTransport("http://test.com", nil, 0)
	if transport.client.Timeout != DefaultTransportTimeout {
		t.Fatalf("expected default timeout %v, got %v", DefaultTransportTimeout, transport.client.Timeout)
	}
}
