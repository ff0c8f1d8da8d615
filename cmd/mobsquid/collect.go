package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mobsquid/mobsquid-go/adapters"
)

const maxBatchBytes = 4 << 20

var (
	// collectorBatches counts batches received by the collector by result.
	collectorBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mobsquid_collector_batches_total",
		Help: "Batches received by the development collector by result",
	}, []string{"result"})

	// collectorEvents counts accepted events.
	collectorEvents = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mobsquid_collector_events_total",
		Help: "Events accepted by the development collector",
	})
)

func registerCollect(rootCmd *cobra.Command) {
	var addr string
	subCmd := &cobra.Command{
		Use:   "collect",
		Short: "Runs a development collector that logs received events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd.Context(), addr)
		},
	}
	subCmd.Flags().StringVar(&addr, "addr", ":3000", "listen address")
	rootCmd.AddCommand(subCmd)
}

func runCollect(ctx context.Context, addr string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{Addr: addr, Handler: newCollectorMux()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Infof("collector running at http://%s", addr)
	log.Infof("batches: POST /events, ws /ws, metrics: /metrics")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("waiting for pending requests to complete")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newCollectorMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", handleEvents)
	mux.HandleFunc("/ws", handleWebSocket)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// eventsPayload mirrors the body written by adapters.HTTPTransport.
type eventsPayload struct {
	Events []adapters.Event `json:"events"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	token := r.Header.Get(adapters.ApplicationTokenHeader)
	if token == "" {
		collectorBatches.WithLabelValues("unauthorized").Inc()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing application token"})
		return
	}

	var payload eventsPayload
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBatchBytes)).Decode(&payload); err != nil {
		log.WithError(err).Warn("invalid batch")
		collectorBatches.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	logBatch(token, payload.Events)
	if wantsError(payload.Events) {
		log.Warn("error triggered, client should retry")
		collectorBatches.WithLabelValues("retry").Inc()
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "simulated server error"})
		return
	}

	collectorBatches.WithLabelValues("ok").Inc()
	collectorEvents.Add(float64(len(payload.Events)))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"received": len(payload.Events),
	})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(*http.Request) bool { return true },
}

func handleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(adapters.ApplicationTokenHeader)
	if token == "" {
		http.Error(w, "missing application token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()
	log.Infof("websocket client connected: %s", r.RemoteAddr)

	for {
		var frame adapters.BatchFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("websocket read failed")
			}
			return
		}

		var ack adapters.BatchAck
		logBatch(token, frame.Events)
		if wantsError(frame.Events) {
			collectorBatches.WithLabelValues("retry").Inc()
			ack = adapters.BatchAck{Retry: true, Error: "simulated server error"}
		} else {
			collectorBatches.WithLabelValues("ok").Inc()
			collectorEvents.Add(float64(len(frame.Events)))
			ack = adapters.BatchAck{OK: true}
		}
		if err := conn.WriteJSON(ack); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}
}

func logBatch(token string, events []adapters.Event) {
	log.WithFields(log.Fields{"token": token, "count": len(events)}).Info("received batch")
	for _, event := range events {
		entry := log.WithFields(log.Fields{
			"id":      event.ID,
			"session": event.SessionID,
		})
		if event.Location != nil {
			entry = entry.WithField("lat", event.Location.Latitude).WithField("lng", event.Location.Longitude)
		}
		entry.Debugf("%s %v", event.Name, event.Properties)
	}
}

// wantsError reports whether any event asks the collector to fail the batch.
func wantsError(events []adapters.Event) bool {
	for _, event := range events {
		if trigger, ok := event.Properties["trigger_error"]; ok && trigger == true {
			return true
		}
	}
	return false
}
