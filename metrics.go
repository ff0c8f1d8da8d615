package mobsquid

//
// Metrics definitions
//

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reasons used with metricEventsDropped.
const (
	dropReasonOverflow  = "overflow"
	dropReasonRetries   = "retries_exhausted"
	dropReasonRejected  = "rejected"
	batchResultOK       = "ok"
	batchResultRetry    = "transient"
	batchResultRejected = "permanent"
)

var (
	// metricEventsTracked counts the events accepted by Track.
	metricEventsTracked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mobsquid_events_tracked_total",
		Help: "Total number of events accepted into the queue",
	})

	// metricEventsDropped counts the events discarded without delivery.
	metricEventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mobsquid_events_dropped_total",
		Help: "Total number of events discarded without delivery",
	}, []string{"reason"})

	// metricBatchesSent counts delivery attempts by outcome.
	metricBatchesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mobsquid_batches_sent_total",
		Help: "Total number of batch delivery attempts",
	}, []string{"result"})

	// metricQueueDepth gauges the events waiting for delivery.
	metricQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "mobsquid_queue_depth",
		Help: "The number of events currently waiting for delivery",
	})
)
