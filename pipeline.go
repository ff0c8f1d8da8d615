package mobsquid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/mobsquid/mobsquid-go/adapters"
)

// Pipeline queues enriched events and delivers them to the Transport in
// batches from a background goroutine. Producers only touch the queue
// lock; transport calls happen outside of it.
type Pipeline struct {
	config    PipelineConfig
	queue     *Queue
	session   *SessionContext
	transport Transport
	storage   StorageAdapter
	logger    LoggerAdapter
	debug     *DebugLog
	kick      chan struct{}

	// flushMu serializes flushes so requeued events keep their order.
	flushMu  sync.Mutex
	failures int

	mu      sync.Mutex
	running bool
	loaded  bool
	stop    chan struct{}
	wg      sync.WaitGroup
}

// NewPipeline creates a stopped pipeline. The session supplies the
// application token attached to each delivery.
func NewPipeline(config PipelineConfig, session *SessionContext, transport Transport, storage StorageAdapter, logger LoggerAdapter, debug *DebugLog) *Pipeline {
	return &Pipeline{
		config:    config,
		queue:     NewQueue(config.QueueCapacity),
		session:   session,
		transport: transport,
		storage:   storage,
		logger:    logger,
		debug:     debug,
		kick:      make(chan struct{}, 1),
	}
}

// Start restores persisted events on the first call and launches the
// background flush loop if it is not running.
func (p *Pipeline) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.running {
		return
	}
	if !p.loaded {
		events, err := p.storage.Load()
		if err != nil {
			p.logger.Warn("Failed to load persisted events: %v", err)
		} else if len(events) > 0 {
			p.queue.LoadFromSlice(events)
			p.debug.Printf("Restored %d persisted events", p.queue.Len())
		}
		p.loaded = true
	}

	p.stop = make(chan struct{})
	p.running = true
	p.wg.Add(1)
	go p.run(p.stop)
}

// Running reports whether the background loop is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Enqueue adds an event and wakes the flush loop once a full batch is
// waiting. It never blocks on delivery.
func (p *Pipeline) Enqueue(event Event) {
	dropped := p.queue.Enqueue(event)
	metricEventsTracked.Inc()
	p.discard(dropped, dropReasonOverflow)

	n := p.queue.Len()
	metricQueueDepth.Set(float64(n))
	if n >= p.config.MaxBatchSize {
		select {
		case p.kick <- struct{}{}:
		default:
		}
	}
}

// Len returns the number of events waiting for delivery.
func (p *Pipeline) Len() int {
	return p.queue.Len()
}

// Events returns a copy of the waiting events in delivery order.
func (p *Pipeline) Events() []Event {
	return p.queue.ToSlice()
}

// Flush delivers queued events now. It stops at the first transient
// failure, leaving the retry to the background loop, and only returns
// ctx's error.
func (p *Pipeline) Flush(ctx context.Context) error {
	p.flush(ctx)
	return ctx.Err()
}

// Stop halts the background loop, optionally runs a final flush, and
// persists whatever is still queued.
func (p *Pipeline) Stop(ctx context.Context, flush bool) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	close(p.stop)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()

	if flush {
		p.flush(ctx)
	}

	p.flushMu.Lock()
	defer p.flushMu.Unlock()
	return p.persist()
}

func (p *Pipeline) run(stop <-chan struct{}) {
	defer p.wg.Done()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stop:
			cancel()
		case <-ctx.Done():
		}
	}()

	ticker := time.NewTicker(p.config.FlushInterval)
	defer ticker.Stop()

	var retryTimer *time.Timer
	var retry <-chan time.Time
	for {
		tick, kick := ticker.C, p.kick
		if retry != nil {
			// backing off: only the retry timer may trigger a flush
			tick, kick = nil, nil
		}

		select {
		case <-stop:
			if retryTimer != nil {
				retryTimer.Stop()
			}
			return
		case <-tick:
		case <-kick:
		case <-retry:
			retry = nil
		}

		if delay := p.flush(ctx); delay > 0 {
			p.debug.Printf("Retrying delivery in %v", delay)
			retryTimer = time.NewTimer(delay)
			retry = retryTimer.C
		}
	}
}

// flush sends batches until the queue is empty, a transient failure
// occurs, or ctx is done. It returns the backoff to wait before the next
// attempt, zero when no retry is pending.
func (p *Pipeline) flush(ctx context.Context) time.Duration {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	if p.queue.IsEmpty() {
		return 0
	}
	p.logger.Debug("Starting flush operation")
	defer p.persist()

	for ctx.Err() == nil {
		batch := p.queue.dequeueBatch(p.config.MaxBatchSize)
		if len(batch) == 0 {
			return 0
		}

		events := make([]Event, len(batch))
		for i, entry := range batch {
			events[i] = entry.event
		}

		p.logger.Debug("Sending batch of %d events", len(events))
		sendCtx, cancel := context.WithTimeout(
			adapters.WithApplicationToken(ctx, p.session.Token()), p.config.SendTimeout)
		err := p.transport.Send(sendCtx, events)
		cancel()

		switch {
		case err == nil:
			p.failures = 0
			metricBatchesSent.WithLabelValues(batchResultOK).Inc()
			p.logger.Debug("Successfully sent batch of %d events", len(events))

		case ctx.Err() != nil:
			// interrupted by shutdown, not the collector's fault
			p.discard(p.queue.requeue(batch), dropReasonOverflow)
			return 0

		case !adapters.IsTransient(err):
			metricBatchesSent.WithLabelValues(batchResultRejected).Inc()
			p.logger.Warn("Collector rejected batch of %d events: %v", len(events), err)
			p.discard(events, dropReasonRejected)

		default:
			metricBatchesSent.WithLabelValues(batchResultRetry).Inc()
			p.failures++
			p.logger.Warn("Delivery failed, attempt %d: %v", p.failures, err)
			p.retryLater(batch, err)
			return p.backoff(p.failures)
		}
	}
	return 0
}

// retryLater counts a failed attempt against every entry, drops those out
// of attempts and puts the rest back at the front of the queue.
func (p *Pipeline) retryLater(batch []queuedEvent, cause error) {
	survivors := make([]queuedEvent, 0, len(batch))
	var exhausted []Event
	for _, entry := range batch {
		entry.attempts++
		if entry.attempts >= p.config.MaxAttempts {
			exhausted = append(exhausted, entry.event)
			continue
		}
		survivors = append(survivors, entry)
	}
	if len(exhausted) > 0 {
		p.logger.Error("Dropping %d events after %d attempts: %v", len(exhausted), p.config.MaxAttempts, cause)
		p.discard(exhausted, dropReasonRetries)
	}
	p.discard(p.queue.requeue(survivors), dropReasonOverflow)
}

// backoff returns the delay before retry number n (1-based): the base
// delay doubled per failure, capped, plus up to 25% jitter.
func (p *Pipeline) backoff(n int) time.Duration {
	delay := p.config.RetryBaseDelay
	for i := 1; i < n && delay < p.config.RetryMaxDelay; i++ {
		delay *= 2
	}
	if delay > p.config.RetryMaxDelay {
		delay = p.config.RetryMaxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(delay)/4+1))
}

func (p *Pipeline) discard(events []Event, reason string) {
	for _, event := range events {
		metricEventsDropped.WithLabelValues(reason).Inc()
		p.debug.Printf("Dropped event %s (%s): %s", event.ID, event.Name, reason)
	}
}

// persist mirrors the queue into storage. Callers hold flushMu.
func (p *Pipeline) persist() error {
	events := p.queue.ToSlice()
	metricQueueDepth.Set(float64(len(events)))

	var err error
	if len(events) == 0 {
		err = p.storage.Clear()
	} else {
		err = p.storage.Save(events)
	}
	if err != nil {
		p.logger.Error("Failed to persist %d events: %v", len(events), err)
	}
	return err
}
