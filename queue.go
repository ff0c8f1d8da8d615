package mobsquid

import (
	"container/list"
	"sync"
)

// queuedEvent is an event waiting for delivery together with the number
// of transient delivery failures it has seen.
type queuedEvent struct {
	event    Event
	attempts int
}

// Queue is a bounded, thread-safe FIFO queue of events. When full, adding
// an event discards the oldest one; callers never block.
type Queue struct {
	mu       sync.Mutex
	list     *list.List
	capacity int
}

// NewQueue creates an empty Queue holding at most capacity events.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{list: list.New(), capacity: capacity}
}

// Capacity returns the maximum number of events the queue holds.
func (q *Queue) Capacity() int {
	return q.capacity
}

// Enqueue adds an Event to the end of the queue and returns the events
// discarded to make room, oldest first.
func (q *Queue) Enqueue(event Event) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.PushBack(queuedEvent{event: event})
	return q.trimLocked()
}

// dequeueBatch removes and returns up to n entries from the front.
func (q *Queue) dequeueBatch(n int) []queuedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if n > q.list.Len() {
		n = q.list.Len()
	}
	batch := make([]queuedEvent, 0, n)
	for i := 0; i < n; i++ {
		front := q.list.Front()
		q.list.Remove(front)
		batch = append(batch, front.Value.(queuedEvent))
	}
	return batch
}

// requeue puts entries back at the front in their original order. If that
// overflows the queue the oldest events are discarded and returned.
func (q *Queue) requeue(entries []queuedEvent) []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i := len(entries) - 1; i >= 0; i-- {
		q.list.PushFront(entries[i])
	}
	return q.trimLocked()
}

func (q *Queue) trimLocked() []Event {
	var dropped []Event
	for q.list.Len() > q.capacity {
		front := q.list.Front()
		q.list.Remove(front)
		dropped = append(dropped, front.Value.(queuedEvent).event)
	}
	return dropped
}

// IsEmpty reports whether the queue has no elements.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len() == 0
}

// Len returns the number of Events currently in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// ToSlice returns all Events in the queue as a slice, preserving order.
func (q *Queue) ToSlice() []Event {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]Event, 0, q.list.Len())
	for e := q.list.Front(); e != nil; e = e.Next() {
		events = append(events, e.Value.(queuedEvent).event)
	}
	return events
}

// LoadFromSlice replaces the queue contents with events, keeping only the
// newest ones if they exceed the capacity.
func (q *Queue) LoadFromSlice(events []Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.Init()
	if len(events) > q.capacity {
		events = events[len(events)-q.capacity:]
	}
	for _, event := range events {
		q.list.PushBack(queuedEvent{event: event})
	}
}
