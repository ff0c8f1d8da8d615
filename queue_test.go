package mobsquid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func eventNames(events []Event) []string {
	names := make([]string, 0, len(events))
	for _, e := range events {
		names = append(names, e.Name)
	}
	return names
}

func entryNames(entries []queuedEvent) []string {
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.event.Name)
	}
	return names
}

func TestQueue_EnqueueDequeue(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Event{Name: "test1"})
	q.Enqueue(Event{Name: "test2"})

	batch := q.dequeueBatch(1)
	if len(batch) != 1 || batch[0].event.Name != "test1" {
		t.Fatalf("expected to dequeue test1, got %v", entryNames(batch))
	}
	if q.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", q.Len())
	}
}

func TestQueue_DequeueBatchLargerThanQueue(t *testing.T) {
	q := NewQueue(10)
	q.Enqueue(Event{Name: "only"})

	batch := q.dequeueBatch(5)
	if len(batch) != 1 || !q.IsEmpty() {
		t.Fatalf("expected whole queue drained, got %v", entryNames(batch))
	}
	if len(q.dequeueBatch(5)) != 0 {
		t.Fatal("expected empty batch from empty queue")
	}
}

func TestQueue_DropOldestOnOverflow(t *testing.T) {
	q := NewQueue(3)
	for _, name := range []string{"a", "b", "c"} {
		if dropped := q.Enqueue(Event{Name: name}); len(dropped) != 0 {
			t.Fatalf("unexpected drop while below capacity: %v", eventNames(dropped))
		}
	}

	dropped := q.Enqueue(Event{Name: "d"})
	if diff := cmp.Diff([]string{"a"}, eventNames(dropped)); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c", "d"}, eventNames(q.ToSlice())); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_NeverExceedsCapacity(t *testing.T) {
	q := NewQueue(5)
	for i := 0; i < 100; i++ {
		q.Enqueue(Event{Name: "e"})
		if q.Len() > q.Capacity() {
			t.Fatalf("queue length %d exceeds capacity %d", q.Len(), q.Capacity())
		}
	}
}

func TestQueue_RequeueKeepsOrderAtFront(t *testing.T) {
	q := NewQueue(10)
	for _, name := range []string{"a", "b", "c", "d"} {
		q.Enqueue(Event{Name: name})
	}
	batch := q.dequeueBatch(2)
	q.Enqueue(Event{Name: "e"})

	q.requeue(batch)

	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, eventNames(q.ToSlice())); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_RequeueOverflowDropsOldest(t *testing.T) {
	q := NewQueue(3)
	q.Enqueue(Event{Name: "a"})
	q.Enqueue(Event{Name: "b"})
	batch := q.dequeueBatch(2)
	q.Enqueue(Event{Name: "c"})
	q.Enqueue(Event{Name: "d"})

	dropped := q.requeue(batch)

	if diff := cmp.Diff([]string{"a"}, eventNames(dropped)); diff != "" {
		t.Fatalf("dropped mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"b", "c", "d"}, eventNames(q.ToSlice())); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_LoadFromSlice(t *testing.T) {
	q := NewQueue(2)
	q.LoadFromSlice([]Event{{Name: "old"}, {Name: "test1"}, {Name: "test2"}})

	if diff := cmp.Diff([]string{"test1", "test2"}, eventNames(q.ToSlice())); diff != "" {
		t.Fatalf("queue mismatch (-want +got):\n%s", diff)
	}
}

func TestQueue_DefaultCapacity(t *testing.T) {
	if got := NewQueue(0).Capacity(); got != DefaultQueueCapacity {
		t.Fatalf("expected default capacity %d, got %d", DefaultQueueCapacity, got)
	}
}
