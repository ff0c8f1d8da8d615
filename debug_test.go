package mobsquid

import (
	"testing"

	"github.com/mobsquid/mobsquid-go/adapters"
)

func TestDebugLog(t *testing.T) {
	t.Run("should keep a bounded history", func(t *testing.T) {
		d := NewDebugLog(adapters.NewNoOpLoggerAdapter(), 2)
		d.Printf("one")
		d.Printf("two %d", 2)
		d.Printf("three")

		entries := d.Entries()
		if len(entries) != 2 {
			t.Fatalf("expected 2 entries, got %d", len(entries))
		}
		if entries[0].Message != "two 2" || entries[1].Message != "three" {
			t.Fatalf("unexpected entries: %+v", entries)
		}
		if entries[0].Time.IsZero() {
			t.Fatal("expected entry timestamp")
		}
	})

	t.Run("should forward to logger when disabled", func(t *testing.T) {
		logger := &recordingLogger{}
		d := NewDebugLog(logger, 0)
		d.Printf("hello %s", "world")

		if d.Entries() != nil {
			t.Fatal("expected no history when disabled")
		}
		if got := logger.messages("DEBUG"); len(got) != 1 || got[0] != "hello world" {
			t.Fatalf("expected debug log line, got %v", got)
		}
	})
}
