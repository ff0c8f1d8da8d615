package mobsquid

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRing(t *testing.T) {
	t.Run("should keep insertion order below capacity", func(t *testing.T) {
		r := NewRing[int](3)
		r.Add(1)
		r.Add(2)
		if diff := cmp.Diff([]int{1, 2}, r.Items()); diff != "" {
			t.Fatalf("items mismatch (-want +got):\n%s", diff)
		}
		if r.Len() != 2 {
			t.Fatalf("expected len 2, got %d", r.Len())
		}
	})

	t.Run("should overwrite oldest when full", func(t *testing.T) {
		r := NewRing[int](3)
		for i := 1; i <= 5; i++ {
			r.Add(i)
		}
		if diff := cmp.Diff([]int{3, 4, 5}, r.Items()); diff != "" {
			t.Fatalf("items mismatch (-want +got):\n%s", diff)
		}
		if r.Len() != 3 {
			t.Fatalf("expected len 3, got %d", r.Len())
		}
	})

	t.Run("should be empty initially", func(t *testing.T) {
		r := NewRing[string](2)
		if len(r.Items()) != 0 || r.Len() != 0 {
			t.Fatal("expected empty ring")
		}
	})
}
