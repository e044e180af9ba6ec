package xiter

import (
	"slices"
	"testing"
)

func TestUniqueKeepsFirstSeenOrder(t *testing.T) {
	got := Unique(slices.Values([]string{"b", "a", "b", "c", "a"}))
	if !slices.Equal(got, []string{"b", "a", "c"}) {
		t.Fatalf("Unique() = %v, want [b a c]", got)
	}
	if got := Unique(slices.Values([]string(nil))); got != nil {
		t.Fatalf("Unique(nil) = %v, want nil", got)
	}
}

func TestUniqueStopsWhenSourceStops(t *testing.T) {
	pulled := 0
	seq := func(yield func(int) bool) {
		for i := range 4 {
			pulled++
			if !yield(i % 2) {
				return
			}
		}
	}
	if got := Unique(seq); !slices.Equal(got, []int{0, 1}) {
		t.Fatalf("Unique() = %v, want [0 1]", got)
	}
	if pulled != 4 {
		t.Fatalf("pulled = %d, want 4", pulled)
	}
}
