package workerpool

import (
	"sync/atomic"
	"testing"
)

func TestPool(t *testing.T) {
	pool := New[int, int](3, 10)
	if pool.Workers() != 3 {
		t.Errorf("Workers() = %d, want 3", pool.Workers())
	}

	pool.Start(func(n int) int { return n * n })
	for i := 1; i <= 10; i++ {
		pool.Submit(i)
	}
	pool.Close()

	sum := 0
	for r := range pool.Results() {
		sum += r
	}
	if sum != 385 {
		t.Errorf("sum of squares = %d, want 385", sum)
	}
}

func TestNewClampsWorkers(t *testing.T) {
	if got := New[int, int](8, 2).Workers(); got != 2 {
		t.Errorf("Workers() = %d, want 2", got)
	}
	if got := New[int, int](0, 0).Workers(); got != DefaultWorkers() {
		t.Errorf("Workers() = %d, want %d", got, DefaultWorkers())
	}
}

func TestMapPreservesOrder(t *testing.T) {
	items := make([]string, 100)
	for i := range items {
		items[i] = string(rune('a' + i%26))
	}

	var calls atomic.Int32
	got := Map(items, 4, func(i int, s string) string {
		calls.Add(1)
		return s + s
	})

	if int(calls.Load()) != len(items) {
		t.Errorf("fn called %d times, want %d", calls.Load(), len(items))
	}
	for i, s := range got {
		if want := items[i] + items[i]; s != want {
			t.Fatalf("result[%d] = %q, want %q", i, s, want)
		}
	}

	if out := Map([]int(nil), 4, func(int, int) int { return 0 }); len(out) != 0 {
		t.Errorf("Map(nil) returned %d results", len(out))
	}
}
