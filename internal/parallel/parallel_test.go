package parallel

import (
	"sync/atomic"
	"testing"
)

func TestRowsVisitsEveryIndex(t *testing.T) {
	cfg := Config{Workers: 4, MinRows: 1}

	n := 1000
	seen := make([]int32, n)
	Rows(n, cfg, func(i int) {
		atomic.AddInt32(&seen[i], 1)
	})

	for i, count := range seen {
		if count != 1 {
			t.Errorf("row %d visited %d times", i, count)
		}
	}
}

func TestRowsSequentialFallback(t *testing.T) {
	cfg := Config{Workers: 4, MinRows: 64}

	// Below MinRows the loop must run on the calling goroutine, in order.
	var order []int
	Rows(10, cfg, func(i int) {
		order = append(order, i)
	})

	for i, v := range order {
		if v != i {
			t.Fatalf("expected in-order execution, got %v", order)
		}
	}
}

func TestRowsDisabled(t *testing.T) {
	var counter int64
	Rows(100, Config{Workers: 0}, func(_ int) {
		atomic.AddInt64(&counter, 1)
	})
	if counter != 100 {
		t.Errorf("expected 100 iterations, got %d", counter)
	}
}

func TestRowsZero(t *testing.T) {
	Rows(0, Default(), func(_ int) {
		t.Error("callback invoked for empty range")
	})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MinRows <= 0 {
		t.Errorf("MinRows must be positive, got %d", cfg.MinRows)
	}
}
