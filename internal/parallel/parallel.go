// Package parallel distributes independent row work across CPU cores.
//
// Tensor operations in grove are row-independent (each output row of a
// matrix product depends only on one input row), so the only primitive
// needed is a parallel for over rows with a sequential fallback for small
// inputs, where goroutine overhead dominates.
package parallel

import (
	"runtime"
	"sync"
)

// Config controls how row loops are split across goroutines.
type Config struct {
	Workers int // goroutines to spawn; 0 disables parallelism
	MinRows int // below this many rows the loop runs sequentially
}

// Default returns a configuration sized to the machine.
func Default() Config {
	workers := runtime.NumCPU()
	if workers <= 1 {
		workers = 0
	}
	return Config{Workers: workers, MinRows: 64}
}

// Rows executes f(i) for every i in [0, n), splitting the range into
// contiguous chunks, one per worker. f must not touch rows other than its
// own. Runs sequentially when n < cfg.MinRows or parallelism is disabled.
func Rows(n int, cfg Config, f func(i int)) {
	if cfg.Workers == 0 || n < cfg.MinRows {
		for i := 0; i < n; i++ {
			f(i)
		}
		return
	}

	chunk := (n + cfg.Workers - 1) / cfg.Workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := min(start+chunk, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				f(i)
			}
		}(start, end)
	}
	wg.Wait()
}
