// Package aggregate combines per-project trial arrays into portfolio-level
// outcomes under the parallel, sequential and dependency-constrained
// topologies. Trials are independent of each other, so every mode fans the
// trial index range out over a small worker pool; the math per trial is pure,
// which keeps results identical at any worker count.
package aggregate

import (
	"runtime"
	"sync"
)

// clampWorkers bounds a requested worker count to something sane.
func clampWorkers(workers int) int {
	if workers < 1 {
		return 1
	}
	if max := runtime.GOMAXPROCS(0) * 4; workers > max {
		return max
	}
	return workers
}

// forEachChunk splits [0,n) into contiguous chunks and runs fn on each chunk
// from its own goroutine. fn must only write to indexes inside its chunk.
func forEachChunk(n, workers int, fn func(start, end int)) {
	workers = clampWorkers(workers)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	var wg sync.WaitGroup
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
