package incr

import (
	"context"
	"runtime"
	"sync"
)

// parallelBatch runs fn over every item in work concurrently, bounded
// to GOMAXPROCS workers, and waits for all of them to finish before
// returning. Every item is processed even if one fn call returns an
// error; the first error encountered is returned once the whole batch
// has drained. It is a batch-of-items utility with no caller outside
// its tests; cmd/incrbench does not use it, and the library's own
// single-graph Stabilize is not parallelized (spec.md §5 describes one
// stabilization pass as inherently sequential in height order).
func parallelBatch[A any](ctx context.Context, fn func(context.Context, A) error, work ...A) error {
	workers := runtime.GOMAXPROCS(0)
	if workers > len(work) {
		workers = len(work)
	}
	if workers < 1 {
		return nil
	}

	items := make(chan A, len(work))
	for _, w := range work {
		items <- w
	}
	close(items)

	var wg sync.WaitGroup
	var errMu sync.Mutex
	var firstErr error

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				if err := fn(ctx, item); err != nil {
					errMu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					errMu.Unlock()
				}
			}
		}()
	}
	wg.Wait()
	return firstErr
}
