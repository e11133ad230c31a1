package search

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ProgressFunc receives a human-readable message and the running count of
// completed work items. It is invoked after every item settles and at
// batch-boundary transitions. A nil ProgressFunc suppresses reporting;
// nested strategy invocations pass nil explicitly.
type ProgressFunc func(message string, completed int)

// BatchOutcome aggregates a batch run. SuccessCount+FailureCount always
// equals the number of submitted items.
type BatchOutcome[T, R any] struct {
	// Results holds successful worker results in completion order, not
	// submission order.
	Results []R

	// Failures holds the items whose workers returned an error.
	Failures []T

	SuccessCount int
	FailureCount int
}

// BatchConfig configures RunBatch.
type BatchConfig[T any] struct {
	// Concurrency caps in-flight workers. Enforced structurally: items
	// are partitioned into consecutive slices of this size and a slice
	// must fully drain before the next one starts.
	// Default: 3
	Concurrency int

	// BatchDelay is the pause between slices, throttling provider load.
	// Not applied after the final slice.
	// Default: 500ms
	BatchDelay time.Duration

	// OnProgress reports per-item completion. Nil suppresses reporting.
	OnProgress ProgressFunc

	// Label describes an item in progress messages. Optional.
	Label func(T) string
}

// RunBatch runs one worker call per item under the concurrency cap,
// collecting successes and failures without aborting on individual
// failure. A worker error is a soft item failure and never escapes the
// executor. If the context is cancelled between slices, the remaining
// unstarted items are recorded as failures so the outcome still accounts
// for every item.
func RunBatch[T, R any](ctx context.Context, items []T, worker func(context.Context, T) (R, error), cfg BatchConfig[T]) BatchOutcome[T, R] {
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 3
	}
	delay := cfg.BatchDelay
	if delay <= 0 {
		delay = 500 * time.Millisecond
	}

	label := cfg.Label
	if label == nil {
		label = func(item T) string { return fmt.Sprintf("%v", item) }
	}

	var out BatchOutcome[T, R]
	var mu sync.Mutex
	completed := 0

	for start := 0; start < len(items); start += concurrency {
		if ctx.Err() != nil {
			out.Failures = append(out.Failures, items[start:]...)
			out.FailureCount += len(items) - start
			return out
		}

		end := min(start+concurrency, len(items))

		var wg sync.WaitGroup
		for _, item := range items[start:end] {
			wg.Add(1)
			go func(item T) {
				defer wg.Done()
				result, err := worker(ctx, item)

				mu.Lock()
				completed++
				done := completed
				if err != nil {
					out.Failures = append(out.Failures, item)
					out.FailureCount++
				} else {
					out.Results = append(out.Results, result)
					out.SuccessCount++
				}
				mu.Unlock()

				if cfg.OnProgress != nil {
					cfg.OnProgress(fmt.Sprintf("searched %s", label(item)), done)
				}
			}(item)
		}
		wg.Wait()

		if end < len(items) {
			if cfg.OnProgress != nil {
				cfg.OnProgress(fmt.Sprintf("batch done, %d/%d items searched", completed, len(items)), completed)
			}
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
		}
	}

	return out
}
