package search_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/search"
)

func TestRunBatch_AllSucceed(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	worker := func(_ context.Context, item int) (int, error) {
		return item * 10, nil
	}

	out := search.RunBatch(context.Background(), items, worker, search.BatchConfig[int]{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
	})

	assert.Equal(t, 5, out.SuccessCount)
	assert.Equal(t, 0, out.FailureCount)
	assert.Len(t, out.Results, 5)
	assert.ElementsMatch(t, []int{10, 20, 30, 40, 50}, out.Results)
}

func TestRunBatch_ConcurrencyNeverExceeded(t *testing.T) {
	var mu sync.Mutex
	inFlight := 0
	maxInFlight := 0
	calls := make(map[int]int)

	items := make([]int, 9)
	for i := range items {
		items[i] = i
	}

	worker := func(_ context.Context, item int) (int, error) {
		mu.Lock()
		inFlight++
		calls[item]++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return item, nil
	}

	out := search.RunBatch(context.Background(), items, worker, search.BatchConfig[int]{
		Concurrency: 3,
		BatchDelay:  time.Millisecond,
	})

	assert.Equal(t, 9, out.SuccessCount)
	assert.LessOrEqual(t, maxInFlight, 3, "no more than concurrency workers in flight")
	for i := range items {
		assert.Equal(t, 1, calls[i], "worker invoked exactly once per item")
	}
}

func TestRunBatch_BatchBarrier(t *testing.T) {
	// 5 items with concurrency 2 must run as [0,1], [2,3], [4]: a slice
	// never starts before the previous one fully drains.
	var mu sync.Mutex
	var started []int
	var finished []int

	items := []int{0, 1, 2, 3, 4}

	worker := func(_ context.Context, item int) (int, error) {
		mu.Lock()
		started = append(started, item)
		mu.Unlock()

		// First item of each pair is slower, so the barrier is observable.
		if item%2 == 0 {
			time.Sleep(20 * time.Millisecond)
		}

		mu.Lock()
		finished = append(finished, item)
		mu.Unlock()
		return item, nil
	}

	out := search.RunBatch(context.Background(), items, worker, search.BatchConfig[int]{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
	})

	require.Equal(t, 5, out.SuccessCount)
	require.Len(t, started, 5)

	assert.ElementsMatch(t, []int{0, 1}, started[:2])
	assert.ElementsMatch(t, []int{2, 3}, started[2:4])
	assert.Equal(t, 4, started[4])

	// Both items of the first slice finished before the second slice began.
	posFinished := func(item int) int {
		for i, f := range finished {
			if f == item {
				return i
			}
		}
		return -1
	}
	assert.Less(t, posFinished(0), 3, "slice one drained before slice two settled")
	assert.Less(t, posFinished(1), 3, "slice one drained before slice two settled")
}

func TestRunBatch_InterBatchDelay(t *testing.T) {
	items := []int{0, 1, 2, 3}
	delay := 40 * time.Millisecond

	start := time.Now()
	out := search.RunBatch(context.Background(), items, func(_ context.Context, item int) (int, error) {
		return item, nil
	}, search.BatchConfig[int]{
		Concurrency: 2,
		BatchDelay:  delay,
	})
	elapsed := time.Since(start)

	assert.Equal(t, 4, out.SuccessCount)
	// One delay between the two batches, none after the last.
	assert.GreaterOrEqual(t, elapsed, delay)
	assert.Less(t, elapsed, 2*delay)
}

func TestRunBatch_FailureIsolated(t *testing.T) {
	items := []string{"a", "b", "c", "d"}
	bad := errors.New("boom")

	worker := func(_ context.Context, item string) (string, error) {
		if item == "b" {
			return "", bad
		}
		return item + "!", nil
	}

	out := search.RunBatch(context.Background(), items, worker, search.BatchConfig[string]{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
	})

	assert.Equal(t, 3, out.SuccessCount)
	assert.Equal(t, 1, out.FailureCount)
	assert.Equal(t, []string{"b"}, out.Failures)
	assert.ElementsMatch(t, []string{"a!", "c!", "d!"}, out.Results)
	assert.Equal(t, len(items), out.SuccessCount+out.FailureCount)
}

func TestRunBatch_ProgressAfterEveryItem(t *testing.T) {
	var mu sync.Mutex
	var counts []int
	var messages []string

	items := []int{0, 1, 2}
	out := search.RunBatch(context.Background(), items, func(_ context.Context, item int) (int, error) {
		return item, nil
	}, search.BatchConfig[int]{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
		Label:       func(i int) string { return fmt.Sprintf("item-%d", i) },
		OnProgress: func(msg string, completed int) {
			mu.Lock()
			defer mu.Unlock()
			messages = append(messages, msg)
			counts = append(counts, completed)
		},
	})

	require.Equal(t, 3, out.SuccessCount)
	// 3 per-item reports plus 1 batch-boundary report.
	assert.Len(t, counts, 4)
	assert.Equal(t, 3, counts[len(counts)-1])
	assert.Contains(t, messages[0], "item-")
}

func TestRunBatch_CancelledContextAccountsForAllItems(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	items := []int{0, 1, 2, 3, 4, 5}
	var calls int
	var mu sync.Mutex

	worker := func(_ context.Context, item int) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		cancel() // cancel during the first batch
		return item, nil
	}

	out := search.RunBatch(ctx, items, worker, search.BatchConfig[int]{
		Concurrency: 2,
		BatchDelay:  time.Millisecond,
	})

	assert.Equal(t, len(items), out.SuccessCount+out.FailureCount)
	mu.Lock()
	assert.Equal(t, 2, calls, "only the first slice ran")
	mu.Unlock()
}
