package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/savedsearch"
	"github.com/farescout/farescout/internal/search"
)

// SearchRunner executes a fare search.
type SearchRunner interface {
	Run(ctx context.Context, req search.Request, progress search.ProgressFunc) (*search.Outcome, error)
}

// SearchStore provides the saved searches the runner executes.
type SearchStore interface {
	ListEnabled(ctx context.Context) ([]*savedsearch.SavedSearch, error)
	MarkRun(ctx context.Context, id string, ranAt time.Time) error
}

// Runner executes enabled saved searches in the background.
type Runner struct {
	config RunnerConfig
	logger zerolog.Logger

	store    SearchStore
	searcher SearchRunner

	metrics *RunnerMetrics
}

// RunnerMetrics tracks runner job statistics.
type RunnerMetrics struct {
	mu sync.RWMutex

	TotalRuns       int64
	SearchesRun     int64
	SearchesFailed  int64
	SearchesSkipped int64
	DatesFound      int64
	DatesFailed     int64

	LastRunAt       time.Time
	LastRunDuration time.Duration
	TotalDuration   time.Duration
}

// RunnerJobConfig holds configuration for creating a Runner.
type RunnerJobConfig struct {
	Config   RunnerConfig
	Logger   zerolog.Logger
	Store    SearchStore
	Searcher SearchRunner
}

// NewRunner creates a new saved search runner.
func NewRunner(cfg RunnerJobConfig) *Runner {
	return &Runner{
		config:   cfg.Config.withDefaults(),
		logger:   cfg.Logger,
		store:    cfg.Store,
		searcher: cfg.Searcher,
		metrics:  &RunnerMetrics{},
	}
}

// RunResult contains the result of one runner invocation.
type RunResult struct {
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
	TotalSearches int
	Successful    int
	Failed        int
	Skipped       int
	DatesFound    int
	DatesFailed   int
	Errors        []RunError
}

// RunError records a saved search that could not be executed.
type RunError struct {
	SearchID string
	Label    string
	Error    string
}

// Run executes every enabled saved search that is due.
func (j *Runner) Run(ctx context.Context) *RunResult {
	return j.run(ctx, false)
}

// RunAll executes every enabled saved search regardless of when it
// last ran.
func (j *Runner) RunAll(ctx context.Context) *RunResult {
	return j.run(ctx, true)
}

func (j *Runner) run(ctx context.Context, force bool) *RunResult {
	startTime := time.Now()
	result := &RunResult{StartTime: startTime}

	searches, err := j.store.ListEnabled(ctx)
	if err != nil {
		j.logger.Error().Err(err).Msg("failed to list enabled saved searches")
		result.Errors = append(result.Errors, RunError{Error: err.Error()})
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(startTime)
		return result
	}

	due := make([]*savedsearch.SavedSearch, 0, len(searches))
	for _, s := range searches {
		if !force && s.LastRunAt != nil && startTime.Sub(*s.LastRunAt) < j.config.MinInterval {
			result.Skipped++
			continue
		}
		due = append(due, s)
	}
	result.TotalSearches = len(searches)

	j.logger.Info().
		Int("total", len(searches)).
		Int("due", len(due)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting saved search run")

	searchChan := make(chan *savedsearch.SavedSearch, len(due))
	resultsChan := make(chan searchResult, len(due))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			j.searchWorker(ctx, searchChan, resultsChan)
		}()
	}

	for _, s := range due {
		searchChan <- s
	}
	close(searchChan)

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	for sr := range resultsChan {
		if sr.err != nil {
			result.Failed++
			result.Errors = append(result.Errors, RunError{
				SearchID: sr.search.ID,
				Label:    sr.search.Label,
				Error:    sr.err.Error(),
			})
			continue
		}
		result.Successful++
		result.DatesFound += sr.outcome.SuccessCount
		result.DatesFailed += sr.outcome.FailureCount
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(startTime)

	j.updateMetrics(result)

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("dates_found", result.DatesFound).
		Msg("saved search run completed")

	return result
}

type searchResult struct {
	search  *savedsearch.SavedSearch
	outcome *search.Outcome
	err     error
}

func (j *Runner) searchWorker(ctx context.Context, searches <-chan *savedsearch.SavedSearch, results chan<- searchResult) {
	for s := range searches {
		select {
		case <-ctx.Done():
			return
		default:
			results <- j.runSearch(ctx, s)
		}
	}
}

func (j *Runner) runSearch(ctx context.Context, s *savedsearch.SavedSearch) searchResult {
	logger := j.logger.With().
		Str("search_id", s.ID).
		Str("user_id", s.UserID).
		Logger()

	searchCtx, cancel := context.WithTimeout(ctx, j.config.SearchTimeout)
	defer cancel()

	outcome, err := j.searcher.Run(searchCtx, s.Query.SearchRequest(), nil)
	if err != nil {
		logger.Error().Err(err).Msg("saved search execution failed")
		return searchResult{search: s, err: err}
	}

	if err := j.store.MarkRun(ctx, s.ID, time.Now()); err != nil {
		logger.Warn().Err(err).Msg("failed to record search run time")
	}

	logger.Info().
		Int("dates_found", outcome.SuccessCount).
		Int("dates_failed", outcome.FailureCount).
		Msg("saved search executed")

	return searchResult{search: s, outcome: outcome}
}

func (j *Runner) updateMetrics(result *RunResult) {
	j.metrics.mu.Lock()
	defer j.metrics.mu.Unlock()

	j.metrics.TotalRuns++
	j.metrics.SearchesRun += int64(result.Successful)
	j.metrics.SearchesFailed += int64(result.Failed)
	j.metrics.SearchesSkipped += int64(result.Skipped)
	j.metrics.DatesFound += int64(result.DatesFound)
	j.metrics.DatesFailed += int64(result.DatesFailed)
	j.metrics.LastRunAt = result.EndTime
	j.metrics.LastRunDuration = result.Duration
	j.metrics.TotalDuration += result.Duration
}

// GetMetrics returns a copy of the current metrics.
func (j *Runner) GetMetrics() RunnerMetrics {
	j.metrics.mu.RLock()
	defer j.metrics.mu.RUnlock()

	return RunnerMetrics{
		TotalRuns:       j.metrics.TotalRuns,
		SearchesRun:     j.metrics.SearchesRun,
		SearchesFailed:  j.metrics.SearchesFailed,
		SearchesSkipped: j.metrics.SearchesSkipped,
		DatesFound:      j.metrics.DatesFound,
		DatesFailed:     j.metrics.DatesFailed,
		LastRunAt:       j.metrics.LastRunAt,
		LastRunDuration: j.metrics.LastRunDuration,
		TotalDuration:   j.metrics.TotalDuration,
	}
}

// MetricsSnapshot returns a snapshot of the current metrics as a map.
func (j *Runner) MetricsSnapshot() map[string]interface{} {
	m := j.GetMetrics()
	return map[string]interface{}{
		"total_runs":        m.TotalRuns,
		"searches_run":      m.SearchesRun,
		"searches_failed":   m.SearchesFailed,
		"searches_skipped":  m.SearchesSkipped,
		"dates_found":       m.DatesFound,
		"dates_failed":      m.DatesFailed,
		"last_run_at":       m.LastRunAt,
		"last_run_duration": m.LastRunDuration.String(),
		"total_duration":    m.TotalDuration.String(),
	}
}
