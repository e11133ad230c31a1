package search

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/journey"
)

// ServiceConfig holds configuration for the search service.
type ServiceConfig struct {
	// Provider is the remote journey-query provider.
	Provider journey.Provider

	// Logger for search operations.
	Logger zerolog.Logger

	// Config tunes concurrency, retries and timeouts. Zero values fall
	// back to DefaultConfig.
	Config Config
}

// Service orchestrates multi-date journey searches against a provider.
type Service struct {
	provider journey.Provider
	logger   zerolog.Logger
	cfg      Config
}

// NewService creates a new search service.
func NewService(cfg ServiceConfig) *Service {
	config := cfg.Config
	defaults := DefaultConfig()
	if config.Concurrency <= 0 {
		config.Concurrency = defaults.Concurrency
	}
	if config.BatchDelay <= 0 {
		config.BatchDelay = defaults.BatchDelay
	}
	if config.ItemRetry.MaxAttempts <= 0 {
		config.ItemRetry = defaults.ItemRetry
	}
	if config.OperationRetry.MaxAttempts <= 0 {
		config.OperationRetry = defaults.OperationRetry
	}
	if config.ResultsPerQuery <= 0 {
		config.ResultsPerQuery = defaults.ResultsPerQuery
	}
	if config.MaxTransfers == 0 {
		config.MaxTransfers = defaults.MaxTransfers
	}

	return &Service{
		provider: cfg.Provider,
		logger:   cfg.Logger,
		cfg:      config,
	}
}

// Run executes a search request, guarding the whole strategy invocation
// with operation-level retries and a deadline. Per-date failures inside
// the batch never surface here; only systemic failures (provider
// unreachable, deadline elapsed) produce an error.
func (s *Service) Run(ctx context.Context, req Request, progress ProgressFunc) (*Outcome, error) {
	opContext := fmt.Sprintf("%s search %s -> %s", req.TripType, req.Params.Origin, req.Params.Destination)

	operation := func(ctx context.Context) (*Outcome, error) {
		return RetryOperation(ctx, s.cfg.OperationRetry, opContext, func(ctx context.Context) (*Outcome, error) {
			return s.dispatch(ctx, req, progress)
		})
	}

	start := time.Now()
	var outcome *Outcome
	var err error
	if s.cfg.Timeout > 0 {
		outcome, err = WithTimeout(ctx, s.cfg.Timeout, opContext, operation)
	} else {
		outcome, err = operation(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("trip_type", string(req.TripType)).
		Str("origin", req.Params.Origin).
		Str("destination", req.Params.Destination).
		Int("successful", outcome.SuccessCount).
		Int("failed", outcome.FailureCount).
		Dur("duration", time.Since(start)).
		Msg("search completed")

	return outcome, nil
}

func (s *Service) dispatch(ctx context.Context, req Request, progress ProgressFunc) (*Outcome, error) {
	switch req.TripType {
	case TripSameDayReturn:
		return s.SameDayReturn(ctx, req.Params, progress)
	case TripOneWay:
		return s.OneWay(ctx, req.Params, progress)
	case TripFixedReturn:
		return s.FixedReturn(ctx, req.Params, progress)
	case TripFlexibleDuration:
		return s.FlexibleDuration(ctx, req.Params, progress)
	default:
		return nil, fmt.Errorf("%q: %w", req.TripType, ErrUnknownTripType)
	}
}

// validateRange checks stations and the date range before batching.
func (s *Service) validateRange(p Params) error {
	if p.Origin == "" || p.Destination == "" {
		return ErrMissingStation
	}
	if p.Start.IsZero() {
		return fmt.Errorf("start date missing: %w", ErrInvalidDateRange)
	}
	if !p.End.IsZero() && truncateToDay(p.End).Before(truncateToDay(p.Start)) {
		return fmt.Errorf("end date before start date: %w", ErrInvalidDateRange)
	}
	return nil
}

// dateRange resolves the searched dates; a zero End means a single date.
func dateRange(p Params) []time.Time {
	end := p.End
	if end.IsZero() {
		end = p.Start
	}
	return expandDates(p.Start, end)
}

// batchConfig builds the executor config for date-keyed work items.
func (s *Service) batchConfig(progress ProgressFunc, label func(time.Time) string) BatchConfig[time.Time] {
	if label == nil {
		label = dateLabel
	}
	return BatchConfig[time.Time]{
		Concurrency: s.cfg.Concurrency,
		BatchDelay:  s.cfg.BatchDelay,
		OnProgress:  progress,
		Label:       label,
	}
}

// outcomeFromBatch converts the generic batch aggregate into a domain
// outcome, labeling failed items.
func outcomeFromBatch(batch BatchOutcome[time.Time, DateResult], label func(time.Time) string) *Outcome {
	if label == nil {
		label = dateLabel
	}
	out := &Outcome{
		Results:      batch.Results,
		SuccessCount: batch.SuccessCount,
		FailureCount: batch.FailureCount,
	}
	for _, item := range batch.Failures {
		out.Failures = append(out.Failures, label(item))
	}
	return out
}

// query builds a provider query with the service-wide filter flags.
func (s *Service) query(origin, destination string, departure time.Time) journey.Query {
	return journey.Query{
		Origin:       origin,
		Destination:  destination,
		Departure:    departure,
		Results:      s.cfg.ResultsPerQuery,
		MaxTransfers: s.cfg.MaxTransfers,
		RequireFare:  true,
		AllowWalking: true,
	}
}
