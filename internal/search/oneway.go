package search

import (
	"context"
	"fmt"
	"time"

	"github.com/farescout/farescout/internal/journey"
)

// OneWay searches, for every date in the range, the single cheapest
// journey from origin to destination.
func (s *Service) OneWay(ctx context.Context, p Params, progress ProgressFunc) (*Outcome, error) {
	if err := s.validateRange(p); err != nil {
		return nil, err
	}

	dates := dateRange(p)
	worker := func(ctx context.Context, date time.Time) (DateResult, error) {
		return RetryItem(ctx, s.cfg.ItemRetry, dateLabel(date), s.logger, func(ctx context.Context) (DateResult, error) {
			return s.oneWayDate(ctx, p, date)
		})
	}

	batch := RunBatch(ctx, dates, worker, s.batchConfig(progress, nil))
	return outcomeFromBatch(batch, nil), nil
}

// oneWayDate searches one date. The query is anchored at the departure
// hour; when that anchor is before noon a second query 12 hours later
// widens the candidate set to the whole day, with duplicates removed by
// first-leg departure timestamp (first occurrence wins).
func (s *Service) oneWayDate(ctx context.Context, p Params, date time.Time) (DateResult, error) {
	anchor := p.DepartureHour
	if anchor == 0 {
		anchor = outboundAnchorHour
	}

	options, err := s.provider.Journeys(ctx, s.query(p.Origin, p.Destination, atHour(date, anchor)))
	if err != nil {
		return DateResult{}, fmt.Errorf("journey query: %w", err)
	}

	if anchor < 12 {
		later, err := s.provider.Journeys(ctx, s.query(p.Origin, p.Destination, atHour(date, anchor+12)))
		if err != nil {
			return DateResult{}, fmt.Errorf("afternoon journey query: %w", err)
		}
		options = dedupeByDeparture(append(options, later...))
	}

	valid := journey.FilterPriced(options)
	if p.Preference != nil {
		filtered := make([]*journey.Option, 0, len(valid))
		for _, o := range valid {
			if journey.SatisfiesPreference(o, *p.Preference) {
				filtered = append(filtered, o)
			}
		}
		valid = filtered
	}

	if len(valid) == 0 {
		return DateResult{}, fmt.Errorf("no suitable journeys found for %s: %w", dateLabel(date), journey.ErrNoJourneys)
	}

	cheapest := journey.ExtractRecord(journey.SelectCheapest(valid))
	return DateResult{
		Date:       truncateToDay(date),
		TotalPrice: cheapest.Price,
		Currency:   cheapest.Currency,
		Outbound:   &cheapest,
	}, nil
}

// dedupeByDeparture removes options sharing a first-leg departure
// timestamp, keeping the first occurrence. The two anchored queries of a
// one-way search overlap around midday; ordering is preserved so
// earlier-listed options win ties.
func dedupeByDeparture(options []*journey.Option) []*journey.Option {
	seen := make(map[int64]bool, len(options))
	unique := make([]*journey.Option, 0, len(options))
	for _, o := range options {
		if o == nil || len(o.Legs) == 0 {
			continue
		}
		key := o.Legs[0].Departure.UnixNano()
		if seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, o)
	}
	return unique
}
