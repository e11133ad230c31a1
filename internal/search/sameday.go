package search

import (
	"context"
	"fmt"
	"time"

	"github.com/farescout/farescout/internal/journey"
)

const (
	// outboundAnchorHour anchors the outbound query on each date.
	outboundAnchorHour = 6

	// returnAnchorHour anchors the return query on each date.
	returnAnchorHour = 18

	// earliestReturnMinutes excludes return departures in [00:00,
	// 06:00): those belong to the next day and are invalid for
	// same-day travel.
	earliestReturnMinutes = 6 * 60

	// defaultOutboundArrival is the fallback outbound constraint when
	// no preference is supplied: arrive before noon.
	defaultOutboundArrival = 12 * 60
)

// SameDayReturn searches, for every date in the range, the cheapest
// outbound journey and the cheapest same-day return journey. The two
// sides are minimized independently and their prices summed; the true
// cheapest combination may differ when fares are bundled.
func (s *Service) SameDayReturn(ctx context.Context, p Params, progress ProgressFunc) (*Outcome, error) {
	if err := s.validateRange(p); err != nil {
		return nil, err
	}

	dates := dateRange(p)
	worker := func(ctx context.Context, date time.Time) (DateResult, error) {
		return RetryItem(ctx, s.cfg.ItemRetry, dateLabel(date), s.logger, func(ctx context.Context) (DateResult, error) {
			return s.sameDayDate(ctx, p, date)
		})
	}

	batch := RunBatch(ctx, dates, worker, s.batchConfig(progress, nil))
	return outcomeFromBatch(batch, nil), nil
}

// sameDayDate searches one date: outbound anchored at 06:00 and return
// anchored at 18:00, with the return origin overridable to a different
// city than the destination.
func (s *Service) sameDayDate(ctx context.Context, p Params, date time.Time) (DateResult, error) {
	outbound, err := s.provider.Journeys(ctx, s.query(p.Origin, p.Destination, atHour(date, outboundAnchorHour)))
	if err != nil {
		return DateResult{}, fmt.Errorf("outbound query: %w", err)
	}

	returnOrigin := p.ReturnOrigin
	if returnOrigin == "" {
		returnOrigin = p.Destination
	}
	returning, err := s.provider.Journeys(ctx, s.query(returnOrigin, p.Origin, atHour(date, returnAnchorHour)))
	if err != nil {
		return DateResult{}, fmt.Errorf("return query: %w", err)
	}

	outValid := filterOutbound(journey.FilterPriced(outbound), p.Preference)
	if len(outValid) == 0 {
		return DateResult{}, fmt.Errorf("no suitable outbound journeys found for %s: %w", dateLabel(date), journey.ErrNoJourneys)
	}

	retValid := filterSameDayReturn(journey.FilterPriced(returning), p.Preference)
	if len(retValid) == 0 {
		return DateResult{}, fmt.Errorf("no suitable return journeys found for %s: %w", dateLabel(date), journey.ErrNoJourneys)
	}

	cheapestOut := journey.ExtractRecord(journey.SelectCheapest(outValid))
	cheapestRet := journey.ExtractRecord(journey.SelectCheapest(retValid))

	return DateResult{
		Date:       truncateToDay(date),
		TotalPrice: cheapestOut.Price + cheapestRet.Price,
		Currency:   cheapestOut.Currency,
		Outbound:   &cheapestOut,
		Return:     &cheapestRet,
	}, nil
}

// filterOutbound applies the supplied preference, or the default
// "arrival before noon" constraint when none is given.
func filterOutbound(options []*journey.Option, pref *journey.TimePreference) []*journey.Option {
	valid := make([]*journey.Option, 0, len(options))
	for _, o := range options {
		if pref != nil {
			if journey.SatisfiesPreference(o, *pref) {
				valid = append(valid, o)
			}
			continue
		}
		if journey.MinutesOfDay(o.Arrival()) <= defaultOutboundArrival {
			valid = append(valid, o)
		}
	}
	return valid
}

// filterSameDayReturn drops early-morning departures before applying any
// supplied preference.
func filterSameDayReturn(options []*journey.Option, pref *journey.TimePreference) []*journey.Option {
	valid := make([]*journey.Option, 0, len(options))
	for _, o := range options {
		if journey.MinutesOfDay(o.Departure()) < earliestReturnMinutes {
			continue
		}
		if pref != nil && !journey.SatisfiesPreference(o, *pref) {
			continue
		}
		valid = append(valid, o)
	}
	return valid
}
