package search

import (
	"context"
	"fmt"
	"time"

	"github.com/farescout/farescout/internal/journey"
)

// FixedReturn searches every outbound date in the range plus one fixed
// return date, producing the cross-combination of each successful
// outbound with the single return result. Both sub-searches run as
// nested one-way searches with progress suppressed.
func (s *Service) FixedReturn(ctx context.Context, p Params, progress ProgressFunc) (*Outcome, error) {
	if err := s.validateRange(p); err != nil {
		return nil, err
	}
	if p.ReturnDate.IsZero() {
		return nil, ErrMissingReturnDate
	}

	outbound, err := s.OneWay(ctx, p, nil)
	if err != nil {
		return nil, fmt.Errorf("outbound range search: %w", err)
	}

	ret, err := s.OneWay(ctx, s.returnParams(p, p.ReturnDate), nil)
	if err != nil {
		return nil, fmt.Errorf("return date search: %w", err)
	}

	outcome := &Outcome{
		Failures:     append(append([]string{}, outbound.Failures...), ret.Failures...),
		FailureCount: outbound.FailureCount + ret.FailureCount,
	}
	if outbound.SuccessCount == 0 || ret.SuccessCount == 0 {
		return outcome, nil
	}

	back := ret.Results[0]
	for _, out := range outbound.Results {
		outcome.Results = append(outcome.Results, DateResult{
			Date:       out.Date,
			ReturnDate: truncateToDay(p.ReturnDate),
			TotalPrice: out.TotalPrice + back.TotalPrice,
			Currency:   out.Currency,
			Outbound:   out.Outbound,
			Return:     back.Outbound,
		})
		outcome.SuccessCount++
	}

	if progress != nil {
		progress(fmt.Sprintf("combined %d outbound dates with return on %s", outbound.SuccessCount, dateLabel(p.ReturnDate)), outcome.SuccessCount)
	}

	return outcome, nil
}

// FlexibleDuration searches every candidate departure date in the range
// with the return date derived as departure + Nights calendar days. Each
// departure date is one work item in the outer batch; its two one-way
// sub-searches run nested with progress suppressed.
func (s *Service) FlexibleDuration(ctx context.Context, p Params, progress ProgressFunc) (*Outcome, error) {
	if err := s.validateRange(p); err != nil {
		return nil, err
	}
	if p.Nights < 1 {
		return nil, ErrInvalidNights
	}

	label := func(dep time.Time) string {
		return pairLabel(dep, dep.AddDate(0, 0, p.Nights))
	}

	dates := dateRange(p)
	worker := func(ctx context.Context, dep time.Time) (DateResult, error) {
		return RetryItem(ctx, s.cfg.ItemRetry, label(dep), s.logger, func(ctx context.Context) (DateResult, error) {
			return s.flexibleDate(ctx, p, dep)
		})
	}

	batch := RunBatch(ctx, dates, worker, s.batchConfig(progress, label))
	return outcomeFromBatch(batch, label), nil
}

// flexibleDate prices one departure/return pair as two nested single-date
// one-way searches. AddDate handles month and year rollover.
func (s *Service) flexibleDate(ctx context.Context, p Params, dep time.Time) (DateResult, error) {
	dep = truncateToDay(dep)
	ret := dep.AddDate(0, 0, p.Nights)

	outbound, err := s.OneWay(ctx, singleDate(p, dep), nil)
	if err != nil {
		return DateResult{}, err
	}
	if outbound.SuccessCount == 0 {
		return DateResult{}, fmt.Errorf("no suitable outbound journeys found for %s: %w", dateLabel(dep), journey.ErrNoJourneys)
	}

	back, err := s.OneWay(ctx, s.returnParams(p, ret), nil)
	if err != nil {
		return DateResult{}, err
	}
	if back.SuccessCount == 0 {
		return DateResult{}, fmt.Errorf("no suitable return journeys found for %s: %w", dateLabel(ret), journey.ErrNoJourneys)
	}

	out := outbound.Results[0]
	in := back.Results[0]
	return DateResult{
		Date:       dep,
		ReturnDate: ret,
		TotalPrice: out.TotalPrice + in.TotalPrice,
		Currency:   out.Currency,
		Outbound:   out.Outbound,
		Return:     in.Outbound,
	}, nil
}

// singleDate narrows p to one outbound date.
func singleDate(p Params, date time.Time) Params {
	p.Start = date
	p.End = date
	return p
}

// returnParams builds the reversed single-date params for a return leg,
// honoring the return-origin override.
func (s *Service) returnParams(p Params, date time.Time) Params {
	origin := p.ReturnOrigin
	if origin == "" {
		origin = p.Destination
	}
	return Params{
		Origin:        origin,
		Destination:   p.Origin,
		Start:         date,
		End:           date,
		DepartureHour: p.DepartureHour,
		Preference:    p.Preference,
	}
}
