package search

import (
	"time"

	"github.com/farescout/farescout/internal/journey"
)

// TripType selects a search strategy.
type TripType string

const (
	// TripSameDayReturn searches outbound and return journeys on the
	// same date, priced independently.
	TripSameDayReturn TripType = "same_day_return"

	// TripOneWay searches a single journey per date.
	TripOneWay TripType = "one_way"

	// TripFixedReturn pairs every outbound date in a range with one
	// fixed return date.
	TripFixedReturn TripType = "fixed_return"

	// TripFlexibleDuration searches departure dates in a range with the
	// return date derived as departure + N nights.
	TripFlexibleDuration TripType = "flexible_duration"
)

// Params are the inputs to a strategy invocation. Validation happens
// before any batching begins.
type Params struct {
	// Origin and Destination are provider station IDs.
	Origin      string
	Destination string

	// ReturnOrigin optionally starts the return leg from a different
	// station than Destination.
	ReturnOrigin string

	// Start and End bound the searched date range, inclusive. A zero
	// End means a single-date search on Start.
	Start time.Time
	End   time.Time

	// ReturnDate is the fixed return date for TripFixedReturn.
	ReturnDate time.Time

	// Nights is the trip duration for TripFlexibleDuration.
	Nights int

	// DepartureHour anchors one-way queries. Zero means 06:00.
	DepartureHour int

	// Preference optionally filters journeys by departure window and
	// arrival constraint.
	Preference *journey.TimePreference
}

// Request is a complete search invocation as accepted by Service.Run.
type Request struct {
	TripType TripType
	Params   Params
}

// DateResult is the best-effort cheapest result for one date (or date
// pair for multi-day trips).
type DateResult struct {
	// Date is the outbound date.
	Date time.Time

	// ReturnDate is set for multi-day trips, zero otherwise.
	ReturnDate time.Time

	// TotalPrice sums the outbound and return fares. Outbound and
	// return are each minimized independently, not jointly.
	TotalPrice float64
	Currency   string

	// Outbound is always set. Return is nil for one-way results.
	Outbound *journey.Record
	Return   *journey.Record
}

// Outcome is the aggregate result of a strategy invocation. A partially
// successful outcome (some failures, some successes) is a successful
// return: callers inspect FailureCount rather than relying on errors.
type Outcome struct {
	// Results holds successful per-date results in completion order.
	Results []DateResult

	// Failures identifies the dates (or date pairs) that produced no
	// valid journey.
	Failures []string

	SuccessCount int
	FailureCount int
}

// dateLabel identifies a work item in failures and progress output.
func dateLabel(d time.Time) string {
	return d.Format("2006-01-02")
}

func pairLabel(dep, ret time.Time) string {
	return dateLabel(dep) + " -> " + dateLabel(ret)
}

// truncateToDay drops the time-of-day component in d's location.
func truncateToDay(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// atHour returns the given date anchored at hour o'clock.
func atHour(date time.Time, hour int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, date.Location())
}

// expandDates lists every calendar day from start through end, inclusive.
func expandDates(start, end time.Time) []time.Time {
	start = truncateToDay(start)
	end = truncateToDay(end)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}
