package journey

import "time"

// Band is a named departure time-of-day window.
type Band string

const (
	BandAny       Band = "any"
	BandEarly     Band = "early"     // 04:00-07:59
	BandMorning   Band = "morning"   // 08:00-11:59
	BandAfternoon Band = "afternoon" // 12:00-17:59
	BandEvening   Band = "evening"   // 18:00-21:59
	BandLate      Band = "late"      // 22:00-03:59, wraps midnight
	BandCustom    Band = "custom"
)

// Band bounds in minutes since midnight, inclusive on both sides.
var bandWindows = map[Band][2]int{
	BandEarly:     {4 * 60, 8*60 - 1},
	BandMorning:   {8 * 60, 12*60 - 1},
	BandAfternoon: {12 * 60, 18*60 - 1},
	BandEvening:   {18 * 60, 22*60 - 1},
	BandLate:      {22 * 60, 4*60 - 1},
}

// ConstraintType categorizes an arrival-time constraint.
type ConstraintType string

const (
	ConstraintAny     ConstraintType = "any"
	ConstraintBefore  ConstraintType = "before"
	ConstraintAfter   ConstraintType = "after"
	ConstraintBetween ConstraintType = "between"
)

// ArrivalConstraint restricts when a journey may arrive.
type ArrivalConstraint struct {
	Type ConstraintType

	// Start and End are minutes since midnight. End is only used for
	// ConstraintBetween.
	Start int
	End   int
}

// TimePreference describes when a journey should depart, and optionally
// when it must arrive.
type TimePreference struct {
	// Band selects a fixed departure window, BandCustom for a custom
	// range, or BandAny.
	Band Band

	// CustomStart/CustomEnd are minutes since midnight, used when Band
	// is BandCustom. CustomEnd < 0 means "at or after CustomStart".
	CustomStart int
	CustomEnd   int

	// Arrival optionally constrains the arrival time.
	Arrival *ArrivalConstraint
}

// MinutesOfDay returns t's offset from midnight in minutes.
func MinutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// inWindow reports whether m falls inside [start, end], treating
// end < start as an overnight range that wraps midnight.
func inWindow(m, start, end int) bool {
	if end < start {
		return m >= start || m <= end
	}
	return m >= start && m <= end
}

// MatchesPreference reports whether a departure at m minutes since
// midnight satisfies the preference's departure window.
func MatchesPreference(m int, pref TimePreference) bool {
	switch pref.Band {
	case BandAny, "":
		return true
	case BandCustom:
		if pref.CustomEnd < 0 {
			return m >= pref.CustomStart
		}
		return inWindow(m, pref.CustomStart, pref.CustomEnd)
	default:
		w, ok := bandWindows[pref.Band]
		if !ok {
			return true
		}
		return inWindow(m, w[0], w[1])
	}
}

// MeetsArrival reports whether an arrival at m minutes since midnight
// satisfies the constraint. Bounds are inclusive.
func MeetsArrival(m int, c ArrivalConstraint) bool {
	switch c.Type {
	case ConstraintBefore:
		return m <= c.Start
	case ConstraintAfter:
		return m >= c.Start
	case ConstraintBetween:
		return inWindow(m, c.Start, c.End)
	default:
		return true
	}
}

// SatisfiesPreference checks both sides of a preference against an
// option's first departure and last arrival.
func SatisfiesPreference(o *Option, pref TimePreference) bool {
	if !MatchesPreference(MinutesOfDay(o.Departure()), pref) {
		return false
	}
	if pref.Arrival != nil && !MeetsArrival(MinutesOfDay(o.Arrival()), *pref.Arrival) {
		return false
	}
	return true
}
