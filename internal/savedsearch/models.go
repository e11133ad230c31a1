// Package savedsearch provides saved fare search management.
package savedsearch

import (
	"errors"
	"fmt"
	"time"

	"github.com/farescout/farescout/internal/api/models"
	"github.com/farescout/farescout/internal/journey"
	"github.com/farescout/farescout/internal/search"
)

// Repository errors.
var (
	ErrSearchNotFound = errors.New("saved search not found")
)

// SavedSearch represents a stored fare search owned by a user.
type SavedSearch struct {
	ID        string
	UserID    string
	Label     string
	Query     Query
	Enabled   bool
	LastRunAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Query holds the parsed parameters of a fare search, ready to run.
type Query struct {
	TripType      search.TripType
	Origin        string
	Destination   string
	ReturnOrigin  string
	StartDate     time.Time
	EndDate       *time.Time
	ReturnDate    *time.Time
	Nights        *int
	DepartureHour *int
	Preference    *journey.TimePreference
}

// SearchRequest converts the query into a runnable search invocation.
func (q Query) SearchRequest() search.Request {
	p := search.Params{
		Origin:       q.Origin,
		Destination:  q.Destination,
		ReturnOrigin: q.ReturnOrigin,
		Start:        q.StartDate,
		Preference:   q.Preference,
	}
	if q.EndDate != nil {
		p.End = *q.EndDate
	}
	if q.ReturnDate != nil {
		p.ReturnDate = *q.ReturnDate
	}
	if q.Nights != nil {
		p.Nights = *q.Nights
	}
	if q.DepartureHour != nil {
		p.DepartureHour = *q.DepartureHour
	}
	return search.Request{TripType: q.TripType, Params: p}
}

const dateLayout = "2006-01-02"

var tripTypeFromAPI = map[models.TripType]search.TripType{
	models.TripSameDayReturn:    search.TripSameDayReturn,
	models.TripOneWay:           search.TripOneWay,
	models.TripFixedReturn:      search.TripFixedReturn,
	models.TripFlexibleDuration: search.TripFlexibleDuration,
}

var tripTypeToAPI = map[search.TripType]models.TripType{
	search.TripSameDayReturn:    models.TripSameDayReturn,
	search.TripOneWay:           models.TripOneWay,
	search.TripFixedReturn:      models.TripFixedReturn,
	search.TripFlexibleDuration: models.TripFlexibleDuration,
}

var bandFromAPI = map[models.TimeBand]journey.Band{
	models.BandEarly:     journey.BandEarly,
	models.BandMorning:   journey.BandMorning,
	models.BandAfternoon: journey.BandAfternoon,
	models.BandEvening:   journey.BandEvening,
	models.BandLate:      journey.BandLate,
}

var bandToAPI = map[journey.Band]models.TimeBand{
	journey.BandEarly:     models.BandEarly,
	journey.BandMorning:   models.BandMorning,
	journey.BandAfternoon: models.BandAfternoon,
	journey.BandEvening:   models.BandEvening,
	journey.BandLate:      models.BandLate,
}

// ParseQuery validates an API search request and converts it into a
// Query. A non-empty slice of field errors means the request is invalid.
func ParseQuery(req models.SearchRequest) (Query, []models.FieldError) {
	var errs []models.FieldError

	q := Query{
		Origin:      req.Origin,
		Destination: req.Destination,
	}

	tripType, ok := tripTypeFromAPI[req.TripType]
	if !ok {
		errs = append(errs, models.FieldError{Field: "tripType", Message: "must be one of SAME_DAY_RETURN, ONE_WAY, FIXED_RETURN, FLEXIBLE_DURATION"})
	}
	q.TripType = tripType

	if req.Origin == "" {
		errs = append(errs, models.FieldError{Field: "origin", Message: "is required"})
	}
	if req.Destination == "" {
		errs = append(errs, models.FieldError{Field: "destination", Message: "is required"})
	}
	if req.ReturnOrigin != nil {
		q.ReturnOrigin = *req.ReturnOrigin
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		errs = append(errs, models.FieldError{Field: "startDate", Message: "must be a date in YYYY-MM-DD format"})
	}
	q.StartDate = start

	if req.EndDate != nil {
		end, err := time.Parse(dateLayout, *req.EndDate)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "endDate", Message: "must be a date in YYYY-MM-DD format"})
		} else if end.Before(start) {
			errs = append(errs, models.FieldError{Field: "endDate", Message: "must be on or after startDate"})
		} else {
			q.EndDate = &end
		}
	}

	switch tripType {
	case search.TripFixedReturn:
		if req.ReturnDate == nil {
			errs = append(errs, models.FieldError{Field: "returnDate", Message: "is required for FIXED_RETURN searches"})
		}
	case search.TripFlexibleDuration:
		if req.Nights == nil || *req.Nights < 1 {
			errs = append(errs, models.FieldError{Field: "nights", Message: "must be at least 1 for FLEXIBLE_DURATION searches"})
		}
	}

	if req.ReturnDate != nil {
		ret, err := time.Parse(dateLayout, *req.ReturnDate)
		if err != nil {
			errs = append(errs, models.FieldError{Field: "returnDate", Message: "must be a date in YYYY-MM-DD format"})
		} else {
			q.ReturnDate = &ret
		}
	}

	if req.Nights != nil && *req.Nights >= 1 {
		q.Nights = req.Nights
	}

	if req.DepartureHour != nil {
		if *req.DepartureHour < 0 || *req.DepartureHour > 23 {
			errs = append(errs, models.FieldError{Field: "departureHour", Message: "must be between 0 and 23"})
		} else {
			q.DepartureHour = req.DepartureHour
		}
	}

	if req.TimePreference != nil {
		pref, prefErrs := parsePreference(*req.TimePreference)
		if len(prefErrs) > 0 {
			errs = append(errs, prefErrs...)
		} else {
			q.Preference = pref
		}
	}

	return q, errs
}

// parsePreference converts a time preference spec into domain form.
func parsePreference(spec models.TimePreferenceSpec) (*journey.TimePreference, []models.FieldError) {
	var errs []models.FieldError
	pref := &journey.TimePreference{Band: journey.BandAny}

	if spec.Band != nil && spec.CustomStart != nil {
		errs = append(errs, models.FieldError{Field: "timePreference", Message: "band and customStart are mutually exclusive"})
	}

	if spec.Band != nil {
		band, ok := bandFromAPI[*spec.Band]
		if !ok {
			errs = append(errs, models.FieldError{Field: "timePreference.band", Message: "must be one of EARLY, MORNING, AFTERNOON, EVENING, LATE"})
		}
		pref.Band = band
	}

	if spec.CustomStart != nil {
		start, ok := parseHHMM(*spec.CustomStart)
		if !ok {
			errs = append(errs, models.FieldError{Field: "timePreference.customStart", Message: "must be a time in HH:mm format"})
		}
		pref.Band = journey.BandCustom
		pref.CustomStart = start
		pref.CustomEnd = -1
		if spec.CustomEnd != nil {
			end, ok := parseHHMM(*spec.CustomEnd)
			if !ok {
				errs = append(errs, models.FieldError{Field: "timePreference.customEnd", Message: "must be a time in HH:mm format"})
			}
			pref.CustomEnd = end
		}
	} else if spec.CustomEnd != nil {
		errs = append(errs, models.FieldError{Field: "timePreference.customEnd", Message: "requires customStart"})
	}

	if spec.Arrival != nil {
		arrival, arrErrs := parseArrival(*spec.Arrival)
		if len(arrErrs) > 0 {
			errs = append(errs, arrErrs...)
		} else {
			pref.Arrival = arrival
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return pref, nil
}

func parseArrival(spec models.ArrivalSpec) (*journey.ArrivalConstraint, []models.FieldError) {
	var errs []models.FieldError
	c := &journey.ArrivalConstraint{}

	switch spec.Type {
	case "BEFORE":
		c.Type = journey.ConstraintBefore
	case "AFTER":
		c.Type = journey.ConstraintAfter
	case "BETWEEN":
		c.Type = journey.ConstraintBetween
	default:
		errs = append(errs, models.FieldError{Field: "timePreference.arrival.type", Message: "must be one of BEFORE, AFTER, BETWEEN"})
	}

	if spec.Start == nil {
		errs = append(errs, models.FieldError{Field: "timePreference.arrival.start", Message: "is required"})
	} else {
		start, ok := parseHHMM(*spec.Start)
		if !ok {
			errs = append(errs, models.FieldError{Field: "timePreference.arrival.start", Message: "must be a time in HH:mm format"})
		}
		c.Start = start
	}

	if c.Type == journey.ConstraintBetween {
		if spec.End == nil {
			errs = append(errs, models.FieldError{Field: "timePreference.arrival.end", Message: "is required for BETWEEN constraints"})
		} else {
			end, ok := parseHHMM(*spec.End)
			if !ok {
				errs = append(errs, models.FieldError{Field: "timePreference.arrival.end", Message: "must be a time in HH:mm format"})
			}
			c.End = end
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return c, nil
}

// Model converts the query back into its API representation.
func (q Query) Model() models.SearchRequest {
	req := models.SearchRequest{
		TripType:    tripTypeToAPI[q.TripType],
		Origin:      q.Origin,
		Destination: q.Destination,
		StartDate:   q.StartDate.Format(dateLayout),
	}
	if q.ReturnOrigin != "" {
		ro := q.ReturnOrigin
		req.ReturnOrigin = &ro
	}
	if q.EndDate != nil {
		end := q.EndDate.Format(dateLayout)
		req.EndDate = &end
	}
	if q.ReturnDate != nil {
		ret := q.ReturnDate.Format(dateLayout)
		req.ReturnDate = &ret
	}
	req.Nights = q.Nights
	req.DepartureHour = q.DepartureHour
	if q.Preference != nil {
		req.TimePreference = preferenceModel(*q.Preference)
	}
	return req
}

func preferenceModel(pref journey.TimePreference) *models.TimePreferenceSpec {
	spec := &models.TimePreferenceSpec{}

	switch pref.Band {
	case journey.BandCustom:
		start := formatHHMM(pref.CustomStart)
		spec.CustomStart = &start
		if pref.CustomEnd >= 0 {
			end := formatHHMM(pref.CustomEnd)
			spec.CustomEnd = &end
		}
	case journey.BandAny, "":
		// no departure window
	default:
		if band, ok := bandToAPI[pref.Band]; ok {
			spec.Band = &band
		}
	}

	if pref.Arrival != nil {
		arrival := &models.ArrivalSpec{}
		switch pref.Arrival.Type {
		case journey.ConstraintBefore:
			arrival.Type = "BEFORE"
		case journey.ConstraintAfter:
			arrival.Type = "AFTER"
		case journey.ConstraintBetween:
			arrival.Type = "BETWEEN"
		}
		start := formatHHMM(pref.Arrival.Start)
		arrival.Start = &start
		if pref.Arrival.Type == journey.ConstraintBetween {
			end := formatHHMM(pref.Arrival.End)
			arrival.End = &end
		}
		spec.Arrival = arrival
	}

	return spec
}

// parseHHMM converts an HH:mm string to minutes since midnight.
func parseHHMM(s string) (int, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return t.Hour()*60 + t.Minute(), true
}

func formatHHMM(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
