// Package models provides request and response models for the FareScout API.
package models

import "time"

// TripType identifies a search strategy.
type TripType string

const (
	TripSameDayReturn    TripType = "SAME_DAY_RETURN"
	TripOneWay           TripType = "ONE_WAY"
	TripFixedReturn      TripType = "FIXED_RETURN"
	TripFlexibleDuration TripType = "FLEXIBLE_DURATION"
)

// TimeBand represents a named departure window.
type TimeBand string

const (
	BandEarly     TimeBand = "EARLY"
	BandMorning   TimeBand = "MORNING"
	BandAfternoon TimeBand = "AFTERNOON"
	BandEvening   TimeBand = "EVENING"
	BandLate      TimeBand = "LATE"
)

// PagedResponseMeta contains pagination metadata.
type PagedResponseMeta struct {
	Limit      int     `json:"limit"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a helper type for time.Time with custom JSON formatting.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	// Remove quotes
	s := string(data[1 : len(data)-1])
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
