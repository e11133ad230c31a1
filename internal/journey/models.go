// Package journey provides the domain model for train journey searches:
// provider queries, journey options with legs and fares, and the derived
// summary records used by the search strategies.
package journey

import (
	"context"
	"errors"
	"time"
)

// Domain errors.
var (
	ErrProviderUnavailable = errors.New("journey provider unavailable")
	ErrNoJourneys          = errors.New("no journeys found")
)

// Query describes a single remote journey lookup. Queries are immutable and
// constructed fresh per provider call.
type Query struct {
	// Origin is the origin station ID (e.g., "8011160" for Berlin Hbf).
	Origin string

	// Destination is the destination station ID.
	Destination string

	// Departure is the requested departure timestamp.
	Departure time.Time

	// Results is a hint for how many journey options to return.
	Results int

	// MaxTransfers limits the number of transfers (-1 for no limit).
	MaxTransfers int

	// RequireFare asks the provider to only return options it can price.
	RequireFare bool

	// AllowWalking includes walking segments between nearby stops.
	AllowWalking bool
}

// Line identifies the train operating a transportation leg.
type Line struct {
	// Name is the display name (e.g., "ICE 587").
	Name string

	// Product is the line category (e.g., "nationalExpress", "regional").
	Product string
}

// Leg is one segment of a journey. A leg without a Line is a walking or
// transfer segment, not a transportation leg.
type Leg struct {
	// Origin and Destination are stop names.
	Origin      string
	Destination string

	// PlannedDeparture/PlannedArrival are the scheduled times;
	// Departure/Arrival include realtime data when available.
	PlannedDeparture time.Time
	Departure        time.Time
	PlannedArrival   time.Time
	Arrival          time.Time

	// Line is nil for walking/transfer legs.
	Line *Line
}

// IsTransportation reports whether this leg is operated by a line.
func (l *Leg) IsTransportation() bool {
	return l.Line != nil
}

// Price is a journey fare. Options without a price are unusable for
// cheapest-fare selection.
type Price struct {
	Amount   float64
	Currency string
}

// Option is one journey alternative returned by the provider: an ordered
// sequence of legs plus an optional fare.
type Option struct {
	Legs  []Leg
	Price *Price
}

// HasPrice reports whether the provider found a fare for this option.
func (o *Option) HasPrice() bool {
	return o.Price != nil
}

// Departure returns the departure time of the first leg.
func (o *Option) Departure() time.Time {
	if len(o.Legs) == 0 {
		return time.Time{}
	}
	return o.Legs[0].Departure
}

// Arrival returns the arrival time of the last leg.
func (o *Option) Arrival() time.Time {
	if len(o.Legs) == 0 {
		return time.Time{}
	}
	return o.Legs[len(o.Legs)-1].Arrival
}

// Record is the normalized summary of a journey option used in search
// results: combined train name, transfer count, fare.
type Record struct {
	// Departure and Arrival bound the whole journey.
	Departure time.Time
	Arrival   time.Time

	// Price and Currency are taken from the option's fare.
	Price    float64
	Currency string

	// TrainName is the deduplicated transportation line names joined
	// with " + " (e.g., "ICE 1601 + RE 4").
	TrainName string

	// Transfers is the number of changes between transportation legs.
	// Always >= 0.
	Transfers int

	// LegCount is the total number of legs, walking included.
	LegCount int
}

// Provider is the remote journey-query interface consumed by the search
// strategies.
type Provider interface {
	// Journeys fetches journey options for the given query. Options may
	// be returned with or without a price.
	Journeys(ctx context.Context, query Query) ([]*Option, error)

	// Name returns the provider name for logging.
	Name() string
}
