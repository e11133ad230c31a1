package models

// TimePreferenceSpec selects which departures a search considers.
// Either Band or a CustomStart/CustomEnd pair may be given, not both.
type TimePreferenceSpec struct {
	Band        *TimeBand    `json:"band,omitempty"`
	CustomStart *string      `json:"customStart,omitempty" validate:"omitempty,time_hhmm"`
	CustomEnd   *string      `json:"customEnd,omitempty" validate:"omitempty,time_hhmm"`
	Arrival     *ArrivalSpec `json:"arrival,omitempty"`
}

// ArrivalSpec constrains when a journey must arrive.
type ArrivalSpec struct {
	Type  string  `json:"type" validate:"required,oneof=BEFORE AFTER BETWEEN"`
	Start *string `json:"start,omitempty" validate:"omitempty,time_hhmm"`
	End   *string `json:"end,omitempty" validate:"omitempty,time_hhmm"`
}

// SearchRequest is the request body for running a fare search.
type SearchRequest struct {
	TripType       TripType            `json:"tripType" validate:"required"`
	Origin         string              `json:"origin" validate:"required"`
	Destination    string              `json:"destination" validate:"required"`
	ReturnOrigin   *string             `json:"returnOrigin,omitempty"`
	StartDate      string              `json:"startDate" validate:"required,date_yyyymmdd"`
	EndDate        *string             `json:"endDate,omitempty" validate:"omitempty,date_yyyymmdd"`
	ReturnDate     *string             `json:"returnDate,omitempty" validate:"omitempty,date_yyyymmdd"`
	Nights         *int                `json:"nights,omitempty" validate:"omitempty,gte=1"`
	DepartureHour  *int                `json:"departureHour,omitempty" validate:"omitempty,gte=0,lte=23"`
	TimePreference *TimePreferenceSpec `json:"timePreference,omitempty"`
}

// JourneyRecord is the flattened summary of a single cheapest journey.
type JourneyRecord struct {
	Departure Timestamp `json:"departure"`
	Arrival   Timestamp `json:"arrival"`
	Price     float64   `json:"price"`
	Currency  string    `json:"currency"`
	TrainName string    `json:"trainName"`
	Transfers int       `json:"transfers"`
	LegCount  int       `json:"legCount"`
}

// DateResult is the cheapest finding for one searched date (or date pair).
type DateResult struct {
	Date       string         `json:"date"`
	ReturnDate *string        `json:"returnDate,omitempty"`
	TotalPrice float64        `json:"totalPrice"`
	Currency   string         `json:"currency"`
	Outbound   *JourneyRecord `json:"outbound,omitempty"`
	Return     *JourneyRecord `json:"return,omitempty"`
}

// SearchResponse is the response body for a completed fare search.
type SearchResponse struct {
	Results      []DateResult `json:"results"`
	Failures     []string     `json:"failures"`
	SuccessCount int          `json:"successCount"`
	FailureCount int          `json:"failureCount"`
}
