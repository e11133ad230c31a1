// Package dbrest implements the journey provider against a
// transport.rest-style HAFAS endpoint.
package dbrest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/farescout/farescout/internal/journey"
	"github.com/farescout/farescout/internal/provider/resilience"
)

const (
	// ProviderName identifies this journey provider.
	ProviderName = "db-rest"

	// DefaultBaseURL is the public DB journey API base URL.
	DefaultBaseURL = "https://v6.db.transport.rest"
)

// ClientConfig holds configuration for the DB REST client.
type ClientConfig struct {
	// BaseURL is the API base URL (optional, defaults to the public
	// endpoint).
	BaseURL string

	// APIKey is an optional API token sent as a bearer header.
	APIKey string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a DB REST API client for journey searches.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a new DB REST client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// Journeys fetches journey options for the given query.
func (c *Client) Journeys(ctx context.Context, q journey.Query) ([]*journey.Option, error) {
	endpoint := fmt.Sprintf("%s/journeys?%s", c.baseURL, c.queryValues(q).Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", journey.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var decoded journeysResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	options := make([]*journey.Option, 0, len(decoded.Journeys))
	for i := range decoded.Journeys {
		options = append(options, toOption(&decoded.Journeys[i]))
	}

	c.logger.Debug().
		Str("origin", q.Origin).
		Str("destination", q.Destination).
		Time("departure", q.Departure).
		Int("options", len(options)).
		Msg("journeys fetched")

	return options, nil
}

func (c *Client) queryValues(q journey.Query) url.Values {
	values := url.Values{}
	values.Set("from", q.Origin)
	values.Set("to", q.Destination)
	values.Set("departure", q.Departure.Format(time.RFC3339))
	if q.Results > 0 {
		values.Set("results", strconv.Itoa(q.Results))
	}
	if q.MaxTransfers >= 0 {
		values.Set("transfers", strconv.Itoa(q.MaxTransfers))
	}
	if q.RequireFare {
		values.Set("tickets", "true")
	}
	values.Set("walking", strconv.FormatBool(q.AllowWalking))
	return values
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// toOption converts an API journey to the domain model. Walking legs map
// to a nil Line.
func toOption(j *apiJourney) *journey.Option {
	option := &journey.Option{
		Legs: make([]journey.Leg, 0, len(j.Legs)),
	}

	if j.Price != nil && j.Price.Amount > 0 {
		option.Price = &journey.Price{
			Amount:   j.Price.Amount,
			Currency: j.Price.Currency,
		}
	}

	for i := range j.Legs {
		option.Legs = append(option.Legs, toLeg(&j.Legs[i]))
	}

	return option
}

func toLeg(l *apiLeg) journey.Leg {
	leg := journey.Leg{
		Origin:           l.Origin.Name,
		Destination:      l.Destination.Name,
		Departure:        parseTime(l.Departure, l.PlannedDeparture),
		PlannedDeparture: parseTime(l.PlannedDeparture, l.Departure),
		Arrival:          parseTime(l.Arrival, l.PlannedArrival),
		PlannedArrival:   parseTime(l.PlannedArrival, l.Arrival),
	}

	if !l.Walking && l.Line != nil && l.Line.Name != "" {
		leg.Line = &journey.Line{
			Name:    l.Line.Name,
			Product: l.Line.Product,
		}
	}

	return leg
}

// parseTime parses the realtime timestamp, falling back to the planned
// one when the provider omits it.
func parseTime(primary, fallback string) time.Time {
	if primary != "" {
		if parsed, err := time.Parse(time.RFC3339, primary); err == nil {
			return parsed
		}
	}
	if fallback != "" {
		if parsed, err := time.Parse(time.RFC3339, fallback); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

// DB REST API response structures.

type journeysResponse struct {
	Journeys []apiJourney `json:"journeys"`
}

type apiJourney struct {
	Legs  []apiLeg  `json:"legs"`
	Price *apiPrice `json:"price"`
}

type apiLeg struct {
	Origin           apiStop  `json:"origin"`
	Destination      apiStop  `json:"destination"`
	Departure        string   `json:"departure"`
	PlannedDeparture string   `json:"plannedDeparture"`
	Arrival          string   `json:"arrival"`
	PlannedArrival   string   `json:"plannedArrival"`
	Walking          bool     `json:"walking"`
	Line             *apiLine `json:"line"`
}

type apiStop struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type apiLine struct {
	Name    string `json:"name"`
	Product string `json:"product"`
}

type apiPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}
