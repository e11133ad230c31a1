package search_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farescout/farescout/internal/journey"
	"github.com/farescout/farescout/internal/search"
)

const (
	berlin   = "8011160"
	munich   = "8000261"
	augsburg = "8000013"
)

// mockProvider is a scripted journey provider keyed by
// "origin->destination@date,hour".
type mockProvider struct {
	mu       sync.Mutex
	journeys map[string][]*journey.Option
	errs     map[string]error
	err      error
	delay    time.Duration
	calls    []journey.Query
}

func newMockProvider() *mockProvider {
	return &mockProvider{
		journeys: make(map[string][]*journey.Option),
		errs:     make(map[string]error),
	}
}

func queryKey(origin, destination string, departure time.Time) string {
	return fmt.Sprintf("%s->%s@%s", origin, destination, departure.Format("2006-01-02,15"))
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) Journeys(_ context.Context, q journey.Query) ([]*journey.Option, error) {
	m.mu.Lock()
	m.calls = append(m.calls, q)
	key := queryKey(q.Origin, q.Destination, q.Departure)
	delay := m.delay
	err := m.err
	keyErr := m.errs[key]
	options := m.journeys[key]
	m.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}
	if keyErr != nil {
		return nil, keyErr
	}
	return options, nil
}

func (m *mockProvider) add(origin, destination string, departure time.Time, options ...*journey.Option) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := queryKey(origin, destination, departure)
	m.journeys[key] = append(m.journeys[key], options...)
}

func (m *mockProvider) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// option builds a priced single-train journey.
func option(train string, price float64, dep, arr time.Time, transfers int) *journey.Option {
	legs := []journey.Leg{{
		Departure: dep,
		Arrival:   arr,
		Line:      &journey.Line{Name: train},
	}}
	for i := 0; i < transfers; i++ {
		legs = append(legs, journey.Leg{
			Departure: arr.Add(time.Duration(i+1) * 10 * time.Minute),
			Arrival:   arr.Add(time.Duration(i+1) * 40 * time.Minute),
			Line:      &journey.Line{Name: fmt.Sprintf("%s (leg %d)", train, i+2)},
		})
	}
	return &journey.Option{
		Legs:  legs,
		Price: &journey.Price{Amount: price, Currency: "EUR"},
	}
}

func unpriced(dep, arr time.Time) *journey.Option {
	return &journey.Option{
		Legs: []journey.Leg{{
			Departure: dep,
			Arrival:   arr,
			Line:      &journey.Line{Name: "ICE 999"},
		}},
	}
}

func newTestService(provider journey.Provider) *search.Service {
	return search.NewService(search.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		Config: search.Config{
			Concurrency:     2,
			BatchDelay:      time.Millisecond,
			ItemRetry:       search.ItemRetryConfig{MaxAttempts: 2, Delay: time.Millisecond},
			OperationRetry:  search.RetryConfig{MaxAttempts: 2, BaseDelay: time.Millisecond},
			ResultsPerQuery: 10,
			MaxTransfers:    -1,
		},
	})
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func at(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

func TestSameDayReturn_CheapestEachSideIndependently(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
		option("ICE 1501", 60.00, at(date, 7, 0), at(date, 11, 0), 1),
	)
	provider.add(munich, berlin, at(date, 18, 0),
		option("ICE 1006", 44.95, at(date, 18, 30), at(date, 22, 30), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.SameDayReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	require.Equal(t, 0, outcome.FailureCount)

	result := outcome.Results[0]
	assert.InDelta(t, 89.90, result.TotalPrice, 0.001)
	assert.Equal(t, "EUR", result.Currency)
	require.NotNil(t, result.Outbound)
	require.NotNil(t, result.Return)
	assert.Equal(t, "ICE 587", result.Outbound.TrainName)
	assert.Equal(t, 0, result.Outbound.Transfers)
	assert.Equal(t, "ICE 1006", result.Return.TrainName)
	assert.Equal(t, 0, result.Return.Transfers)
}

func TestSameDayReturn_ExcludesEarlyMorningReturns(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
	)
	// The 02:00 departure is cheaper but belongs to the next day.
	provider.add(munich, berlin, at(date, 18, 0),
		option("ICE 948", 19.90, at(date, 2, 0), at(date, 6, 0), 0),
		option("ICE 1006", 44.95, at(date, 18, 30), at(date, 22, 30), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.SameDayReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, "ICE 1006", outcome.Results[0].Return.TrainName)
	assert.InDelta(t, 89.90, outcome.Results[0].TotalPrice, 0.001)
}

func TestSameDayReturn_DefaultOutboundArrivesBeforeNoon(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	// Only outbound arrives 13:00, violating the default constraint.
	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 700", 29.90, at(date, 9, 0), at(date, 13, 0), 0),
	)
	provider.add(munich, berlin, at(date, 18, 0),
		option("ICE 1006", 44.95, at(date, 18, 30), at(date, 22, 30), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.SameDayReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, 0, outcome.SuccessCount)
	assert.Equal(t, 1, outcome.FailureCount)
	assert.Equal(t, []string{"2026-01-15"}, outcome.Failures)
}

func TestSameDayReturn_PreferenceReplacesDefault(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 700", 29.90, at(date, 18, 30), at(date, 23, 0), 0),
	)
	provider.add(munich, berlin, at(date, 18, 0),
		option("ICE 1006", 44.95, at(date, 19, 0), at(date, 23, 30), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.SameDayReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
		Preference:  &journey.TimePreference{Band: journey.BandEvening},
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, "ICE 700", outcome.Results[0].Outbound.TrainName)
}

func TestSameDayReturn_ReturnOriginOverride(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
	)
	// Return starts from Augsburg, not Munich.
	provider.add(augsburg, berlin, at(date, 18, 0),
		option("ICE 1104", 39.90, at(date, 18, 15), at(date, 22, 45), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.SameDayReturn(context.Background(), search.Params{
		Origin:       berlin,
		Destination:  munich,
		ReturnOrigin: augsburg,
		Start:        date,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, "ICE 1104", outcome.Results[0].Return.TrainName)
	assert.InDelta(t, 84.85, outcome.Results[0].TotalPrice, 0.001)
}

func TestOneWay_MergesAnchorsAndDedupes(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	shared := option("ICE 800", 39.90, at(date, 11, 30), at(date, 15, 30), 0)
	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
		shared,
	)
	// The afternoon query returns the shared journey again plus a
	// cheaper evening one.
	provider.add(berlin, munich, at(date, 18, 0),
		option("ICE 800", 52.00, at(date, 11, 30), at(date, 15, 30), 0), // duplicate departure, first wins
		option("ICE 1601", 29.90, at(date, 19, 0), at(date, 23, 0), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.OneWay(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, "ICE 1601", outcome.Results[0].Outbound.TrainName)
	assert.InDelta(t, 29.90, outcome.Results[0].TotalPrice, 0.001)
	assert.Equal(t, 2, provider.callCount(), "one morning and one afternoon query")
}

func TestOneWay_AfternoonAnchorSkipsSecondQuery(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 14, 0),
		option("ICE 900", 24.90, at(date, 14, 30), at(date, 18, 30), 0),
	)

	svc := newTestService(provider)
	outcome, err := svc.OneWay(context.Background(), search.Params{
		Origin:        berlin,
		Destination:   munich,
		Start:         date,
		DepartureHour: 14,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 1, provider.callCount(), "anchors at or after noon issue a single query")
}

func TestOneWay_UnpricedOptionsExcluded(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()

	provider.add(berlin, munich, at(date, 6, 0),
		unpriced(at(date, 6, 30), at(date, 10, 30)),
		option("ICE 587", 44.95, at(date, 7, 0), at(date, 11, 0), 0),
	)
	provider.add(berlin, munich, at(date, 18, 0))

	svc := newTestService(provider)
	outcome, err := svc.OneWay(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       date,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, "ICE 587", outcome.Results[0].Outbound.TrainName)
}

func TestOneWay_PerItemFailureLeavesOtherDatesUnaffected(t *testing.T) {
	d1 := day(2026, 1, 15)
	d2 := day(2026, 1, 16)
	provider := newMockProvider()

	provider.add(berlin, munich, at(d1, 6, 0),
		option("ICE 587", 44.95, at(d1, 6, 30), at(d1, 10, 30), 0),
	)
	provider.add(berlin, munich, at(d1, 18, 0))
	// No journeys scripted for d2: both queries come back empty.

	svc := newTestService(provider)
	outcome, err := svc.OneWay(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       d1,
		End:         d2,
	}, nil)

	require.NoError(t, err, "partial failure is a successful return")
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, 1, outcome.FailureCount)
	assert.Equal(t, []string{"2026-01-16"}, outcome.Failures)
	assert.Equal(t, outcome.SuccessCount+outcome.FailureCount, 2)
}

func TestFixedReturn_CrossCombination(t *testing.T) {
	d1 := day(2026, 1, 15)
	d2 := day(2026, 1, 16)
	ret := day(2026, 1, 20)
	provider := newMockProvider()

	provider.add(berlin, munich, at(d1, 6, 0),
		option("ICE 587", 40.00, at(d1, 6, 30), at(d1, 10, 30), 0),
	)
	provider.add(berlin, munich, at(d1, 18, 0))
	provider.add(berlin, munich, at(d2, 6, 0),
		option("ICE 591", 35.00, at(d2, 6, 30), at(d2, 10, 30), 0),
	)
	provider.add(berlin, munich, at(d2, 18, 0))
	provider.add(munich, berlin, at(ret, 6, 0),
		option("ICE 1006", 25.00, at(ret, 8, 0), at(ret, 12, 0), 0),
	)
	provider.add(munich, berlin, at(ret, 18, 0))

	svc := newTestService(provider)
	outcome, err := svc.FixedReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       d1,
		End:         d2,
		ReturnDate:  ret,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 2, outcome.SuccessCount)

	totals := map[string]float64{}
	for _, r := range outcome.Results {
		totals[r.Date.Format("2006-01-02")] = r.TotalPrice
		assert.Equal(t, ret, r.ReturnDate)
		assert.Equal(t, "ICE 1006", r.Return.TrainName)
	}
	assert.InDelta(t, 65.00, totals["2026-01-15"], 0.001)
	assert.InDelta(t, 60.00, totals["2026-01-16"], 0.001)
}

func TestFixedReturn_EmptyWhenReturnHasNoJourneys(t *testing.T) {
	d1 := day(2026, 1, 15)
	ret := day(2026, 1, 20)
	provider := newMockProvider()

	provider.add(berlin, munich, at(d1, 6, 0),
		option("ICE 587", 40.00, at(d1, 6, 30), at(d1, 10, 30), 0),
	)
	provider.add(berlin, munich, at(d1, 18, 0))
	// No return journeys scripted.

	svc := newTestService(provider)
	outcome, err := svc.FixedReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       d1,
		ReturnDate:  ret,
	}, nil)

	require.NoError(t, err)
	assert.Empty(t, outcome.Results)
	assert.Equal(t, 0, outcome.SuccessCount)
	assert.Equal(t, 1, outcome.FailureCount)
}

func TestFixedReturn_RequiresReturnDate(t *testing.T) {
	svc := newTestService(newMockProvider())
	_, err := svc.FixedReturn(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       day(2026, 1, 15),
	}, nil)

	assert.ErrorIs(t, err, search.ErrMissingReturnDate)
}

func TestFlexibleDuration_MonthRollover(t *testing.T) {
	dep := day(2025, 8, 30)
	ret := day(2025, 9, 2) // departure + 3 nights crosses into September
	provider := newMockProvider()

	provider.add(berlin, munich, at(dep, 6, 0),
		option("ICE 587", 40.00, at(dep, 6, 30), at(dep, 10, 30), 0),
	)
	provider.add(berlin, munich, at(dep, 18, 0))
	provider.add(munich, berlin, at(ret, 6, 0),
		option("ICE 1006", 30.00, at(ret, 8, 0), at(ret, 12, 0), 0),
	)
	provider.add(munich, berlin, at(ret, 18, 0))

	svc := newTestService(provider)
	outcome, err := svc.FlexibleDuration(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       dep,
		Nights:      3,
	}, nil)

	require.NoError(t, err)
	require.Equal(t, 1, outcome.SuccessCount)

	result := outcome.Results[0]
	assert.Equal(t, dep, result.Date)
	assert.Equal(t, ret, result.ReturnDate)
	assert.InDelta(t, 70.00, result.TotalPrice, 0.001)
}

func TestFlexibleDuration_RequiresNights(t *testing.T) {
	svc := newTestService(newMockProvider())
	_, err := svc.FlexibleDuration(context.Background(), search.Params{
		Origin:      berlin,
		Destination: munich,
		Start:       day(2026, 1, 15),
	}, nil)

	assert.ErrorIs(t, err, search.ErrInvalidNights)
}

func TestService_Run_ValidationErrorBeforeBatching(t *testing.T) {
	provider := newMockProvider()
	svc := newTestService(provider)

	_, err := svc.Run(context.Background(), search.Request{
		TripType: search.TripOneWay,
		Params:   search.Params{Origin: berlin}, // destination missing
	}, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, search.ErrMissingStation)
	assert.True(t, search.IsValidation(err))
	assert.Equal(t, 0, provider.callCount(), "validation failures precede any provider call")
}

func TestService_Run_UnknownTripType(t *testing.T) {
	svc := newTestService(newMockProvider())
	_, err := svc.Run(context.Background(), search.Request{
		TripType: "round_the_world",
		Params:   search.Params{Origin: berlin, Destination: munich, Start: day(2026, 1, 15)},
	}, nil)

	assert.ErrorIs(t, err, search.ErrUnknownTripType)
}

func TestService_Run_TimeoutProducesNetworkError(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()
	provider.delay = 200 * time.Millisecond
	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
	)

	svc := search.NewService(search.ServiceConfig{
		Provider: provider,
		Logger:   zerolog.Nop(),
		Config: search.Config{
			Concurrency:    2,
			BatchDelay:     time.Millisecond,
			ItemRetry:      search.ItemRetryConfig{MaxAttempts: 1, Delay: time.Millisecond},
			OperationRetry: search.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond},
			Timeout:        30 * time.Millisecond,
		},
	})

	_, err := svc.Run(context.Background(), search.Request{
		TripType: search.TripOneWay,
		Params:   search.Params{Origin: berlin, Destination: munich, Start: date},
	}, nil)

	require.Error(t, err)
	var netErr *search.NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.ErrorIs(t, err, search.ErrTimeout)
}

func TestService_Run_ReportsProgress(t *testing.T) {
	date := day(2026, 1, 15)
	provider := newMockProvider()
	provider.add(berlin, munich, at(date, 6, 0),
		option("ICE 587", 44.95, at(date, 6, 30), at(date, 10, 30), 0),
	)
	provider.add(berlin, munich, at(date, 18, 0))

	var mu sync.Mutex
	var completed []int

	svc := newTestService(provider)
	outcome, err := svc.Run(context.Background(), search.Request{
		TripType: search.TripOneWay,
		Params:   search.Params{Origin: berlin, Destination: munich, Start: date},
	}, func(_ string, count int) {
		mu.Lock()
		completed = append(completed, count)
		mu.Unlock()
	})

	require.NoError(t, err)
	assert.Equal(t, 1, outcome.SuccessCount)
	assert.Equal(t, []int{1}, completed)
}
