package journey_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/farescout/farescout/internal/journey"
)

func TestMatchesPreference_Bands(t *testing.T) {
	tests := []struct {
		name    string
		minutes int
		band    journey.Band
		want    bool
	}{
		{"early lower boundary 04:00", 240, journey.BandEarly, true},
		{"early upper boundary 07:59", 479, journey.BandEarly, true},
		{"just before early 03:59", 239, journey.BandEarly, false},
		{"just after early 08:00", 480, journey.BandEarly, false},
		{"morning 08:00", 480, journey.BandMorning, true},
		{"morning 11:59", 719, journey.BandMorning, true},
		{"morning excludes noon", 720, journey.BandMorning, false},
		{"afternoon 12:00", 720, journey.BandAfternoon, true},
		{"afternoon 17:59", 1079, journey.BandAfternoon, true},
		{"evening 18:00", 1080, journey.BandEvening, true},
		{"evening 21:59", 1319, journey.BandEvening, true},
		{"any matches midnight", 0, journey.BandAny, true},
		{"any matches noon", 720, journey.BandAny, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := journey.MatchesPreference(tt.minutes, journey.TimePreference{Band: tt.band})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchesPreference_LateWrapsMidnight(t *testing.T) {
	late := journey.TimePreference{Band: journey.BandLate}

	assert.True(t, journey.MatchesPreference(1410, late), "23:30 is late")
	assert.True(t, journey.MatchesPreference(1320, late), "22:00 is late")
	assert.True(t, journey.MatchesPreference(180, late), "03:00 is late")
	assert.True(t, journey.MatchesPreference(0, late), "midnight is late")
	assert.False(t, journey.MatchesPreference(240, late), "04:00 is not late")
	assert.False(t, journey.MatchesPreference(720, late), "noon is not late")
}

func TestMatchesPreference_Custom(t *testing.T) {
	t.Run("open ended means at or after start", func(t *testing.T) {
		pref := journey.TimePreference{Band: journey.BandCustom, CustomStart: 600, CustomEnd: -1}

		assert.True(t, journey.MatchesPreference(600, pref))
		assert.True(t, journey.MatchesPreference(1439, pref))
		assert.False(t, journey.MatchesPreference(599, pref))
	})

	t.Run("bounded range is inclusive", func(t *testing.T) {
		pref := journey.TimePreference{Band: journey.BandCustom, CustomStart: 540, CustomEnd: 600}

		assert.True(t, journey.MatchesPreference(540, pref))
		assert.True(t, journey.MatchesPreference(600, pref))
		assert.False(t, journey.MatchesPreference(601, pref))
	})

	t.Run("end before start wraps midnight", func(t *testing.T) {
		pref := journey.TimePreference{Band: journey.BandCustom, CustomStart: 1380, CustomEnd: 120}

		assert.True(t, journey.MatchesPreference(1400, pref), "23:20 inside overnight range")
		assert.True(t, journey.MatchesPreference(60, pref), "01:00 inside overnight range")
		assert.False(t, journey.MatchesPreference(300, pref), "05:00 outside overnight range")
	})
}

func TestMeetsArrival(t *testing.T) {
	tests := []struct {
		name       string
		minutes    int
		constraint journey.ArrivalConstraint
		want       bool
	}{
		{"before inclusive", 720, journey.ArrivalConstraint{Type: journey.ConstraintBefore, Start: 720}, true},
		{"before exceeded", 721, journey.ArrivalConstraint{Type: journey.ConstraintBefore, Start: 720}, false},
		{"after inclusive", 720, journey.ArrivalConstraint{Type: journey.ConstraintAfter, Start: 720}, true},
		{"after too early", 719, journey.ArrivalConstraint{Type: journey.ConstraintAfter, Start: 720}, false},
		{"between inside", 650, journey.ArrivalConstraint{Type: journey.ConstraintBetween, Start: 600, End: 700}, true},
		{"between outside", 701, journey.ArrivalConstraint{Type: journey.ConstraintBetween, Start: 600, End: 700}, false},
		{"between overnight wraps", 30, journey.ArrivalConstraint{Type: journey.ConstraintBetween, Start: 1380, End: 120}, true},
		{"any always true", 999, journey.ArrivalConstraint{Type: journey.ConstraintAny}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, journey.MeetsArrival(tt.minutes, tt.constraint))
		})
	}
}

func TestSatisfiesPreference(t *testing.T) {
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	option := &journey.Option{
		Legs: []journey.Leg{
			{
				Departure: day.Add(9 * time.Hour),
				Arrival:   day.Add(11*time.Hour + 30*time.Minute),
				Line:      &journey.Line{Name: "ICE 700"},
			},
		},
	}

	morning := journey.TimePreference{Band: journey.BandMorning}
	assert.True(t, journey.SatisfiesPreference(option, morning))

	withArrival := journey.TimePreference{
		Band:    journey.BandMorning,
		Arrival: &journey.ArrivalConstraint{Type: journey.ConstraintBefore, Start: 660},
	}
	assert.False(t, journey.SatisfiesPreference(option, withArrival), "arrives 11:30, constraint is before 11:00")
}

func TestMinutesOfDay(t *testing.T) {
	ts := time.Date(2026, 3, 1, 14, 45, 59, 0, time.UTC)
	assert.Equal(t, 885, journey.MinutesOfDay(ts))
}
