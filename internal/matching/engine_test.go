package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitapool/pkg/model"
)

func ptr(f float64) *float64 { return &f }

func baseCriteria() Criteria {
	return Criteria{
		AgeGroups: []string{"3-5"},
		StartDate: "2024-06-03",
		EndDate:   "2024-06-03",
		TimeFrom:  "09:00",
		TimeTo:    "13:00",
	}
}

func baseProvider() *model.ProviderProfile {
	return &model.ProviderProfile{
		ID:            "60f7a9b8c1d2e3f4a5b6c7d8",
		UserID:        "provider-a",
		City:          "Berlin",
		Capacity:      2,
		AgeGroups:     []string{"3-5"},
		MaxCommuteKm:  10,
		AvailableDays: []string{"Mon"},
		TimeFrom:      "08:00",
		TimeTo:        "14:00",
	}
}

func TestEligibleProviders_BaseCase(t *testing.T) {
	engine := NewEngine()

	got := engine.EligibleProviders(baseCriteria(), Location{}, []*model.ProviderProfile{baseProvider()})
	require.Len(t, got, 1)
	assert.Equal(t, "provider-a", got[0].UserID)
}

func TestEligibleProviders_Capacity(t *testing.T) {
	engine := NewEngine()

	zero := baseProvider()
	zero.Capacity = 0

	got := engine.EligibleProviders(baseCriteria(), Location{}, []*model.ProviderProfile{zero})
	assert.Empty(t, got)
}

func TestEligibleProviders_AgeGroups(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		provider []string
		request  []string
		want     bool
	}{
		{"exact match", []string{"3-5"}, []string{"3-5"}, true},
		{"one shared tag", []string{"0-2", "3-5"}, []string{"3-5", "6-10"}, true},
		{"disjoint", []string{"0-2"}, []string{"3-5"}, false},
		{"case sensitive", []string{"3-5"}, []string{"3-5 "}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProvider()
			p.AgeGroups = tt.provider
			req := baseCriteria()
			req.AgeGroups = tt.request

			got := engine.EligibleProviders(req, Location{}, []*model.ProviderProfile{p})
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestEligibleProviders_TimeOverlap(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name             string
		provFrom, provTo string
		want             bool
	}{
		{"contains request", "08:00", "14:00", true},
		{"partial overlap start", "11:00", "17:00", true},
		{"one minute overlap", "12:59", "17:00", true},
		{"touching at request end", "13:00", "17:00", false},
		{"touching at request start", "05:00", "09:00", false},
		{"fully before", "05:00", "08:00", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProvider()
			p.TimeFrom = tt.provFrom
			p.TimeTo = tt.provTo

			got := engine.EligibleProviders(baseCriteria(), Location{}, []*model.ProviderProfile{p})
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestEligibleProviders_DayOverlap(t *testing.T) {
	engine := NewEngine()

	// 2024-06-03 is a Monday, 2024-06-04 a Tuesday.
	req := baseCriteria()
	req.EndDate = "2024-06-04"

	wedOnly := baseProvider()
	wedOnly.AvailableDays = []string{"Wed"}
	got := engine.EligibleProviders(req, Location{}, []*model.ProviderProfile{wedOnly})
	assert.Empty(t, got, "provider available only Wed must not match a Mon-Tue request")

	noDays := baseProvider()
	noDays.AvailableDays = nil
	got = engine.EligibleProviders(req, Location{}, []*model.ProviderProfile{noDays})
	assert.Len(t, got, 1, "provider with no configured days matches any request days")

	tueOnly := baseProvider()
	tueOnly.AvailableDays = []string{"Tue"}
	got = engine.EligibleProviders(req, Location{}, []*model.ProviderProfile{tueOnly})
	assert.Len(t, got, 1)
}

func TestEligibleProviders_DayOverlapLongRange(t *testing.T) {
	engine := NewEngine()

	// A week-long range touches every weekday, so any configured day
	// matches.
	req := baseCriteria()
	req.StartDate = "2024-06-01"
	req.EndDate = "2024-06-30"

	p := baseProvider()
	p.AvailableDays = []string{"Sun"}

	got := engine.EligibleProviders(req, Location{}, []*model.ProviderProfile{p})
	assert.Len(t, got, 1)
}

func TestEligibleProviders_Distance(t *testing.T) {
	engine := NewEngine()

	// Roughly 2.4 km apart within Berlin.
	facility := Location{Latitude: ptr(52.5200), Longitude: ptr(13.4050)}

	tests := []struct {
		name         string
		lat, lon     *float64
		maxCommuteKm float64
		facility     Location
		want         bool
	}{
		{"within commute", ptr(52.5400), ptr(13.4200), 10, facility, true},
		{"beyond commute", ptr(53.5511), ptr(9.9937), 10, facility, false},
		{"zero commute excludes", ptr(52.5400), ptr(13.4200), 0, facility, false},
		{"provider without coordinates passes", nil, nil, 0, facility, true},
		{"facility without coordinates passes", ptr(52.5400), ptr(13.4200), 0, Location{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := baseProvider()
			p.Latitude = tt.lat
			p.Longitude = tt.lon
			p.MaxCommuteKm = tt.maxCommuteKm

			got := engine.EligibleProviders(baseCriteria(), tt.facility, []*model.ProviderProfile{p})
			assert.Equal(t, tt.want, len(got) == 1)
		})
	}
}

func TestEligibleProviders_PreservesOrder(t *testing.T) {
	engine := NewEngine()

	first := baseProvider()
	first.UserID = "first"
	blocked := baseProvider()
	blocked.UserID = "blocked"
	blocked.Capacity = 0
	second := baseProvider()
	second.UserID = "second"

	got := engine.EligibleProviders(baseCriteria(), Location{}, []*model.ProviderProfile{first, blocked, second})
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].UserID)
	assert.Equal(t, "second", got[1].UserID)
}

func TestEligibleProviders_Idempotent(t *testing.T) {
	engine := NewEngine()

	eligible := baseProvider()
	eligible.UserID = "eligible"
	blocked := baseProvider()
	blocked.UserID = "blocked"
	blocked.AgeGroups = []string{"0-2"}
	far := baseProvider()
	far.UserID = "far"
	far.Latitude = ptr(53.5511)
	far.Longitude = ptr(9.9937)
	far.MaxCommuteKm = 10

	facility := Location{Latitude: ptr(52.52), Longitude: ptr(13.405)}
	snapshot := []*model.ProviderProfile{eligible, blocked, far}

	first := engine.EligibleProviders(baseCriteria(), facility, snapshot)
	second := engine.EligibleProviders(baseCriteria(), facility, snapshot)

	// Identical inputs always yield the identical provider set.
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].UserID, second[i].UserID)
	}
	require.Len(t, first, 1)
	assert.Equal(t, "eligible", first[0].UserID)
}

func TestEligibleProviders_SkipsUnparsableWindow(t *testing.T) {
	engine := NewEngine()

	p := baseProvider()
	p.TimeFrom = "8am"

	got := engine.EligibleProviders(baseCriteria(), Location{}, []*model.ProviderProfile{p})
	assert.Empty(t, got)
}

func TestParseHHMM(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"09:30", 570, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"09:60", 0, true},
		{"9:30", 0, true},
		{"0930", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := parseHHMM(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRequestWeekdays(t *testing.T) {
	days, err := requestWeekdays("2024-06-03", "2024-06-04")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Mon": true, "Tue": true}, days)

	days, err = requestWeekdays("2024-06-03", "2024-06-03")
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"Mon": true}, days)

	days, err = requestWeekdays("2024-06-01", "2024-12-31")
	require.NoError(t, err)
	assert.Len(t, days, 7)

	_, err = requestWeekdays("2024-06-04", "2024-06-03")
	assert.Error(t, err)

	_, err = requestWeekdays("June 3rd", "2024-06-04")
	assert.Error(t, err)
}
