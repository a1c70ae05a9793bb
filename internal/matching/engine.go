package matching

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"kitapool/pkg/geo"
	"kitapool/pkg/model"
)

// Criteria is the subset of a substitution request the engine matches
// against. Time strings are zero-padded "HH:MM", dates ISO
// "YYYY-MM-DD"; both are validated before they reach the engine.
type Criteria struct {
	AgeGroups []string
	StartDate string
	EndDate   string
	TimeFrom  string
	TimeTo    string
}

// Location is the requesting facility's resolved position, when it
// has one.
type Location struct {
	Latitude  *float64
	Longitude *float64
}

func (l Location) hasCoordinates() bool {
	return l.Latitude != nil && l.Longitude != nil
}

// Engine decides provider eligibility for a request. It is pure: the
// caller supplies the candidate pool (providers in the request's city)
// and the engine filters it without touching storage.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// EligibleProviders returns the candidates that satisfy every
// eligibility criterion, preserving input order. A candidate whose
// stored time window does not parse is skipped rather than matched.
func (e *Engine) EligibleProviders(req Criteria, facility Location, candidates []*model.ProviderProfile) []*model.ProviderProfile {
	reqFrom, errFrom := parseHHMM(req.TimeFrom)
	reqTo, errTo := parseHHMM(req.TimeTo)
	if errFrom != nil || errTo != nil {
		return nil
	}

	reqDays, err := requestWeekdays(req.StartDate, req.EndDate)
	if err != nil {
		return nil
	}

	var eligible []*model.ProviderProfile
	for _, p := range candidates {
		if !e.eligible(p, req.AgeGroups, reqFrom, reqTo, reqDays, facility) {
			continue
		}
		eligible = append(eligible, p)
	}
	return eligible
}

func (e *Engine) eligible(p *model.ProviderProfile, ageGroups []string, reqFrom, reqTo int, reqDays map[string]bool, facility Location) bool {
	if p.Capacity <= 0 {
		return false
	}

	if !intersects(ageGroups, p.AgeGroups) {
		return false
	}

	provFrom, errFrom := parseHHMM(p.TimeFrom)
	provTo, errTo := parseHHMM(p.TimeTo)
	if errFrom != nil || errTo != nil {
		return false
	}
	// Touching endpoints do not overlap: a request ending 12:00 does
	// not match availability starting 12:00.
	if !(reqFrom < provTo && reqTo > provFrom) {
		return false
	}

	if len(p.AvailableDays) > 0 {
		anyDay := false
		for _, day := range p.AvailableDays {
			if reqDays[day] {
				anyDay = true
				break
			}
		}
		if !anyDay {
			return false
		}
	}

	// Distance applies only when both sides are geocoded; a profile or
	// facility without coordinates is never excluded on distance.
	if facility.hasCoordinates() && p.HasCoordinates() {
		dist := geo.HaversineKm(*facility.Latitude, *facility.Longitude, *p.Latitude, *p.Longitude)
		if dist > p.MaxCommuteKm {
			return false
		}
	}

	return true
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// parseHHMM converts a zero-padded "HH:MM" string to minutes since
// midnight.
func parseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}
	return hours*60 + minutes, nil
}

var weekdayCodes = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

// requestWeekdays enumerates every calendar day in the inclusive range
// and returns the deduplicated set of weekday codes it touches.
func requestWeekdays(startDate, endDate string) (map[string]bool, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", startDate)
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("end date %q before start date %q", endDate, startDate)
	}

	days := make(map[string]bool, 7)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days[weekdayCodes[d.Weekday()]] = true
		if len(days) == 7 {
			break
		}
	}
	return days, nil
}
