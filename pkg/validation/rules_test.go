package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ruleProbe struct {
	Time string   `validate:"omitempty,hhmm"`
	Date string   `validate:"omitempty,isodate"`
	Day  string   `validate:"omitempty,weekday"`
	Days []string `validate:"omitempty,weekdays"`
}

func newProbeValidator(t *testing.T) *validator.Validate {
	t.Helper()
	v := validator.New()
	require.NoError(t, RegisterRules(v))
	return v
}

func TestHHMMRule(t *testing.T) {
	v := newProbeValidator(t)

	assert.NoError(t, v.Struct(ruleProbe{Time: "09:00"}))
	assert.NoError(t, v.Struct(ruleProbe{Time: "23:59"}))
	assert.Error(t, v.Struct(ruleProbe{Time: "9:00"}))
	assert.Error(t, v.Struct(ruleProbe{Time: "24:00"}))
	assert.Error(t, v.Struct(ruleProbe{Time: "09:60"}))
	assert.Error(t, v.Struct(ruleProbe{Time: "0900"}))
}

func TestISODateRule(t *testing.T) {
	v := newProbeValidator(t)

	assert.NoError(t, v.Struct(ruleProbe{Date: "2024-06-03"}))
	assert.Error(t, v.Struct(ruleProbe{Date: "2024-13-01"}))
	assert.Error(t, v.Struct(ruleProbe{Date: "03.06.2024"}))
}

func TestWeekdayRules(t *testing.T) {
	v := newProbeValidator(t)

	assert.NoError(t, v.Struct(ruleProbe{Day: "Mon"}))
	assert.Error(t, v.Struct(ruleProbe{Day: "Monday"}))

	assert.NoError(t, v.Struct(ruleProbe{Days: []string{"Mon", "Sun"}}))
	assert.Error(t, v.Struct(ruleProbe{Days: []string{"Mon", "Funday"}}))
}
