package validation

import (
	"regexp"
	"time"

	"github.com/go-playground/validator/v10"
)

var hhmmRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

var weekdayCodes = map[string]bool{
	"Mon": true, "Tue": true, "Wed": true, "Thu": true,
	"Fri": true, "Sat": true, "Sun": true,
}

// RegisterRules installs the domain validation tags used across the
// model structs: hhmm (zero-padded 24h time), isodate (YYYY-MM-DD),
// weekday (a single Mon..Sun code) and weekdays (a slice of codes).
func RegisterRules(v *validator.Validate) error {
	if err := v.RegisterValidation("hhmm", validateHHMM); err != nil {
		return err
	}
	if err := v.RegisterValidation("isodate", validateISODate); err != nil {
		return err
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return err
	}
	return v.RegisterValidation("weekdays", validateWeekdays)
}

func validateHHMM(fl validator.FieldLevel) bool {
	return hhmmRegex.MatchString(fl.Field().String())
}

func validateISODate(fl validator.FieldLevel) bool {
	_, err := time.Parse("2006-01-02", fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	return weekdayCodes[fl.Field().String()]
}

func validateWeekdays(fl validator.FieldLevel) bool {
	field := fl.Field()
	for i := 0; i < field.Len(); i++ {
		if !weekdayCodes[field.Index(i).String()] {
			return false
		}
	}
	return true
}
