package validator

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"kitapool/pkg/model"
	"kitapool/pkg/validation"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	if err := validation.RegisterRules(v); err != nil {
		panic(fmt.Sprintf("failed to register validation rules: %v", err))
	}
	return &RequestValidator{validate: v}
}

func (v *RequestValidator) Validate(req *model.SubstitutionRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	if err := v.validateDateRange(req); err != nil {
		return err
	}
	return v.validateTimeWindow(req)
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors
	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: fmt.Sprintf("failed on rule %q", err.Tag()),
		})
	}
	return validationErrors
}

func (v *RequestValidator) validateDateRange(req *model.SubstitutionRequest) error {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return ValidationErrors{{Field: "StartDate", Message: "must be an ISO date"}}
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return ValidationErrors{{Field: "EndDate", Message: "must be an ISO date"}}
	}
	if end.Before(start) {
		return ValidationErrors{{Field: "EndDate", Message: "must not be before start date"}}
	}
	return nil
}

func (v *RequestValidator) validateTimeWindow(req *model.SubstitutionRequest) error {
	from, err := time.Parse("15:04", req.TimeFrom)
	if err != nil {
		return ValidationErrors{{Field: "TimeFrom", Message: "must be HH:MM"}}
	}
	to, err := time.Parse("15:04", req.TimeTo)
	if err != nil {
		return ValidationErrors{{Field: "TimeTo", Message: "must be HH:MM"}}
	}
	if !from.Before(to) {
		return ValidationErrors{{Field: "TimeTo", Message: "must be after start time"}}
	}
	return nil
}
