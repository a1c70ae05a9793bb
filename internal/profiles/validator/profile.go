package validator

import (
	"errors"
	"fmt"

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

type ProfileValidator struct {
	validate *validator.Validate
}

func NewProfileValidator() *ProfileValidator {
	v := validator.New()
	if err := validation.RegisterRules(v); err != nil {
		panic(fmt.Sprintf("failed to register validation rules: %v", err))
	}
	return &ProfileValidator{validate: v}
}

func (v *ProfileValidator) ValidateProvider(profile *model.ProviderProfile) error {
	if err := v.validate.Struct(profile); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return v.validateProviderRules(profile)
}

func (v *ProfileValidator) ValidateExchange(profile *model.ExchangeProfile) error {
	if err := v.validate.Struct(profile); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return v.validateExchangeRules(profile)
}

func (v *ProfileValidator) ValidateSettings(settings *model.UserSettings) error {
	if err := v.validate.Struct(settings); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
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

func (v *ProfileValidator) validateProviderRules(profile *model.ProviderProfile) error {
	// Coordinates come as a pair, never singly.
	if (profile.Latitude == nil) != (profile.Longitude == nil) {
		return ValidationErrors{{Field: "Latitude", Message: "latitude and longitude must be set together"}}
	}
	return nil
}

func (v *ProfileValidator) validateExchangeRules(profile *model.ExchangeProfile) error {
	if (profile.Latitude == nil) != (profile.Longitude == nil) {
		return ValidationErrors{{Field: "Latitude", Message: "latitude and longitude must be set together"}}
	}
	return nil
}
