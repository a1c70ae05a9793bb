package validator

import (
	"fmt"

	"kitapool/pkg/model"
)

const maxMessageLength = 2000

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ApplicationValidator checks apply/decide inputs. The model-level
// struct tags are enforced at persistence time; this guards the
// request payloads.
type ApplicationValidator struct{}

func NewApplicationValidator() *ApplicationValidator {
	return &ApplicationValidator{}
}

func (v *ApplicationValidator) ValidateApply(requestID, coverNote, initialMessage string) error {
	if requestID == "" {
		return ValidationError{Field: "request_id", Message: "must be provided"}
	}
	if len(coverNote) > maxMessageLength {
		return ValidationError{Field: "cover_note", Message: "too long"}
	}
	if len(initialMessage) > maxMessageLength {
		return ValidationError{Field: "initial_message", Message: "too long"}
	}
	return nil
}

func (v *ApplicationValidator) ValidateDecide(status, message string) error {
	if status != model.ApplicationStatusAccepted && status != model.ApplicationStatusDeclined {
		return ValidationError{Field: "status", Message: "must be 'accepted' or 'declined'"}
	}
	if len(message) > maxMessageLength {
		return ValidationError{Field: "message", Message: "too long"}
	}
	return nil
}
