package errors

import "errors"

var (
	ErrProviderProfileNotFound = errors.New("provider profile not found")
	ErrExchangeProfileNotFound = errors.New("exchange profile not found")
	ErrSettingsNotFound        = errors.New("user settings not found")

	ErrInvalidID = errors.New("invalid profile ID format")
)
