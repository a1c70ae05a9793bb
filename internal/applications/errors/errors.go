package errors

import "errors"

var (
	ErrApplicationNotFound = errors.New("request application not found")

	ErrInvalidID = errors.New("invalid application ID format")
)
