package errors

import "errors"

var (
	ErrRequestNotFound = errors.New("substitution request not found")
	ErrMatchNotFound   = errors.New("request match not found")

	ErrInvalidID = errors.New("invalid request ID format")
)
