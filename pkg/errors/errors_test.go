package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	plain := NotFound("Provider profile")
	assert.Equal(t, "NOT_FOUND: Provider profile not found", plain.Error())

	cause := errors.New("connection reset")
	wrapped := Internal("Failed to load request", cause)
	assert.Equal(t, "INTERNAL_ERROR: Failed to load request (caused by: connection reset)", wrapped.Error())
	assert.Equal(t, cause, errors.Unwrap(wrapped))
}

func TestAppError_StatusCodes(t *testing.T) {
	tests := []struct {
		err  *AppError
		want int
	}{
		{NotFound("Request"), http.StatusNotFound},
		{Validation("bad input", nil), http.StatusUnprocessableEntity},
		{InvalidInput("missing id"), http.StatusBadRequest},
		{Unauthorized("missing token"), http.StatusUnauthorized},
		{Forbidden("not the owner"), http.StatusForbidden},
		{Conflict("profile already exists"), http.StatusConflict},
		{Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Code)
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("not the owner")
	require.Same(t, appErr, AsAppError(appErr))

	wrapped := fmt.Errorf("service: %w", appErr)
	require.Same(t, appErr, AsAppError(wrapped))

	raw := errors.New("mongo: no reachable servers")
	converted := AsAppError(raw)
	assert.Equal(t, CodeInternal, converted.Code)
	assert.Equal(t, http.StatusInternalServerError, converted.StatusCode())
	assert.Equal(t, raw, errors.Unwrap(converted))
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Application", "abc123")
	require.NotNil(t, err.Details)
	assert.Equal(t, "Application", err.Details["resource"])
	assert.Equal(t, "abc123", err.Details["id"])
}
