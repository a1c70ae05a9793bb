package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitapool/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: logger.JSON})
}

func signedToken(t *testing.T, secret, subject string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": subject})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestAuth_ValidTokenSetsCallerID(t *testing.T) {
	var gotUserID string
	handler := Auth("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-requests", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "test-secret", "user-42"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", gotUserID)
}

func TestAuth_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not a bearer token", header: "Basic abc"},
		{name: "wrong secret", header: "Bearer "},
		{name: "empty subject", header: "Bearer "},
	}
	tests[2].header += signedToken(t, "other-secret", "user-42")
	tests[3].header += signedToken(t, "test-secret", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := Auth("test-secret")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/v1/my-requests", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, called)
		})
	}
}

func TestRequestLogging_AssignsRequestID(t *testing.T) {
	var gotRequestID string
	handler := RequestLogging(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = requestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Len(t, gotRequestID, 32)
}

func TestRequestLoggingAndAuthChain(t *testing.T) {
	var gotUserID, gotRequestID string
	var h http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRequestID = requestIDFromContext(r.Context())
	})
	h = Auth("test-secret")(h)
	h = RequestLogging(testLogger())(h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/my-requests", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "test-secret", "user-42"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	// Both context keys survive in the same chain.
	assert.Equal(t, "user-42", gotUserID)
	assert.NotEmpty(t, gotRequestID)
}
