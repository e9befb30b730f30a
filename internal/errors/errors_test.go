package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError(t *testing.T) {
	t.Run("formats code and message", func(t *testing.T) {
		err := New(ErrCodeNotFound, "capsule missing")
		assert.Equal(t, "NOT_FOUND: capsule missing", err.Error())
	})

	t.Run("includes the cause", func(t *testing.T) {
		cause := errors.New("connection reset")
		err := Wrap(ErrCodeNetworkFailure, "Network error", cause)
		assert.Equal(t, "NETWORK_FAILURE: Network error (cause: connection reset)", err.Error())
		assert.ErrorIs(t, err, cause)
	})

	t.Run("WithCause chains", func(t *testing.T) {
		cause := errors.New("disk full")
		err := New(ErrCodeStorage, "Storage error").WithCause(cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    ErrorCode
		message string
		status  int
	}{
		{"NotAuthenticated", NotAuthenticated(), ErrCodeNotAuthenticated, "Not authenticated", 0},
		{"NoRefreshToken", NoRefreshToken(), ErrCodeNoRefreshToken, "No refresh token", 0},
		{"Forbidden default", Forbidden(""), ErrCodeForbidden, "Forbidden", 403},
		{"Forbidden custom", Forbidden("owners only"), ErrCodeForbidden, "owners only", 403},
		{"NotFound default", NotFound(""), ErrCodeNotFound, "Not found", 404},
		{"NotFound custom", NotFound("Capsule not found"), ErrCodeNotFound, "Capsule not found", 404},
		{"HTTPError default message", HTTPError(502, ""), ErrCodeHTTP, "HTTP 502", 502},
		{"HTTPError server message", HTTPError(422, "title required"), ErrCodeHTTP, "title required", 422},
		{"Internal", Internal("boom"), ErrCodeInternal, "boom", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.message, tt.err.Message)
			assert.Equal(t, tt.status, tt.err.Status)
		})
	}
}

func TestHelpers(t *testing.T) {
	t.Run("AsAppError through wrapping", func(t *testing.T) {
		wrapped := fmt.Errorf("listing capsules: %w", NotFound(""))
		appErr, ok := AsAppError(wrapped)
		require.True(t, ok)
		assert.Equal(t, ErrCodeNotFound, appErr.Code)
		assert.True(t, IsAppError(wrapped))
	})

	t.Run("GetCode falls back to internal", func(t *testing.T) {
		assert.Equal(t, ErrCodeNotFound, GetCode(NotFound("")))
		assert.Equal(t, ErrCodeInternal, GetCode(errors.New("plain")))
	})

	t.Run("StatusOf", func(t *testing.T) {
		assert.Equal(t, 403, StatusOf(Forbidden("")))
		assert.Equal(t, 0, StatusOf(errors.New("plain")))
	})
}
