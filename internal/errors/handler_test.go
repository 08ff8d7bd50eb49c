package errors

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"enrolpulse/internal/shared/testutil"
)

var (
	errRegionMissing = stderrors.New("state not found")
	errBadHorizon    = stderrors.New("horizon out of range")
)

func newMappedHandler(t *testing.T) (*ErrorHandler, *testutil.BufferedSlogHandler) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, false).
		Map(errRegionMissing, http.StatusNotFound, TypeRegionNotFound, "Region Not Found", "REGION_NOT_FOUND").
		Map(errBadHorizon, http.StatusBadRequest, TypeInvalidHorizon, "Invalid Forecast Horizon", "INVALID_HORIZON")
	return h, logs
}

func requestWithID(path, id string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	return r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, id))
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantTitle  string
		wantCode   string
	}{
		{
			name:       "context deadline exceeded",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusGatewayTimeout,
			wantType:   TypeTimeout,
			wantTitle:  "Request Timeout",
		},
		{
			name:       "api error",
			err:        ErrValidation("horizon", "not a number"),
			wantStatus: http.StatusBadRequest,
			wantType:   TypeValidation,
			wantTitle:  "Bad Request",
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name:       "wrapped api error",
			err:        fmt.Errorf("limiter: %w", ErrRateLimitExceeded),
			wantStatus: http.StatusTooManyRequests,
			wantType:   TypeRateLimit,
			wantTitle:  "Too Many Requests",
			wantCode:   "RATE_LIMIT_EXCEEDED",
		},
		{
			name:       "mapped sentinel",
			err:        fmt.Errorf("%w: Goa", errRegionMissing),
			wantStatus: http.StatusNotFound,
			wantType:   TypeRegionNotFound,
			wantTitle:  "Region Not Found",
			wantCode:   "REGION_NOT_FOUND",
		},
		{
			name:       "second mapping",
			err:        errBadHorizon,
			wantStatus: http.StatusBadRequest,
			wantType:   TypeInvalidHorizon,
			wantTitle:  "Invalid Forecast Horizon",
			wantCode:   "INVALID_HORIZON",
		},
		{
			name:       "unknown error",
			err:        stderrors.New("something went wrong"),
			wantStatus: http.StatusInternalServerError,
			wantType:   TypeInternal,
			wantTitle:  "Internal Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, logs := newMappedHandler(t)

			w := httptest.NewRecorder()
			handler.HandleError(w, requestWithID("/api/dashboard", "req-1"), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)

			var problem map[string]interface{}
			require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
			assert.Equal(t, tt.wantType, problem["type"])
			assert.Equal(t, tt.wantTitle, problem["title"])
			assert.Equal(t, "req-1", problem["trace_id"])
			assert.Equal(t, "/api/dashboard", problem["instance"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, problem["error_code"])
			}

			assert.True(t, logs.ContainsMessage("request failed"))
			assert.True(t, logs.ContainsAttr("request_id", "req-1"))
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	handler, logs := newMappedHandler(t)
	w := httptest.NewRecorder()

	handler.HandleError(w, httptest.NewRequest(http.MethodGet, "/", nil), nil)

	assert.Equal(t, 0, w.Body.Len())
	assert.Equal(t, 0, logs.Count())
}

func TestErrorHandler_Classify(t *testing.T) {
	handler, _ := newMappedHandler(t)

	code, msg := handler.Classify(fmt.Errorf("%w: Goa", errRegionMissing))
	assert.Equal(t, "REGION_NOT_FOUND", code)
	assert.Equal(t, "state not found: Goa", msg)

	code, _ = handler.Classify(ErrRateLimitExceeded)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", code)

	code, msg = handler.Classify(stderrors.New("disk on fire"))
	assert.Equal(t, "INTERNAL_SERVER_ERROR", code)
	assert.NotContains(t, msg, "disk")
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	w := httptest.NewRecorder()
	handler.HandlePanic(w, requestWithID("/api/dashboard", "req-2"), "boom")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var problem map[string]interface{}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&problem))
	assert.Equal(t, "boom", problem["panic"])
	assert.NotEmpty(t, problem["stack"])
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	handler, _ := newMappedHandler(t)

	w := httptest.NewRecorder()
	handler.NotFound(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	handler.MethodNotAllowed(w, httptest.NewRequest(http.MethodDelete, "/api/health", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Contains(t, w.Body.String(), "DELETE")
}
