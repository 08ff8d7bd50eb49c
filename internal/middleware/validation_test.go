package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "enrolpulse/internal/errors"
)

type forecastQuery struct {
	State   string `query:"state" validate:"regionname"`
	Level   string `query:"level" validate:"omitempty,oneof=state district"`
	Horizon int    `query:"horizon" validate:"gte=3,lte=30"`
}

func TestRequestValidatorValidateStruct(t *testing.T) {
	v := NewRequestValidator(discardLogger())

	tests := []struct {
		name       string
		query      forecastQuery
		wantFields []string
	}{
		{
			name:  "valid",
			query: forecastQuery{State: "Tamil Nadu", Level: "district", Horizon: 7},
		},
		{
			name:       "horizon below range",
			query:      forecastQuery{State: "Kerala", Horizon: 2},
			wantFields: []string{"horizon"},
		},
		{
			name:       "unknown level and control character",
			query:      forecastQuery{State: "Ker\x00ala", Level: "country", Horizon: 7},
			wantFields: []string{"state", "level"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.query)
			if len(tt.wantFields) == 0 {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
			assert.Equal(t, "VALIDATION_FAILED", apiErr.ErrorCode)

			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			fields := make([]string, 0, len(details.Errors))
			for _, fe := range details.Errors {
				fields = append(fields, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.wantFields, fields)
		})
	}
}

func TestRequestValidatorNonStruct(t *testing.T) {
	v := NewRequestValidator(discardLogger())

	err := v.ValidateStruct(42)
	var apiErr *apierrors.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "INVALID_REQUEST", apiErr.ErrorCode)
}

func TestQueryParamValidator(t *testing.T) {
	v := NewQueryParamValidator(discardLogger(), apierrors.NewErrorHandler(discardLogger(), false))

	t.Run("ValidateInt", func(t *testing.T) {
		tests := []struct {
			name       string
			query      string
			want       int
			wantOK     bool
			wantStatus int
		}{
			{name: "default", query: "", want: 7, wantOK: true},
			{name: "in range", query: "horizon=30", want: 30, wantOK: true},
			{name: "not a number", query: "horizon=ten", wantStatus: http.StatusBadRequest},
			{name: "out of range", query: "horizon=31", wantStatus: http.StatusBadRequest},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodGet, "/api/dashboard/forecast?"+tt.query, nil)

				got, ok := v.ValidateInt(rec, req, "horizon", 3, 30, 7)
				assert.Equal(t, tt.wantOK, ok)
				if ok {
					assert.Equal(t, tt.want, got)
					assert.Zero(t, rec.Body.Len())
					return
				}
				assert.Equal(t, tt.wantStatus, rec.Code)
			})
		}
	})

	t.Run("ValidateEnum", func(t *testing.T) {
		allowed := []string{"state", "district"}

		rec := httptest.NewRecorder()
		got, ok := v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?level=District", nil), "level", allowed, "state")
		assert.True(t, ok)
		assert.Equal(t, "district", got)

		got, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/", nil), "level", allowed, "state")
		assert.True(t, ok)
		assert.Equal(t, "state", got)

		rec = httptest.NewRecorder()
		_, ok = v.ValidateEnum(rec, httptest.NewRequest(http.MethodGet, "/?level=country", nil), "level", allowed, "state")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
