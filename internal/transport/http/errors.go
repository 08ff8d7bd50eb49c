package http

import (
	"net/http"

	"enrolpulse/internal/dataset"
	apierrors "enrolpulse/internal/errors"
	"enrolpulse/internal/forecast"
	"enrolpulse/internal/services"
)

// RegisterDomainErrors maps the dashboard sentinel errors onto problem types.
// Dataset content errors are registered ahead of ErrDatasetUnavailable,
// which wraps them.
func RegisterDomainErrors(h *apierrors.ErrorHandler) *apierrors.ErrorHandler {
	return h.
		Map(services.ErrStateNotFound, http.StatusNotFound, apierrors.TypeRegionNotFound, "State Not Found", "STATE_NOT_FOUND").
		Map(services.ErrDistrictNotFound, http.StatusNotFound, apierrors.TypeRegionNotFound, "District Not Found", "DISTRICT_NOT_FOUND").
		Map(services.ErrInvalidLevel, http.StatusBadRequest, apierrors.TypeValidation, "Invalid Forecast Level", "INVALID_LEVEL").
		Map(forecast.ErrInvalidHorizon, http.StatusBadRequest, apierrors.TypeInvalidHorizon, "Invalid Forecast Horizon", "INVALID_HORIZON").
		Map(forecast.ErrEmptySeries, http.StatusUnprocessableEntity, apierrors.TypeEmptySeries, "No Observations", "EMPTY_SERIES").
		Map(forecast.ErrInsufficientHistory, http.StatusUnprocessableEntity, apierrors.TypeInsufficientHistory, "Insufficient History", "INSUFFICIENT_HISTORY").
		Map(dataset.ErrMissingColumn, http.StatusServiceUnavailable, apierrors.TypeDatasetInvalid, "Dataset Invalid", "DATASET_INVALID").
		Map(dataset.ErrInvalidCount, http.StatusServiceUnavailable, apierrors.TypeDatasetInvalid, "Dataset Invalid", "DATASET_INVALID").
		Map(dataset.ErrNoRecords, http.StatusServiceUnavailable, apierrors.TypeDatasetInvalid, "Dataset Invalid", "DATASET_INVALID").
		Map(services.ErrDatasetUnavailable, http.StatusServiceUnavailable, apierrors.TypeDatasetUnavailable, "Dataset Unavailable", "DATASET_UNAVAILABLE")
}
