package services

import "errors"

// Dashboard service errors
var (
	// Region errors
	ErrStateNotFound    = errors.New("state not found")
	ErrDistrictNotFound = errors.New("district not found")

	// Forecast errors
	ErrInvalidLevel = errors.New("invalid forecast level")

	// Dataset errors
	ErrDatasetUnavailable = errors.New("enrolment dataset unavailable")
)
