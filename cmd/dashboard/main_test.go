package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunRejectsInvalidConfig(t *testing.T) {
	t.Setenv("ENROL_SERVER_PORT", "70000")

	err := run()
	assert.ErrorContains(t, err, "failed to load configuration")
	assert.ErrorContains(t, err, "invalid server port")
}

func TestRunRejectsUnknownTelemetryExporter(t *testing.T) {
	t.Setenv("ENROL_TELEMETRY_METRIC_EXPORTER", "statsd")

	err := run()
	assert.ErrorContains(t, err, "failed to initialize application")
}
