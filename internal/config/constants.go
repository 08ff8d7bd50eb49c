package config

import "time"

// Application constants
const (
	// Application Info
	AppName     = "Enrolment Pulse"
	ServiceName = "enrolpulse"

	// EnvPrefix namespaces all environment variables (ENROL_SERVER_PORT, ...)
	EnvPrefix = "ENROL"

	// File Paths (relative to the base directory)
	DefaultDatasetPath = "data/aadhar_demographic.csv"
	DefaultExportsDir  = "data/exports"
	DefaultLogFile     = "logs/app.log"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Forecast
	DefaultForecastWindow  = 7
	MinForecastHorizon     = 3
	MaxForecastHorizon     = 30
	DefaultForecastHorizon = 7

	// WebSocket
	WebSocketPingPeriod = 30 * time.Second
	WebSocketPongWait   = 60 * time.Second

	// Log Settings
	DefaultLogLevel = "info"
)
