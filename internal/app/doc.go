// Package app wires the enrolment dashboard server together and manages its
// lifecycle.
//
// # Initialization Flow
//
//  1. Load configuration (config.Load) and initialize the global logger
//  2. Initialize OpenTelemetry and the business metrics
//  3. Create the dataset loader and its memoizing cache
//  4. Create the forecaster, the dashboard service and the live session hub
//  5. Build the chi router and the HTTP server
//
// # Routing
//
// Only RequestID and RealIP run in front of /ws/dashboard so the upgrade sees
// the raw ResponseWriter. Everything under /api runs through the full chain:
//
//	RequestID → RealIP → OTel → Logger → Recoverer → SecurityHeaders → CORS → RateLimit → Timeout
//
// /metrics is served outside the group.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	application, err := app.NewApplication(cfg)
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then closes every live session, drains
// in-flight requests within Server.ShutdownTimeout and flushes telemetry.
// Errors are returned to the caller; the package never calls os.Exit.
package app
