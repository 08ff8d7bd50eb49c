// Package services implements the business logic layer of Enrolment Pulse.
// It sits between the HTTP and live session transports and the dataset,
// analytics and forecast packages.
//
// # Available Services
//
//	- DashboardService: region lists and every dashboard view of a selection
//	- HealthService: health, readiness, liveness and version information
//
// # Common Service Pattern
//
// Dependencies are injected through constructors, and a nil logger falls
// back to slog.Default:
//
//	svc := services.NewDashboardService(cache, forecaster, cfg.Forecast.DefaultHorizon, metrics, logger)
//	view, err := svc.View(ctx, services.DashboardQuery{State: "Kerala"}, services.ChannelREST)
//
// # Error Handling
//
// Services return sentinel errors wrapped with context. Transports map them
// to responses:
//
//	- ErrStateNotFound, ErrDistrictNotFound: unknown region (404)
//	- ErrInvalidLevel, forecast.ErrInvalidHorizon: bad query (400)
//	- ErrDatasetUnavailable: the dataset failed to load (503)
//
// # Testing
//
// Services are tested by mocking the dataset source:
//
//	source := new(MockDatasetSource)
//	source.On("Get", mock.Anything).Return(ds, nil)
//	svc := NewDashboardService(source, forecast.New(), 7, nil, logger)
package services
