// Package http implements the REST handlers of the enrolment dashboard.
// Handlers stay thin: they parse and validate the request, call the
// dashboard service and render the result.
//
// # Routes
//
//	GET /api/regions/states
//	GET /api/regions/states/{state}/districts
//	GET /api/dashboard?state=&district=&level=&horizon=
//	GET /api/dashboard/forecast?state=&district=&level=&horizon=
//	GET /api/dashboard/states/{state}/overview
//	GET /api/dashboard/states/{state}/districts
//	GET /api/dashboard/states/{state}/districts/{district}
//	GET /api/dashboard/states/{state}/districts/{district}/trend
//	GET /api/export/{districts,trend,forecast}.{csv,xlsx}
//
// Successful JSON responses use the envelope
//
//	{"status": "success", "data": ..., "count": n}
//
// # Error Handling
//
// Errors are rendered as RFC 7807 problem details by the shared
// ErrorHandler. RegisterDomainErrors installs the mapping for the
// dashboard sentinel errors:
//
//	{
//	    "type": "/errors/region/not-found",
//	    "title": "State Not Found",
//	    "status": 404,
//	    "detail": "state not found: \"Goa\"",
//	    "instance": "/api/dashboard/states/Goa/overview"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a DashboardService backed by
// an in-memory dataset.
package http
