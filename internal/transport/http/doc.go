// Package http implements the HTTP handlers of the benchmark API. Handlers
// only parse requests and format responses; lookups and health checks live
// in the services package.
//
// # Compute contract
//
// POST /berakna and POST /api/benchmark/compute always answer 200. A
// successful lookup returns the result object; every failure the caller
// can cause (unreadable body, missing fields, unknown segment, incomplete
// data) returns
//
//	{"error": "<message>"}
//
// so clients must inspect the payload rather than the status.
//
// # Other errors
//
// Everything outside the compute contract (bad query parameters, panics,
// timeouts, unknown routes, oversized bodies) is an RFC 7807 problem
// rendered by internal/errors:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Invalid value for parameter \"year\"",
//	    "instance": "/api/benchmark/segments"
//	}
//
// # Testing
//
// Handlers depend on BenchmarkServiceInterface and HealthServiceInterface
// and are tested with testify mocks and httptest recorders.
package http
