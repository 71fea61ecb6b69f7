// Package services implements the business logic layer between the HTTP
// handlers and the benchmark dataset.
//
// # Services
//
//	- BenchmarkService: parses lookup requests, runs the estimator and
//	  records spans, structured logs and lookup metrics
//	- HealthService: liveness, readiness (dataset loaded and non-empty)
//	  and build information
//
// # Error Handling
//
// BenchmarkService returns *benchmark.QueryError values unchanged so
// handlers can report the message to the caller. Handlers decide how a
// failure is rendered; services never write responses.
//
// # Testing
//
// Handlers depend on small interfaces, so services are replaced with
// testify mocks in transport tests:
//
//	svc := new(MockBenchmarkService)
//	svc.On("Compute", mock.Anything, payload).Return(result, nil)
package services
