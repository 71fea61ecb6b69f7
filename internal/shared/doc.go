// Package shared holds helpers used by more than one layer of the service.
//
// The testutil subpackage provides a buffered slog handler so tests can
// assert on structured log output:
//
//	logger, handler := testutil.NewTestLogger(t)
//	svc := services.NewBenchmarkService(est, "2024", nil, nil, logger)
//	...
//	testutil.AssertLogContains(t, handler, slog.LevelInfo, "benchmark computed")
//
// Nothing in this package may depend on domain packages.
package shared
