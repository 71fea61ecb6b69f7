package http

import (
	"context"

	"benchmarkapi/internal/benchmark"
	"benchmarkapi/internal/services"
)

// BenchmarkServiceInterface defines the benchmark operations the handlers need
type BenchmarkServiceInterface interface {
	Compute(ctx context.Context, payload map[string]any) (*benchmark.Result, error)
	Segments(ctx context.Context, year string) []benchmark.SegmentKey
	DatasetInfo() services.DatasetInfo
}

// HealthServiceInterface defines the health operations the handlers need
type HealthServiceInterface interface {
	HealthCheck(ctx context.Context) services.HealthStatus
	ReadinessCheck(ctx context.Context) services.HealthStatus
	LivenessCheck(ctx context.Context) services.HealthStatus
	Version() map[string]interface{}
}
