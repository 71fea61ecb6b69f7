package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"benchmarkapi/internal/benchmark"
)

// Health states reported by HealthService
const (
	StatusOK       = "ok"
	StatusAlive    = "alive"
	StatusReady    = "ready"
	StatusNotReady = "not_ready"
)

// HealthService provides health check functionality
type HealthService struct {
	version   string
	commit    string
	buildTime string
	table     *benchmark.Table
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Rows    int    `json:"rows,omitempty"`
}

// NewHealthService creates a health service over the loaded table.
// table may be nil, in which case readiness reports not_ready.
func NewHealthService(version, commit, buildTime string, table *benchmark.Table, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("commit", commit),
		slog.String("build_time", buildTime))

	return &HealthService{
		version:   version,
		commit:    commit,
		buildTime: buildTime,
		table:     table,
		startTime: time.Now(),
		logger:    logger.With(slog.String("component", "health_service")),
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	status := hs.ReadinessCheck(ctx)
	if status.Status == StatusReady {
		status.Status = StatusOK
	}
	return status
}

// ReadinessCheck reports ready once a non-empty dataset is being served
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    StatusReady,
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	dataset := hs.checkDatasetHealth()
	status.Services["dataset"] = dataset
	if dataset.Status != StatusReady {
		status.Status = StatusNotReady
		hs.logger.WarnContext(ctx, "readiness check failed", slog.String("reason", dataset.Message))
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    StatusAlive,
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.commit != "" {
		result["commit"] = hs.commit
	}
	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}

	return result
}

// checkDatasetHealth checks the served table
func (hs *HealthService) checkDatasetHealth() ServiceHealth {
	if hs.table == nil {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: ErrDatasetNotLoaded.Error(),
		}
	}
	if hs.table.Len() == 0 {
		return ServiceHealth{
			Status:  StatusNotReady,
			Message: fmt.Sprintf("%v: dataset %s has no rows", ErrServiceUnavailable, hs.table.Source().Path),
		}
	}

	return ServiceHealth{
		Status:  StatusReady,
		Message: "benchmark dataset loaded",
		Rows:    hs.table.Len(),
	}
}
