package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"benchmarkapi/internal/benchmark"
	"benchmarkapi/internal/infrastructure"
)

// BenchmarkService answers benchmark lookups against the loaded dataset
type BenchmarkService struct {
	estimator   *benchmark.Estimator
	defaultYear string
	tracer      trace.Tracer
	metrics     *infrastructure.BusinessMetrics
	logger      *slog.Logger
}

// DatasetInfo describes the dataset the service is serving
type DatasetInfo struct {
	Path        string    `json:"path"`
	Format      string    `json:"format"`
	SizeBytes   int64     `json:"size_bytes"`
	Rows        int       `json:"rows"`
	Columns     []string  `json:"columns"`
	Fingerprint string    `json:"fingerprint"`
	LoadedAt    time.Time `json:"loaded_at"`
}

// NewBenchmarkService creates a benchmark service. tracer and metrics may
// be nil, in which case spans are no-ops and lookups are not counted.
func NewBenchmarkService(estimator *benchmark.Estimator, defaultYear string, tracer trace.Tracer, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *BenchmarkService {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.InstrumentationName)
	}
	if defaultYear == "" {
		defaultYear = benchmark.DefaultYear
	}

	logger = logger.With(slog.String("component", "benchmark_service"))
	logger.Info("BenchmarkService initialized",
		slog.Int("rows", estimator.Table().Len()),
		slog.String("source", estimator.Table().Source().Path),
		slog.String("default_year", defaultYear))

	return &BenchmarkService{
		estimator:   estimator,
		defaultYear: defaultYear,
		tracer:      tracer,
		metrics:     metrics,
		logger:      logger,
	}
}

// Compute parses a decoded request body and estimates the improvement
// potential for the selected segment. Failures are *benchmark.QueryError
// whose message is safe to return to the caller.
func (s *BenchmarkService) Compute(ctx context.Context, payload map[string]any) (*benchmark.Result, error) {
	ctx, span := s.tracer.Start(ctx, "benchmark.compute")
	defer span.End()

	start := time.Now()

	q, err := benchmark.ParseQuery(payload, s.defaultYear)
	if err != nil {
		s.fail(ctx, span, err, start)
		return nil, err
	}

	key := q.Key()
	span.SetAttributes(
		attribute.String("benchmark.year", key.Year),
		attribute.String("benchmark.sni_3", key.SNI3),
		attribute.String("benchmark.size_class", key.SizeClass),
	)

	result, err := s.estimator.Compute(q)
	if err != nil {
		s.fail(ctx, span, err, start)
		return nil, err
	}

	span.SetAttributes(attribute.Int("benchmark.matched_rows", result.MatchedRows))
	infrastructure.RecordLookup(ctx, s.metrics, infrastructure.OutcomeSuccess, time.Since(start), result.MatchedRows)

	s.logger.InfoContext(ctx, "benchmark computed",
		slog.String("year", key.Year),
		slog.String("sni_3", key.SNI3),
		slog.String("size_class", key.SizeClass),
		slog.Int("matched_rows", result.MatchedRows),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

// fail records a rejected lookup on the span, the metrics and the log
func (s *BenchmarkService) fail(ctx context.Context, span trace.Span, err error, start time.Time) {
	outcome := outcomeFor(err)
	infrastructure.RecordLookup(ctx, s.metrics, outcome, time.Since(start), 0)

	attrs := []any{slog.String("outcome", outcome), slog.String("reason", err.Error())}
	var qe *benchmark.QueryError
	if errors.As(err, &qe) && len(qe.Fields) > 0 {
		attrs = append(attrs, slog.Any("fields", qe.Fields))
	}

	span.SetAttributes(attribute.String("benchmark.outcome", outcome))
	if outcome == infrastructure.OutcomeIncomplete {
		span.SetStatus(codes.Error, err.Error())
		s.logger.WarnContext(ctx, "benchmark lookup rejected", attrs...)
		return
	}
	s.logger.DebugContext(ctx, "benchmark lookup rejected", attrs...)
}

func outcomeFor(err error) string {
	switch {
	case benchmark.IsKind(err, benchmark.KindValidation):
		return infrastructure.OutcomeValidation
	case benchmark.IsKind(err, benchmark.KindNotFound):
		return infrastructure.OutcomeNotFound
	case benchmark.IsKind(err, benchmark.KindIncomplete):
		return infrastructure.OutcomeIncomplete
	default:
		return "error"
	}
}

// Segments lists the distinct segment keys, optionally for one year
func (s *BenchmarkService) Segments(ctx context.Context, year string) []benchmark.SegmentKey {
	_, span := s.tracer.Start(ctx, "benchmark.segments",
		trace.WithAttributes(attribute.String("benchmark.year", year)))
	defer span.End()

	segments := s.estimator.Table().Segments(year)
	span.SetAttributes(attribute.Int("benchmark.segments", len(segments)))
	return segments
}

// DatasetInfo reports the source metadata of the served table
func (s *BenchmarkService) DatasetInfo() DatasetInfo {
	table := s.estimator.Table()
	src := table.Source()
	return DatasetInfo{
		Path:        src.Path,
		Format:      src.Format,
		SizeBytes:   src.SizeBytes,
		Rows:        table.Len(),
		Columns:     table.Columns(),
		Fingerprint: src.Fingerprint,
		LoadedAt:    src.LoadedAt,
	}
}

// DefaultYear is the year used when a request omits one
func (s *BenchmarkService) DefaultYear() string {
	return s.defaultYear
}
