package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"benchmarkapi/internal/benchmark"
	apierrors "benchmarkapi/internal/errors"
	"benchmarkapi/internal/middleware"
)

// ComputeError is the body returned for every request-time compute failure.
// It is always sent with status 200.
type ComputeError struct {
	Error string `json:"error"`
}

// SegmentsResponse lists the segments available for lookups
type SegmentsResponse struct {
	Year     string                 `json:"year,omitempty"`
	Count    int                    `json:"count"`
	Segments []benchmark.SegmentKey `json:"segments"`
}

// BenchmarkHandler handles benchmark lookup requests
type BenchmarkHandler struct {
	service      BenchmarkServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	params       *middleware.QueryParamValidator
}

// NewBenchmarkHandler creates a new benchmark handler
func NewBenchmarkHandler(service BenchmarkServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *BenchmarkHandler {
	return &BenchmarkHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "benchmark_handler")),
		errorHandler: errorHandler,
		params:       middleware.NewQueryParamValidator(logger, errorHandler),
	}
}

// Routes returns the /api/benchmark routes
func (h *BenchmarkHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Post("/compute", h.Compute)
	r.Get("/segments", h.Segments)
	r.Get("/dataset", h.Dataset)

	return r
}

// Compute handles POST /berakna and POST /api/benchmark/compute.
// Every failure the caller can cause is answered with 200 and {"error": msg}.
func (h *BenchmarkHandler) Compute(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload map[string]any
	if err := render.DecodeJSON(r.Body, &payload); err != nil {
		var maxBytes *http.MaxBytesError
		if errors.As(err, &maxBytes) {
			h.errorHandler.HandleError(w, r, err)
			return
		}
		h.logger.DebugContext(ctx, "unreadable request body", slog.String("error", err.Error()))
		h.computeError(w, r, benchmark.MsgMissingFields)
		return
	}

	result, err := h.service.Compute(ctx, payload)
	if err != nil {
		var qe *benchmark.QueryError
		if errors.As(err, &qe) {
			h.computeError(w, r, qe.Message)
			return
		}
		h.logger.ErrorContext(ctx, "benchmark compute failed", slog.String("error", err.Error()))
		h.computeError(w, r, "Internal error while computing benchmark.")
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}

func (h *BenchmarkHandler) computeError(w http.ResponseWriter, r *http.Request, msg string) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, ComputeError{Error: msg})
}

// Segments handles GET /api/benchmark/segments?year=
func (h *BenchmarkHandler) Segments(w http.ResponseWriter, r *http.Request) {
	year, ok := h.params.ValidateString(w, r, "year", "numeric,len=4", "")
	if !ok {
		return
	}

	etag := segmentsETag(h.service.DatasetInfo().Fingerprint, year)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	segments := h.service.Segments(r.Context(), year)
	render.JSON(w, r, SegmentsResponse{
		Year:     year,
		Count:    len(segments),
		Segments: segments,
	})
}

// Dataset handles GET /api/benchmark/dataset
func (h *BenchmarkHandler) Dataset(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.DatasetInfo())
}

// segmentsETag derives a strong validator from the dataset fingerprint and
// the year filter
func segmentsETag(fingerprint, year string) string {
	if len(fingerprint) > 16 {
		fingerprint = fingerprint[:16]
	}
	if year == "" {
		year = "all"
	}
	return fmt.Sprintf(`"%s-%s"`, fingerprint, year)
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" || strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
