package errors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"benchmarkapi/internal/benchmark"
	"benchmarkapi/internal/infrastructure"
	"benchmarkapi/internal/shared/testutil"
)

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func newRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	return req.WithContext(infrastructure.WithTraceID(req.Context(), "trace-abc"))
}

func TestNewErrorHandler(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	handler := NewErrorHandler(logger, true)
	assert.NotNil(t, handler.logger)
	assert.True(t, handler.includeStack)
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"deadline exceeded", context.DeadlineExceeded, http.StatusGatewayTimeout, TypeTimeout},
		{"wrapped cancel", fmt.Errorf("lookup: %w", context.Canceled), http.StatusGatewayTimeout, TypeTimeout},
		{"api error", ErrRateLimitExceeded, http.StatusTooManyRequests, TypeRateLimit},
		{"invalid parameter", InvalidParameter("year", fmt.Errorf("not a year")), http.StatusBadRequest, TypeValidation},
		{"body too large", &http.MaxBytesError{Limit: 10}, http.StatusRequestEntityTooLarge, TypePayloadTooLarge},
		{"no data source", &benchmark.DataLoadError{Err: benchmark.ErrDataSourceNotFound}, http.StatusServiceUnavailable, TypeDataNotFound},
		{"schema", &benchmark.SchemaError{Missing: []string{"year"}}, http.StatusServiceUnavailable, TypeDataCorrupted},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError, TypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			handler := NewErrorHandler(logger, false)

			rec := httptest.NewRecorder()
			handler.HandleError(rec, newRequest(http.MethodGet, "/api/benchmark/segments"), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeProblem(t, rec)
			assert.Equal(t, tt.wantType, body["type"])
			assert.Equal(t, float64(tt.wantStatus), body["status"])
			assert.Equal(t, "/api/benchmark/segments", body["instance"])
			assert.Equal(t, "trace-abc", body["trace_id"])
			assert.NotContains(t, body, "stack")
			assert.True(t, logs.ContainsMessage("request failed"))
		})
	}
}

func TestErrorHandler_HandleNilError(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, newRequest(http.MethodGet, "/"), nil)

	assert.Zero(t, rec.Body.Len())
	assert.Zero(t, logs.Count())
}

func TestErrorHandler_APIErrorDetails(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.HandleError(rec, newRequest(http.MethodGet, "/x"), InvalidParameter("year", fmt.Errorf("bad")))

	body := decodeProblem(t, rec)
	assert.Equal(t, "INVALID_PARAMETER", body["error_code"])
	assert.Equal(t, "bad", body["details"])
	assert.Equal(t, `Invalid value for parameter "year"`, body["detail"])
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, true)

	rec := httptest.NewRecorder()
	handler.HandlePanic(rec, newRequest(http.MethodPost, "/berakna"), "kaboom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeInternal, body["type"])
	assert.Equal(t, "kaboom", body["panic"])
	assert.Contains(t, body, "stack")
	assert.True(t, logs.ContainsMessage("panic recovered"))
}

func TestErrorHandler_Middleware(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	panicky := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("unexpected")
	}))

	rec := httptest.NewRecorder()
	assert.NotPanics(t, func() {
		panicky.ServeHTTP(rec, newRequest(http.MethodGet, "/"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	aborting := handler.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))
	assert.Panics(t, func() {
		aborting.ServeHTTP(httptest.NewRecorder(), newRequest(http.MethodGet, "/"))
	})
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	handler.NotFound(rec, newRequest(http.MethodGet, "/nope"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, TypeNotFound, body["type"])
	assert.Equal(t, "trace-abc", body["trace_id"])

	rec = httptest.NewRecorder()
	handler.MethodNotAllowed(rec, newRequest(http.MethodDelete, "/berakna"))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	body = decodeProblem(t, rec)
	assert.Equal(t, "Method DELETE is not allowed for this endpoint", body["detail"])
}

func TestErrorHandler_Problem(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	handler := NewErrorHandler(logger, false)

	rec := httptest.NewRecorder()
	problem := NewProblemDetails(http.StatusTooManyRequests, TypeRateLimit, "Too Many Requests", "slow down", "/x").
		WithExtension("retry_after", 1)
	handler.Problem(rec, newRequest(http.MethodGet, "/x"), problem)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	body := decodeProblem(t, rec)
	assert.Equal(t, float64(1), body["retry_after"])
	assert.Equal(t, "trace-abc", body["trace_id"])
}
