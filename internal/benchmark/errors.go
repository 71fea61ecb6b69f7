package benchmark

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the loader
var (
	// ErrDataSourceNotFound means none of the candidate files exist
	ErrDataSourceNotFound = errors.New("benchmark data source not found")
	// ErrUnsupportedFormat means a candidate has an extension with no reader
	ErrUnsupportedFormat = errors.New("unsupported benchmark file format")
)

// Request-time messages returned to callers verbatim
const (
	MsgMissingFields  = "Missing required fields: sni_3, size_class, revenue (and optional year)"
	MsgIncompleteData = "Benchmark data incomplete for selected segment."
)

// DataLoadError reports a failure to locate or read the dataset file.
type DataLoadError struct {
	Path       string
	Candidates []string
	Err        error
}

func (e *DataLoadError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("load benchmark data from %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%v (looked for: %s)", e.Err, strings.Join(e.Candidates, ", "))
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

// SchemaError reports required columns that are still missing after
// harmonization, together with the columns that were present.
type SchemaError struct {
	Missing []string
	Present []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("missing columns: [%s]; have: [%s]",
		strings.Join(e.Missing, ", "), strings.Join(e.Present, ", "))
}

// ErrorKind classifies request-time failures
type ErrorKind string

const (
	KindValidation ErrorKind = "validation"
	KindNotFound   ErrorKind = "not_found"
	KindIncomplete ErrorKind = "incomplete"
)

// QueryError is the structured failure returned for a single lookup.
// Message is safe to show to the caller.
type QueryError struct {
	Kind    ErrorKind
	Message string
	Fields  []string
}

func (e *QueryError) Error() string {
	return e.Message
}

func validationError(fields []string) *QueryError {
	return &QueryError{Kind: KindValidation, Message: MsgMissingFields, Fields: fields}
}

func notFoundError(key SegmentKey) *QueryError {
	return &QueryError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("No benchmark for year=%s, sni_3=%s, size_class=%s", key.Year, key.SNI3, key.SizeClass),
	}
}

func incompleteError(fields []string) *QueryError {
	return &QueryError{Kind: KindIncomplete, Message: MsgIncompleteData, Fields: fields}
}

// IsKind reports whether err is a *QueryError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var qe *QueryError
	return errors.As(err, &qe) && qe.Kind == kind
}
