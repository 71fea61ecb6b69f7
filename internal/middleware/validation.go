package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "benchmarkapi/internal/errors"
)

// QueryParamValidator validates query parameters against validator tags
// and answers invalid input with a 400 problem.
type QueryParamValidator struct {
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryParamValidator creates a new query parameter validator
func NewQueryParamValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryParamValidator {
	return &QueryParamValidator{
		validate:     validator.New(),
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateString reads param, falling back to defaultValue when absent,
// and checks it against a validator tag such as "numeric,len=4".
// On failure the response is already written and ok is false.
func (v *QueryParamValidator) ValidateString(w http.ResponseWriter, r *http.Request, param, tag, defaultValue string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(param))
	if value == "" {
		return defaultValue, true
	}

	if err := v.validate.Var(value, tag); err != nil {
		var fieldErrs validator.ValidationErrors
		msg := err.Error()
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			msg = formatValidationError(param, fieldErrs[0])
		}
		v.logger.DebugContext(r.Context(), "invalid query parameter",
			slog.String("param", param),
			slog.String("value", value),
			slog.String("reason", msg),
		)
		v.errorHandler.HandleError(w, r, apierrors.InvalidParameter(param, errors.New(msg)))
		return "", false
	}

	return value, true
}

// ValidateEnum validates an enum query parameter
func (v *QueryParamValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	return v.ValidateString(w, r, param, "oneof="+strings.Join(allowed, " "), defaultValue)
}

// formatValidationError formats validation error messages
func formatValidationError(field string, err validator.FieldError) string {
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}
