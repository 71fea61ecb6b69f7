package benchmark

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultYear is used when a request carries no year
const DefaultYear = "2024"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Query is a validated lookup request.
type Query struct {
	Year      string   `json:"year" validate:"required"`
	SNI3      string   `json:"sni_3" validate:"required"`
	SizeClass string   `json:"size_class" validate:"required"`
	Revenue   *float64 `json:"revenue" validate:"required"`
}

// NewQuery builds and validates a query from typed values. A blank year
// falls back to defaultYear; an absent revenue is a validation error.
func NewQuery(year, sni3, sizeClass string, revenue Number, defaultYear string) (Query, error) {
	payload := map[string]any{
		"year":       year,
		"sni_3":      sni3,
		"size_class": sizeClass,
	}
	if revenue.Valid {
		payload["revenue"] = revenue.Value
	}
	return ParseQuery(payload, defaultYear)
}

// Key returns the normalized segment key the query selects.
func (q Query) Key() SegmentKey {
	return SegmentKey{Year: q.Year, SNI3: q.SNI3, SizeClass: NormalizeSizeClass(q.SizeClass)}
}

// ParseQuery turns a decoded JSON object into a Query. A missing, null or
// blank year falls back to defaultYear. Failures are *QueryError with
// KindValidation naming the offending fields.
func ParseQuery(payload map[string]any, defaultYear string) (Query, error) {
	if defaultYear == "" {
		defaultYear = DefaultYear
	}

	q := Query{
		Year:      defaultYear,
		SNI3:      trimmedField(payload, "sni_3"),
		SizeClass: trimmedField(payload, "size_class"),
	}
	if y := trimmedField(payload, "year"); y != "" {
		q.Year = y
	}
	if rev := ParseOptionalNumber(payload["revenue"]); rev.Valid {
		v := rev.Value
		q.Revenue = &v
	}

	if err := validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return Query{}, validationError(nil)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return Query{}, validationError(fields)
	}
	return q, nil
}

func trimmedField(payload map[string]any, name string) string {
	s, ok := formatScalar(payload[name])
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
