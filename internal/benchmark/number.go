package benchmark

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a nullable float64. The zero value is null.
type Number struct {
	Value float64
	Valid bool
}

// Null is the absent Number
var Null = Number{}

// Some wraps a finite value; non-finite input yields Null.
func Some(v float64) Number {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Null
	}
	return Number{Value: v, Valid: true}
}

// MarshalJSON emits null for absent values
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// ParseOptionalNumber converts a loosely typed value into a Number.
// Strings are trimmed and parsed as float64; anything that does not parse,
// and any NaN or infinite result, is absent. Booleans are not numbers.
func ParseOptionalNumber(v any) Number {
	switch x := v.(type) {
	case nil:
		return Null
	case Number:
		return x
	case float64:
		return Some(x)
	case float32:
		return Some(float64(x))
	case int:
		return Some(float64(x))
	case int32:
		return Some(float64(x))
	case int64:
		return Some(float64(x))
	case uint32:
		return Some(float64(x))
	case uint64:
		return Some(float64(x))
	case json.Number:
		return ParseOptionalNumber(x.String())
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return Null
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return Null
		}
		return Some(f)
	default:
		return Null
	}
}

// round1 rounds half away from zero to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// roundInt rounds to the nearest integer, saturating at the int64 bounds.
func roundInt(v float64) int64 {
	r := math.Round(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= maxInt64Float:
		return math.MaxInt64
	case r < -maxInt64Float:
		return math.MinInt64
	}
	return int64(r)
}

// maxInt64Float is 2^63, the first float64 above math.MaxInt64
const maxInt64Float = float64(1 << 63)

func optionalInt(n Number) *int64 {
	if !n.Valid {
		return nil
	}
	v := roundInt(n.Value)
	return &v
}

// formatScalar renders a JSON scalar as the string form used for segment keys.
// Integral floats lose their fractional part so 2024 and "2024" agree.
func formatScalar(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return "", false
		}
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case json.Number:
		return x.String(), true
	default:
		return "", false
	}
}
