package benchmark

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOptionalNumber(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  Number
	}{
		{"nil", nil, Null},
		{"float", 12.5, Some(12.5)},
		{"int", 7, Some(7)},
		{"json number", json.Number("5000000"), Some(5000000)},
		{"numeric string", " 3.25 ", Some(3.25)},
		{"exponent string", "5e6", Some(5000000)},
		{"empty string", "", Null},
		{"scb missing marker", "..", Null},
		{"word", "abc", Null},
		{"nan float", math.NaN(), Null},
		{"nan string", "NaN", Null},
		{"infinite float", math.Inf(1), Null},
		{"infinite string", "-inf", Null},
		{"bool", true, Null},
		{"object", map[string]any{"v": 1}, Null},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseOptionalNumber(tt.input))
		})
	}
}

func TestNumberMarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		A Number `json:"a"`
		B Number `json:"b"`
	}{A: Some(1.5), B: Null})
	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":1.5,"b":null}`, string(b))
}

func TestRound1HalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 2.3, round1(2.25))
	assert.Equal(t, 4.5, round1(4.5))
	assert.Equal(t, -2.3, round1(-2.25))
	assert.Equal(t, 0.4, round1(0.375))
}

func TestRoundIntSaturates(t *testing.T) {
	assert.Equal(t, int64(3), roundInt(2.5))
	assert.Equal(t, int64(-3), roundInt(-2.5))
	assert.Equal(t, int64(math.MaxInt64), roundInt(1e300))
	assert.Equal(t, int64(math.MaxInt64), roundInt(math.Ldexp(1, 63)))
	assert.Equal(t, int64(math.MinInt64), roundInt(-1e300))
	assert.Equal(t, int64(math.MinInt64), roundInt(-math.Ldexp(1, 63)))
	assert.Equal(t, int64(0), roundInt(math.NaN()))
}
