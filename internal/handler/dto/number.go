package dto

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// maxExactInt is the largest integer a float64 represents exactly.
const maxExactInt = 1 << 53

// Number is a lenient numeric field: a JSON number or a string holding one.
// Decoding never fails; anything else leaves the Number unusable.
type Number struct {
	value float64
	ok    bool
}

// NewNumber returns a usable Number holding v.
func NewNumber(v float64) Number {
	return Number{value: v, ok: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = Number{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
		raw = strings.TrimSpace(raw)
	} else {
		raw = string(data)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	*n = Number{value: v, ok: true}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.ok {
		return []byte("null"), nil
	}
	return json.Marshal(n.value)
}

// Float64 returns the value, or nil if the field was absent or not numeric.
func (n Number) Float64() *float64 {
	if !n.ok {
		return nil
	}
	v := n.value
	return &v
}

// Int64 returns the value if it is a whole number, or nil otherwise.
func (n Number) Int64() *int64 {
	if !n.ok || n.value != math.Trunc(n.value) || math.Abs(n.value) > maxExactInt {
		return nil
	}
	v := int64(n.value)
	return &v
}
