// internal/core/domain/numeric.go
package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// numericRun matches the first number in a formatted string such as
// "Rs. 1,500" or "1,204 students". Thousands separators are allowed.
var numericRun = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// ParseAmount extracts a non-negative decimal from a loosely formatted
// string. Anything that does not contain a number yields zero.
func ParseAmount(s string) decimal.Decimal {
	m := numericRun.FindString(s)
	if m == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(m, ",", ""))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseCount extracts a non-negative integer from a loosely formatted
// string ("1,204" -> 1204). Fractions are truncated; garbage yields zero.
func ParseCount(s string) int64 {
	return ParseAmount(s).IntPart()
}

// Amount is a decimal that accepts either a JSON number or a
// currency-formatted JSON string when decoding.
type Amount struct {
	decimal.Decimal
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		a.Decimal = decimal.Zero
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			a.Decimal = decimal.Zero
			return nil
		}
		a.Decimal = ParseAmount(s)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil || d.IsNegative() {
		a.Decimal = decimal.Zero
		return nil
	}
	a.Decimal = d
	return nil
}

// Count is an integer that accepts a JSON number or a comma formatted
// JSON string when decoding.
type Count int64

// UnmarshalJSON implements json.Unmarshaler.
func (c *Count) UnmarshalJSON(b []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(b); err != nil {
		return err
	}
	*c = Count(a.IntPart())
	return nil
}

// Rating is a score in [0,5]. Missing or malformed values decode as 0.
type Rating float64

// UnmarshalJSON implements json.Unmarshaler.
func (r *Rating) UnmarshalJSON(b []byte) error {
	var a Amount
	if err := a.UnmarshalJSON(b); err != nil {
		return err
	}
	f, _ := a.Float64()
	*r = Rating(ClampRating(f))
	return nil
}

// ClampRating bounds a rating to [0,5].
func ClampRating(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 5:
		return 5
	}
	return f
}

// RoundRating rounds an aggregate rating to one decimal place.
func RoundRating(f float64) float64 {
	return math.Round(ClampRating(f)*10) / 10
}
