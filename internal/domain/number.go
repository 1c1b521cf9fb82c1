package domain

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxNumberLen bounds the digits a form value may carry.
const maxNumberLen = 32

// plainDecimal accepts an optional sign, digits and an optional fraction.
// Exponent notation is refused.
var plainDecimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

// Number is a user-entered decimal from an editor field. Input that is blank
// or does not parse reads as zero; it never produces an error, so a half-typed
// value cannot fail a request.
type Number struct {
	decimal.Decimal
}

// NumberOf wraps an existing decimal.
func NumberOf(d decimal.Decimal) Number {
	return Number{Decimal: d}
}

// NumberFromInt is a convenience for seeds and tests.
func NumberFromInt(v int64) Number {
	return Number{Decimal: decimal.NewFromInt(v)}
}

// ParseNumber reads a form value leniently. Grouping commas, spaces and a
// leading rupee sign are ignored. Anything other than plain decimal notation
// of at most maxNumberLen characters reads as zero.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₹")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) > maxNumberLen || !plainDecimal.MatchString(s) {
		return Number{}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Number{}
	}
	return Number{Decimal: d}
}

// UnmarshalJSON accepts a JSON number, a numeric string, an empty string or null.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = Number{}
		return nil
	}
	*n = ParseNumber(string(bytes.Trim(data, `"`)))
	return nil
}
