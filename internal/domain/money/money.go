// Package money normalizes loosely typed monetary amounts into decimals.
//
// Upstream feeds are inconsistent about amount typing: the same field may
// arrive as a JSON number, a numeric string, or null. Everything funnels
// through Parse so the "parse or zero" policy lives in exactly one place.
package money

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// Parse converts an amount of unknown type into a decimal. Nil values and
// anything that does not parse as a number become zero.
func Parse(v any) decimal.Decimal {
	switch a := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return a
	case string:
		return ParseString(a)
	case json.Number:
		return ParseString(a.String())
	case float64:
		return decimal.NewFromFloat(a)
	case float32:
		return decimal.NewFromFloat32(a)
	case int:
		return decimal.NewFromInt(int64(a))
	case int32:
		return decimal.NewFromInt(int64(a))
	case int64:
		return decimal.NewFromInt(a)
	default:
		return decimal.Zero
	}
}

// ParseString converts a numeric string into a decimal, returning zero for
// empty or malformed input.
func ParseString(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Round2 rounds to two fractional digits, half away from zero. This is the
// only rounding step in the pricing pipeline.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
