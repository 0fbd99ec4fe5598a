package money

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeAmount reads the next JSON value from d as a monetary amount.
// Numbers keep their textual representation (no float round trip), strings
// go through ParseString, and null decodes to zero. Other value types are
// skipped and decode to zero.
func DecodeAmount(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return ParseString(n.String()), nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return ParseString(s), nil
	case jx.Null:
		return decimal.Zero, d.Null()
	default:
		return decimal.Zero, d.Skip()
	}
}
