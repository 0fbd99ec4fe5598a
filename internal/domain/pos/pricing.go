package pos

import (
	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/money"
)

var hundred = decimal.NewFromInt(100)

// Pricing is the derived totals for a cart. It is recomputed on every
// read and never stored.
type Pricing struct {
	Subtotal    decimal.Decimal
	Discount    decimal.Decimal
	TaxableBase decimal.Decimal
	Tax         decimal.Decimal
	Total       decimal.Decimal
}

// Totals computes the pricing breakdown for the cart:
//
//	subtotal = sum(unit price * quantity)
//	discount = DiscountAmount clamped into [0, subtotal]
//	base     = max(subtotal - discount, 0)
//	tax      = base * max(TaxRatePercent, 0) / 100, rounded to 2 places
//	total    = base + tax
//
// Only the tax step rounds; subtotal, discount, and base carry full
// precision. The function is pure: calling it twice on an unchanged cart
// yields identical results.
func (c *Cart) Totals() Pricing {
	subtotal := decimal.Zero
	for _, it := range c.items {
		line := it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		subtotal = subtotal.Add(line)
	}

	discount := c.DiscountAmount
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if discount.GreaterThan(subtotal) {
		discount = subtotal
	}

	base := subtotal.Sub(discount)
	if base.IsNegative() {
		base = decimal.Zero
	}

	rate := c.TaxRatePercent
	if rate.IsNegative() {
		rate = decimal.Zero
	}
	tax := money.Round2(base.Mul(rate).Div(hundred))

	return Pricing{
		Subtotal:    subtotal,
		Discount:    discount,
		TaxableBase: base,
		Tax:         tax,
		Total:       base.Add(tax),
	}
}
