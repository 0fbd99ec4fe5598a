package pos

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slipsync/slipsync/internal/domain/catalog"
)

func variant(id, name string, price string, stock int) catalog.Variant {
	return catalog.Variant{
		VariantID:   id,
		ProductID:   "prod-" + id,
		ProductName: name,
		SKU:         "SKU-" + id,
		Price:       decimal.RequireFromString(price),
		Quantity:    stock,
	}
}

func TestCart_AddItem(t *testing.T) {
	t.Run("inserts new line item", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 2))

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, "v1", items[0].VariantID)
		assert.Equal(t, 2, items[0].Quantity)
		assert.Equal(t, 10, items[0].AvailableStock)
	})

	t.Run("same variant increments instead of duplicating", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 2))
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 3))

		items := c.Items()
		require.Len(t, items, 1)
		assert.Equal(t, 5, items[0].Quantity)
	})

	t.Run("zero stock fails with OutOfStockError", func(t *testing.T) {
		c := &Cart{}
		err := c.AddItem(variant("v1", "Espresso", "3.50", 0), 1)

		var oos *OutOfStockError
		require.ErrorAs(t, err, &oos)
		assert.Equal(t, "Espresso", oos.Name)
		assert.Zero(t, c.Len())
	})

	t.Run("combined quantity over stock fails and leaves cart unchanged", func(t *testing.T) {
		// availableStock = 3, existing quantity 2, requested 2.
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 3), 2))

		err := c.AddItem(variant("v1", "Espresso", "3.50", 3), 2)

		var ins *InsufficientStockError
		require.ErrorAs(t, err, &ins)
		assert.Equal(t, 3, ins.Available)
		assert.Equal(t, 2, c.Items()[0].Quantity)
	})

	t.Run("quantity below one is rejected", func(t *testing.T) {
		c := &Cart{}
		require.ErrorIs(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 0), ErrInvalidQuantity)
		require.ErrorIs(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), -2), ErrInvalidQuantity)
		assert.Zero(t, c.Len())
	})

	t.Run("insertion order is preserved", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v2", "Latte", "4.00", 5), 1))
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 5), 1))

		items := c.Items()
		require.Len(t, items, 2)
		assert.Equal(t, "v2", items[0].VariantID)
		assert.Equal(t, "v1", items[1].VariantID)
	})
}

func TestCart_SetQuantity(t *testing.T) {
	t.Run("updates quantity", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 2))
		require.NoError(t, c.SetQuantity("v1", 7))
		assert.Equal(t, 7, c.Items()[0].Quantity)
	})

	t.Run("non-positive quantity is silently ignored", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 2))
		require.NoError(t, c.SetQuantity("v1", 0))
		require.NoError(t, c.SetQuantity("v1", -5))
		assert.Equal(t, 2, c.Items()[0].Quantity)
	})

	t.Run("unknown variant is a no-op", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.SetQuantity("missing", 3))
	})

	t.Run("over stock fails without clamping", func(t *testing.T) {
		c := &Cart{}
		require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 4), 2))

		err := c.SetQuantity("v1", 9)

		var ins *InsufficientStockError
		require.ErrorAs(t, err, &ins)
		assert.Equal(t, 2, c.Items()[0].Quantity, "quantity must stay unchanged, not clamp to stock")
	})

	t.Run("zero available stock disables the cap", func(t *testing.T) {
		c := &Cart{items: []LineItem{{
			VariantID: "v1",
			Name:      "Legacy SKU",
			UnitPrice: decimal.NewFromInt(1),
			Quantity:  1,
		}}}
		require.NoError(t, c.SetQuantity("v1", 500))
		assert.Equal(t, 500, c.Items()[0].Quantity)
	})
}

func TestCart_RemoveItem(t *testing.T) {
	c := &Cart{}
	require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 1))
	require.NoError(t, c.AddItem(variant("v2", "Latte", "4.00", 10), 1))

	c.RemoveItem("v1")
	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "v2", items[0].VariantID)

	// Absent variant is a no-op.
	c.RemoveItem("v1")
	assert.Equal(t, 1, c.Len())
}

func TestCart_Reset(t *testing.T) {
	c := &Cart{
		DiscountAmount: decimal.NewFromInt(5),
		TaxRatePercent: decimal.NewFromInt(10),
		Notes:          "table 4",
	}
	require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.50", 10), 1))

	c.Reset()

	assert.Zero(t, c.Len())
	assert.True(t, c.DiscountAmount.IsZero())
	assert.True(t, c.TaxRatePercent.IsZero())
	assert.Empty(t, c.Notes)
}

func TestCart_Totals(t *testing.T) {
	tests := []struct {
		name     string
		build    func() *Cart
		subtotal string
		discount string
		base     string
		tax      string
		total    string
	}{
		{
			name: "one item with discount and tax",
			build: func() *Cart {
				c := &Cart{
					DiscountAmount: decimal.NewFromInt(5),
					TaxRatePercent: decimal.NewFromInt(10),
				}
				require.NoError(t, c.AddItem(variant("v1", "Espresso", "10.00", 10), 2))
				return c
			},
			subtotal: "20", discount: "5", base: "15", tax: "1.5", total: "16.5",
		},
		{
			name:  "empty cart",
			build: func() *Cart { return &Cart{} },
			subtotal: "0", discount: "0", base: "0", tax: "0", total: "0",
		},
		{
			name: "discount above subtotal clamps to subtotal",
			build: func() *Cart {
				c := &Cart{DiscountAmount: decimal.NewFromInt(100)}
				require.NoError(t, c.AddItem(variant("v1", "Espresso", "10.00", 10), 2))
				return c
			},
			subtotal: "20", discount: "20", base: "0", tax: "0", total: "0",
		},
		{
			name: "negative discount floors to zero",
			build: func() *Cart {
				c := &Cart{DiscountAmount: decimal.NewFromInt(-7)}
				require.NoError(t, c.AddItem(variant("v1", "Espresso", "10.00", 10), 1))
				return c
			},
			subtotal: "10", discount: "0", base: "10", tax: "0", total: "10",
		},
		{
			name: "negative tax rate treated as zero",
			build: func() *Cart {
				c := &Cart{TaxRatePercent: decimal.NewFromInt(-10)}
				require.NoError(t, c.AddItem(variant("v1", "Espresso", "10.00", 10), 1))
				return c
			},
			subtotal: "10", discount: "0", base: "10", tax: "0", total: "10",
		},
		{
			name: "tax rounds half up at two places",
			build: func() *Cart {
				// 3 * 3.33 = 9.99, 7.5% tax = 0.74925 -> 0.75
				c := &Cart{TaxRatePercent: decimal.RequireFromString("7.5")}
				require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.33", 10), 3))
				return c
			},
			subtotal: "9.99", discount: "0", base: "9.99", tax: "0.75", total: "10.74",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.build()
			p := c.Totals()

			assertDecimal(t, tt.subtotal, p.Subtotal, "subtotal")
			assertDecimal(t, tt.discount, p.Discount, "discount")
			assertDecimal(t, tt.base, p.TaxableBase, "taxable base")
			assertDecimal(t, tt.tax, p.Tax, "tax")
			assertDecimal(t, tt.total, p.Total, "total")
		})
	}
}

func TestCart_TotalsIdempotent(t *testing.T) {
	c := &Cart{
		DiscountAmount: decimal.RequireFromString("2.5"),
		TaxRatePercent: decimal.RequireFromString("8.25"),
	}
	require.NoError(t, c.AddItem(variant("v1", "Espresso", "3.33", 50), 7))
	require.NoError(t, c.AddItem(variant("v2", "Latte", "4.10", 50), 3))

	first := c.Totals()
	second := c.Totals()

	assert.Equal(t, first.Subtotal.String(), second.Subtotal.String())
	assert.Equal(t, first.Discount.String(), second.Discount.String())
	assert.Equal(t, first.TaxableBase.String(), second.TaxableBase.String())
	assert.Equal(t, first.Tax.String(), second.Tax.String())
	assert.Equal(t, first.Total.String(), second.Total.String())
}

// Any sequence of non-erroring mutations keeps every line within stock.
func TestCart_StockInvariant(t *testing.T) {
	v1 := variant("v1", "Espresso", "3.50", 5)
	v2 := variant("v2", "Latte", "4.00", 2)

	c := &Cart{}
	_ = c.AddItem(v1, 2)
	_ = c.AddItem(v2, 2)
	_ = c.AddItem(v1, 9) // fails, over stock
	_ = c.SetQuantity("v1", 5)
	_ = c.SetQuantity("v2", 3) // fails, over stock
	_ = c.AddItem(v2, 1)       // fails, line already at stock

	for _, it := range c.Items() {
		if it.AvailableStock > 0 {
			assert.LessOrEqual(t, it.Quantity, it.AvailableStock,
				"line %s exceeds available stock", it.VariantID)
		}
	}
	p := c.Totals()
	assert.False(t, p.Total.IsNegative())
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		"%s = %s, want %s", field, got, want)
}
