// Package pos implements the point-of-sale cart: line items assembled at
// the register, stock-aware quantity mutations, and the pricing pipeline
// that turns a cart into totals.
package pos

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/catalog"
)

// Sentinel errors for cart mutations.
var (
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
	ErrEmptyCart       = errors.New("cart has no items")
)

// OutOfStockError indicates a variant with zero on-hand stock was added.
type OutOfStockError struct {
	Name string
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("%s is out of stock", e.Name)
}

// InsufficientStockError indicates a requested quantity exceeds the
// variant's available stock.
type InsufficientStockError struct {
	Name      string
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("only %d units available for %s", e.Available, e.Name)
}

// LineItem is one variant-quantity-price entry within a Cart.
// AvailableStock snapshots the variant's on-hand quantity at the time it
// was added; a value of 0 means stock tracking is disabled for the line
// and SetQuantity applies no cap.
type LineItem struct {
	VariantID      string
	Name           string
	SKU            string
	UnitPrice      decimal.Decimal
	Quantity       int
	AvailableStock int
}

// Cart is the in-memory order being assembled at the register. Line items
// keep insertion order and are unique per variant; adding a variant twice
// increments the existing line instead of duplicating it.
//
// A Cart is owned by a single register session and is not safe for
// concurrent use.
type Cart struct {
	items []LineItem

	DiscountAmount decimal.Decimal
	TaxRatePercent decimal.Decimal
	Notes          string
}

// Items returns a copy of the cart's line items in insertion order.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct line items.
func (c *Cart) Len() int {
	return len(c.items)
}

// AddItem inserts the variant as a new line item or increments an existing
// one. It fails with OutOfStockError when the variant has no stock, and
// with InsufficientStockError when the combined quantity would exceed the
// available stock. On failure the cart is left unchanged.
func (c *Cart) AddItem(v catalog.Variant, qty int) error {
	if qty < 1 {
		return ErrInvalidQuantity
	}
	if v.Quantity <= 0 {
		return &OutOfStockError{Name: v.ProductName}
	}

	idx := c.find(v.VariantID)
	next := qty
	if idx >= 0 {
		next += c.items[idx].Quantity
	}
	if next > v.Quantity {
		return &InsufficientStockError{Name: v.ProductName, Available: v.Quantity}
	}

	if idx >= 0 {
		c.items[idx].Quantity = next
		return nil
	}
	c.items = append(c.items, LineItem{
		VariantID:      v.VariantID,
		Name:           v.ProductName,
		SKU:            v.SKU,
		UnitPrice:      v.Price,
		Quantity:       qty,
		AvailableStock: v.Quantity,
	})
	return nil
}

// SetQuantity replaces the quantity of an existing line item. Values of
// zero or below are ignored without error: the register's quantity input
// emits transient non-positive values while the cashier is typing. Unknown
// variant IDs are a no-op. When the line tracks stock and the new quantity
// exceeds it, the call fails with InsufficientStockError and the quantity
// is left as-is rather than clamped.
func (c *Cart) SetQuantity(variantID string, qty int) error {
	if qty <= 0 {
		return nil
	}
	idx := c.find(variantID)
	if idx < 0 {
		return nil
	}
	it := &c.items[idx]
	if it.AvailableStock > 0 && qty > it.AvailableStock {
		return &InsufficientStockError{Name: it.Name, Available: it.AvailableStock}
	}
	it.Quantity = qty
	return nil
}

// RemoveItem deletes the line item for the variant. Removing an absent
// variant is a no-op.
func (c *Cart) RemoveItem(variantID string) {
	idx := c.find(variantID)
	if idx < 0 {
		return
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
}

// Reset clears all line items and restores discount, tax rate, and notes
// to their zero defaults.
func (c *Cart) Reset() {
	c.items = nil
	c.DiscountAmount = decimal.Decimal{}
	c.TaxRatePercent = decimal.Decimal{}
	c.Notes = ""
}

func (c *Cart) find(variantID string) int {
	for i := range c.items {
		if c.items[i].VariantID == variantID {
			return i
		}
	}
	return -1
}
