// Package catalog defines the sellable product variants and their
// inventory positions as seen by the register and the dashboard.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested variant does not exist.
var ErrNotFound = errors.New("variant not found")

// ErrInsufficientStock is returned when a stock decrement would drive
// the on-hand quantity below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// Variant is one sellable SKU together with its inventory position.
// Quantity is the on-hand stock; ReorderPoint is nil when no reorder
// threshold is configured for the variant.
type Variant struct {
	VariantID    string
	ProductID    string
	ProductName  string
	SKU          string
	Barcode      string
	Price        decimal.Decimal
	Cost         decimal.Decimal
	Quantity     int
	ReorderPoint *int
}

// LowStock reports whether the variant sits at or below its reorder point.
// Variants without a configured reorder point are never low.
func (v Variant) LowStock() bool {
	return v.ReorderPoint != nil && v.Quantity <= *v.ReorderPoint
}

// Repository defines read operations for the product catalog. Inventory
// writes happen through order.Repository.Create so they commit together
// with the order that consumes them.
type Repository interface {
	List(ctx context.Context) ([]Variant, error)
	GetByVariantIDs(ctx context.Context, ids []string) ([]Variant, error)
}
