// Package order defines completed orders and their persistence operations.
package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a completed register sale with its full pricing breakdown.
// PlacedAt is nil for feed records whose timestamp was missing upstream.
type Order struct {
	ID             string
	OrderNumber    string
	Status         string
	Subtotal       decimal.Decimal
	DiscountsTotal decimal.Decimal
	TaxesTotal     decimal.Decimal
	TotalAmount    decimal.Decimal
	Currency       string
	ItemCount      int
	Notes          string
	PlacedAt       *time.Time
	Items          []Item
}

// Item is a single sold line within an order.
type Item struct {
	VariantID string
	Name      string
	SKU       string
	Quantity  int
	UnitPrice decimal.Decimal
	LineTotal decimal.Decimal
}

// StockDecrement is the on-hand quantity one checkout line consumes.
type StockDecrement struct {
	VariantID string
	Quantity  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Create persists the order, its line items, and the stock decrements
	// it consumes. Everything commits or nothing does: a decrement that
	// would drive a quantity below zero fails the whole call with
	// catalog.ErrInsufficientStock and leaves inventory untouched.
	Create(ctx context.Context, o *Order, decrements []StockDecrement) error
	// ListSince returns orders placed at or after since, newest first.
	ListSince(ctx context.Context, since time.Time) ([]Order, error)
	// ListBetween returns orders placed within [start, end], newest first.
	ListBetween(ctx context.Context, start, end time.Time) ([]Order, error)
	// Import inserts a feed record unless an order with the same ID already
	// exists. It reports whether a row was written.
	Import(ctx context.Context, o *Order) (bool, error)
}
