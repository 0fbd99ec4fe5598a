package repository

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slipsync/slipsync/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, order_number, status, subtotal, discounts_total, taxes_total, total_amount, currency, item_count, notes, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	insertOrderIfAbsentSQL = `INSERT INTO orders (id, order_number, status, subtotal, discounts_total, taxes_total, total_amount, currency, item_count, notes, placed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING`

	insertOrderItemSQL = `INSERT INTO order_items (order_id, variant_id, name, sku, quantity, unit_price, line_total)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	listOrdersSinceSQL = `SELECT id, order_number, status, subtotal, discounts_total, taxes_total, total_amount, currency, item_count, notes, placed_at
		FROM orders WHERE placed_at >= $1 ORDER BY placed_at DESC`

	listOrdersBetweenSQL = `SELECT id, order_number, status, subtotal, discounts_total, taxes_total, total_amount, currency, item_count, notes, placed_at
		FROM orders WHERE placed_at >= $1 AND placed_at <= $2 ORDER BY placed_at DESC`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create persists an order, its line items, and its stock decrements in
// one transaction. A decrement refused by the conditional update rolls
// back everything, so a concurrently depleted variant can never leave a
// half-applied checkout behind.
func (r *OrderRepository) Create(ctx context.Context, o *order.Order, decrements []order.StockDecrement) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin order tx")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, d := range decrements {
		if err := adjustQuantity(ctx, tx, d.VariantID, -d.Quantity); err != nil {
			return errors.Wrapf(err, "decrement stock for %q", d.VariantID)
		}
	}

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.OrderNumber, o.Status,
		o.Subtotal, o.DiscountsTotal, o.TaxesTotal, o.TotalAmount,
		o.Currency, o.ItemCount, o.Notes, o.PlacedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "creating order %q", o.ID)
	}

	for _, it := range o.Items {
		_, err = tx.Exec(ctx, insertOrderItemSQL,
			o.ID, it.VariantID, it.Name, it.SKU, it.Quantity, it.UnitPrice, it.LineTotal,
		)
		if err != nil {
			return errors.Wrapf(err, "creating order item %q", it.VariantID)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return errors.Wrapf(err, "commit order %q", o.ID)
	}
	return nil
}

// ListSince returns orders placed at or after since, newest first.
func (r *OrderRepository) ListSince(ctx context.Context, since time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSinceSQL, since)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders since %s", since.Format(time.RFC3339))
	}
	return pgx.CollectRows(rows, scanOrder)
}

// ListBetween returns orders placed within [start, end], newest first.
func (r *OrderRepository) ListBetween(ctx context.Context, start, end time.Time) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersBetweenSQL, start, end)
	if err != nil {
		return nil, errors.Wrapf(err, "listing orders between %s and %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return pgx.CollectRows(rows, scanOrder)
}

// Import inserts a feed record unless an order with the same ID already
// exists. It reports whether a row was written.
func (r *OrderRepository) Import(ctx context.Context, o *order.Order) (bool, error) {
	tag, err := r.pool.Exec(ctx, insertOrderIfAbsentSQL,
		o.ID, o.OrderNumber, o.Status,
		o.Subtotal, o.DiscountsTotal, o.TaxesTotal, o.TotalAmount,
		o.Currency, o.ItemCount, o.Notes, o.PlacedAt,
	)
	if err != nil {
		return false, errors.Wrapf(err, "importing order %q", o.ID)
	}
	return tag.RowsAffected() > 0, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.Status,
		&o.Subtotal, &o.DiscountsTotal, &o.TaxesTotal, &o.TotalAmount,
		&o.Currency, &o.ItemCount, &o.Notes, &o.PlacedAt,
	)
	return o, err
}
