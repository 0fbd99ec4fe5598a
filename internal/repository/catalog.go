package repository

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/slipsync/slipsync/internal/domain/catalog"
)

const (
	listVariantsSQL = `SELECT variant_id, product_id, product_name, sku, COALESCE(barcode, ''), price, COALESCE(cost, 0), quantity, reorder_point
		FROM products ORDER BY product_name, sku`

	getVariantsByIDsSQL = `SELECT variant_id, product_id, product_name, sku, COALESCE(barcode, ''), price, COALESCE(cost, 0), quantity, reorder_point
		FROM products WHERE variant_id = ANY($1)`

	adjustQuantitySQL = `UPDATE products SET quantity = quantity + $2
		WHERE variant_id = $1 AND quantity + $2 >= 0`

	variantExistsSQL = `SELECT EXISTS (SELECT 1 FROM products WHERE variant_id = $1)`

	upsertVariantSQL = `INSERT INTO products (variant_id, product_id, product_name, sku, barcode, price, cost, quantity, reorder_point)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9)
		ON CONFLICT (variant_id) DO UPDATE SET
			product_id = EXCLUDED.product_id,
			product_name = EXCLUDED.product_name,
			sku = EXCLUDED.sku,
			barcode = EXCLUDED.barcode,
			price = EXCLUDED.price,
			cost = EXCLUDED.cost,
			quantity = EXCLUDED.quantity,
			reorder_point = EXCLUDED.reorder_point`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// List returns all catalog variants ordered by product name and SKU.
func (r *CatalogRepository) List(ctx context.Context) ([]catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, listVariantsSQL)
	if err != nil {
		return nil, errors.Wrap(err, "listing variants")
	}
	return pgx.CollectRows(rows, scanVariant)
}

// GetByVariantIDs returns variants matching any of the given IDs.
func (r *CatalogRepository) GetByVariantIDs(ctx context.Context, ids []string) ([]catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantsByIDsSQL, ids)
	if err != nil {
		return nil, errors.Wrap(err, "getting variants by ids")
	}
	return pgx.CollectRows(rows, scanVariant)
}

// querier is the subset of pgx shared by a pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// adjustQuantity applies delta to the variant's on-hand quantity on q.
// The update is conditional so a decrement can never drive stock below
// zero.
func adjustQuantity(ctx context.Context, q querier, variantID string, delta int) error {
	tag, err := q.Exec(ctx, adjustQuantitySQL, variantID, delta)
	if err != nil {
		return errors.Wrapf(err, "adjusting quantity for %q", variantID)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	// Zero rows means either an unknown variant or a refused decrement.
	var exists bool
	if err := q.QueryRow(ctx, variantExistsSQL, variantID).Scan(&exists); err != nil {
		return errors.Wrapf(err, "checking variant %q", variantID)
	}
	if !exists {
		return catalog.ErrNotFound
	}
	return catalog.ErrInsufficientStock
}

// Upsert inserts or replaces a catalog variant. Used by the seeder; not
// part of catalog.Repository.
func (r *CatalogRepository) Upsert(ctx context.Context, v catalog.Variant) error {
	_, err := r.pool.Exec(ctx, upsertVariantSQL,
		v.VariantID, v.ProductID, v.ProductName, v.SKU, v.Barcode,
		v.Price, v.Cost, v.Quantity, v.ReorderPoint,
	)
	if err != nil {
		return errors.Wrapf(err, "upserting variant %q", v.VariantID)
	}
	return nil
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var v catalog.Variant
	err := row.Scan(
		&v.VariantID, &v.ProductID, &v.ProductName, &v.SKU, &v.Barcode,
		&v.Price, &v.Cost, &v.Quantity, &v.ReorderPoint,
	)
	return v, err
}
