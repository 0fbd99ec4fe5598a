// Command seed-db loads demo catalog data into the database so the
// register and dashboard have something to sell.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/slipsync/slipsync/internal/domain/catalog"
	"github.com/slipsync/slipsync/internal/repository"
)

type variantJSON struct {
	VariantID    string          `json:"variantId"`
	ProductID    string          `json:"productId"`
	ProductName  string          `json:"productName"`
	SKU          string          `json:"sku"`
	Barcode      string          `json:"barcode"`
	Price        decimal.Decimal `json:"price"`
	Cost         decimal.Decimal `json:"cost"`
	Quantity     int             `json:"quantity"`
	ReorderPoint *int            `json:"reorderPoint"`
}

func main() {
	var (
		databaseURL  string
		productsFile string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	return seedVariants(ctx, repository.NewCatalogRepository(pool), productsFile)
}

func seedVariants(ctx context.Context, repo *repository.CatalogRepository, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	data, err := os.ReadFile(productsFile)
	if err != nil {
		return errors.Wrap(err, "read products file")
	}

	var variants []variantJSON
	if err := json.Unmarshal(data, &variants); err != nil {
		return errors.Wrap(err, "parse products JSON")
	}

	slog.Info("upserting variants", slog.Int("count", len(variants)))

	for _, v := range variants {
		err := repo.Upsert(ctx, catalog.Variant{
			VariantID:    v.VariantID,
			ProductID:    v.ProductID,
			ProductName:  v.ProductName,
			SKU:          v.SKU,
			Barcode:      v.Barcode,
			Price:        v.Price,
			Cost:         v.Cost,
			Quantity:     v.Quantity,
			ReorderPoint: v.ReorderPoint,
		})
		if err != nil {
			return err
		}

		slog.Info("upserted variant", slog.String("id", v.VariantID), slog.String("name", v.ProductName))
	}

	return nil
}
