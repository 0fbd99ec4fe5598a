// Command feed-ingest imports gzipped JSONL order-feed exports into the
// database. Exports from upstream registers overlap: the same order can
// appear in several files, so ingest runs in two passes. Pass 1 builds a
// bloom filter of order ids per file, concurrently. Pass 2 walks the
// files in order and skips records whose id already appeared in an
// earlier file; the database import uses ON CONFLICT DO NOTHING as the
// final word on duplicates.
package main

import (
	"bufio"
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"golang.org/x/sync/errgroup"

	"github.com/slipsync/slipsync/internal/domain/money"
	"github.com/slipsync/slipsync/internal/domain/order"
	"github.com/slipsync/slipsync/internal/repository"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.000001
	progressEvery = 100_000
)

func main() {
	var (
		feedDir     string
		databaseURL string
	)

	flag.StringVar(&feedDir, "feed-dir", "feed", "directory containing *.jsonl.gz order exports")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
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

	if err := run(ctx, feedDir, databaseURL); err != nil {
		slog.Error("feed ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("feed ingest completed successfully")
}

func run(ctx context.Context, feedDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(feedDir, "*.jsonl.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.jsonl.gz files in %s", feedDir)
	}
	sort.Strings(files)

	// Pass 1: one bloom filter of order ids per file, built concurrently.
	slog.Info("pass 1: indexing order ids", slog.Int("files", len(files)))

	filters, err := buildIDFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "index order ids")
	}

	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}
	orders := repository.NewOrderRepository(pool)

	// Pass 2: import files in order, skipping ids seen in earlier files.
	slog.Info("pass 2: importing orders")

	var imported, skipped, conflicted uint64
	for i, path := range files {
		earlier := filters[:i]

		err := streamLines(ctx, path, func(line []byte) error {
			id, err := peekOrderID(line)
			if err != nil {
				return err
			}
			for _, f := range earlier {
				if f.TestString(id) {
					skipped++
					return nil
				}
			}

			o, err := decodeFeedOrder(line)
			if err != nil {
				return errors.Wrapf(err, "decode order %s", id)
			}
			written, err := orders.Import(ctx, o)
			if err != nil {
				return errors.Wrapf(err, "import order %s", id)
			}
			if written {
				imported++
				if imported%progressEvery == 0 {
					slog.Info("import progress", slog.Uint64("imported", imported))
				}
			} else {
				conflicted++
			}
			return nil
		})
		if err != nil {
			return errors.Wrapf(err, "import %s", filepath.Base(path))
		}

		slog.Info("file imported",
			slog.String("file", filepath.Base(path)),
			slog.Uint64("imported", imported),
			slog.Uint64("skipped", skipped),
			slog.Uint64("already_present", conflicted),
		)
	}

	return nil
}

// buildIDFilters streams every file concurrently and collects its order
// ids into a per-file bloom filter.
func buildIDFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			err := streamLines(ctx, path, func(line []byte) error {
				id, err := peekOrderID(line)
				if err != nil {
					return err
				}
				filter.AddString(id)
				count++
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "index %s", filepath.Base(path))
			}

			slog.Info("file indexed",
				slog.String("file", filepath.Base(path)),
				slog.Uint64("orders", count),
			)
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// streamLines opens a gzip-compressed file and calls fn for each
// non-empty line.
func streamLines(ctx context.Context, path string, fn func(line []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	scanner := bufio.NewScanner(gz)
	scanner.Buffer(make([]byte, 0, 1<<20), 1<<20)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrapf(err, "scan %s", path)
	}
	return nil
}

// peekOrderID extracts only the id field without decoding the full
// record.
func peekOrderID(line []byte) (string, error) {
	var id string
	d := jx.DecodeBytes(line)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		if string(key) == "id" {
			v, err := d.Str()
			id = v
			return err
		}
		return d.Skip()
	}); err != nil {
		return "", errors.Wrap(err, "parse id")
	}
	if id == "" {
		return "", errors.New("record has no id")
	}
	return id, nil
}

// decodeFeedOrder parses one feed record. Amount fields arrive as
// number, string, or null depending on the exporting register.
func decodeFeedOrder(line []byte) (*order.Order, error) {
	o := &order.Order{
		Status:   "paid",
		Currency: "USD",
	}

	d := jx.DecodeBytes(line)
	err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		var err error
		switch string(key) {
		case "id":
			o.ID, err = d.Str()
		case "orderNumber":
			o.OrderNumber, err = d.Str()
		case "status":
			o.Status, err = d.Str()
		case "subtotal":
			o.Subtotal, err = money.DecodeAmount(d)
		case "discountsTotal":
			o.DiscountsTotal, err = money.DecodeAmount(d)
		case "taxesTotal":
			o.TaxesTotal, err = money.DecodeAmount(d)
		case "totalAmount":
			o.TotalAmount, err = money.DecodeAmount(d)
		case "currency":
			o.Currency, err = d.Str()
		case "itemCount":
			o.ItemCount, err = d.Int()
		case "notes":
			if d.Next() == jx.Null {
				return d.Null()
			}
			o.Notes, err = d.Str()
		case "placedAt":
			if d.Next() == jx.Null {
				return d.Null()
			}
			var raw string
			if raw, err = d.Str(); err != nil {
				return err
			}
			var ts time.Time
			if ts, err = time.Parse(time.RFC3339, raw); err != nil {
				return errors.Wrap(err, "parse placedAt")
			}
			o.PlacedAt = &ts
		default:
			return d.Skip()
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	// Feeds from older registers omit the zero amounts entirely.
	if o.TotalAmount.IsZero() && !o.Subtotal.IsZero() {
		o.TotalAmount = o.Subtotal.Sub(o.DiscountsTotal).Add(o.TaxesTotal)
	}
	return o, nil
}
