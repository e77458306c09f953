// Command catalog-import loads gzipped CSV product feeds from suppliers into
// the catalog. Files are processed concurrently; a bloom filter dedupes SKUs
// across feeds so the first feed listing a SKU wins.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"github.com/gocarina/gocsv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/smartinventory/pos/internal/storage/postgres"
)

const (
	bloomCapacity = 1_000_000
	bloomFPR      = 0.000001
)

// feedRow is one product line in a supplier CSV feed.
type feedRow struct {
	SKU          string          `csv:"sku"`
	Name         string          `csv:"name"`
	Category     string          `csv:"category"`
	SellingPrice decimal.Decimal `csv:"selling_price"`
	CostPrice    decimal.Decimal `csv:"cost_price"`
	TaxRate      decimal.Decimal `csv:"tax_rate"`
	Stock        int             `csv:"stock"`
}

// skuFilter is a concurrency-safe bloom filter over already-imported SKUs.
// A false positive skips a row, which is acceptable for feed ingestion.
type skuFilter struct {
	mu     sync.Mutex
	filter *bloom.BloomFilter
}

func newSKUFilter() *skuFilter {
	return &skuFilter{filter: bloom.NewWithEstimates(bloomCapacity, bloomFPR)}
}

// testAndAdd reports whether sku was already seen, marking it seen otherwise.
func (s *skuFilter) testAndAdd(sku string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.TestAndAddString(sku)
}

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz product feeds")
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

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog import failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog import completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz feeds in %s", dataDir)
	}

	slog.Info("importing feeds", slog.Int("files", len(files)))

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	seen := newSKUFilter()
	g, ctx := errgroup.WithContext(ctx)
	for _, f := range files {
		g.Go(importFeed(ctx, pool, seen, f))
	}
	return g.Wait()
}

func importFeed(ctx context.Context, pool *pgxpool.Pool, seen *skuFilter, path string) func() error {
	return func() error {
		rows, err := readFeed(path)
		if err != nil {
			return errors.Wrapf(err, "read feed %s", path)
		}

		var imported, skipped int
		for _, row := range rows {
			if err := ctx.Err(); err != nil {
				return err
			}
			if row.SKU == "" || row.Name == "" {
				skipped++
				continue
			}
			if seen.testAndAdd(row.SKU) {
				skipped++
				continue
			}
			if err := upsertProduct(ctx, pool, row); err != nil {
				return errors.Wrapf(err, "upsert sku %s", row.SKU)
			}
			imported++
		}

		slog.Info("feed imported",
			slog.String("file", filepath.Base(path)),
			slog.Int("imported", imported),
			slog.Int("skipped", skipped),
		)
		return nil
	}
}

// readFeed decompresses and parses one CSV feed.
func readFeed(path string) ([]feedRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "gzip reader")
	}
	defer func() { _ = gz.Close() }()

	var rows []feedRow
	if err := gocsv.Unmarshal(gz, &rows); err != nil {
		return nil, errors.Wrap(err, "parse csv")
	}
	return rows, nil
}

const (
	upsertFeedCategorySQL = `INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	upsertFeedProductSQL = `INSERT INTO products
		(sku, name, category_id, selling_price, cost_price, tax_rate, stock)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (sku) DO UPDATE SET
			name = EXCLUDED.name,
			category_id = EXCLUDED.category_id,
			selling_price = EXCLUDED.selling_price,
			cost_price = EXCLUDED.cost_price,
			tax_rate = EXCLUDED.tax_rate,
			stock = products.stock + EXCLUDED.stock`
)

func upsertProduct(ctx context.Context, pool *pgxpool.Pool, row feedRow) error {
	var categoryID int64
	if err := pool.QueryRow(ctx, upsertFeedCategorySQL, row.Category).Scan(&categoryID); err != nil {
		return errors.Wrap(err, "upsert category")
	}

	_, err := pool.Exec(ctx, upsertFeedProductSQL,
		row.SKU, row.Name, categoryID,
		row.SellingPrice, row.CostPrice, row.TaxRate, row.Stock)
	return errors.Wrap(err, "upsert product")
}
