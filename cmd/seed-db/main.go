// Command seed-db runs the embedded migrations and loads demo data: two
// accounts, the category tree, a realistic product list and the default
// store settings.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/pos/internal/domain/identity"
	"github.com/smartinventory/pos/internal/domain/settings"
	"github.com/smartinventory/pos/internal/storage/postgres"
)

type seedUser struct {
	fullName string
	username string
	password string
	role     identity.Role
}

var seedUsers = []seedUser{
	{fullName: "Store Administrator", username: "admin", password: "Admin@123", role: identity.RoleAdmin},
	{fullName: "Counter Operator", username: "pos1", password: "Pos@123", role: identity.RolePOS},
}

type seedProduct struct {
	name     string
	category string
	selling  string
	cost     string
	taxRate  string
	stock    int
}

var seedCategories = []string{
	"Grocery", "Dairy", "Beverages", "Snacks", "Personal Care",
	"Household", "Bakery", "Frozen", "Stationery", "Electronics",
}

var seedProducts = []seedProduct{
	{name: "Basmati Rice 5kg", category: "Grocery", selling: "520", cost: "430", taxRate: "5", stock: 40},
	{name: "Toor Dal 1kg", category: "Grocery", selling: "160", cost: "128", taxRate: "5", stock: 60},
	{name: "Sunflower Oil 1L", category: "Grocery", selling: "145", cost: "118", taxRate: "5", stock: 50},
	{name: "Full Cream Milk 1L", category: "Dairy", selling: "66", cost: "58", taxRate: "0", stock: 80},
	{name: "Paneer 200g", category: "Dairy", selling: "95", cost: "74", taxRate: "5", stock: 30},
	{name: "Curd 500g", category: "Dairy", selling: "42", cost: "33", taxRate: "0", stock: 45},
	{name: "Cola 750ml", category: "Beverages", selling: "45", cost: "34", taxRate: "28", stock: 70},
	{name: "Mango Juice 1L", category: "Beverages", selling: "110", cost: "84", taxRate: "12", stock: 35},
	{name: "Salted Chips 90g", category: "Snacks", selling: "30", cost: "22", taxRate: "12", stock: 100},
	{name: "Chocolate Bar 50g", category: "Snacks", selling: "45", cost: "34", taxRate: "18", stock: 90},
	{name: "Toothpaste 150g", category: "Personal Care", selling: "98", cost: "72", taxRate: "18", stock: 55},
	{name: "Shampoo 340ml", category: "Personal Care", selling: "215", cost: "162", taxRate: "18", stock: 25},
	{name: "Dish Soap 500ml", category: "Household", selling: "120", cost: "88", taxRate: "18", stock: 40},
	{name: "Detergent 1kg", category: "Household", selling: "180", cost: "136", taxRate: "18", stock: 35},
	{name: "Whole Wheat Bread", category: "Bakery", selling: "48", cost: "36", taxRate: "0", stock: 30},
	{name: "Butter Cookies 250g", category: "Bakery", selling: "85", cost: "62", taxRate: "18", stock: 40},
	{name: "Frozen Peas 500g", category: "Frozen", selling: "90", cost: "68", taxRate: "5", stock: 20},
	{name: "Ballpoint Pens 10pk", category: "Stationery", selling: "60", cost: "42", taxRate: "12", stock: 75},
	{name: "A4 Notebook 200pg", category: "Stationery", selling: "95", cost: "70", taxRate: "12", stock: 50},
	{name: "USB-C Cable 1m", category: "Electronics", selling: "299", cost: "195", taxRate: "18", stock: 25},
}

var seedSettings = map[string]string{
	settings.KeyStoreName:  "SmartInventory Enterprise",
	settings.KeyGSTEnabled: "true",
	settings.KeyGSTPercent: "18",
	settings.KeyUPIID:      "merchant@okaxis",
}

func main() {
	var databaseURL string
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

	if err := run(ctx, databaseURL); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedAccounts(ctx, pool); err != nil {
		return errors.Wrap(err, "seed accounts")
	}
	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedStoreSettings(ctx, pool); err != nil {
		return errors.Wrap(err, "seed settings")
	}

	return nil
}

func seedAccounts(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertUserSQL = `INSERT INTO users (full_name, username, password_hash, role)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) DO UPDATE SET password_hash = EXCLUDED.password_hash`

	for _, u := range seedUsers {
		hash := identity.HashPassword(u.password)
		if _, err := pool.Exec(ctx, upsertUserSQL, u.fullName, u.username, hash, string(u.role)); err != nil {
			return errors.Wrapf(err, "upsert user %s", u.username)
		}
		slog.Info("upserted user", slog.String("username", u.username), slog.String("role", string(u.role)))
	}
	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertCategorySQL = `INSERT INTO categories (name) VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`

	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		var id int64
		if err := pool.QueryRow(ctx, upsertCategorySQL, name).Scan(&id); err != nil {
			return errors.Wrapf(err, "upsert category %s", name)
		}
		categoryIDs[name] = id
	}
	slog.Info("upserted categories", slog.Int("count", len(categoryIDs)))

	const insertProductSQL = `INSERT INTO products
		(name, category_id, selling_price, cost_price, tax_rate, stock)
		SELECT $1, $2, $3, $4, $5, $6
		WHERE NOT EXISTS (SELECT 1 FROM products WHERE name = $1)`

	for _, p := range seedProducts {
		selling, err := decimal.NewFromString(p.selling)
		if err != nil {
			return errors.Wrapf(err, "parse selling price for %s", p.name)
		}
		cost, err := decimal.NewFromString(p.cost)
		if err != nil {
			return errors.Wrapf(err, "parse cost price for %s", p.name)
		}
		taxRate, err := decimal.NewFromString(p.taxRate)
		if err != nil {
			return errors.Wrapf(err, "parse tax rate for %s", p.name)
		}

		_, err = pool.Exec(ctx, insertProductSQL,
			p.name, categoryIDs[p.category], selling, cost, taxRate, p.stock)
		if err != nil {
			return errors.Wrapf(err, "insert product %s", p.name)
		}
	}
	slog.Info("seeded products", slog.Int("count", len(seedProducts)))

	return nil
}

func seedStoreSettings(ctx context.Context, pool *pgxpool.Pool) error {
	const upsertSettingSQL = `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`

	for key, value := range seedSettings {
		if _, err := pool.Exec(ctx, upsertSettingSQL, key, value); err != nil {
			return errors.Wrapf(err, "seed setting %s", key)
		}
	}
	slog.Info("seeded settings", slog.Int("count", len(seedSettings)))

	return nil
}
