package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/settings"
)

const (
	allSettingsSQL = `SELECT key, value FROM settings`

	upsertSettingSQL = `INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
)

var _ settings.Repository = (*SettingsRepository)(nil)

// SettingsRepository implements settings.Repository backed by PostgreSQL.
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository returns a SettingsRepository that uses the given pool.
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

// All returns every stored setting as a key/value map.
func (r *SettingsRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, allSettingsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing settings: %w", err)
	}

	m := make(map[string]string)
	var key, value string
	_, err = pgx.ForEachRow(rows, []any{&key, &value}, func() error {
		m[key] = value
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning settings: %w", err)
	}
	return m, nil
}

// Set stores a setting, inserting or overwriting as needed. Unknown keys are
// rejected before touching the database.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	if !settings.KnownKey(key) {
		return settings.ErrUnknownKey
	}
	if _, err := r.pool.Exec(ctx, upsertSettingSQL, key, value); err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}
