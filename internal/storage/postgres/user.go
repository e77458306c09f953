package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartinventory/pos/internal/domain/identity"
)

const (
	getUserSQL = `SELECT id, full_name, username, password_hash, role, created_at
		FROM users WHERE username = $1`

	insertUserSQL = `INSERT INTO users (full_name, username, password_hash, role)
		VALUES ($1, $2, $3, $4) RETURNING id, created_at`

	updatePasswordSQL = `UPDATE users SET password_hash = $1 WHERE id = $2`
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaks.
const uniqueViolation = "23505"

var _ identity.Repository = (*UserRepository)(nil)

// UserRepository implements identity.Repository backed by PostgreSQL.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository returns a UserRepository that uses the given pool.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// GetByUsername returns the user with the given username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*identity.User, error) {
	rows, err := r.pool.Query(ctx, getUserSQL, username)
	if err != nil {
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}

	u, err := pgx.CollectExactlyOneRow(rows, func(row pgx.CollectableRow) (identity.User, error) {
		var (
			u    identity.User
			role string
		)
		err := row.Scan(&u.ID, &u.FullName, &u.Username, &u.PasswordHash, &role, &u.CreatedAt)
		u.Role = identity.Role(role)
		return u, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrNotFound
		}
		return nil, fmt.Errorf("getting user %q: %w", username, err)
	}
	return &u, nil
}

// Create inserts a new user, filling in its ID and creation time.
func (r *UserRepository) Create(ctx context.Context, u *identity.User) error {
	err := r.pool.QueryRow(ctx, insertUserSQL,
		u.FullName, u.Username, u.PasswordHash, string(u.Role),
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return identity.ErrUsernameTaken
		}
		return fmt.Errorf("creating user %q: %w", u.Username, err)
	}
	return nil
}

// UpdatePassword replaces a user's password digest.
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	tag, err := r.pool.Exec(ctx, updatePasswordSQL, hash, id)
	if err != nil {
		return fmt.Errorf("updating password for user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return identity.ErrNotFound
	}
	return nil
}
