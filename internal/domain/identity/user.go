// Package identity holds user accounts and credential checks. Credential
// checks run per request; there is no ambient session state.
package identity

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	"github.com/go-faster/errors"
)

// Role enumerates the account types.
type Role string

const (
	RoleAdmin Role = "admin"
	RolePOS   Role = "pos"
)

var (
	// ErrNotFound is returned when no user exists for a username.
	ErrNotFound = errors.New("user does not exist")
	// ErrWrongPassword is returned when the password digest does not match.
	ErrWrongPassword = errors.New("incorrect password")
	// ErrEmptyCredentials is returned when username or password is blank.
	ErrEmptyCredentials = errors.New("username and password cannot be empty")
	// ErrWeakPassword is returned when a new password scores below the
	// required strength.
	ErrWeakPassword = errors.New("password too weak")
	// ErrUsernameTaken is returned when creating a user with an existing
	// username.
	ErrUsernameTaken = errors.New("username already taken")
)

// User is an operator or administrator account.
type User struct {
	ID           int64
	FullName     string
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}

// Repository defines persistence operations for users.
type Repository interface {
	GetByUsername(ctx context.Context, username string) (*User, error)
	Create(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// HashPassword returns the hex SHA-256 digest of the password. The digest is
// unsalted to stay compatible with the stored credential format; this is a
// known weakness, not a recommendation.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// StrengthScore rates a password 0-5: length of at least 8, an upper-case
// letter, a lower-case letter, a digit and a symbol score one point each.
func StrengthScore(password string) int {
	score := 0
	if len(password) >= 8 {
		score++
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			score++
		}
	}
	return score
}

// maxStrength is the score a new password must reach.
const maxStrength = 5

// Service implements login and account management over a Repository.
type Service struct {
	users Repository
}

// NewService creates an identity Service.
func NewService(users Repository) *Service {
	return &Service{users: users}
}

// Login authenticates a username/password pair. Usernames match
// case-sensitively; the password is compared by digest in constant time.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup user")
	}
	if u.Username != username {
		// Guards against case-folding collations in the storage layer.
		return nil, ErrNotFound
	}

	digest := HashPassword(password)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(u.PasswordHash)) != 1 {
		return nil, ErrWrongPassword
	}
	return u, nil
}

// ChangePassword verifies the old password and replaces it with the new one.
// The new password must reach full strength.
func (s *Service) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	u, err := s.Login(ctx, username, oldPassword)
	if err != nil {
		return err
	}
	if StrengthScore(newPassword) < maxStrength {
		return ErrWeakPassword
	}
	if err := s.users.UpdatePassword(ctx, u.ID, HashPassword(newPassword)); err != nil {
		return errors.Wrap(err, "update password")
	}
	return nil
}

// CreateOperator registers a new POS operator account.
func (s *Service) CreateOperator(ctx context.Context, fullName, username, password string) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	if StrengthScore(password) < maxStrength {
		return nil, ErrWeakPassword
	}

	u := &User{
		FullName:     fullName,
		Username:     username,
		PasswordHash: HashPassword(password),
		Role:         RolePOS,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return nil, ErrUsernameTaken
		}
		return nil, errors.Wrap(err, "create user")
	}
	return u, nil
}
