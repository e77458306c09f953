package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserRepo struct {
	byUsername map[string]*User
	updatedTo  string
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	if u, ok := m.byUsername[username]; ok {
		return u, nil
	}
	return nil, ErrNotFound
}

func (m *mockUserRepo) Create(_ context.Context, u *User) error {
	if _, ok := m.byUsername[u.Username]; ok {
		return ErrUsernameTaken
	}
	m.byUsername[u.Username] = u
	return nil
}

func (m *mockUserRepo) UpdatePassword(_ context.Context, _ int64, hash string) error {
	m.updatedTo = hash
	return nil
}

func newRepo() *mockUserRepo {
	return &mockUserRepo{byUsername: map[string]*User{
		"admin": {ID: 1, Username: "admin", PasswordHash: HashPassword("Admin@123"), Role: RoleAdmin},
	}}
}

func TestHashPassword(t *testing.T) {
	// SHA-256 of "Admin@123", matching the seeded credential format.
	assert.Equal(t, HashPassword("Admin@123"), HashPassword("Admin@123"))
	assert.Len(t, HashPassword("x"), 64)
	assert.NotEqual(t, HashPassword("a"), HashPassword("b"))
}

func TestStrengthScore(t *testing.T) {
	assert.Equal(t, 5, StrengthScore("Admin@123"))
	assert.Equal(t, 4, StrengthScore("Admin1234"))   // no symbol
	assert.Equal(t, 3, StrengthScore("admin@we"))   // length, lower, symbol
	assert.Equal(t, 2, StrengthScore("abc1"))       // lower, digit
	assert.Equal(t, 1, StrengthScore("aaaa"))       // only lower
	assert.Equal(t, 0, StrengthScore(""))
}

func TestLogin(t *testing.T) {
	svc := NewService(newRepo())

	u, err := svc.Login(context.Background(), "admin", "Admin@123")
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, u.Role)

	_, err = svc.Login(context.Background(), "admin", "wrong")
	require.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "ghost", "Admin@123")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Login(context.Background(), "", "")
	require.ErrorIs(t, err, ErrEmptyCredentials)
}

func TestChangePassword(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo)

	err := svc.ChangePassword(context.Background(), "admin", "Admin@123", "weak")
	require.ErrorIs(t, err, ErrWeakPassword)

	err = svc.ChangePassword(context.Background(), "admin", "nope", "Stronger@1")
	require.ErrorIs(t, err, ErrWrongPassword)

	err = svc.ChangePassword(context.Background(), "admin", "Admin@123", "Stronger@1")
	require.NoError(t, err)
	assert.Equal(t, HashPassword("Stronger@1"), repo.updatedTo)
}

func TestCreateOperator(t *testing.T) {
	repo := newRepo()
	svc := NewService(repo)

	u, err := svc.CreateOperator(context.Background(), "POS Operator 2", "pos2", "Pos@12345")
	require.NoError(t, err)
	assert.Equal(t, RolePOS, u.Role)
	assert.Equal(t, HashPassword("Pos@12345"), u.PasswordHash)

	_, err = svc.CreateOperator(context.Background(), "Dup", "admin", "Pos@12345")
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.CreateOperator(context.Background(), "Weak", "pos3", "weak")
	require.ErrorIs(t, err, ErrWeakPassword)
}
