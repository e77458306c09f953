package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/golang-jwt/jwt/v5"

	"github.com/smartinventory/pos/internal/domain/identity"
)

// tokenTTL is how long an issued access token stays valid. Shifts are at
// most twelve hours.
const tokenTTL = 12 * time.Hour

// Claims is the JWT payload for an authenticated operator.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies access tokens with an HMAC secret.
type TokenIssuer struct {
	secret []byte
	now    func() time.Time
}

// NewTokenIssuer creates a TokenIssuer for the given secret.
func NewTokenIssuer(secret []byte) *TokenIssuer {
	return &TokenIssuer{secret: secret, now: time.Now}
}

// Issue signs a token for the given user.
func (t *TokenIssuer) Issue(u *identity.User) (string, error) {
	now := t.now()
	claims := Claims{
		Role: string(u.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", errors.Wrap(err, "sign token")
	}
	return signed, nil
}

// Verify parses and validates a token, returning its claims.
func (t *TokenIssuer) Verify(raw string) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %q", token.Header["alg"])
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errors.Wrap(err, "parse token")
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	return &claims, nil
}

// authUser is the identity attached to an authenticated request context.
type authUser struct {
	Username string
	Role     identity.Role
}

type authUserKey struct{}

// userFromContext returns the authenticated user, if any.
func userFromContext(ctx context.Context) (authUser, bool) {
	u, ok := ctx.Value(authUserKey{}).(authUser)
	return u, ok
}

// requireAuth wraps a handler to demand a valid bearer token. When roles are
// given, the token's role must be one of them.
func (h *Handler) requireAuth(next http.HandlerFunc, roles ...identity.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		u := authUser{Username: claims.Subject, Role: identity.Role(claims.Role)}
		if len(roles) > 0 && !roleAllowed(u.Role, roles) {
			writeError(w, http.StatusForbidden, "insufficient role")
			return
		}

		ctx := context.WithValue(r.Context(), authUserKey{}, u)
		next(w, r.WithContext(ctx))
	}
}

func bearerToken(r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(auth, prefix) {
		return "", false
	}
	return auth[len(prefix):], true
}

func roleAllowed(role identity.Role, allowed []identity.Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}
