package identity

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geocoder89/careerloop/internal/auth"
	"github.com/geocoder89/careerloop/internal/domain/user"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

// TokenResolver reads a bearer access token and loads the user it names.
type TokenResolver struct {
	verifier TokenVerifier
	users    UserReader
}

func NewTokenResolver(verifier TokenVerifier, users UserReader) *TokenResolver {
	return &TokenResolver{verifier: verifier, users: users}
}

func (t *TokenResolver) Resolve(ctx context.Context, r *http.Request) (user.User, error) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return user.User{}, ErrUnauthenticated
	}

	raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
	if raw == "" {
		return user.User{}, ErrUnauthenticated
	}

	claims, err := t.verifier.VerifyAccessToken(raw)
	if err != nil {
		return user.User{}, ErrUnauthenticated
	}

	u, err := t.users.GetByID(ctx, claims.UserID)
	if err != nil {
		// token outlived its user
		if errors.Is(err, user.ErrNotFound) {
			return user.User{}, ErrUnauthenticated
		}
		return user.User{}, err
	}

	return u, nil
}
