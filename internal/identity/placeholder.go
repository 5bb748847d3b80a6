package identity

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/careerloop/internal/domain/user"
	"github.com/geocoder89/careerloop/internal/security"
)

type Credentials struct {
	Email    string
	Password string
	FullName string
}

// PlaceholderResolver stands in for real authentication: every caller is the
// oldest user, and that user is created from fixed credentials when the store
// is empty. Concurrent first requests converge on one row through the unique
// email constraint.
type PlaceholderResolver struct {
	store     PlaceholderStore
	creds     Credentials
	onCreated func()
}

func NewPlaceholderResolver(store PlaceholderStore, creds Credentials, onCreated func()) *PlaceholderResolver {
	return &PlaceholderResolver{store: store, creds: creds, onCreated: onCreated}
}

func (p *PlaceholderResolver) Resolve(ctx context.Context, _ *http.Request) (user.User, error) {
	u, err := p.store.First(ctx)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, err
	}

	hash, err := security.HashPassword(p.creds.Password)
	if err != nil {
		return user.User{}, err
	}

	var fullName *string
	if p.creds.FullName != "" {
		name := p.creds.FullName
		fullName = &name
	}

	u, created, err := p.store.CreateIfAbsent(ctx, user.New(p.creds.Email, hash, fullName))
	if err != nil {
		return user.User{}, err
	}

	if created {
		slog.Default().InfoContext(ctx, "placeholder user created", "user_id", u.ID, "email", u.Email)
		if p.onCreated != nil {
			p.onCreated()
		}
	}

	return u, nil
}
