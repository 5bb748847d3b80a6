// Package identity answers "who is calling?" for each request. Handlers only
// see the resolved user; how it was resolved is a Resolver detail.
package identity

import (
	"context"
	"errors"
	"net/http"

	"github.com/geocoder89/careerloop/internal/domain/user"
)

// ErrUnauthenticated means the request carries no usable identity.
var ErrUnauthenticated = errors.New("unauthenticated")

type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (user.User, error)
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(ctx context.Context, r *http.Request) (user.User, error)

func (f ResolverFunc) Resolve(ctx context.Context, r *http.Request) (user.User, error) {
	return f(ctx, r)
}

type UserReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

type PlaceholderStore interface {
	First(ctx context.Context) (user.User, error)
	CreateIfAbsent(ctx context.Context, u user.User) (user.User, bool, error)
}
