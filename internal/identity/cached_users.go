package identity

import (
	"context"
	"time"

	"github.com/geocoder89/careerloop/internal/cache"
	"github.com/geocoder89/careerloop/internal/domain/user"
)

// CachedUsers memoizes GetByID so a token-authenticated burst does not hit
// storage once per request. Misses and errors are never cached.
type CachedUsers struct {
	next  UserReader
	cache *cache.Cache[user.User]
}

func NewCachedUsers(next UserReader, ttl time.Duration) *CachedUsers {
	return &CachedUsers{next: next, cache: cache.New[user.User](ttl)}
}

func (c *CachedUsers) GetByID(ctx context.Context, id string) (user.User, error) {
	if u, ok := c.cache.Get(id); ok {
		return u, nil
	}

	u, err := c.next.GetByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	c.cache.Set(id, u)
	return u, nil
}
