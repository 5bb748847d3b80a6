package middlewares

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/geocoder89/careerloop/internal/actorctx"
	"github.com/geocoder89/careerloop/internal/domain/user"
	"github.com/geocoder89/careerloop/internal/identity"
	"github.com/gin-gonic/gin"
)

// Identity resolves the caller before any handler runs and stashes who it is
// on both the gin context and the request context.
func Identity(resolver identity.Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := resolver.Resolve(c.Request.Context(), c.Request)
		if err != nil {
			if errors.Is(err, identity.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid access token")
				return
			}

			slog.Default().ErrorContext(c.Request.Context(), "identity resolution failed", "err", err)
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Could not resolve caller identity")
			return
		}

		SetIdentity(c, u)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, u user.User) {
	c.Set(ctxUserKey, u)
	c.Set(ctxUserIDKey, u.ID)
	c.Request = c.Request.WithContext(actorctx.WithUserID(c.Request.Context(), u.ID))
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func UserFromContext(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(ctxUserKey)
	if !ok {
		return user.User{}, false
	}
	u, ok := v.(user.User)
	return u, ok
}
