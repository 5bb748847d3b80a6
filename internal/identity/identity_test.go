package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/geocoder89/careerloop/internal/auth"
	"github.com/geocoder89/careerloop/internal/domain/user"
	"github.com/geocoder89/careerloop/internal/identity"
	"github.com/geocoder89/careerloop/internal/repo/memory"
	"github.com/geocoder89/careerloop/internal/security"
)

var testCreds = identity.Credentials{
	Email:    "placeholder@example.com",
	Password: "placeholder-password",
	FullName: "Placeholder",
}

func TestPlaceholderResolverCreatesFirstUserOnce(t *testing.T) {
	users := memory.NewUsersRepo()
	var created atomic.Int32

	r := identity.NewPlaceholderResolver(users, testCreds, func() { created.Add(1) })
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	first, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first.Email != testCreds.Email {
		t.Fatalf("email = %q, want %q", first.Email, testCreds.Email)
	}
	if first.FullName == nil || *first.FullName != "Placeholder" {
		t.Fatalf("full name = %v", first.FullName)
	}
	if err := security.CheckPassword(first.HashedPassword, testCreds.Password); err != nil {
		t.Fatalf("stored password should be a hash of the fallback password: %v", err)
	}

	second, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second resolve returned a different user")
	}
	if created.Load() != 1 {
		t.Fatalf("onCreated called %d times, want 1", created.Load())
	}
}

func TestPlaceholderResolverReturnsExistingFirstUser(t *testing.T) {
	users := memory.NewUsersRepo()
	existing, err := users.Create(context.Background(), user.New("someone@example.com", "hash", nil))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	r := identity.NewPlaceholderResolver(users, testCreds, nil)

	got, err := r.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got.ID != existing.ID {
		t.Fatalf("got %s, want existing first user %s", got.ID, existing.ID)
	}
}

func TestPlaceholderResolverConcurrentFirstRequests(t *testing.T) {
	users := memory.NewUsersRepo()
	r := identity.NewPlaceholderResolver(users, testCreds, nil)

	var wg sync.WaitGroup
	ids := make([]string, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := r.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
			if err != nil {
				t.Errorf("Resolve: %v", err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		if id != ids[0] {
			t.Fatalf("concurrent first requests resolved different users: %v", ids)
		}
	}
}

type failingStore struct{}

func (failingStore) First(context.Context) (user.User, error) {
	return user.User{}, errors.New("db down")
}

func (failingStore) CreateIfAbsent(context.Context, user.User) (user.User, bool, error) {
	return user.User{}, false, errors.New("should not be called")
}

func TestPlaceholderResolverPropagatesStorageErrors(t *testing.T) {
	r := identity.NewPlaceholderResolver(failingStore{}, testCreds, nil)

	if _, err := r.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil)); err == nil || errors.Is(err, identity.ErrUnauthenticated) {
		t.Fatalf("want storage error, got %v", err)
	}
}

func TestTokenResolver(t *testing.T) {
	users := memory.NewUsersRepo()
	u, err := users.Create(context.Background(), user.New("a@example.com", "hash", nil))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	jwt := auth.NewManager("test-secret", time.Hour)
	good, err := jwt.GenerateAccessToken(u.ID, u.Email)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	orphan, err := jwt.GenerateAccessToken("11111111-1111-1111-1111-111111111111", "gone@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}

	r := identity.NewTokenResolver(jwt, users)

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{name: "valid", header: "Bearer " + good},
		{name: "missing", header: "", wantErr: identity.ErrUnauthenticated},
		{name: "wrong_scheme", header: "Basic abc", wantErr: identity.ErrUnauthenticated},
		{name: "empty_token", header: "Bearer ", wantErr: identity.ErrUnauthenticated},
		{name: "garbage", header: "Bearer nope", wantErr: identity.ErrUnauthenticated},
		{name: "unknown_user", header: "Bearer " + orphan, wantErr: identity.ErrUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			got, err := r.Resolve(context.Background(), req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.ID != u.ID {
				t.Fatalf("resolved %s, want %s", got.ID, u.ID)
			}
		})
	}
}

type countingReader struct {
	calls atomic.Int32
	u     user.User
	err   error
}

func (c *countingReader) GetByID(context.Context, string) (user.User, error) {
	c.calls.Add(1)
	return c.u, c.err
}

func TestCachedUsers(t *testing.T) {
	hit := &countingReader{u: user.User{ID: "u1", Email: "a@example.com"}}
	cached := identity.NewCachedUsers(hit, time.Minute)

	for i := 0; i < 3; i++ {
		got, err := cached.GetByID(context.Background(), "u1")
		if err != nil || got.Email != "a@example.com" {
			t.Fatalf("GetByID = %+v, %v", got, err)
		}
	}
	if hit.calls.Load() != 1 {
		t.Fatalf("backing reader called %d times, want 1", hit.calls.Load())
	}

	miss := &countingReader{err: user.ErrNotFound}
	cached = identity.NewCachedUsers(miss, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := cached.GetByID(context.Background(), "gone"); !errors.Is(err, user.ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	}
	if miss.calls.Load() != 2 {
		t.Fatalf("misses must not be cached, calls = %d", miss.calls.Load())
	}
}
