package middlewares_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/careerloop/internal/actorctx"
	"github.com/geocoder89/careerloop/internal/domain/user"
	"github.com/geocoder89/careerloop/internal/http/middlewares"
	"github.com/geocoder89/careerloop/internal/identity"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func okHandler(c *gin.Context) { c.Status(http.StatusOK) }

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"*"}))
	r.GET("/x", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://anywhere.test" {
		t.Fatalf("Allow-Origin = %q", got)
	}
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORSPreflightReflectsRequestedHeaders(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"*"}))
	r.POST("/x", okHandler)

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://anywhere.test")
	req.Header.Set("Access-Control-Request-Headers", "X-Custom, Content-Type")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Headers"); got != "X-Custom, Content-Type" {
		t.Fatalf("Allow-Headers = %q", got)
	}
}

func TestCORSAllowListRejectsUnknownOrigin(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.CORSMiddleware([]string{"http://good.test"}))
	r.GET("/x", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.test")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("unknown origin should not be allowed, got %q", got)
	}
}

func TestRequireJSON(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequireJSON())
	r.POST("/x", okHandler)
	r.DELETE("/x", okHandler)

	tests := []struct {
		name   string
		method string
		ct     string
		want   int
	}{
		{"json", http.MethodPost, "application/json", http.StatusOK},
		{"json_charset", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"problem_json", http.MethodPost, "application/merge-patch+json", http.StatusOK},
		{"missing", http.MethodPost, "", http.StatusUnsupportedMediaType},
		{"form", http.MethodPost, "application/x-www-form-urlencoded", http.StatusUnsupportedMediaType},
		{"delete_without_body", http.MethodDelete, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/x", strings.NewReader(`{}`))
			if tt.ct != "" {
				req.Header.Set("Content-Type", tt.ct)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMemoryLimiterWindow(t *testing.T) {
	l := middlewares.NewMemoryLimiter(2, time.Minute)

	r := gin.New()
	r.Use(middlewares.RateLimit(l, middlewares.KeyByIP))
	r.GET("/x", okHandler)

	do := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		return w
	}

	for i := 0; i < 2; i++ {
		if w := do(); w.Code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, w.Code)
		}
	}

	w := do()
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("Retry-After header missing")
	}
}

type fakeCounter struct {
	count int64
	err   error
}

func (f *fakeCounter) IncrWindow(_ context.Context, _ string, window time.Duration) (int64, time.Duration, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	f.count++
	return f.count, window, nil
}

func TestRedisLimiter(t *testing.T) {
	counter := &fakeCounter{}
	l := middlewares.NewRedisLimiter(counter, 1, time.Minute)

	if ok, _, err := l.Allow(context.Background(), "k"); !ok || err != nil {
		t.Fatalf("first hit: ok=%v err=%v", ok, err)
	}
	ok, retry, err := l.Allow(context.Background(), "k")
	if ok || err != nil || retry != time.Minute {
		t.Fatalf("second hit: ok=%v retry=%v err=%v", ok, retry, err)
	}
}

func TestRateLimitFailsOpen(t *testing.T) {
	l := middlewares.NewRedisLimiter(&fakeCounter{err: errors.New("redis down")}, 1, time.Minute)

	r := gin.New()
	r.Use(middlewares.RateLimit(l, middlewares.KeyByIP))
	r.GET("/x", okHandler)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200 when limiter is unavailable", w.Code)
		}
	}
}

func TestIdentityMiddleware(t *testing.T) {
	caller := user.User{ID: "user-1", Email: "a@example.com"}

	tests := []struct {
		name     string
		resolver identity.Resolver
		want     int
	}{
		{
			name: "resolved",
			resolver: identity.ResolverFunc(func(context.Context, *http.Request) (user.User, error) {
				return caller, nil
			}),
			want: http.StatusOK,
		},
		{
			name: "unauthenticated",
			resolver: identity.ResolverFunc(func(context.Context, *http.Request) (user.User, error) {
				return user.User{}, identity.ErrUnauthenticated
			}),
			want: http.StatusUnauthorized,
		},
		{
			name: "storage_error",
			resolver: identity.ResolverFunc(func(context.Context, *http.Request) (user.User, error) {
				return user.User{}, errors.New("db down")
			}),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(middlewares.Identity(tt.resolver))
			r.GET("/me", func(c *gin.Context) {
				id, ok := middlewares.UserIDFromContext(c)
				ctxID, ctxOK := actorctx.UserIDFrom(c.Request.Context())
				c.JSON(http.StatusOK, gin.H{"id": id, "ok": ok, "ctx_id": ctxID, "ctx_ok": ctxOK})
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.want, w.Body.String())
			}

			if tt.want == http.StatusOK {
				var body struct {
					ID    string `json:"id"`
					CtxID string `json:"ctx_id"`
				}
				if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if body.ID != caller.ID || body.CtxID != caller.ID {
					t.Fatalf("identity not propagated: %+v", body)
				}
			}
		})
	}
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	r := gin.New()
	r.Use(middlewares.RequestID())
	r.GET("/x", okHandler)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	r.ServeHTTP(w, req)
	if got := w.Header().Get("X-Request-Id"); got != "abc-123" {
		t.Fatalf("echoed request id = %q", got)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	if got := w.Header().Get("X-Request-Id"); got == "" {
		t.Fatalf("request id should be generated")
	}
}
