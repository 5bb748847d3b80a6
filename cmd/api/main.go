package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/careerloop/internal/auth"
	"github.com/geocoder89/careerloop/internal/config"
	"github.com/geocoder89/careerloop/internal/db"
	"github.com/geocoder89/careerloop/internal/domain/user"
	httpx "github.com/geocoder89/careerloop/internal/http"
	"github.com/geocoder89/careerloop/internal/http/handlers"
	"github.com/geocoder89/careerloop/internal/http/middlewares"
	"github.com/geocoder89/careerloop/internal/identity"
	"github.com/geocoder89/careerloop/internal/observability"
	"github.com/geocoder89/careerloop/internal/queue/redisclient"
	"github.com/geocoder89/careerloop/internal/repo/memory"
	"github.com/geocoder89/careerloop/internal/repo/postgres"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// userStore is what both the auth handler and the identity resolvers need.
type userStore interface {
	Create(ctx context.Context, u user.User) (user.User, error)
	CreateIfAbsent(ctx context.Context, u user.User) (user.User, bool, error)
	First(ctx context.Context) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

func main() {
	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// tracing
	if cfg.OTELEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, cfg.ServiceName, cfg.Env, cfg.OTELEndpoint)
		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}
		defer func() {
			tctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTracer(tctx)
		}()
	}

	prom := observability.NewProm(prometheus.NewRegistry())
	checks := map[string]handlers.Checker{}

	// storage
	var (
		users userStore
		apps  handlers.ApplicationStore
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		if cfg.RunMigrations {
			if err := db.Migrate(cfg.DBURL); err != nil {
				log.Error("migrations failed", "err", err)
				os.Exit(1)
			}
			log.Info("migrations applied")
		}

		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			log.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		users = postgres.NewUsersRepo(pool, prom)
		apps = postgres.NewApplicationsRepo(pool, prom)
		checks["database"] = pool.Ping
	default:
		log.Warn("using in-memory storage; data is lost on restart")
		memUsers := memory.NewUsersRepo()
		users = memUsers
		apps = memory.NewApplicationsRepo(memUsers)
	}

	// rate limiting: redis when configured, otherwise per-process
	var limiter middlewares.Limiter = middlewares.NewMemoryLimiter(cfg.RateLimitPerMinute, time.Minute)

	if cfg.RedisAddr != "" {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		limiter = middlewares.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute)
		checks["redis"] = rdb.Ping
	}

	// identity
	jwtManager := auth.NewManager(cfg.JWTSecret, cfg.JWTAccessTTL())

	var resolver identity.Resolver
	switch cfg.AuthMode {
	case config.AuthModeJWT:
		var reader identity.UserReader = users
		if cfg.UserCacheTTLSeconds > 0 {
			reader = identity.NewCachedUsers(users, time.Duration(cfg.UserCacheTTLSeconds)*time.Second)
		}
		resolver = identity.NewTokenResolver(jwtManager, reader)
	default:
		resolver = identity.NewPlaceholderResolver(users, identity.Credentials{
			Email:    cfg.PlaceholderEmail,
			Password: cfg.PlaceholderPassword,
			FullName: cfg.PlaceholderName,
		}, prom.IncPlaceholderUserCreated)
	}

	router := httpx.NewRouter(log, cfg, httpx.Deps{
		Applications: apps,
		Users:        users,
		Resolver:     resolver,
		JWT:          jwtManager,
		Checks:       checks,
		Prom:         prom,
		Limiter:      limiter,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "storage", cfg.StorageDriver, "auth_mode", cfg.AuthMode)
		err := srv.ListenAndServe()

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
