package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthModePlaceholder = "placeholder"
	AuthModeJWT         = "jwt"
)

type Config struct {
	Env           string
	Port          int
	DBURL         string
	StorageDriver string
	RunMigrations bool

	// identity
	AuthMode            string
	JWTSecret           string
	JWTAccessTTLMinutes int
	UserCacheTTLSeconds int
	PlaceholderEmail    string
	PlaceholderPassword string
	PlaceholderName     string

	// http
	CORSAllowedOrigins []string
	MaxBodyBytes       int64
	RateLimitPerMinute int
	ListDefaultLimit   int
	ListMaxLimit       int

	// redis (optional, rate limiting + readiness)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// tracing
	OTELEndpoint string
	ServiceName  string
}

func Load() Config {
	return Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnvInt("PORT", 8080),
		DBURL:         getEnv("DATABASE_URL", buildDBURL()),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", StoragePostgres)),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", true),

		AuthMode:            strings.ToLower(getEnv("AUTH_MODE", AuthModePlaceholder)),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTAccessTTLMinutes: getEnvInt("JWT_ACCESS_TTL_MINUTES", 60),
		UserCacheTTLSeconds: getEnvInt("USER_CACHE_TTL_SECONDS", 30),
		PlaceholderEmail:    getEnv("PLACEHOLDER_USER_EMAIL", "placeholder@careerloop.local"),
		PlaceholderPassword: getEnv("PLACEHOLDER_USER_PASSWORD", "placeholder-password"),
		PlaceholderName:     getEnv("PLACEHOLDER_USER_NAME", "Placeholder User"),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MaxBodyBytes:       int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		ListDefaultLimit:   getEnvInt("LIST_DEFAULT_LIMIT", 100),
		ListMaxLimit:       getEnvInt("LIST_MAX_LIMIT", 500),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		OTELEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:  getEnv("OTEL_SERVICE_NAME", "careerloop-api"),
	}
}

// Validate reports settings the process cannot start with.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return errors.New("STORAGE_DRIVER must be postgres or memory")
	}

	switch c.AuthMode {
	case AuthModePlaceholder:
	case AuthModeJWT:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required when AUTH_MODE=jwt")
		}
	default:
		return errors.New("AUTH_MODE must be placeholder or jwt")
	}

	if c.ListDefaultLimit < 1 || c.ListMaxLimit < c.ListDefaultLimit {
		return errors.New("LIST_DEFAULT_LIMIT must be >= 1 and <= LIST_MAX_LIMIT")
	}

	return nil
}

func (c Config) JWTAccessTTL() time.Duration {
	return time.Duration(c.JWTAccessTTLMinutes) * time.Minute
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "careerloop")
	pass := getEnv("DB_PASSWORD", "careerloop")
	name := getEnv("DB_NAME", "careerloop")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(parent context.Context, duration time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid integer env value, using default", "key", key, "value", v)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env value, using default", "key", key, "value", v)
			return fallback
		}
		return b
	}
	return fallback
}

// comma separated, blanks dropped
func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}

	out := make([]string, 0)
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
