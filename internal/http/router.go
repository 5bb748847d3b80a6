package http

import (
	"log/slog"

	"github.com/geocoder89/careerloop/internal/config"
	"github.com/geocoder89/careerloop/internal/http/handlers"
	"github.com/geocoder89/careerloop/internal/http/middlewares"
	"github.com/geocoder89/careerloop/internal/identity"
	"github.com/geocoder89/careerloop/internal/observability"
	"github.com/geocoder89/careerloop/internal/utils"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Deps is everything the router needs from the outside world. Users and JWT
// are only used when cfg.AuthMode is jwt; Prom and Limiter may be nil.
type Deps struct {
	Applications handlers.ApplicationStore
	Users        handlers.UserStore
	Resolver     identity.Resolver
	JWT          handlers.TokenIssuer
	Checks       map[string]handlers.Checker
	Prom         *observability.Prom
	Limiter      middlewares.Limiter
}

func NewRouter(log *slog.Logger, cfg config.Config, deps Deps) *gin.Engine {
	if cfg.Env != "dev" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())

	if cfg.OTELEndpoint != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}

	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}

	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(cfg.MaxBodyBytes))

	// health + docs
	h := handlers.NewHealthHandler(deps.Checks)
	r.GET("/", h.Root)
	r.GET("/health", h.Health)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)

	if deps.Prom != nil {
		r.GET("/metrics", gin.WrapH(deps.Prom.Handler()))
	}

	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	rateLimit := func(keyFn func(*gin.Context) string) gin.HandlerFunc {
		if deps.Limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return middlewares.RateLimit(deps.Limiter, keyFn)
	}

	// auth (jwt mode only)
	if cfg.AuthMode == config.AuthModeJWT && deps.Users != nil && deps.JWT != nil {
		authHandler := handlers.NewAuthHandler(deps.Users, deps.JWT)

		authGroup := r.Group("/auth", middlewares.RequireJSON(), rateLimit(middlewares.KeyByIP))
		authGroup.POST("/signup", authHandler.SignUp)
		authGroup.POST("/login", authHandler.Login)
	}

	identified := r.Group("", middlewares.Identity(deps.Resolver), rateLimit(middlewares.KeyByUserOrIP))

	identified.GET("/users/me", handlers.NewUsersHandler().Me)

	applicationsHandler := handlers.NewApplicationsHandler(deps.Applications, utils.PageLimits{
		DefaultLimit: cfg.ListDefaultLimit,
		MaxLimit:     cfg.ListMaxLimit,
	})

	apps := identified.Group("/job-applications", middlewares.RequireJSON())
	for _, root := range []string{"", "/"} {
		apps.POST(root, applicationsHandler.Create)
		apps.GET(root, applicationsHandler.List)
	}
	apps.GET("/:id", applicationsHandler.Get)
	apps.PUT("/:id", applicationsHandler.Update)
	apps.PATCH("/:id", applicationsHandler.Update)
	apps.DELETE("/:id", applicationsHandler.Delete)

	log.Debug("router ready", "auth_mode", cfg.AuthMode, "storage", cfg.StorageDriver)

	return r
}
