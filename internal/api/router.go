package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/api/handler"
	"github.com/hirehub/portal-core/internal/api/middleware"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// Deps are the collaborators the authoritative API is built from.
type Deps struct {
	Moderation   ports.ModerationService
	Banners      ports.BannerService
	JWTSecret    string
	Dependencies []handler.Dependency
	Logger       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. The default
	// Prometheus registry is used when nil.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(MetricsMiddleware("portal_api", d.Registry))

	// --- Dependencies ---
	moderationHandler := handler.NewModerationHandler(d.Moderation)
	bannerHandler := handler.NewBannerHandler(d.Banners)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))

	// --- Moderation routes ---
	mod := v1.Group("/moderation/:kind")
	mod.POST("", moderationHandler.Submit, middleware.RBAC(domain.RoleRecruiter, domain.RoleAdmin))
	mod.GET("/pending", moderationHandler.Pending, adminOnly)
	mod.GET("/:id", moderationHandler.Get)
	mod.POST("/:id/approve", moderationHandler.Approve, adminOnly)
	mod.POST("/:id/reject", moderationHandler.Reject, adminOnly)

	// --- Banner routes ---
	v1.GET("/placements/:key/banners", bannerHandler.List)
	v1.POST("/placements/:key/banners", bannerHandler.Create, adminOnly)
	v1.PUT("/placements/:key/banners/positions", bannerHandler.Reposition, adminOnly)
	v1.DELETE("/banners/:id", bannerHandler.Delete, adminOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Dependencies...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	e.GET("/metrics", MetricsHandler(d.Registry))

	return e
}

// MetricsMiddleware records HTTP request metrics under subsystem into reg, or
// into the default registry when reg is nil.
func MetricsMiddleware(subsystem string, reg *prometheus.Registry) echo.MiddlewareFunc {
	cfg := echoprometheus.MiddlewareConfig{Subsystem: subsystem}
	if reg != nil {
		cfg.Registerer = reg
	}
	return echoprometheus.NewMiddlewareWithConfig(cfg)
}

// MetricsHandler serves reg, or the default registry when reg is nil.
func MetricsHandler(reg *prometheus.Registry) echo.HandlerFunc {
	if reg == nil {
		return echoprometheus.NewHandler()
	}
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: reg})
}
