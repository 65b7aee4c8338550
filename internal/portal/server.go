// Package portal is the client-facing web tier. It owns the per-client
// session, gates every view with the route guard and drives the moderation
// and ordering workflows against the authoritative API.
package portal

import (
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/api"
	"github.com/hirehub/portal-core/internal/api/handler"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/guard"
	"github.com/hirehub/portal-core/internal/core/ports"
	"github.com/hirehub/portal-core/internal/core/session"
)

const defaultCookieName = "portal_sid"

// CookieConfig controls the client session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	Domain string
	MaxAge int // seconds
}

// Deps are the collaborators the portal is built from.
type Deps struct {
	Sessions     *session.Factory
	Guard        *guard.Guard
	Moderation   ports.ModerationAuthority
	Ordering     ports.OrderingAuthority
	Cookie       CookieConfig
	Dependencies []handler.Dependency
	Logger       zerolog.Logger

	// Registry receives the HTTP metrics and backs /metrics. The default
	// Prometheus registry is used when nil.
	Registry *prometheus.Registry
}

// Server holds the portal's request handlers.
type Server struct {
	sessions   *session.Factory
	guard      *guard.Guard
	moderation ports.ModerationAuthority
	ordering   ports.OrderingAuthority
	cookie     CookieConfig
	log        zerolog.Logger
}

func NewServer(d Deps) *Server {
	cookie := d.Cookie
	if cookie.Name == "" {
		cookie.Name = defaultCookieName
	}
	g := d.Guard
	if g == nil {
		g = guard.New(guard.DefaultRoutes())
	}
	return &Server{
		sessions:   d.Sessions,
		guard:      g,
		moderation: d.Moderation,
		ordering:   d.Ordering,
		cookie:     cookie,
		log:        d.Logger,
	}
}

// NewRouter builds the portal's Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	s := NewServer(d)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(d.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(api.MetricsMiddleware("portal_web", d.Registry))

	// --- Session hand-off from the authentication service ---
	e.POST("/session", s.CreateSession)
	e.GET("/session", s.GetSession)
	e.DELETE("/session", s.DeleteSession)

	// --- Admin views ---
	admin := e.Group("/admin", s.Require(domain.RoleAdmin, false))
	admin.GET("/moderation", s.AllPending)
	admin.GET("/moderation/:kind", s.Pending)
	admin.POST("/moderation/:kind/:id/approve", s.Approve)
	admin.POST("/moderation/:kind/:id/reject", s.Reject)
	admin.GET("/banners/:placement", s.Banners)
	admin.PUT("/banners/:placement", s.Reorder)

	// --- Recruiter views ---
	recruiter := e.Group("/recruiter", s.Require(domain.RoleRecruiter, true))
	recruiter.GET("/dashboard", s.View("recruiter_dashboard"))
	recruiter.GET("/onboarding", s.View("recruiter_onboarding"))
	recruiter.GET("/jobs/:id", s.JobPosting)

	// --- Candidate views ---
	candidate := e.Group("/candidate", s.Require(domain.RoleCandidate, true))
	candidate.GET("/profile", s.View("candidate_profile"))
	candidate.GET("/onboarding", s.View("candidate_onboarding"))

	// --- Health probes and metrics ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(d.Dependencies...)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthDepsHandler.Readiness)
	e.GET("/metrics", api.MetricsHandler(d.Registry))

	return e
}
