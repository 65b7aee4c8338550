package portal

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/api/metrics"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/guard"
	"github.com/hirehub/portal-core/internal/core/session"
)

const ctxStore = "portal.session"

// Require gates the wrapped views with the route guard. A redirect decision
// answers 303 See Other; an allowed request carries the client's session
// store in the context.
func (s *Server) Require(role domain.Role, onboarded bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			store := s.storeFor(c)
			var src guard.SessionSource
			if store != nil {
				src = store
			}

			decision := s.guard.Check(c.Request().Context(), src, guard.Requirement{
				Role:              role,
				RequiresOnboarded: onboarded,
				Path:              c.Request().URL.Path,
			})
			metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Reason)).Inc()

			if !decision.Allowed() {
				s.log.Debug().
					Str("path", c.Request().URL.Path).
					Str("reason", string(decision.Reason)).
					Str("target", decision.Target).
					Msg("guard redirect")
				return c.Redirect(http.StatusSeeOther, decision.Target)
			}

			c.Set(ctxStore, store)
			return next(c)
		}
	}
}

// storeFrom returns the store stashed by Require. It is nil on public views
// visited without a session.
func storeFrom(c echo.Context) *session.Store {
	store, _ := c.Get(ctxStore).(*session.Store)
	return store
}
