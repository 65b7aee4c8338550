package portal

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/session"
)

type identityRequest struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Role      string `json:"role"       validate:"required,oneof=admin recruiter candidate"`
	Onboarded *bool  `json:"onboarded"  validate:"required"`
}

type createSessionRequest struct {
	Credential string          `json:"credential" validate:"required"`
	Identity   identityRequest `json:"identity"`
}

type sessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Identity      *domain.Identity `json:"identity,omitempty"`
	Next          string           `json:"next,omitempty"`
}

// CreateSession stores the identity handed over by the authentication
// service for this client and tells it where to go next.
func (s *Server) CreateSession(c echo.Context) error {
	var req createSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	role, err := domain.ParseRole(req.Identity.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	identity := domain.Identity{
		SubjectID: req.Identity.SubjectID,
		Role:      role,
		Onboarded: *req.Identity.Onboarded,
	}
	store := s.sessions.For(s.ensureClientID(c))
	if err := store.Set(c.Request().Context(), identity, req.Credential); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		Identity:      &identity,
		Next:          s.landing(identity),
	})
}

// GetSession reports the identity of this client, never its credential.
func (s *Server) GetSession(c echo.Context) error {
	store := s.storeFor(c)
	if store == nil {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	sess, ok := store.Load(c.Request().Context())
	if !ok {
		return c.JSON(http.StatusOK, sessionResponse{})
	}
	return c.JSON(http.StatusOK, sessionResponse{Authenticated: true, Identity: &sess.Identity})
}

// DeleteSession logs the client out. It succeeds when there is no session.
func (s *Server) DeleteSession(c echo.Context) error {
	if store := s.storeFor(c); store != nil {
		if err := store.Clear(c.Request().Context()); err != nil {
			return err
		}
	}
	s.expireCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// landing is where a freshly signed-in identity should be sent.
func (s *Server) landing(identity domain.Identity) string {
	routes := s.guard.Routes()
	if identity.NeedsOnboarding() {
		if p := routes.Onboarding[identity.Role]; p != "" {
			return p
		}
	}
	return routes.Home
}

// storeFor returns the session store of the requesting client, or nil when
// the client has no session cookie.
func (s *Server) storeFor(c echo.Context) *session.Store {
	cookie, err := c.Cookie(s.cookie.Name)
	if err != nil || cookie.Value == "" {
		return nil
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return nil
	}
	return s.sessions.For(cookie.Value)
}

// ensureClientID returns the client's session id, issuing a new cookie when
// it has none.
func (s *Server) ensureClientID(c echo.Context) string {
	if cookie, err := c.Cookie(s.cookie.Name); err == nil {
		if _, err := uuid.Parse(cookie.Value); err == nil {
			return cookie.Value
		}
	}
	id := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    id,
		Path:     "/",
		Domain:   s.cookie.Domain,
		MaxAge:   s.cookie.MaxAge,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *Server) expireCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.cookie.Name,
		Value:    "",
		Path:     "/",
		Domain:   s.cookie.Domain,
		MaxAge:   -1,
		Secure:   s.cookie.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
