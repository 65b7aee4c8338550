package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/api/middleware"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// ctxActor extracts the caller injected by the Auth middleware and performs a
// fast-fail check before any service call: both subject and role must be
// present, which proves the middleware ran.
func ctxActor(c echo.Context) (ports.Actor, error) {
	subject, _ := c.Get(middleware.KeySubject).(string)
	role, _ := c.Get(middleware.KeyRole).(domain.Role)
	onboarded, _ := c.Get(middleware.KeyOnboarded).(bool)
	if subject == "" || !role.Valid() {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return ports.Actor{SubjectID: subject, Role: role, Onboarded: onboarded}, nil
}

// paramKind parses the :kind path parameter.
func paramKind(c echo.Context) (domain.EntityKind, error) {
	return domain.ParseEntityKind(c.Param("kind"))
}

// paramPlacement parses the :key path parameter.
func paramPlacement(c echo.Context) (string, error) {
	return domain.ParsePlacementKey(c.Param("key"))
}
