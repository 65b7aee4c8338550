package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// Context keys set by Auth.
const (
	KeySubject   = "subject"
	KeyRole      = "role"
	KeyOnboarded = "onboarded"
)

// claims is the identity assertion carried by the credential.
type claims struct {
	Role      string `json:"role"`
	Onboarded bool   `json:"onboarded"`
	jwt.RegisteredClaims
}

// Auth validates the JWT and injects claims into context. The credential is
// issued elsewhere; this service only verifies it.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			var cl claims
			tkn, err := jwt.ParseWithClaims(parts[1], &cl, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			role, err := domain.ParseRole(cl.Role)
			if err != nil || cl.Subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing identity")
			}

			c.Set(KeySubject, cl.Subject)
			c.Set(KeyRole, role)
			c.Set(KeyOnboarded, cl.Onboarded)

			return next(c)
		}
	}
}
