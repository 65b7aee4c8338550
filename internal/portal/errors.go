package portal

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/infrastructure/authority"
)

type failureResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind"`
	Retryable bool   `json:"retryable"`
	Current   any    `json:"current,omitempty"`
}

// fail renders a workflow error. current is the confirmed state to show in
// place of the rejected change.
func (s *Server) fail(c echo.Context, err error, current any) error {
	kind := domain.Classify(err)
	resp := failureResponse{Error: err.Error(), Kind: string(kind), Retryable: kind.Retryable()}

	switch kind {
	case domain.FailureSessionInvalid:
		s.expireCookie(c)
		return c.Redirect(http.StatusSeeOther, s.guard.Routes().Login)
	case domain.FailureCapabilityDenied:
		resp.Error = "access forbidden"
		return c.JSON(http.StatusForbidden, resp)
	case domain.FailureConflict:
		resp.Current = current
		return c.JSON(http.StatusConflict, resp)
	case domain.FailureTransient:
		resp.Error = "service temporarily unavailable"
		resp.Current = current
		return c.JSON(http.StatusServiceUnavailable, resp)
	case domain.FailureInvalid:
		return c.JSON(http.StatusUnprocessableEntity, resp)
	}

	var ae *authority.Error
	if errors.As(err, &ae) {
		s.log.Warn().Err(err).Str("path", c.Path()).Msg("authority refused request")
		return c.JSON(ae.StatusCode, resp)
	}

	// Leave unexpected errors to the error handler, which logs them.
	return err
}
