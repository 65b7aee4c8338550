package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// ModerationHandler handles HTTP requests for submitted entities.
type ModerationHandler struct {
	service ports.ModerationService
}

func NewModerationHandler(service ports.ModerationService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// Submit godoc
// @Summary     Submit an entity for moderation
// @Tags        moderation
// @Accept      json
// @Produce     json
// @Param       kind path string true "article, directory or company"
// @Success     201 {object} domain.SubmittedEntity
// @Failure     400,401,403,422 {object} map[string]string
// @Router      /v1/moderation/{kind} [post]
func (h *ModerationHandler) Submit(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := paramKind(c)
	if err != nil {
		return err
	}

	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entity, err := h.service.Submit(c.Request().Context(), actor, ports.SubmitInput{
		Kind:         kind,
		Title:        req.Title,
		LiveEditable: req.LiveEditable,
		Attributes:   req.Attributes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, entity)
}

// Get godoc
// @Summary     Get a submitted entity
// @Tags        moderation
// @Produce     json
// @Success     200 {object} domain.SubmittedEntity
// @Failure     404 {object} map[string]string
// @Router      /v1/moderation/{kind}/{id} [get]
func (h *ModerationHandler) Get(c echo.Context) error {
	kind, err := paramKind(c)
	if err != nil {
		return err
	}
	entity, err := h.service.Get(c.Request().Context(), kind, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entity)
}

// Pending godoc
// @Summary     List entities awaiting a decision
// @Tags        moderation
// @Produce     json
// @Success     200 {object} pendingResponse
// @Router      /v1/moderation/{kind}/pending [get]
func (h *ModerationHandler) Pending(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := paramKind(c)
	if err != nil {
		return err
	}
	items, err := h.service.ListPending(c.Request().Context(), actor, kind)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pendingResponse{Items: items})
}

// Approve godoc
// @Summary     Approve a pending entity
// @Tags        moderation
// @Produce     json
// @Success     200 {object} domain.SubmittedEntity
// @Failure     404,409 {object} map[string]string
// @Router      /v1/moderation/{kind}/{id}/approve [post]
func (h *ModerationHandler) Approve(c echo.Context) error {
	return h.decide(c, domain.DecisionApprove)
}

// Reject godoc
// @Summary     Reject a pending entity
// @Tags        moderation
// @Produce     json
// @Success     200 {object} domain.SubmittedEntity
// @Failure     404,409 {object} map[string]string
// @Router      /v1/moderation/{kind}/{id}/reject [post]
func (h *ModerationHandler) Reject(c echo.Context) error {
	return h.decide(c, domain.DecisionReject)
}

func (h *ModerationHandler) decide(c echo.Context, decision domain.Decision) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	kind, err := paramKind(c)
	if err != nil {
		return err
	}
	entity, err := h.service.Decide(c.Request().Context(), actor, kind, c.Param("id"), decision)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, entity)
}
