package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hirehub/portal-core/internal/core/ports"
)

// BannerHandler handles HTTP requests for banner placements.
type BannerHandler struct {
	service ports.BannerService
}

func NewBannerHandler(service ports.BannerService) *BannerHandler {
	return &BannerHandler{service: service}
}

// List godoc
// @Summary     List the banners of a placement in display order
// @Tags        banners
// @Produce     json
// @Param       key path string true "placement key, e.g. HOME_MIDDLE"
// @Success     200 {object} bannersResponse
// @Router      /v1/placements/{key}/banners [get]
func (h *BannerHandler) List(c echo.Context) error {
	placement, err := paramPlacement(c)
	if err != nil {
		return err
	}
	banners, err := h.service.List(c.Request().Context(), placement)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bannersResponse{Banners: banners})
}

// Create godoc
// @Summary     Append a banner to a placement
// @Tags        banners
// @Accept      json
// @Produce     json
// @Success     201 {object} domain.Banner
// @Router      /v1/placements/{key}/banners [post]
func (h *BannerHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	placement, err := paramPlacement(c)
	if err != nil {
		return err
	}

	var req createBannerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	banner, err := h.service.Create(c.Request().Context(), actor, ports.CreateBannerInput{
		Placement: placement,
		Title:     req.Title,
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, banner)
}

// Delete godoc
// @Summary     Remove a banner and compact its placement
// @Tags        banners
// @Success     204
// @Router      /v1/banners/{id} [delete]
func (h *BannerHandler) Delete(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), actor, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Reposition godoc
// @Summary     Replace every position of a placement in one write
// @Tags        banners
// @Accept      json
// @Produce     json
// @Success     200 {object} bannersResponse
// @Failure     409 {object} map[string]string
// @Router      /v1/placements/{key}/banners/positions [put]
func (h *BannerHandler) Reposition(c echo.Context) error {
	actor, err := ctxActor(c)
	if err != nil {
		return err
	}
	placement, err := paramPlacement(c)
	if err != nil {
		return err
	}

	var req repositionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	banners, err := h.service.Reposition(c.Request().Context(), actor, placement, toPositions(req.Positions))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bannersResponse{Banners: banners})
}
