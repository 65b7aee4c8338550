package handler

import (
	"github.com/hirehub/portal-core/internal/core/domain"
)

// --- Request types ---

type submitRequest struct {
	Title        string            `json:"title"         validate:"required,max=200"`
	LiveEditable bool              `json:"live_editable"`
	Attributes   map[string]string `json:"attributes"`
}

type createBannerRequest struct {
	Title    string `json:"title"     validate:"required,max=200"`
	ImageURL string `json:"image_url" validate:"required,url"`
	LinkURL  string `json:"link_url"  validate:"omitempty,url"`
}

type positionRequest struct {
	ID       string `json:"id"       validate:"required"`
	Position int    `json:"position" validate:"gte=0"`
}

type repositionRequest struct {
	Positions []positionRequest `json:"positions" validate:"required,dive"`
}

// --- Response types ---

type pendingResponse struct {
	Items []*domain.SubmittedEntity `json:"items"`
}

type bannersResponse struct {
	Banners []*domain.Banner `json:"banners"`
}

func toPositions(in []positionRequest) []domain.Position {
	out := make([]domain.Position, len(in))
	for i, p := range in {
		out[i] = domain.Position{ID: p.ID, Position: p.Position}
	}
	return out
}
