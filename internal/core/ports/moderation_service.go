package ports

import (
	"context"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// Actor is the authenticated caller of the authoritative API.
type Actor struct {
	SubjectID string
	Role      domain.Role
	Onboarded bool
}

// SubmitInput carries a new submission from its owner.
type SubmitInput struct {
	Kind         domain.EntityKind
	Title        string
	LiveEditable bool
	Attributes   map[string]string
}

// ModerationService is the authoritative moderation use-case surface.
type ModerationService interface {
	Submit(ctx context.Context, actor Actor, in SubmitInput) (*domain.SubmittedEntity, error)
	Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error)
	ListPending(ctx context.Context, actor Actor, kind domain.EntityKind) ([]*domain.SubmittedEntity, error)
	Decide(ctx context.Context, actor Actor, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error)
}

// CreateBannerInput carries a new banner.
type CreateBannerInput struct {
	Placement string
	Title     string
	ImageURL  string
	LinkURL   string
}

// BannerService is the authoritative banner ordering surface.
type BannerService interface {
	List(ctx context.Context, placement string) ([]*domain.Banner, error)
	Create(ctx context.Context, actor Actor, in CreateBannerInput) (*domain.Banner, error)
	Delete(ctx context.Context, actor Actor, id string) error
	Reposition(ctx context.Context, actor Actor, placement string, positions []domain.Position) ([]*domain.Banner, error)
}
