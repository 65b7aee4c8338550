package ports

import (
	"context"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// ModerationAuthority is the remote store holding the authoritative status of
// submitted entities. Every call forwards the caller's opaque credential.
type ModerationAuthority interface {
	ListPending(ctx context.Context, credential string, kind domain.EntityKind) ([]domain.SubmittedEntity, error)
	Decide(ctx context.Context, credential string, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error)
}

// OrderingAuthority is the remote store holding banner positions.
type OrderingAuthority interface {
	ListBanners(ctx context.Context, credential, placement string) ([]domain.Banner, error)
	Reposition(ctx context.Context, credential, placement string, positions []domain.Position) ([]domain.Banner, error)
}
