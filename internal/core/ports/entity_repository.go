package ports

import (
	"context"
	"time"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// EntityRepository persists submitted entities of every kind.
type EntityRepository interface {
	Create(ctx context.Context, e *domain.SubmittedEntity) error
	FindByID(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error)
	// ListByStatus returns entities of kind in status, oldest first.
	ListByStatus(ctx context.Context, kind domain.EntityKind, status domain.ModerationStatus) ([]*domain.SubmittedEntity, error)
	// TransitionStatus moves the entity from `from` to `to` only if it is
	// currently in `from`. It returns domain.ErrStateConflict when the entity
	// exists in another status and domain.ErrEntityNotFound when it does not
	// exist.
	TransitionStatus(ctx context.Context, kind domain.EntityKind, id string, from, to domain.ModerationStatus, by string, at time.Time) (*domain.SubmittedEntity, error)
}

// BannerRepository persists banners partitioned by placement key.
type BannerRepository interface {
	Create(ctx context.Context, b *domain.Banner) error
	FindByID(ctx context.Context, id string) (*domain.Banner, error)
	// ListByPlacement returns the placement's banners ordered by position.
	ListByPlacement(ctx context.Context, placement string) ([]*domain.Banner, error)
	// BulkReposition writes every position in a single round trip. Updates
	// are scoped to placement; domain.ErrStateConflict is returned when a
	// banner no longer belongs to it.
	BulkReposition(ctx context.Context, placement string, positions []domain.Position) error
	Delete(ctx context.Context, id string) error
}
