package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/api/metrics"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// BannerService maintains banner placements so that positions are always
// exactly 0..n-1 within each placement key.
type BannerService struct {
	repo   ports.BannerRepository
	logger zerolog.Logger
}

func NewBannerService(repo ports.BannerRepository, logger zerolog.Logger) *BannerService {
	return &BannerService{repo: repo, logger: logger}
}

// List returns the banners of placement ordered by position.
func (s *BannerService) List(ctx context.Context, placement string) ([]*domain.Banner, error) {
	if _, err := domain.ParsePlacementKey(placement); err != nil {
		return nil, err
	}
	return s.repo.ListByPlacement(ctx, placement)
}

// Create appends a banner at the end of its placement.
func (s *BannerService) Create(ctx context.Context, actor ports.Actor, in ports.CreateBannerInput) (*domain.Banner, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrCapabilityDenied
	}
	if _, err := domain.ParsePlacementKey(in.Placement); err != nil {
		return nil, err
	}

	existing, err := s.repo.ListByPlacement(ctx, in.Placement)
	if err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}

	b := &domain.Banner{
		ID:           uuid.NewString(),
		PlacementKey: in.Placement,
		Position:     len(existing),
		Title:        in.Title,
		ImageURL:     in.ImageURL,
		LinkURL:      in.LinkURL,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("create banner: %w", err)
	}
	if err := s.compact(ctx, in.Placement); err != nil {
		return nil, err
	}

	s.logger.Info().Str("placement", in.Placement).Str("banner_id", b.ID).Msg("banner created")
	return s.repo.FindByID(ctx, b.ID)
}

// Delete removes a banner and closes the gap it leaves.
func (s *BannerService) Delete(ctx context.Context, actor ports.Actor, id string) error {
	if actor.Role != domain.RoleAdmin {
		return domain.ErrCapabilityDenied
	}
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete banner: %w", err)
	}
	s.logger.Info().Str("placement", b.PlacementKey).Str("banner_id", id).Msg("banner deleted")
	return s.compact(ctx, b.PlacementKey)
}

// Reposition persists a full reordering of placement. positions must cover
// exactly the current members with positions 0..n-1; anything else is a
// domain.ErrStateConflict and nothing is written.
func (s *BannerService) Reposition(ctx context.Context, actor ports.Actor, placement string, positions []domain.Position) ([]*domain.Banner, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrCapabilityDenied
	}
	if _, err := domain.ParsePlacementKey(placement); err != nil {
		return nil, err
	}

	current, err := s.repo.ListByPlacement(ctx, placement)
	if err != nil {
		return nil, fmt.Errorf("reposition %s: %w", placement, err)
	}
	members := make([]string, len(current))
	for i, b := range current {
		members[i] = b.ID
	}
	if err := domain.ValidatePositions(members, positions); err != nil {
		metrics.ReordersTotal.WithLabelValues("conflict").Inc()
		return nil, fmt.Errorf("reposition %s: %w: %w", placement, domain.ErrStateConflict, err)
	}

	if len(positions) > 0 {
		if err := s.repo.BulkReposition(ctx, placement, positions); err != nil {
			// A concurrent delete may have left a partial write behind.
			if errors.Is(err, domain.ErrStateConflict) {
				metrics.ReordersTotal.WithLabelValues("conflict").Inc()
				if cerr := s.compact(ctx, placement); cerr != nil {
					s.logger.Error().Err(cerr).Str("placement", placement).Msg("compact after conflict failed")
				}
			} else {
				metrics.ReordersTotal.WithLabelValues("error").Inc()
			}
			return nil, fmt.Errorf("reposition %s: %w", placement, err)
		}
	}

	metrics.ReordersTotal.WithLabelValues("ok").Inc()
	s.logger.Info().Str("placement", placement).Int("banners", len(positions)).Msg("placement repositioned")
	return s.repo.ListByPlacement(ctx, placement)
}

// compact rewrites positions of placement to 0..n-1 keeping relative order,
// ties broken by creation time then id.
func (s *BannerService) compact(ctx context.Context, placement string) error {
	banners, err := s.repo.ListByPlacement(ctx, placement)
	if err != nil {
		return fmt.Errorf("compact %s: %w", placement, err)
	}
	sort.SliceStable(banners, func(i, j int) bool {
		a, b := banners[i], banners[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	dirty := false
	positions := make([]domain.Position, len(banners))
	for i, b := range banners {
		positions[i] = domain.Position{ID: b.ID, Position: i}
		if b.Position != i {
			dirty = true
		}
	}
	if !dirty {
		return nil
	}
	if err := s.repo.BulkReposition(ctx, placement, positions); err != nil {
		return fmt.Errorf("compact %s: %w", placement, err)
	}
	return nil
}
