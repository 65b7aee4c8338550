package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/api/metrics"
	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// ModerationService is the authoritative side of the moderation workflow.
// The repository's conditional update is the serialization point for
// concurrent decisions: the first accepted write wins and every later one
// gets domain.ErrStateConflict.
type ModerationService struct {
	repo     ports.EntityRepository
	notifier ports.Notifier
	logger   zerolog.Logger
	now      func() time.Time
}

func NewModerationService(repo ports.EntityRepository, notifier ports.Notifier, logger zerolog.Logger) *ModerationService {
	return &ModerationService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Submit creates a new entity in PENDING owned by the submitting actor.
// Recruiters must have finished onboarding.
func (s *ModerationService) Submit(ctx context.Context, actor ports.Actor, in ports.SubmitInput) (*domain.SubmittedEntity, error) {
	if actor.SubjectID == "" || (actor.Role != domain.RoleRecruiter && actor.Role != domain.RoleAdmin) {
		return nil, domain.ErrCapabilityDenied
	}
	if actor.Role.RequiresOnboarding() && !actor.Onboarded {
		return nil, domain.ErrCapabilityDenied
	}
	if _, err := domain.ParseEntityKind(string(in.Kind)); err != nil {
		return nil, err
	}

	e := &domain.SubmittedEntity{
		ID:           uuid.NewString(),
		Kind:         in.Kind,
		OwnerID:      actor.SubjectID,
		Title:        strings.TrimSpace(in.Title),
		Status:       domain.StatusPending,
		LiveEditable: in.LiveEditable,
		Attributes:   in.Attributes,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		s.logger.Error().Err(err).Str("kind", string(in.Kind)).Msg("failed to create submission")
		return nil, fmt.Errorf("submit %s: %w", in.Kind, err)
	}

	s.logger.Info().Str("kind", string(e.Kind)).Str("entity_id", e.ID).Str("owner_id", e.OwnerID).Msg("submission created")
	return e, nil
}

func (s *ModerationService) Get(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error) {
	return s.repo.FindByID(ctx, kind, id)
}

// ListPending returns the entities of kind awaiting review, oldest first.
func (s *ModerationService) ListPending(ctx context.Context, actor ports.Actor, kind domain.EntityKind) ([]*domain.SubmittedEntity, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrCapabilityDenied
	}
	items, err := s.repo.ListByStatus(ctx, kind, domain.StatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending %s: %w", kind, err)
	}
	return items, nil
}

// Decide applies an admin decision to a pending entity exactly once.
func (s *ModerationService) Decide(ctx context.Context, actor ports.Actor, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, domain.ErrCapabilityDenied
	}
	to, err := decision.Status()
	if err != nil {
		return nil, err
	}
	if !domain.StatusPending.CanTransitionTo(to) {
		return nil, fmt.Errorf("decide %s %s: %w", kind, id, domain.ErrInvalidTransition)
	}

	at := s.now()
	updated, err := s.repo.TransitionStatus(ctx, kind, id, domain.StatusPending, to, actor.SubjectID, at)
	if err != nil {
		if errors.Is(err, domain.ErrStateConflict) {
			metrics.ConflictsTotal.WithLabelValues("decide").Inc()
		}
		s.logger.Info().Err(err).Str("kind", string(kind)).Str("entity_id", id).Str("decision", string(decision)).Msg("decision refused")
		return nil, fmt.Errorf("decide %s %s: %w", kind, id, err)
	}

	metrics.ModerationDecisionsTotal.WithLabelValues(string(kind), string(updated.Status)).Inc()
	s.notifier.Notify(domain.Notification{
		Type:      domain.NotificationModerationDecided,
		Kind:      kind,
		EntityID:  id,
		OwnerID:   updated.OwnerID,
		Status:    updated.Status,
		DecidedBy: actor.SubjectID,
		At:        at,
	})

	s.logger.Info().
		Str("kind", string(kind)).
		Str("entity_id", id).
		Str("status", string(updated.Status)).
		Str("admin", actor.SubjectID).
		Msg("moderation decided")

	return updated, nil
}
