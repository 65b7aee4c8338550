package workflow

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// pendingView is the engine's local copy of the pending lists.
type pendingView struct {
	mu     sync.Mutex
	byKind map[domain.EntityKind][]domain.SubmittedEntity
}

func newPendingView() *pendingView {
	return &pendingView{byKind: make(map[domain.EntityKind][]domain.SubmittedEntity)}
}

func (v *pendingView) replace(kind domain.EntityKind, items []domain.SubmittedEntity) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.byKind[kind] = slices.Clone(items)
}

func (v *pendingView) snapshot(kind domain.EntityKind) []domain.SubmittedEntity {
	v.mu.Lock()
	defer v.mu.Unlock()
	return slices.Clone(v.byKind[kind])
}

// stage tentatively removes id from the pending list of kind. Revert puts it
// back at its former index.
func (v *pendingView) stage(kind domain.EntityKind, id string) *Change {
	v.mu.Lock()
	defer v.mu.Unlock()

	items := v.byKind[kind]
	idx := slices.IndexFunc(items, func(e domain.SubmittedEntity) bool { return e.ID == id })
	if idx < 0 {
		return newChange(nil, nil)
	}
	removed := items[idx]
	v.byKind[kind] = slices.Delete(slices.Clone(items), idx, idx+1)

	return newChange(nil, func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		cur := v.byKind[kind]
		if slices.ContainsFunc(cur, func(e domain.SubmittedEntity) bool { return e.ID == id }) {
			return
		}
		at := min(idx, len(cur))
		v.byKind[kind] = slices.Insert(slices.Clone(cur), at, removed)
	})
}

// ModerationEngine drives PENDING -> APPROVED|REJECTED transitions.
type ModerationEngine struct {
	authority ports.ModerationAuthority
	session   SessionHolder
	log       zerolog.Logger
	view      *pendingView
}

// NewModerationEngine returns an engine acting for the session in holder.
func NewModerationEngine(authority ports.ModerationAuthority, holder SessionHolder, log zerolog.Logger) *ModerationEngine {
	return &ModerationEngine{
		authority: authority,
		session:   holder,
		log:       log,
		view:      newPendingView(),
	}
}

// ListPending fetches the pending entities of kind and refreshes the local
// view.
func (e *ModerationEngine) ListPending(ctx context.Context, kind domain.EntityKind) ([]domain.SubmittedEntity, error) {
	sess, err := requireAdmin(ctx, e.session)
	if err != nil {
		return nil, err
	}

	items, err := e.authority.ListPending(ctx, sess.Credential, kind)
	if err != nil {
		return nil, remoteFailure(ctx, e.session, e.log, fmt.Errorf("list pending %s: %w", kind, err))
	}

	e.view.replace(kind, items)
	return e.view.snapshot(kind), nil
}

// ListAllPending fetches the pending lists of every kind concurrently. The
// first failure cancels the remaining requests.
func (e *ModerationEngine) ListAllPending(ctx context.Context) (map[domain.EntityKind][]domain.SubmittedEntity, error) {
	sess, err := requireAdmin(ctx, e.session)
	if err != nil {
		return nil, err
	}

	results := make([][]domain.SubmittedEntity, len(domain.EntityKinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range domain.EntityKinds {
		g.Go(func() error {
			items, err := e.authority.ListPending(gctx, sess.Credential, kind)
			if err != nil {
				return fmt.Errorf("list pending %s: %w", kind, err)
			}
			results[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, remoteFailure(ctx, e.session, e.log, err)
	}

	out := make(map[domain.EntityKind][]domain.SubmittedEntity, len(results))
	for i, kind := range domain.EntityKinds {
		e.view.replace(kind, results[i])
		out[kind] = e.view.snapshot(kind)
	}
	return out, nil
}

// Pending returns the local view of kind without contacting the authority.
func (e *ModerationEngine) Pending(kind domain.EntityKind) []domain.SubmittedEntity {
	return e.view.snapshot(kind)
}

// Approve approves a pending entity.
func (e *ModerationEngine) Approve(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error) {
	return e.decide(ctx, kind, id, domain.DecisionApprove)
}

// Reject rejects a pending entity.
func (e *ModerationEngine) Reject(ctx context.Context, kind domain.EntityKind, id string) (*domain.SubmittedEntity, error) {
	return e.decide(ctx, kind, id, domain.DecisionReject)
}

// decide removes the entity from the local view tentatively and commits the
// removal only once the authority confirmed the transition. An entity that
// is no longer pending yields domain.ErrStateConflict.
func (e *ModerationEngine) decide(ctx context.Context, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error) {
	want, err := decision.Status()
	if err != nil {
		return nil, err
	}
	sess, err := requireAdmin(ctx, e.session)
	if err != nil {
		return nil, err
	}

	change := e.view.stage(kind, id)

	updated, err := e.authority.Decide(ctx, sess.Credential, kind, id, decision)
	if err != nil {
		change.Revert()
		e.log.Info().Err(err).Str("kind", string(kind)).Str("entity_id", id).Str("decision", string(decision)).Msg("moderation decision not applied")
		return nil, remoteFailure(ctx, e.session, e.log, fmt.Errorf("%s %s %s: %w", decision, kind, id, err))
	}
	if updated == nil || updated.Status != want {
		change.Revert()
		return nil, fmt.Errorf("%s %s %s: %w: authority reports status %v", decision, kind, id, domain.ErrStateConflict, statusOf(updated))
	}

	change.Commit()
	e.log.Info().Str("kind", string(kind)).Str("entity_id", id).Str("status", string(updated.Status)).Msg("moderation decision applied")
	return updated, nil
}

func statusOf(e *domain.SubmittedEntity) domain.ModerationStatus {
	if e == nil {
		return ""
	}
	return e.Status
}
