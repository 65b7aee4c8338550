package workflow

import (
	"context"
	"fmt"
	"slices"
	"sort"

	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/core/domain"
	"github.com/hirehub/portal-core/internal/core/ports"
)

// OrderingEngine keeps banner placements contiguous and persists reorders.
type OrderingEngine struct {
	authority ports.OrderingAuthority
	session   SessionHolder
	log       zerolog.Logger

	// confirmed is the last order the authority acknowledged per placement;
	// displayed is what the caller currently shows, possibly tentative.
	confirmed map[string][]domain.Banner
	displayed map[string][]domain.Banner
}

// NewOrderingEngine returns an engine acting for the session in holder.
func NewOrderingEngine(authority ports.OrderingAuthority, holder SessionHolder, log zerolog.Logger) *OrderingEngine {
	return &OrderingEngine{
		authority: authority,
		session:   holder,
		log:       log,
		confirmed: make(map[string][]domain.Banner),
		displayed: make(map[string][]domain.Banner),
	}
}

// Load fetches the authoritative order of placement.
func (e *OrderingEngine) Load(ctx context.Context, placement string) ([]domain.Banner, error) {
	sess, err := requireAdmin(ctx, e.session)
	if err != nil {
		return nil, err
	}
	return e.load(ctx, sess, placement)
}

func (e *OrderingEngine) load(ctx context.Context, sess domain.Session, placement string) ([]domain.Banner, error) {
	banners, err := e.authority.ListBanners(ctx, sess.Credential, placement)
	if err != nil {
		return nil, remoteFailure(ctx, e.session, e.log, fmt.Errorf("load placement %s: %w", placement, err))
	}
	e.confirm(placement, banners)
	return e.Order(placement), nil
}

// Order returns the order the caller should display for placement.
func (e *OrderingEngine) Order(placement string) []domain.Banner {
	return slices.Clone(e.displayed[placement])
}

// Reorder assigns every banner of placement its index in orderedIDs and
// persists all positions in one bulk update. orderedIDs must be exactly the
// current membership of the placement; otherwise nothing is persisted and
// domain.ErrStateConflict is returned. When persistence fails the displayed
// order is rolled back to the last confirmed one.
func (e *OrderingEngine) Reorder(ctx context.Context, placement string, orderedIDs []string) ([]domain.Banner, error) {
	sess, err := requireAdmin(ctx, e.session)
	if err != nil {
		return nil, err
	}

	if _, loaded := e.confirmed[placement]; !loaded {
		if _, err := e.load(ctx, sess, placement); err != nil {
			return nil, err
		}
	}

	if err := domain.ValidatePermutation(memberIDs(e.confirmed[placement]), orderedIDs); err != nil {
		return nil, fmt.Errorf("reorder %s: %w: %w", placement, domain.ErrStateConflict, err)
	}
	if len(orderedIDs) == 0 {
		return e.Order(placement), nil
	}

	positions := domain.PositionsFromOrder(orderedIDs)
	change := e.stage(placement, positions)

	banners, err := e.authority.Reposition(ctx, sess.Credential, placement, positions)
	if err != nil {
		change.Revert()
		e.log.Info().Err(err).Str("placement", placement).Msg("reorder rolled back")
		return nil, remoteFailure(ctx, e.session, e.log, fmt.Errorf("reorder %s: %w", placement, err))
	}

	change.Commit()
	e.confirm(placement, banners)
	e.log.Info().Str("placement", placement).Int("banners", len(banners)).Msg("placement reordered")
	return e.Order(placement), nil
}

// stage shows the tentative order immediately. Revert restores the confirmed
// order.
func (e *OrderingEngine) stage(placement string, positions []domain.Position) *Change {
	byID := make(map[string]domain.Banner, len(positions))
	for _, b := range e.confirmed[placement] {
		byID[b.ID] = b
	}
	tentative := make([]domain.Banner, len(positions))
	for _, p := range positions {
		b := byID[p.ID]
		b.Position = p.Position
		tentative[p.Position] = b
	}
	e.displayed[placement] = tentative

	return newChange(nil, func() {
		e.displayed[placement] = slices.Clone(e.confirmed[placement])
	})
}

func (e *OrderingEngine) confirm(placement string, banners []domain.Banner) {
	ordered := slices.Clone(banners)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })
	e.confirmed[placement] = ordered
	e.displayed[placement] = slices.Clone(ordered)
}

func memberIDs(banners []domain.Banner) []string {
	ids := make([]string, len(banners))
	for i, b := range banners {
		ids[i] = b.ID
	}
	return ids
}
