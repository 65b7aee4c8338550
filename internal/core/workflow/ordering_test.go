package workflow

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/core/domain"
)

type stubOrdering struct {
	placements    map[string][]domain.Banner
	repositionErr error
	repositions   int
}

func newStubOrdering() *stubOrdering {
	return &stubOrdering{placements: map[string][]domain.Banner{
		"HOME_MIDDLE": {{ID: "A", PlacementKey: "HOME_MIDDLE", Position: 0}, {ID: "B", PlacementKey: "HOME_MIDDLE", Position: 1}, {ID: "C", PlacementKey: "HOME_MIDDLE", Position: 2}},
		"FOOTER":      {{ID: "X", PlacementKey: "FOOTER", Position: 0}, {ID: "Y", PlacementKey: "FOOTER", Position: 1}},
	}}
}

func (s *stubOrdering) ListBanners(_ context.Context, _ string, placement string) ([]domain.Banner, error) {
	out := append([]domain.Banner(nil), s.placements[placement]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (s *stubOrdering) Reposition(_ context.Context, _ string, placement string, positions []domain.Position) ([]domain.Banner, error) {
	s.repositions++
	if s.repositionErr != nil {
		return nil, s.repositionErr
	}
	byID := map[string]int{}
	for _, p := range positions {
		byID[p.ID] = p.Position
	}
	banners := s.placements[placement]
	for i := range banners {
		banners[i].Position = byID[banners[i].ID]
	}
	return s.ListBanners(context.Background(), "", placement)
}

func ids(banners []domain.Banner) []string {
	out := make([]string, len(banners))
	for i, b := range banners {
		out[i] = b.ID
	}
	return out
}

func assertContiguous(t *testing.T, banners []domain.Banner) {
	t.Helper()
	seen := make(map[int]bool)
	for _, b := range banners {
		if b.Position < 0 || b.Position >= len(banners) || seen[b.Position] {
			t.Fatalf("positions not contiguous: %+v", banners)
		}
		seen[b.Position] = true
	}
}

func TestOrdering_ReorderHomeMiddleLeavesFooter(t *testing.T) {
	auth := newStubOrdering()
	eng := NewOrderingEngine(auth, adminHolder(), zerolog.Nop())
	ctx := context.Background()

	got, err := eng.Reorder(ctx, "HOME_MIDDLE", []string{"C", "A", "B"})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	want := map[string]int{"C": 0, "A": 1, "B": 2}
	for _, b := range got {
		if want[b.ID] != b.Position {
			t.Fatalf("banner %s: expected position %d, got %d", b.ID, want[b.ID], b.Position)
		}
	}
	assertContiguous(t, got)

	footer, _ := auth.ListBanners(ctx, "", "FOOTER")
	if footer[0].ID != "X" || footer[0].Position != 0 || footer[1].ID != "Y" || footer[1].Position != 1 {
		t.Fatalf("FOOTER must be untouched, got %+v", footer)
	}
}

func TestOrdering_RejectsInvalidOrderBeforePersistence(t *testing.T) {
	cases := map[string][]string{
		"missing member": {"A", "B"},
		"extra member":   {"A", "B", "C", "D"},
		"duplicate":      {"A", "A", "B"},
		"foreign id":     {"A", "B", "X"},
	}
	for name, order := range cases {
		t.Run(name, func(t *testing.T) {
			auth := newStubOrdering()
			eng := NewOrderingEngine(auth, adminHolder(), zerolog.Nop())

			_, err := eng.Reorder(context.Background(), "HOME_MIDDLE", order)
			if !errors.Is(err, domain.ErrStateConflict) || !errors.Is(err, domain.ErrOrderMismatch) {
				t.Fatalf("expected conflict wrapping order mismatch, got %v", err)
			}
			if auth.repositions != 0 {
				t.Fatalf("nothing may be persisted, got %d calls", auth.repositions)
			}
			if got := ids(eng.Order("HOME_MIDDLE")); len(got) != 3 || got[0] != "A" || got[2] != "C" {
				t.Fatalf("displayed order changed: %v", got)
			}
		})
	}
}

func TestOrdering_FailedPersistenceRollsBack(t *testing.T) {
	auth := newStubOrdering()
	eng := NewOrderingEngine(auth, adminHolder(), zerolog.Nop())
	ctx := context.Background()

	if _, err := eng.Load(ctx, "HOME_MIDDLE"); err != nil {
		t.Fatalf("Load: %v", err)
	}
	auth.repositionErr = domain.ErrTransient

	_, err := eng.Reorder(ctx, "HOME_MIDDLE", []string{"B", "C", "A"})
	if !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	got := ids(eng.Order("HOME_MIDDLE"))
	if got[0] != "A" || got[1] != "B" || got[2] != "C" {
		t.Fatalf("expected rollback to A,B,C, got %v", got)
	}
}

func TestOrdering_StageShowsTentativeOrder(t *testing.T) {
	auth := newStubOrdering()
	eng := NewOrderingEngine(auth, adminHolder(), zerolog.Nop())
	if _, err := eng.Load(context.Background(), "HOME_MIDDLE"); err != nil {
		t.Fatalf("Load: %v", err)
	}

	change := eng.stage("HOME_MIDDLE", domain.PositionsFromOrder([]string{"C", "B", "A"}))
	if got := ids(eng.Order("HOME_MIDDLE")); got[0] != "C" || got[2] != "A" {
		t.Fatalf("expected tentative order C,B,A, got %v", got)
	}
	change.Revert()
	if got := ids(eng.Order("HOME_MIDDLE")); got[0] != "A" || got[2] != "C" {
		t.Fatalf("expected confirmed order after revert, got %v", got)
	}
}

func TestOrdering_SessionRejectedClearsSession(t *testing.T) {
	auth := newStubOrdering()
	auth.repositionErr = domain.ErrSessionInvalid
	holder := adminHolder()
	eng := NewOrderingEngine(auth, holder, zerolog.Nop())

	_, err := eng.Reorder(context.Background(), "FOOTER", []string{"Y", "X"})
	if !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if holder.cleared != 1 {
		t.Fatalf("expected session cleared")
	}
}

func TestOrdering_CapabilityDenied(t *testing.T) {
	auth := newStubOrdering()
	eng := NewOrderingEngine(auth, &stubHolder{}, zerolog.Nop())

	if _, err := eng.Reorder(context.Background(), "FOOTER", []string{"Y", "X"}); !errors.Is(err, domain.ErrCapabilityDenied) {
		t.Fatalf("expected ErrCapabilityDenied, got %v", err)
	}
	if auth.repositions != 0 {
		t.Fatalf("authority must not be called")
	}
}
