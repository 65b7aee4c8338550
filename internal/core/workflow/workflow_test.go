package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// ---------------------------------------------------------------------------
// Stubs
// ---------------------------------------------------------------------------

type stubHolder struct {
	sess    domain.Session
	ok      bool
	cleared int
}

func adminHolder() *stubHolder {
	return &stubHolder{
		sess: domain.Session{Identity: domain.Identity{SubjectID: "admin-1", Role: domain.RoleAdmin, Onboarded: true}, Credential: "cred"},
		ok:   true,
	}
}

func (h *stubHolder) Load(context.Context) (domain.Session, bool) { return h.sess, h.ok }

func (h *stubHolder) Clear(context.Context) error {
	h.cleared++
	h.sess, h.ok = domain.Session{}, false
	return nil
}

// stubAuthority mimics the authoritative store: a pending entity can be
// decided exactly once.
type stubAuthority struct {
	entities   map[string]*domain.SubmittedEntity
	decideErr  error
	listErr    error
	decides    int
	credential string
}

func newStubAuthority(entities ...domain.SubmittedEntity) *stubAuthority {
	a := &stubAuthority{entities: make(map[string]*domain.SubmittedEntity)}
	for _, e := range entities {
		e := e
		a.entities[e.ID] = &e
	}
	return a
}

func (a *stubAuthority) ListPending(_ context.Context, credential string, kind domain.EntityKind) ([]domain.SubmittedEntity, error) {
	a.credential = credential
	if a.listErr != nil {
		return nil, a.listErr
	}
	var out []domain.SubmittedEntity
	for _, e := range a.entities {
		if e.Kind == kind && e.Status == domain.StatusPending {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (a *stubAuthority) Decide(_ context.Context, credential string, kind domain.EntityKind, id string, decision domain.Decision) (*domain.SubmittedEntity, error) {
	a.decides++
	a.credential = credential
	if a.decideErr != nil {
		return nil, a.decideErr
	}
	e, ok := a.entities[id]
	if !ok || e.Kind != kind {
		return nil, domain.ErrStateConflict
	}
	next, _ := decision.Status()
	if !e.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: already %s", domain.ErrStateConflict, e.Status)
	}
	e.Status = next
	clone := *e
	return &clone, nil
}

func pending(id string, kind domain.EntityKind) domain.SubmittedEntity {
	return domain.SubmittedEntity{ID: id, Kind: kind, OwnerID: "rec-1", Status: domain.StatusPending}
}

func newModeration(a *stubAuthority, h *stubHolder) *ModerationEngine {
	return NewModerationEngine(a, h, zerolog.Nop())
}

// ---------------------------------------------------------------------------
// ModerationEngine
// ---------------------------------------------------------------------------

func TestModeration_ApproveRemovesFromPending(t *testing.T) {
	auth := newStubAuthority(pending("1", domain.KindArticle), pending("2", domain.KindArticle))
	eng := newModeration(auth, adminHolder())
	ctx := context.Background()

	if _, err := eng.ListPending(ctx, domain.KindArticle); err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	updated, err := eng.Approve(ctx, domain.KindArticle, "1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if updated.Status != domain.StatusApproved {
		t.Fatalf("expected APPROVED, got %s", updated.Status)
	}
	if auth.credential != "cred" {
		t.Fatalf("credential not forwarded: %q", auth.credential)
	}

	local := eng.Pending(domain.KindArticle)
	if len(local) != 1 || local[0].ID != "2" {
		t.Fatalf("expected only entity 2 in local view, got %+v", local)
	}
	remote, _ := eng.ListPending(ctx, domain.KindArticle)
	if len(remote) != 1 || remote[0].ID != "2" {
		t.Fatalf("expected only entity 2 pending remotely, got %+v", remote)
	}
}

func TestModeration_ApproveAlreadyRejectedIsConflict(t *testing.T) {
	rejected := pending("42", domain.KindArticle)
	rejected.Status = domain.StatusRejected
	auth := newStubAuthority(rejected)
	eng := newModeration(auth, adminHolder())

	_, err := eng.Approve(context.Background(), domain.KindArticle, "42")
	if !errors.Is(err, domain.ErrStateConflict) {
		t.Fatalf("expected ErrStateConflict, got %v", err)
	}
	if auth.entities["42"].Status != domain.StatusRejected {
		t.Fatalf("entity must remain REJECTED, got %s", auth.entities["42"].Status)
	}
}

func TestModeration_SecondDecisionIsConflict(t *testing.T) {
	auth := newStubAuthority(pending("7", domain.KindCompany))
	eng := newModeration(auth, adminHolder())
	ctx := context.Background()

	if _, err := eng.Reject(ctx, domain.KindCompany, "7"); err != nil {
		t.Fatalf("first Reject: %v", err)
	}
	for _, call := range []func(context.Context, domain.EntityKind, string) (*domain.SubmittedEntity, error){eng.Approve, eng.Reject} {
		if _, err := call(ctx, domain.KindCompany, "7"); !errors.Is(err, domain.ErrStateConflict) {
			t.Fatalf("expected ErrStateConflict, got %v", err)
		}
	}
	if auth.entities["7"].Status != domain.StatusRejected {
		t.Fatalf("terminal status changed to %s", auth.entities["7"].Status)
	}
}

func TestModeration_FailedDecisionRevertsLocalView(t *testing.T) {
	auth := newStubAuthority(pending("1", domain.KindDirectory), pending("2", domain.KindDirectory), pending("3", domain.KindDirectory))
	eng := newModeration(auth, adminHolder())
	ctx := context.Background()

	if _, err := eng.ListPending(ctx, domain.KindDirectory); err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	auth.decideErr = fmt.Errorf("%w: 503", domain.ErrTransient)

	_, err := eng.Approve(ctx, domain.KindDirectory, "2")
	if domain.Classify(err) != domain.FailureTransient {
		t.Fatalf("expected transient failure, got %v", err)
	}

	local := eng.Pending(domain.KindDirectory)
	if len(local) != 3 || local[1].ID != "2" {
		t.Fatalf("expected entity 2 restored at its index, got %+v", local)
	}
}

func TestModeration_CapabilityDenied(t *testing.T) {
	auth := newStubAuthority(pending("1", domain.KindArticle))
	recruiter := &stubHolder{
		sess: domain.Session{Identity: domain.Identity{SubjectID: "r", Role: domain.RoleRecruiter, Onboarded: true}, Credential: "c"},
		ok:   true,
	}

	for name, h := range map[string]*stubHolder{"recruiter": recruiter, "no session": {}} {
		eng := newModeration(auth, h)
		if _, err := eng.Approve(context.Background(), domain.KindArticle, "1"); !errors.Is(err, domain.ErrCapabilityDenied) {
			t.Fatalf("%s: expected ErrCapabilityDenied, got %v", name, err)
		}
		if _, err := eng.ListPending(context.Background(), domain.KindArticle); !errors.Is(err, domain.ErrCapabilityDenied) {
			t.Fatalf("%s: expected ErrCapabilityDenied on list, got %v", name, err)
		}
	}
	if auth.decides != 0 {
		t.Fatalf("authority must not be called, got %d calls", auth.decides)
	}
	if auth.entities["1"].Status != domain.StatusPending {
		t.Fatalf("status must be untouched")
	}
}

func TestModeration_RejectedCredentialClearsSession(t *testing.T) {
	auth := newStubAuthority(pending("1", domain.KindArticle))
	auth.decideErr = domain.ErrSessionInvalid
	holder := adminHolder()
	eng := newModeration(auth, holder)

	_, err := eng.Approve(context.Background(), domain.KindArticle, "1")
	if !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if holder.cleared != 1 {
		t.Fatalf("expected session to be cleared once, got %d", holder.cleared)
	}
}

func TestModeration_ListAllPending(t *testing.T) {
	auth := newStubAuthority(pending("a1", domain.KindArticle), pending("d1", domain.KindDirectory), pending("c1", domain.KindCompany), pending("c2", domain.KindCompany))
	eng := newModeration(auth, adminHolder())

	all, err := eng.ListAllPending(context.Background())
	if err != nil {
		t.Fatalf("ListAllPending: %v", err)
	}
	if len(all[domain.KindArticle]) != 1 || len(all[domain.KindDirectory]) != 1 || len(all[domain.KindCompany]) != 2 {
		t.Fatalf("unexpected result: %+v", all)
	}
	if len(eng.Pending(domain.KindCompany)) != 2 {
		t.Fatalf("local view not refreshed")
	}
}

func TestModeration_ListAllPendingFailure(t *testing.T) {
	auth := newStubAuthority(pending("a1", domain.KindArticle))
	auth.listErr = domain.ErrTransient
	eng := newModeration(auth, adminHolder())

	if _, err := eng.ListAllPending(context.Background()); !errors.Is(err, domain.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestChange_CommitThenRevertIsNoop(t *testing.T) {
	reverted := false
	c := newChange(nil, func() { reverted = true })
	c.Commit()
	c.Revert()
	if reverted {
		t.Fatalf("revert after commit must be a no-op")
	}
}
