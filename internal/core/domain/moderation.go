package domain

import (
	"fmt"
	"time"
)

// EntityKind names a kind of user-submitted content that goes through
// moderation before becoming public.
type EntityKind string

const (
	KindArticle   EntityKind = "article"
	KindDirectory EntityKind = "directory"
	KindCompany   EntityKind = "company"
)

// EntityKinds lists every moderated kind in a stable order.
var EntityKinds = []EntityKind{KindArticle, KindDirectory, KindCompany}

// ParseEntityKind returns the EntityKind for s or ErrInvalidKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch k := EntityKind(s); k {
	case KindArticle, KindDirectory, KindCompany:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// ModerationStatus is the lifecycle state of a submitted entity.
type ModerationStatus string

const (
	StatusPending  ModerationStatus = "PENDING"
	StatusApproved ModerationStatus = "APPROVED"
	StatusRejected ModerationStatus = "REJECTED"
)

// validTransitions defines the moderation state machine. APPROVED and
// REJECTED are terminal.
var validTransitions = map[ModerationStatus][]ModerationStatus{
	StatusPending: {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s ModerationStatus) CanTransitionTo(next ModerationStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s ModerationStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Decision is an admin's verdict on a pending entity.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// Status returns the terminal status a decision leads to.
func (d Decision) Status() (ModerationStatus, error) {
	switch d {
	case DecisionApprove:
		return StatusApproved, nil
	case DecisionReject:
		return StatusRejected, nil
	}
	return "", fmt.Errorf("%w: unknown decision %q", ErrInvalidTransition, d)
}

// SubmittedEntity is the kind-independent part of an article, supplier
// directory or company that the moderation workflow operates on. Kind
// specific content travels in Attributes and is never interpreted here.
type SubmittedEntity struct {
	ID           string            `json:"id" bson:"_id"`
	Kind         EntityKind        `json:"kind" bson:"kind"`
	OwnerID      string            `json:"owner_id" bson:"owner_id"`
	Title        string            `json:"title" bson:"title"`
	Status       ModerationStatus  `json:"status" bson:"status"`
	LiveEditable bool              `json:"live_editable" bson:"live_editable"`
	Attributes   map[string]string `json:"attributes,omitempty" bson:"attributes,omitempty"`
	CreatedAt    time.Time         `json:"created_at" bson:"created_at"`
	DecidedAt    *time.Time        `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
	DecidedBy    string            `json:"decided_by,omitempty" bson:"decided_by,omitempty"`
}
