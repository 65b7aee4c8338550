package domain

import "time"

// Notification is a fire-and-forget message about a moderation outcome,
// delivered to the owner by an external mailer.
type Notification struct {
	Type      string           `json:"type"`
	Kind      EntityKind       `json:"kind"`
	EntityID  string           `json:"entity_id"`
	OwnerID   string           `json:"owner_id"`
	Status    ModerationStatus `json:"status"`
	DecidedBy string           `json:"decided_by"`
	At        time.Time        `json:"at"`
}

const NotificationModerationDecided = "moderation_decided"
