package ports

import (
	"context"

	"github.com/hirehub/portal-core/internal/core/domain"
)

// NotificationPublisher hands a notification to the external delivery
// pipeline.
type NotificationPublisher interface {
	Publish(ctx context.Context, n domain.Notification) error
}

// Notifier accepts notifications without blocking the caller. Delivery is
// best effort.
type Notifier interface {
	Notify(n domain.Notification)
}
