package feed

import (
	"context"
	"time"
)

// NotificationStore persists notifications.
type NotificationStore interface {
	Create(ctx context.Context, n *Notification) error
	ListByUser(ctx context.Context, userID string, offset, limit int) ([]*Notification, int, error)
	// MarkRead flips the read flag for a notification owned by userID.
	MarkRead(ctx context.Context, userID, id string, at time.Time) error
	MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error)
}

// ActivityStore persists the append-only activity feed.
type ActivityStore interface {
	Append(ctx context.Context, a *Activity) error
	List(ctx context.Context, offset, limit int) ([]*Activity, int, error)
}
