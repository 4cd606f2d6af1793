package feed

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/stream"
)

// Service fans user-facing events out to persistent storage and the live
// event stream. Failures to notify never fail the calling operation.
type Service struct {
	notifications NotificationStore
	activities    ActivityStore
	stream        *stream.Stream
	now           func() time.Time
}

// NewService constructs the feed service. stream may be nil.
func NewService(n NotificationStore, a ActivityStore, st *stream.Stream) *Service {
	return &Service{notifications: n, activities: a, stream: st, now: time.Now}
}

// Notify stores a notification for its owner.
func (s *Service) Notify(ctx context.Context, n *Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		log.WithError(err).WithField("user_id", n.UserID).Error("notification not stored")
	}
}

// Record appends an activity entry and publishes it to stream subscribers.
func (s *Service) Record(ctx context.Context, a *Activity) {
	if err := s.activities.Append(ctx, a); err != nil {
		log.WithError(err).WithField("action", a.Action).Error("activity not recorded")
		return
	}
	if s.stream != nil {
		s.stream.Publish(stream.Event{
			ID:        a.ID,
			Action:    a.Action,
			ActorID:   a.ActorID,
			TargetID:  a.TargetID,
			Message:   a.Message,
			Timestamp: a.CreatedAt,
		})
	}
}

// Notifications lists a user's notifications, newest first.
func (s *Service) Notifications(ctx context.Context, userID string, offset, limit int) ([]*Notification, int, error) {
	return s.notifications.ListByUser(ctx, userID, offset, limit)
}

// MarkRead marks one of the caller's notifications as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.notifications.MarkRead(ctx, userID, id, s.now())
}

// MarkAllRead marks every unread notification of the caller as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.notifications.MarkAllRead(ctx, userID, s.now())
}

// Activities lists the global activity feed, newest first.
func (s *Service) Activities(ctx context.Context, offset, limit int) ([]*Activity, int, error) {
	return s.activities.List(ctx, offset, limit)
}
