package feed

import (
	"context"
	"sync"
	"time"

	"teampulse.org/internal/ids"
)

// InMemoryNotifications implements NotificationStore.
type InMemoryNotifications struct {
	mu    sync.RWMutex
	items map[string][]*Notification // userID -> newest first
}

var _ NotificationStore = (*InMemoryNotifications)(nil)

func NewInMemoryNotifications() *InMemoryNotifications {
	return &InMemoryNotifications{items: make(map[string][]*Notification)}
}

func (s *InMemoryNotifications) Create(ctx context.Context, n *Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == "" {
		n.ID = ids.New()
	}
	n.CreatedAt = time.Now().UTC()
	cp := *n
	s.items[n.UserID] = append([]*Notification{&cp}, s.items[n.UserID]...)
	return nil
}

func (s *InMemoryNotifications) ListByUser(ctx context.Context, userID string, offset, limit int) ([]*Notification, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.items[userID]
	total := len(list)
	if offset >= len(list) {
		return nil, total, nil
	}
	list = list[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]*Notification, len(list))
	for i, n := range list {
		cp := *n
		out[i] = &cp
	}
	return out, total, nil
}

func (s *InMemoryNotifications) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.items[userID] {
		if n.ID == id {
			if !n.Read {
				n.Read = true
				t := at.UTC()
				n.ReadAt = &t
			}
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryNotifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	t := at.UTC()
	for _, n := range s.items[userID] {
		if !n.Read {
			n.Read = true
			n.ReadAt = &t
			touched++
		}
	}
	return touched, nil
}

// InMemoryActivities implements ActivityStore.
type InMemoryActivities struct {
	mu    sync.RWMutex
	items []*Activity // newest first
}

var _ ActivityStore = (*InMemoryActivities)(nil)

func NewInMemoryActivities() *InMemoryActivities {
	return &InMemoryActivities{}
}

func (s *InMemoryActivities) Append(ctx context.Context, a *Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = ids.New()
	}
	a.CreatedAt = time.Now().UTC()
	cp := *a
	s.items = append([]*Activity{&cp}, s.items...)
	return nil
}

func (s *InMemoryActivities) List(ctx context.Context, offset, limit int) ([]*Activity, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := len(s.items)
	if offset >= len(s.items) {
		return nil, total, nil
	}
	list := s.items[offset:]
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	out := make([]*Activity, len(list))
	for i, a := range list {
		cp := *a
		out[i] = &cp
	}
	return out, total, nil
}
