package rewards

import (
	"context"
	"sort"
	"sync"
	"time"

	"teampulse.org/internal/ids"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu       sync.RWMutex
	vouchers map[string]*Voucher
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{vouchers: make(map[string]*Voucher)}
}

func (s *InMemory) Create(ctx context.Context, v *Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v.ID == "" {
		v.ID = ids.New()
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	cp := *v
	s.vouchers[v.ID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, id string) (*Voucher, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vouchers[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, f Filter) ([]*Voucher, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Voucher
	for _, v := range s.vouchers {
		if f.UserID != "" && v.UserID != f.UserID {
			continue
		}
		if f.Category != "" && v.Category != f.Category {
			continue
		}
		if f.Redeemed != nil && v.Redeemed != *f.Redeemed {
			continue
		}
		cp := *v
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	total := len(all)
	if f.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[f.Offset:]
	if f.Limit > 0 && len(all) > f.Limit {
		all = all[:f.Limit]
	}
	return all, total, nil
}

func (s *InMemory) Update(ctx context.Context, v *Voucher) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.vouchers[v.ID]
	if !ok {
		return ErrNotFound
	}
	v.CreatedAt = existing.CreatedAt
	v.UpdatedAt = time.Now().UTC()
	cp := *v
	s.vouchers[v.ID] = &cp
	return nil
}

func (s *InMemory) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.vouchers[id]; !ok {
		return ErrNotFound
	}
	delete(s.vouchers, id)
	return nil
}
