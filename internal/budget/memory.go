package budget

import (
	"context"
	"sort"
	"sync"
	"time"
)

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu      sync.Mutex
	budgets map[string]*Budget
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty budget store.
func NewInMemory() *InMemory {
	return &InMemory{budgets: make(map[string]*Budget)}
}

func (s *InMemory) Create(ctx context.Context, b *Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	if b.ResetDate.IsZero() {
		b.ResetDate = now
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	cp := *b
	s.budgets[b.UserID] = &cp
	return nil
}

func (s *InMemory) Find(ctx context.Context, userID string) (*Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, offset, limit int) ([]*Budget, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []*Budget
	for _, b := range s.budgets {
		cp := *b
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := len(all)
	if offset >= len(all) {
		return nil, total, nil
	}
	all = all[offset:]
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, total, nil
}

func (s *InMemory) Save(ctx context.Context, b *Budget) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.budgets[b.UserID]; !ok {
		return ErrNotFound
	}
	b.UpdatedAt = time.Now().UTC()
	cp := *b
	s.budgets[b.UserID] = &cp
	return nil
}

func (s *InMemory) Spend(ctx context.Context, userID string, amount int64, now time.Time) (*Budget, error) {
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return nil, ErrNoBudget
	}
	ApplyMonthlyReset(b, now)
	if amount > b.Available() {
		return nil, ErrInsufficientTotal
	}
	if amount > b.AvailableMonthly() {
		return nil, ErrInsufficientMonthly
	}
	b.Used += amount
	b.UpdatedAt = now.UTC()
	cp := *b
	return &cp, nil
}

func (s *InMemory) Refund(ctx context.Context, userID string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[userID]
	if !ok {
		return ErrNotFound
	}
	b.Used -= amount
	if b.Used < 0 {
		b.Used = 0
	}
	b.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemory) ResetStale(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var touched int64
	for _, b := range s.budgets {
		if ApplyMonthlyReset(b, now) {
			b.UpdatedAt = now.UTC()
			touched++
		}
	}
	return touched, nil
}
