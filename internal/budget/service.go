package budget

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/obs"
)

// Service provides budget operations.
type Service struct {
	store Store
	now   func() time.Time

	defaultTotal   int64
	defaultMonthly int64
}

// Option configures Service behavior.
type Option func(*Service)

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithDefaults sets the allowance granted on first allocation.
func WithDefaults(total, monthly int64) Option {
	return func(s *Service) {
		s.defaultTotal = total
		s.defaultMonthly = monthly
	}
}

// NewService constructs the budget service.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns a user's budget with the lazy monthly reset applied and
// persisted.
func (s *Service) Get(ctx context.Context, userID string) (*Budget, error) {
	b, err := s.store.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if ApplyMonthlyReset(b, s.now()) {
		if err := s.store.Save(ctx, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// GetForUser is Get restricted to staff or the owner.
func (s *Service) GetForUser(ctx context.Context, actor directory.Actor, userID string) (*Budget, error) {
	if actor.ID != userID && !actor.Staff() {
		return nil, ErrUnauthorized
	}
	return s.Get(ctx, userID)
}

// Allocate increases a user's total and monthly allowances, creating the
// budget row on first allocation. Staff only.
func (s *Service) Allocate(ctx context.Context, actor directory.Actor, userID string, totalDelta, monthlyDelta int64) (*Budget, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	if totalDelta < 0 || monthlyDelta < 0 || totalDelta+monthlyDelta == 0 {
		return nil, ErrInvalidAmount
	}
	b, err := s.store.Find(ctx, userID)
	switch err {
	case nil:
	case ErrNotFound:
		b = &Budget{
			UserID:    userID,
			Total:     s.defaultTotal,
			Monthly:   s.defaultMonthly,
			ResetDate: s.now(),
		}
		if err := s.store.Create(ctx, b); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	ApplyMonthlyReset(b, s.now())
	b.Total += totalDelta
	b.Monthly += monthlyDelta
	if err := s.store.Save(ctx, b); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{
		"user_id":       userID,
		"total_delta":   totalDelta,
		"monthly_delta": monthlyDelta,
	}).Info("budget allocated")
	return b, nil
}

// Spend deducts amount from the user's budget, applying the lazy reset and
// enforcing both caps atomically. ErrNoBudget when no budget exists.
func (s *Service) Spend(ctx context.Context, userID string, amount int64) (*Budget, error) {
	b, err := s.store.Spend(ctx, userID, amount, s.now())
	if err == ErrNotFound {
		return nil, ErrNoBudget
	}
	return b, err
}

// Refund returns amount to the user's budget. Compensating action for a
// failed kudos creation.
func (s *Service) Refund(ctx context.Context, userID string, amount int64) error {
	return s.store.Refund(ctx, userID, amount)
}

// ListAll returns all budgets. Staff only.
func (s *Service) ListAll(ctx context.Context, actor directory.Actor, offset, limit int) ([]*Budget, int, error) {
	if !actor.Staff() {
		return nil, 0, ErrUnauthorized
	}
	return s.store.List(ctx, offset, limit)
}

// SweepStale resets every overdue budget in bulk. Invoked by the cron job;
// the read path keeps the lazy reset as the correctness backstop.
func (s *Service) SweepStale(ctx context.Context) (int64, error) {
	n, err := s.store.ResetStale(ctx, s.now())
	if err != nil {
		return 0, err
	}
	obs.BudgetResets(n)
	return n, nil
}
