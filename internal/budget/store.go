package budget

import (
	"context"
	"time"
)

// Store persists budgets. Spend must be atomic with respect to concurrent
// calls for the same user: the reset rule, both cap checks and the increment
// happen as one operation.
type Store interface {
	Create(ctx context.Context, b *Budget) error
	Find(ctx context.Context, userID string) (*Budget, error)
	List(ctx context.Context, offset, limit int) ([]*Budget, int, error)
	Save(ctx context.Context, b *Budget) error
	Spend(ctx context.Context, userID string, amount int64, now time.Time) (*Budget, error)
	Refund(ctx context.Context, userID string, amount int64) error
	// ResetStale zeroes used spending on every budget whose reset month has
	// passed. Used by the periodic sweep job; returns rows touched.
	ResetStale(ctx context.Context, now time.Time) (int64, error)
}
