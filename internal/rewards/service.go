package rewards

import (
	"context"
	"strings"
	"time"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
	"teampulse.org/internal/obs"
)

const defaultCurrency = "USD"

// Service provides voucher issuance and redemption.
type Service struct {
	store Store
	users directory.UserStore
	feed  *feed.Service
	now   func() time.Time
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

// NewService constructs the rewards service.
func NewService(store Store, users directory.UserStore, fd *feed.Service, opts ...Option) *Service {
	s := &Service{store: store, users: users, feed: fd, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IssueInput carries the voucher issuance payload.
type IssueInput struct {
	UserID      string
	Title       string
	Description string
	Category    string
	Value       int64
	Currency    string
	ExpiresAt   *time.Time
}

// Issue grants a voucher to a user and notifies them. Staff only.
func (s *Service) Issue(ctx context.Context, actor directory.Actor, in IssueInput) (*Voucher, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	if _, err := s.users.Find(ctx, strings.TrimSpace(in.UserID)); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(in.Title)
	if title == "" || in.Value <= 0 {
		return nil, ErrInvalidInput
	}
	if in.ExpiresAt != nil && in.ExpiresAt.Before(s.now()) {
		return nil, ErrInvalidInput
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	v := &Voucher{
		UserID:      strings.TrimSpace(in.UserID),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		Category:    strings.TrimSpace(in.Category),
		Value:       in.Value,
		Currency:    currency,
		ExpiresAt:   in.ExpiresAt,
	}
	if err := s.store.Create(ctx, v); err != nil {
		return nil, err
	}
	s.feed.Notify(ctx, &feed.Notification{
		UserID:   v.UserID,
		Type:     feed.TypeVoucher,
		Severity: feed.SeveritySuccess,
		Title:    "You received a reward!",
		Message:  title,
	})
	return v, nil
}

// Get returns a voucher. Owner or staff only.
func (s *Service) Get(ctx context.Context, actor directory.Actor, id string) (*Voucher, error) {
	v, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.UserID != actor.ID && !actor.Staff() {
		return nil, ErrNotFound
	}
	return v, nil
}

// List returns a page of vouchers. Non-staff actors only see their own.
func (s *Service) List(ctx context.Context, actor directory.Actor, f Filter) ([]*Voucher, int, error) {
	if !actor.Staff() {
		f.UserID = actor.ID
	}
	return s.store.List(ctx, f)
}

// UpdateInput carries the mutable voucher fields. Redemption state is not
// editable here; use Redeem.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	ExpiresAt   *time.Time
}

// Update edits a voucher. Staff only; redeemed vouchers are immutable.
func (s *Service) Update(ctx context.Context, actor directory.Actor, id string, in UpdateInput) (*Voucher, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	v, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Redeemed {
		return nil, ErrAlreadyRedeemed
	}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		v.Title = title
	}
	if in.Description != nil {
		v.Description = strings.TrimSpace(*in.Description)
	}
	if in.Category != nil {
		v.Category = strings.TrimSpace(*in.Category)
	}
	if in.ExpiresAt != nil {
		v.ExpiresAt = in.ExpiresAt
	}
	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// Delete removes a voucher. Admin only.
func (s *Service) Delete(ctx context.Context, actor directory.Actor, id string) error {
	if !actor.Admin() {
		return ErrUnauthorized
	}
	if _, err := s.store.Find(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Redeem marks a voucher as used. Only the owner may redeem; expiry is
// checked at redemption time, and a redeemed voucher stays redeemed.
func (s *Service) Redeem(ctx context.Context, actor directory.Actor, id string) (*Voucher, error) {
	v, err := s.store.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.UserID != actor.ID {
		return nil, ErrUnauthorized
	}
	if v.Redeemed {
		return nil, ErrAlreadyRedeemed
	}
	now := s.now()
	if v.Expired(now) {
		return nil, ErrExpired
	}
	at := now.UTC()
	v.Redeemed = true
	v.RedeemedAt = &at
	if err := s.store.Update(ctx, v); err != nil {
		return nil, err
	}
	obs.VoucherRedeemed()
	s.feed.Notify(ctx, &feed.Notification{
		UserID:   v.UserID,
		Type:     feed.TypeVoucher,
		Severity: feed.SeverityInfo,
		Title:    "Voucher redeemed",
		Message:  v.Title,
	})
	return v, nil
}
