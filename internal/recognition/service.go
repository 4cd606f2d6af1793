package recognition

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/budget"
	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
	"teampulse.org/internal/obs"
)

const (
	maxMessageLen   = 500
	defaultCurrency = "USD"
)

// Service implements the recognition workflows on top of the store and the
// sibling domain services.
type Service struct {
	store   Store
	users   directory.UserStore
	budgets *budget.Service
	feed    *feed.Service
	now     func() time.Time
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

// NewService constructs the recognition service.
func NewService(store Store, users directory.UserStore, budgets *budget.Service, fd *feed.Service, opts ...Option) *Service {
	s := &Service{store: store, users: users, budgets: budgets, feed: fd, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RequiresApproval reports whether a kudos between the two roles starts in
// the PENDING state. Kudos from an admin to a regular user go through
// manager review; every other pairing is approved immediately. The
// directionality matches the shipped product behavior and is pinned by
// tests: do not "fix" it without a product decision.
func RequiresApproval(sender, recipient directory.Role) bool {
	return sender == directory.RoleAdmin && recipient == directory.RoleUser
}

// CreateKudosInput carries the kudos creation payload.
type CreateKudosInput struct {
	RecipientID string
	Message     string
	TagIDs      []string
	Public      bool
	Amount      int64
	Currency    string
}

// CreateKudos runs the budget-and-approval workflow:
// resolve both parties, deduct the optional monetary amount from the
// sender's budget, gate on the role pair, create the record, then fan out
// activity, counters and notifications. The budget deduction is atomic and
// refunded if the record cannot be created.
func (s *Service) CreateKudos(ctx context.Context, actor directory.Actor, in CreateKudosInput) (*Kudos, error) {
	sender, err := s.users.Find(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	recipient, err := s.users.Find(ctx, strings.TrimSpace(in.RecipientID))
	if err != nil {
		return nil, err
	}

	msg := strings.TrimSpace(in.Message)
	if msg == "" || len(msg) > maxMessageLen {
		return nil, ErrMessageLength
	}
	if in.Amount < 0 {
		return nil, ErrInvalidInput
	}
	currency := strings.ToUpper(strings.TrimSpace(in.Currency))
	if currency == "" {
		currency = defaultCurrency
	}
	if len(currency) > 8 {
		return nil, ErrInvalidInput
	}
	if len(in.TagIDs) > 0 {
		if _, err := s.store.FindTags(ctx, in.TagIDs); err != nil {
			return nil, err
		}
	}

	if in.Amount > 0 {
		if _, err := s.budgets.Spend(ctx, sender.ID, in.Amount); err != nil {
			return nil, err
		}
	}

	status := StatusApproved
	if RequiresApproval(sender.Role, recipient.Role) {
		status = StatusPending
	}

	k := &Kudos{
		SenderID:    sender.ID,
		RecipientID: recipient.ID,
		Message:     msg,
		Amount:      in.Amount,
		Currency:    currency,
		TagIDs:      in.TagIDs,
		Public:      in.Public,
		Status:      status,
	}
	if err := s.store.CreateKudos(ctx, k); err != nil {
		if in.Amount > 0 {
			if rerr := s.budgets.Refund(ctx, sender.ID, in.Amount); rerr != nil {
				log.WithError(rerr).WithField("user_id", sender.ID).Error("budget refund failed after create error")
			}
		}
		return nil, err
	}
	obs.KudosCreated(string(status))

	s.feed.Record(ctx, &feed.Activity{
		ActorID:  sender.ID,
		TargetID: recipient.ID,
		KudosID:  k.ID,
		Action:   "kudos.created",
		Message:  fmt.Sprintf("%s sent kudos to %s", sender.Name, recipient.Name),
	})

	if status == StatusApproved {
		if err := s.users.AdjustKudosCounters(ctx, sender.ID, recipient.ID, 1); err != nil {
			log.WithError(err).WithField("kudos_id", k.ID).Error("kudos counters not incremented")
		}
		s.feed.Notify(ctx, &feed.Notification{
			UserID:   recipient.ID,
			Type:     feed.TypeKudosReceived,
			Severity: feed.SeveritySuccess,
			Title:    "You received kudos!",
			Message:  fmt.Sprintf("%s sent you kudos: %s", sender.Name, msg),
		})
	} else {
		s.feed.Notify(ctx, &feed.Notification{
			UserID:   recipient.ID,
			Type:     feed.TypeKudosPending,
			Severity: feed.SeverityInfo,
			Title:    "Kudos pending approval",
			Message:  fmt.Sprintf("%s sent you kudos pending manager approval", sender.Name),
		})
	}
	return k, nil
}

// GetKudos returns a kudos, enforcing the private-record visibility rule.
func (s *Service) GetKudos(ctx context.Context, actor directory.Actor, id string) (*Kudos, error) {
	k, err := s.store.FindKudos(ctx, id)
	if err != nil {
		return nil, err
	}
	if !k.Public && !actor.Staff() && actor.ID != k.SenderID && actor.ID != k.RecipientID {
		return nil, ErrNotFound
	}
	return k, nil
}

// ListKudos returns a page of kudos. The viewer fields on the filter are set
// from the actor; explicit filters pass through.
func (s *Service) ListKudos(ctx context.Context, actor directory.Actor, f KudosFilter) ([]*Kudos, int, error) {
	f.ViewerID = actor.ID
	f.ViewerStaff = actor.Staff()
	return s.store.ListKudos(ctx, f)
}

// UpdateKudosInput carries the mutable kudos fields.
type UpdateKudosInput struct {
	Message *string
	Public  *bool
	TagIDs  *[]string
}

// UpdateKudos edits message, visibility or tags. Only the original sender or
// an admin may edit.
func (s *Service) UpdateKudos(ctx context.Context, actor directory.Actor, id string, in UpdateKudosInput) (*Kudos, error) {
	k, err := s.store.FindKudos(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != k.SenderID && !actor.Admin() {
		return nil, ErrUnauthorized
	}
	if in.Message != nil {
		msg := strings.TrimSpace(*in.Message)
		if msg == "" || len(msg) > maxMessageLen {
			return nil, ErrMessageLength
		}
		k.Message = msg
	}
	if in.Public != nil {
		k.Public = *in.Public
	}
	if in.TagIDs != nil {
		if len(*in.TagIDs) > 0 {
			if _, err := s.store.FindTags(ctx, *in.TagIDs); err != nil {
				return nil, err
			}
		}
		k.TagIDs = *in.TagIDs
	}
	if err := s.store.UpdateKudos(ctx, k); err != nil {
		return nil, err
	}
	return k, nil
}

// DeleteKudos removes a kudos. Only the original sender or an admin may
// delete. Deleting an APPROVED kudos reverses both counters; comments
// cascade in the store.
func (s *Service) DeleteKudos(ctx context.Context, actor directory.Actor, id string) error {
	k, err := s.store.FindKudos(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != k.SenderID && !actor.Admin() {
		return ErrUnauthorized
	}
	if err := s.store.DeleteKudos(ctx, id); err != nil {
		return err
	}
	if k.Status == StatusApproved {
		if err := s.users.AdjustKudosCounters(ctx, k.SenderID, k.RecipientID, -1); err != nil {
			log.WithError(err).WithField("kudos_id", id).Error("kudos counters not reversed")
		}
	}
	return nil
}

// ApproveKudos transitions a PENDING kudos to APPROVED, increments both
// counters and notifies the recipient. Staff only; APPROVED and REJECTED
// are terminal.
func (s *Service) ApproveKudos(ctx context.Context, actor directory.Actor, id, reason string) (*Kudos, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	k, err := s.store.FindKudos(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.Status != StatusPending {
		return nil, ErrNotPending
	}
	k.Status = StatusApproved
	k.StatusReason = strings.TrimSpace(reason)
	if err := s.store.UpdateKudos(ctx, k); err != nil {
		return nil, err
	}
	obs.KudosReviewed("approved")
	if err := s.users.AdjustKudosCounters(ctx, k.SenderID, k.RecipientID, 1); err != nil {
		log.WithError(err).WithField("kudos_id", id).Error("kudos counters not incremented")
	}
	s.feed.Notify(ctx, &feed.Notification{
		UserID:   k.RecipientID,
		Type:     feed.TypeKudosApproved,
		Severity: feed.SeveritySuccess,
		Title:    "Kudos Approved!",
		Message:  "Your kudos has been approved and is now visible.",
	})
	s.feed.Record(ctx, &feed.Activity{
		ActorID:  actor.ID,
		TargetID: k.RecipientID,
		KudosID:  k.ID,
		Action:   "kudos.approved",
		Message:  "kudos approved",
	})
	return k, nil
}

// RejectKudos transitions a PENDING kudos to REJECTED and notifies the
// sender. No counters change. Staff only.
func (s *Service) RejectKudos(ctx context.Context, actor directory.Actor, id, reason string) (*Kudos, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	k, err := s.store.FindKudos(ctx, id)
	if err != nil {
		return nil, err
	}
	if k.Status != StatusPending {
		return nil, ErrNotPending
	}
	k.Status = StatusRejected
	k.StatusReason = strings.TrimSpace(reason)
	if err := s.store.UpdateKudos(ctx, k); err != nil {
		return nil, err
	}
	obs.KudosReviewed("rejected")
	s.feed.Notify(ctx, &feed.Notification{
		UserID:   k.SenderID,
		Type:     feed.TypeKudosRejected,
		Severity: feed.SeverityWarning,
		Title:    "Kudos rejected",
		Message:  "Your kudos was rejected by a manager.",
	})
	s.feed.Record(ctx, &feed.Activity{
		ActorID:  actor.ID,
		TargetID: k.SenderID,
		KudosID:  k.ID,
		Action:   "kudos.rejected",
		Message:  "kudos rejected",
	})
	return k, nil
}

// Tags returns the static tag catalog.
func (s *Service) Tags(ctx context.Context) ([]Tag, error) {
	return s.store.ListTags(ctx)
}
