package recognition

import (
	"context"
	"fmt"
	"strings"

	"teampulse.org/internal/directory"
	"teampulse.org/internal/feed"
)

// CreateFeedbackInput carries the feedback creation payload.
type CreateFeedbackInput struct {
	RecipientID string
	Type        FeedbackType
	Message     string
	Public      bool
	Anonymous   bool
}

// CreateFeedback stores a feedback entry in the PENDING review state and
// notifies the recipient when one is named.
func (s *Service) CreateFeedback(ctx context.Context, actor directory.Actor, in CreateFeedbackInput) (*Feedback, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" || len(msg) > maxMessageLen {
		return nil, ErrMessageLength
	}
	if in.Type == "" {
		in.Type = FeedbackGeneral
	}
	if !in.Type.Valid() {
		return nil, ErrInvalidInput
	}
	recipientID := strings.TrimSpace(in.RecipientID)
	if recipientID != "" {
		if _, err := s.users.Find(ctx, recipientID); err != nil {
			return nil, err
		}
	}
	f := &Feedback{
		SenderID:    actor.ID,
		RecipientID: recipientID,
		Type:        in.Type,
		Message:     msg,
		Public:      in.Public,
		Anonymous:   in.Anonymous,
		Status:      FeedbackPending,
	}
	if err := s.store.CreateFeedback(ctx, f); err != nil {
		return nil, err
	}
	s.feed.Record(ctx, &feed.Activity{
		ActorID:    actor.ID,
		TargetID:   recipientID,
		FeedbackID: f.ID,
		Action:     "feedback.created",
		Message:    fmt.Sprintf("%s feedback submitted", strings.ToLower(string(f.Type))),
	})
	if recipientID != "" {
		s.feed.Notify(ctx, &feed.Notification{
			UserID:   recipientID,
			Type:     feed.TypeFeedback,
			Severity: feed.SeverityInfo,
			Title:    "New feedback",
			Message:  "You received new feedback.",
		})
	}
	return f, nil
}

// GetFeedback returns a feedback entry, enforcing visibility and masking the
// sender of anonymous entries for non-staff viewers.
func (s *Service) GetFeedback(ctx context.Context, actor directory.Actor, id string) (*Feedback, error) {
	f, err := s.store.FindFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	if !f.Public && !actor.Staff() && actor.ID != f.SenderID && actor.ID != f.RecipientID {
		return nil, ErrNotFound
	}
	maskAnonymous(f, actor)
	return f, nil
}

// ListFeedback returns a page of feedback with the visibility rule applied.
func (s *Service) ListFeedback(ctx context.Context, actor directory.Actor, filter FeedbackFilter) ([]*Feedback, int, error) {
	filter.ViewerID = actor.ID
	filter.ViewerStaff = actor.Staff()
	items, total, err := s.store.ListFeedback(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	for _, f := range items {
		maskAnonymous(f, actor)
	}
	return items, total, nil
}

func maskAnonymous(f *Feedback, actor directory.Actor) {
	if f.Anonymous && !actor.Staff() && actor.ID != f.SenderID {
		f.SenderID = ""
	}
}

// UpdateFeedbackInput carries the mutable feedback fields.
type UpdateFeedbackInput struct {
	Message *string
	Public  *bool
	Type    *FeedbackType
}

// UpdateFeedback edits a feedback entry. Sender or admin only.
func (s *Service) UpdateFeedback(ctx context.Context, actor directory.Actor, id string, in UpdateFeedbackInput) (*Feedback, error) {
	f, err := s.store.FindFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != f.SenderID && !actor.Admin() {
		return nil, ErrUnauthorized
	}
	if in.Message != nil {
		msg := strings.TrimSpace(*in.Message)
		if msg == "" || len(msg) > maxMessageLen {
			return nil, ErrMessageLength
		}
		f.Message = msg
	}
	if in.Public != nil {
		f.Public = *in.Public
	}
	if in.Type != nil {
		if !in.Type.Valid() {
			return nil, ErrInvalidInput
		}
		f.Type = *in.Type
	}
	if err := s.store.UpdateFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// DeleteFeedback removes a feedback entry and its comments. Sender or admin
// only.
func (s *Service) DeleteFeedback(ctx context.Context, actor directory.Actor, id string) error {
	f, err := s.store.FindFeedback(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != f.SenderID && !actor.Admin() {
		return ErrUnauthorized
	}
	return s.store.DeleteFeedback(ctx, id)
}

// ReviewFeedback moves a feedback entry to REVIEWED or FLAGGED. Staff only.
func (s *Service) ReviewFeedback(ctx context.Context, actor directory.Actor, id string, status FeedbackStatus, note string) (*Feedback, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	if status != FeedbackReviewed && status != FeedbackFlagged {
		return nil, ErrInvalidInput
	}
	f, err := s.store.FindFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	f.Status = status
	f.ReviewNote = strings.TrimSpace(note)
	if err := s.store.UpdateFeedback(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// Comments ------------------------------------------------------------------

// CreateCommentInput carries the comment creation payload. Exactly one of
// KudosID and FeedbackID must be set.
type CreateCommentInput struct {
	KudosID    string
	FeedbackID string
	Message    string
}

// CreateComment attaches a comment to a kudos or a feedback entry. On a
// private parent only its sender, its recipient or staff may comment. The
// parent's author is notified unless they wrote the comment themselves.
func (s *Service) CreateComment(ctx context.Context, actor directory.Actor, in CreateCommentInput) (*Comment, error) {
	kudosID := strings.TrimSpace(in.KudosID)
	feedbackID := strings.TrimSpace(in.FeedbackID)
	if (kudosID == "") == (feedbackID == "") {
		return nil, ErrCommentParent
	}
	msg := strings.TrimSpace(in.Message)
	if msg == "" || len(msg) > maxMessageLen {
		return nil, ErrMessageLength
	}

	var parentAuthor string
	if kudosID != "" {
		k, err := s.store.FindKudos(ctx, kudosID)
		if err != nil {
			return nil, err
		}
		if !k.Public && !actor.Staff() && actor.ID != k.SenderID && actor.ID != k.RecipientID {
			return nil, ErrUnauthorized
		}
		parentAuthor = k.SenderID
	} else {
		f, err := s.store.FindFeedback(ctx, feedbackID)
		if err != nil {
			return nil, err
		}
		if !f.Public && !actor.Staff() && actor.ID != f.SenderID && actor.ID != f.RecipientID {
			return nil, ErrUnauthorized
		}
		parentAuthor = f.SenderID
	}

	c := &Comment{
		AuthorID:   actor.ID,
		KudosID:    kudosID,
		FeedbackID: feedbackID,
		Message:    msg,
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, err
	}
	if parentAuthor != "" && parentAuthor != actor.ID {
		s.feed.Notify(ctx, &feed.Notification{
			UserID:   parentAuthor,
			Type:     feed.TypeComment,
			Severity: feed.SeverityInfo,
			Title:    "New comment",
			Message:  "Someone commented on your post.",
		})
	}
	return c, nil
}

// ListComments lists the comments under one parent, oldest first.
func (s *Service) ListComments(ctx context.Context, kudosID, feedbackID string, offset, limit int) ([]*Comment, int, error) {
	if (strings.TrimSpace(kudosID) == "") == (strings.TrimSpace(feedbackID) == "") {
		return nil, 0, ErrCommentParent
	}
	return s.store.ListComments(ctx, kudosID, feedbackID, offset, limit)
}

// UpdateComment edits a comment. Author or admin only.
func (s *Service) UpdateComment(ctx context.Context, actor directory.Actor, id, message string) (*Comment, error) {
	c, err := s.store.FindComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.ID != c.AuthorID && !actor.Admin() {
		return nil, ErrUnauthorized
	}
	msg := strings.TrimSpace(message)
	if msg == "" || len(msg) > maxMessageLen {
		return nil, ErrMessageLength
	}
	c.Message = msg
	if err := s.store.UpdateComment(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteComment removes a comment. Author or admin only.
func (s *Service) DeleteComment(ctx context.Context, actor directory.Actor, id string) error {
	c, err := s.store.FindComment(ctx, id)
	if err != nil {
		return err
	}
	if actor.ID != c.AuthorID && !actor.Admin() {
		return ErrUnauthorized
	}
	return s.store.DeleteComment(ctx, id)
}
