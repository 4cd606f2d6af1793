package recognition

import (
	"context"
	"sort"
	"sync"
	"time"

	"teampulse.org/internal/ids"
)

// DefaultTags seeds the in-memory tag catalog. The Postgres schema seeds the
// same set.
var DefaultTags = []Tag{
	{ID: "tag-teamwork", Name: "Teamwork", Emoji: "🤝", Color: "#4C9AFF"},
	{ID: "tag-innovation", Name: "Innovation", Emoji: "💡", Color: "#FFAB00"},
	{ID: "tag-leadership", Name: "Leadership", Emoji: "🧭", Color: "#6554C0"},
	{ID: "tag-excellence", Name: "Excellence", Emoji: "🏆", Color: "#36B37E"},
	{ID: "tag-helpfulness", Name: "Helpfulness", Emoji: "🙌", Color: "#00B8D9"},
	{ID: "tag-creativity", Name: "Creativity", Emoji: "🎨", Color: "#FF5630"},
}

// InMemory implements Store with in-process concurrency safety.
type InMemory struct {
	mu       sync.RWMutex
	kudos    map[string]*Kudos
	feedback map[string]*Feedback
	comments map[string]*Comment
	tags     []Tag
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates a store seeded with the default tag catalog.
func NewInMemory() *InMemory {
	tags := make([]Tag, len(DefaultTags))
	copy(tags, DefaultTags)
	return &InMemory{
		kudos:    make(map[string]*Kudos),
		feedback: make(map[string]*Feedback),
		comments: make(map[string]*Comment),
		tags:     tags,
	}
}

// Kudos ---------------------------------------------------------------------

func (s *InMemory) CreateKudos(ctx context.Context, k *Kudos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k.ID == "" {
		k.ID = ids.New()
	}
	now := time.Now().UTC()
	k.CreatedAt = now
	k.UpdatedAt = now
	cp := *k
	cp.TagIDs = append([]string(nil), k.TagIDs...)
	s.kudos[k.ID] = &cp
	return nil
}

func (s *InMemory) FindKudos(ctx context.Context, id string) (*Kudos, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	k, ok := s.kudos[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *k
	cp.TagIDs = append([]string(nil), k.TagIDs...)
	return &cp, nil
}

func (s *InMemory) ListKudos(ctx context.Context, f KudosFilter) ([]*Kudos, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Kudos
	for _, k := range s.kudos {
		if !kudosVisible(k, f) {
			continue
		}
		cp := *k
		cp.TagIDs = append([]string(nil), k.TagIDs...)
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
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

func kudosVisible(k *Kudos, f KudosFilter) bool {
	if f.SenderID != "" && k.SenderID != f.SenderID {
		return false
	}
	if f.RecipientID != "" && k.RecipientID != f.RecipientID {
		return false
	}
	if f.Status != "" && k.Status != f.Status {
		return false
	}
	if f.Public != nil && k.Public != *f.Public {
		return false
	}
	if f.ViewerStaff {
		return true
	}
	return k.Public || k.SenderID == f.ViewerID || k.RecipientID == f.ViewerID
}

func (s *InMemory) UpdateKudos(ctx context.Context, k *Kudos) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.kudos[k.ID]
	if !ok {
		return ErrNotFound
	}
	k.CreatedAt = existing.CreatedAt
	k.UpdatedAt = time.Now().UTC()
	cp := *k
	cp.TagIDs = append([]string(nil), k.TagIDs...)
	s.kudos[k.ID] = &cp
	return nil
}

func (s *InMemory) DeleteKudos(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.kudos[id]; !ok {
		return ErrNotFound
	}
	delete(s.kudos, id)
	for cid, c := range s.comments {
		if c.KudosID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

// Tags ----------------------------------------------------------------------

func (s *InMemory) ListTags(ctx context.Context) ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Tag, len(s.tags))
	copy(out, s.tags)
	return out, nil
}

func (s *InMemory) FindTags(ctx context.Context, tagIDs []string) ([]Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byID := make(map[string]Tag, len(s.tags))
	for _, t := range s.tags {
		byID[t.ID] = t
	}
	out := make([]Tag, 0, len(tagIDs))
	for _, id := range tagIDs {
		t, ok := byID[id]
		if !ok {
			return nil, ErrUnknownTag
		}
		out = append(out, t)
	}
	return out, nil
}

// Feedback ------------------------------------------------------------------

func (s *InMemory) CreateFeedback(ctx context.Context, f *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f.ID == "" {
		f.ID = ids.New()
	}
	now := time.Now().UTC()
	f.CreatedAt = now
	f.UpdatedAt = now
	cp := *f
	s.feedback[f.ID] = &cp
	return nil
}

func (s *InMemory) FindFeedback(ctx context.Context, id string) (*Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.feedback[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (s *InMemory) ListFeedback(ctx context.Context, filter FeedbackFilter) ([]*Feedback, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Feedback
	for _, f := range s.feedback {
		if !feedbackVisible(f, filter) {
			continue
		}
		cp := *f
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := len(all)
	if filter.Offset >= len(all) {
		return nil, total, nil
	}
	all = all[filter.Offset:]
	if filter.Limit > 0 && len(all) > filter.Limit {
		all = all[:filter.Limit]
	}
	return all, total, nil
}

func feedbackVisible(f *Feedback, filter FeedbackFilter) bool {
	if filter.SenderID != "" && f.SenderID != filter.SenderID {
		return false
	}
	if filter.RecipientID != "" && f.RecipientID != filter.RecipientID {
		return false
	}
	if filter.Type != "" && f.Type != filter.Type {
		return false
	}
	if filter.Status != "" && f.Status != filter.Status {
		return false
	}
	if filter.ViewerStaff {
		return true
	}
	return f.Public || f.SenderID == filter.ViewerID || f.RecipientID == filter.ViewerID
}

func (s *InMemory) UpdateFeedback(ctx context.Context, f *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.feedback[f.ID]
	if !ok {
		return ErrNotFound
	}
	f.CreatedAt = existing.CreatedAt
	f.UpdatedAt = time.Now().UTC()
	cp := *f
	s.feedback[f.ID] = &cp
	return nil
}

func (s *InMemory) DeleteFeedback(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedback[id]; !ok {
		return ErrNotFound
	}
	delete(s.feedback, id)
	for cid, c := range s.comments {
		if c.FeedbackID == id {
			delete(s.comments, cid)
		}
	}
	return nil
}

// Comments ------------------------------------------------------------------

func (s *InMemory) CreateComment(ctx context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == "" {
		c.ID = ids.New()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *InMemory) FindComment(ctx context.Context, id string) (*Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.comments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *InMemory) ListComments(ctx context.Context, kudosID, feedbackID string, offset, limit int) ([]*Comment, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Comment
	for _, c := range s.comments {
		if kudosID != "" && c.KudosID != kudosID {
			continue
		}
		if feedbackID != "" && c.FeedbackID != feedbackID {
			continue
		}
		cp := *c
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
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

func (s *InMemory) UpdateComment(ctx context.Context, c *Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.comments[c.ID]
	if !ok {
		return ErrNotFound
	}
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now().UTC()
	cp := *c
	s.comments[c.ID] = &cp
	return nil
}

func (s *InMemory) DeleteComment(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.comments[id]; !ok {
		return ErrNotFound
	}
	delete(s.comments, id)
	return nil
}
