package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"teampulse.org/internal/ids"
)

// InMemoryUsers implements UserStore with in-process maps.
// Used by tests and when no database DSN is configured.
type InMemoryUsers struct {
	mu    sync.RWMutex
	users map[string]*User
}

var _ UserStore = (*InMemoryUsers)(nil)

// NewInMemoryUsers creates an empty user store.
func NewInMemoryUsers() *InMemoryUsers {
	return &InMemoryUsers{users: make(map[string]*User)}
}

func (s *InMemoryUsers) Create(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemoryUsers) Find(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *InMemoryUsers) List(ctx context.Context, f UserFilter) ([]*User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*User
	for _, u := range s.users {
		if !f.IncludeInactive && !u.Active {
			continue
		}
		if f.Department != "" && !strings.EqualFold(u.Department, f.Department) {
			continue
		}
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	total := len(all)
	return paginateUsers(all, f.Offset, f.Limit), total, nil
}

func (s *InMemoryUsers) Update(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	for _, other := range s.users {
		if other.ID != u.ID && other.Email == u.Email {
			return ErrEmailTaken
		}
	}
	u.CreatedAt = existing.CreatedAt
	u.UpdatedAt = time.Now().UTC()
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *InMemoryUsers) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Active = active
	u.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *InMemoryUsers) AdjustKudosCounters(ctx context.Context, senderID, recipientID string, delta int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sender, ok := s.users[senderID]
	if !ok {
		return ErrNotFound
	}
	recipient, ok := s.users[recipientID]
	if !ok {
		return ErrNotFound
	}
	sender.TotalKudosSent += delta
	recipient.TotalKudosReceived += delta
	now := time.Now().UTC()
	sender.UpdatedAt = now
	recipient.UpdatedAt = now
	return nil
}

func (s *InMemoryUsers) TopReceivers(ctx context.Context, limit int) ([]*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*User
	for _, u := range s.users {
		if !u.Active {
			continue
		}
		cp := *u
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TotalKudosReceived != all[j].TotalKudosReceived {
			return all[i].TotalKudosReceived > all[j].TotalKudosReceived
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func paginateUsers(items []*User, offset, limit int) []*User {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

// InMemoryTeams implements TeamStore with in-process maps.
type InMemoryTeams struct {
	mu      sync.RWMutex
	teams   map[string]*Team
	members map[string][]TeamMember // teamID -> members
}

var _ TeamStore = (*InMemoryTeams)(nil)

// NewInMemoryTeams creates an empty team store.
func NewInMemoryTeams() *InMemoryTeams {
	return &InMemoryTeams{
		teams:   make(map[string]*Team),
		members: make(map[string][]TeamMember),
	}
}

func (s *InMemoryTeams) Create(ctx context.Context, t *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = ids.New()
	}
	now := time.Now().UTC()
	t.CreatedAt = now
	t.UpdatedAt = now
	cp := *t
	s.teams[t.ID] = &cp
	return nil
}

func (s *InMemoryTeams) Find(ctx context.Context, id string) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.teams[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *InMemoryTeams) List(ctx context.Context, offset, limit int) ([]*Team, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var all []*Team
	for _, t := range s.teams {
		cp := *t
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
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

func (s *InMemoryTeams) Update(ctx context.Context, t *Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.teams[t.ID]
	if !ok {
		return ErrNotFound
	}
	t.CreatedAt = existing.CreatedAt
	t.UpdatedAt = time.Now().UTC()
	cp := *t
	s.teams[t.ID] = &cp
	return nil
}

func (s *InMemoryTeams) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[id]; !ok {
		return ErrNotFound
	}
	delete(s.teams, id)
	delete(s.members, id)
	return nil
}

func (s *InMemoryTeams) AddMember(ctx context.Context, m TeamMember) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.teams[m.TeamID]; !ok {
		return ErrNotFound
	}
	for _, existing := range s.members[m.TeamID] {
		if existing.UserID == m.UserID {
			return ErrAlreadyMember
		}
	}
	m.CreatedAt = time.Now().UTC()
	s.members[m.TeamID] = append(s.members[m.TeamID], m)
	return nil
}

func (s *InMemoryTeams) RemoveMember(ctx context.Context, teamID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.members[teamID]
	if !ok {
		return ErrNotFound
	}
	for i, m := range list {
		if m.UserID == userID {
			s.members[teamID] = append(list[:i], list[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *InMemoryTeams) Members(ctx context.Context, teamID string) ([]TeamMember, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.teams[teamID]; !ok {
		return nil, ErrNotFound
	}
	out := make([]TeamMember, len(s.members[teamID]))
	copy(out, s.members[teamID])
	return out, nil
}
