package directory

import (
	"context"
	"strings"

	log "github.com/sirupsen/logrus"

	"teampulse.org/internal/auth"
)

// Service provides user and team operations on top of the stores.
type Service struct {
	users UserStore
	teams TeamStore
}

// NewService constructs the directory service.
func NewService(users UserStore, teams TeamStore) *Service {
	return &Service{users: users, teams: teams}
}

// Users exposes the underlying user store to sibling services.
func (s *Service) Users() UserStore { return s.users }

// RegisterInput carries the registration payload.
type RegisterInput struct {
	Email      string
	Name       string
	Password   string
	Department string
}

// Register creates a new active user with the default USER role.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	name := strings.TrimSpace(in.Name)
	if email == "" || !strings.Contains(email, "@") {
		return nil, ErrInvalidInput
	}
	if name == "" {
		return nil, ErrInvalidInput
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, ErrInvalidInput
	}
	u := &User{
		Email:        email,
		Name:         name,
		Department:   strings.TrimSpace(in.Department),
		PasswordHash: hash,
		Role:         RoleUser,
		Active:       true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": u.ID, "email": u.Email}).Info("user registered")
	return u, nil
}

// Authenticate verifies credentials and returns the matching active user.
// Any failure collapses to ErrUnauthorized so callers cannot probe accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, ErrUnauthorized
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !u.Active {
		return nil, ErrUnauthorized
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return nil, ErrUnauthorized
	}
	return u, nil
}

// Get returns a user by id.
func (s *Service) Get(ctx context.Context, id string) (*User, error) {
	return s.users.Find(ctx, id)
}

// List returns a page of users. Inactive accounts are visible to staff only.
func (s *Service) List(ctx context.Context, actor Actor, f UserFilter) ([]*User, int, error) {
	if !actor.Staff() {
		f.IncludeInactive = false
	}
	return s.users.List(ctx, f)
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	Name       *string
	Department *string
	Role       *Role
	Active     *bool
}

// Update applies a profile update. Users can edit their own name and
// department; role and active flag changes require an admin.
func (s *Service) Update(ctx context.Context, actor Actor, userID string, upd ProfileUpdate) (*User, error) {
	if actor.ID != userID && !actor.Admin() {
		return nil, ErrUnauthorized
	}
	if (upd.Role != nil || upd.Active != nil) && !actor.Admin() {
		return nil, ErrUnauthorized
	}
	u, err := s.users.Find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, ErrInvalidInput
		}
		u.Name = name
	}
	if upd.Department != nil {
		u.Department = strings.TrimSpace(*upd.Department)
	}
	if upd.Role != nil {
		if !upd.Role.Valid() {
			return nil, ErrInvalidInput
		}
		u.Role = *upd.Role
	}
	if upd.Active != nil {
		u.Active = *upd.Active
	}
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current password and stores a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.users.Find(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.PasswordHash, current); err != nil {
		return ErrUnauthorized
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return ErrInvalidInput
	}
	u.PasswordHash = hash
	return s.users.Update(ctx, u)
}

// Deactivate soft-deletes a user. Admin only; accounts are never hard-deleted
// while referenced by kudos or feedback.
func (s *Service) Deactivate(ctx context.Context, actor Actor, userID string) error {
	if !actor.Admin() {
		return ErrUnauthorized
	}
	return s.users.SetActive(ctx, userID, false)
}

// Leaderboard returns the top kudos receivers.
func (s *Service) Leaderboard(ctx context.Context, limit int) ([]*User, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	return s.users.TopReceivers(ctx, limit)
}

// Team operations ----------------------------------------------------------

// CreateTeam creates a team. Staff only; the creator becomes its LEADER.
func (s *Service) CreateTeam(ctx context.Context, actor Actor, name, description string) (*Team, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidInput
	}
	t := &Team{Name: name, Description: strings.TrimSpace(description)}
	if err := s.teams.Create(ctx, t); err != nil {
		return nil, err
	}
	if err := s.teams.AddMember(ctx, TeamMember{TeamID: t.ID, UserID: actor.ID, Role: TeamRoleLeader}); err != nil {
		log.WithError(err).WithField("team_id", t.ID).Warn("creator membership not recorded")
	}
	return t, nil
}

// GetTeam returns a team by id.
func (s *Service) GetTeam(ctx context.Context, id string) (*Team, error) {
	return s.teams.Find(ctx, id)
}

// ListTeams returns a page of teams with the total count.
func (s *Service) ListTeams(ctx context.Context, offset, limit int) ([]*Team, int, error) {
	return s.teams.List(ctx, offset, limit)
}

// UpdateTeam renames a team. Staff only.
func (s *Service) UpdateTeam(ctx context.Context, actor Actor, id, name, description string) (*Team, error) {
	if !actor.Staff() {
		return nil, ErrUnauthorized
	}
	t, err := s.teams.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if name = strings.TrimSpace(name); name != "" {
		t.Name = name
	}
	if description = strings.TrimSpace(description); description != "" {
		t.Description = description
	}
	if err := s.teams.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// DeleteTeam removes a team and its memberships. Admin only.
func (s *Service) DeleteTeam(ctx context.Context, actor Actor, id string) error {
	if !actor.Admin() {
		return ErrUnauthorized
	}
	return s.teams.Delete(ctx, id)
}

// AddTeamMember adds a user to a team. Staff only.
func (s *Service) AddTeamMember(ctx context.Context, actor Actor, teamID, userID string, role TeamRole) error {
	if !actor.Staff() {
		return ErrUnauthorized
	}
	if role == "" {
		role = TeamRoleMember
	}
	if !role.Valid() {
		return ErrInvalidInput
	}
	if _, err := s.users.Find(ctx, userID); err != nil {
		return err
	}
	return s.teams.AddMember(ctx, TeamMember{TeamID: teamID, UserID: userID, Role: role})
}

// RemoveTeamMember removes a user from a team. Staff only.
func (s *Service) RemoveTeamMember(ctx context.Context, actor Actor, teamID, userID string) error {
	if !actor.Staff() {
		return ErrUnauthorized
	}
	return s.teams.RemoveMember(ctx, teamID, userID)
}

// TeamMembers lists the memberships of a team.
func (s *Service) TeamMembers(ctx context.Context, teamID string) ([]TeamMember, error) {
	return s.teams.Members(ctx, teamID)
}
