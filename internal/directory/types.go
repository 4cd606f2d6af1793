// Package directory owns the user and team domain: registration, profiles,
// role assignment, team membership and the cumulative kudos counters.
package directory

import "time"

// Role is the global role of a user.
type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// Staff reports whether the role grants moderation rights.
func (r Role) Staff() bool { return r == RoleManager || r == RoleAdmin }

// Actor is the authenticated identity performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// Staff reports whether the actor may moderate other users' records.
func (a Actor) Staff() bool { return a.Role.Staff() }

// Admin reports whether the actor has full administrative rights.
func (a Actor) Admin() bool { return a.Role == RoleAdmin }

// User represents an employee account.
type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Department         string    `json:"department,omitempty"`
	PasswordHash       string    `json:"-"`
	Role               Role      `json:"role"`
	Active             bool      `json:"isActive"`
	TotalKudosSent     int       `json:"totalKudosSent"`
	TotalKudosReceived int       `json:"totalKudosReceived"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// TeamRole is the role a user carries inside a single team.
type TeamRole string

const (
	TeamRoleMember TeamRole = "MEMBER"
	TeamRoleLeader TeamRole = "LEADER"
	TeamRoleAdmin  TeamRole = "ADMIN"
)

func (r TeamRole) Valid() bool {
	switch r {
	case TeamRoleMember, TeamRoleLeader, TeamRoleAdmin:
		return true
	}
	return false
}

// Team groups users.
type Team struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TeamMember joins a user to a team. (UserID, TeamID) is unique.
type TeamMember struct {
	TeamID    string    `json:"teamId"`
	UserID    string    `json:"userId"`
	Role      TeamRole  `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}
