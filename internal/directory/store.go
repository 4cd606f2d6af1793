package directory

import "context"

// UserFilter narrows user listings.
type UserFilter struct {
	Department      string
	IncludeInactive bool
	Offset          int
	Limit           int
}

// UserStore manages user accounts.
type UserStore interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, f UserFilter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	SetActive(ctx context.Context, id string, active bool) error
	// AdjustKudosCounters changes the sender's sent counter and the
	// recipient's received counter by delta in a single operation.
	AdjustKudosCounters(ctx context.Context, senderID, recipientID string, delta int) error
	// TopReceivers returns active users ordered by received kudos.
	TopReceivers(ctx context.Context, limit int) ([]*User, error)
}

// TeamStore manages teams and memberships.
type TeamStore interface {
	Create(ctx context.Context, t *Team) error
	Find(ctx context.Context, id string) (*Team, error)
	List(ctx context.Context, offset, limit int) ([]*Team, int, error)
	Update(ctx context.Context, t *Team) error
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, m TeamMember) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	Members(ctx context.Context, teamID string) ([]TeamMember, error)
}
