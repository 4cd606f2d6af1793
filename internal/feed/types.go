// Package feed owns user notifications and the append-only activity feed.
package feed

import "time"

// Notification severities.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
)

// Notification types.
const (
	TypeKudosReceived = "KUDOS_RECEIVED"
	TypeKudosPending  = "KUDOS_PENDING"
	TypeKudosApproved = "KUDOS_APPROVED"
	TypeKudosRejected = "KUDOS_REJECTED"
	TypeComment       = "COMMENT"
	TypeFeedback      = "FEEDBACK"
	TypeVoucher       = "VOUCHER"
)

// Notification is owned by a single user.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	Type      string     `json:"type"`
	Severity  string     `json:"severity"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Read      bool       `json:"isRead"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

// Activity is a denormalized feed record used purely for chronological
// display.
type Activity struct {
	ID         string    `json:"id"`
	ActorID    string    `json:"actorId"`
	TargetID   string    `json:"targetId,omitempty"`
	KudosID    string    `json:"kudosId,omitempty"`
	FeedbackID string    `json:"feedbackId,omitempty"`
	Action     string    `json:"action"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
}
