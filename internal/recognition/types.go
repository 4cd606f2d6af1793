// Package recognition owns kudos, feedback and comments: the peer
// recognition workflow including budget deduction and approval gating.
package recognition

import "time"

// KudosStatus is the approval state of a kudos.
type KudosStatus string

const (
	StatusPending  KudosStatus = "PENDING"
	StatusApproved KudosStatus = "APPROVED"
	StatusRejected KudosStatus = "REJECTED"
)

// Kudos is a directed recognition message, optionally carrying monetary
// value drawn from the sender's budget.
type Kudos struct {
	ID           string      `json:"id"`
	SenderID     string      `json:"fromUserId"`
	RecipientID  string      `json:"toUserId"`
	Message      string      `json:"message"`
	Amount       int64       `json:"monetaryAmount"`
	Currency     string      `json:"currency"`
	TagIDs       []string    `json:"tagIds,omitempty"`
	Public       bool        `json:"isPublic"`
	Status       KudosStatus `json:"status"`
	StatusReason string      `json:"statusReason,omitempty"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
}

// Tag is a static catalog entry attachable to kudos.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

// FeedbackType classifies feedback.
type FeedbackType string

const (
	FeedbackPositive     FeedbackType = "POSITIVE"
	FeedbackConstructive FeedbackType = "CONSTRUCTIVE"
	FeedbackGeneral      FeedbackType = "GENERAL"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackPositive, FeedbackConstructive, FeedbackGeneral:
		return true
	}
	return false
}

// FeedbackStatus is the moderation state of a feedback entry.
type FeedbackStatus string

const (
	FeedbackPending  FeedbackStatus = "PENDING"
	FeedbackReviewed FeedbackStatus = "REVIEWED"
	FeedbackFlagged  FeedbackStatus = "FLAGGED"
)

func (s FeedbackStatus) Valid() bool {
	switch s {
	case FeedbackPending, FeedbackReviewed, FeedbackFlagged:
		return true
	}
	return false
}

// Feedback is a directed message with an optional recipient.
type Feedback struct {
	ID          string         `json:"id"`
	SenderID    string         `json:"fromUserId,omitempty"`
	RecipientID string         `json:"toUserId,omitempty"`
	Type        FeedbackType   `json:"type"`
	Message     string         `json:"message"`
	Public      bool           `json:"isPublic"`
	Anonymous   bool           `json:"isAnonymous"`
	Status      FeedbackStatus `json:"status"`
	ReviewNote  string         `json:"reviewNote,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// Comment attaches to exactly one of a kudos or a feedback entry.
type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	KudosID    string    `json:"kudosId,omitempty"`
	FeedbackID string    `json:"feedbackId,omitempty"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// KudosFilter narrows kudos listings. Viewer fields drive the visibility
// rule: non-staff viewers only see public records plus their own.
type KudosFilter struct {
	SenderID    string
	RecipientID string
	Status      KudosStatus
	Public      *bool
	ViewerID    string
	ViewerStaff bool
	Offset      int
	Limit       int
}

// FeedbackFilter narrows feedback listings.
type FeedbackFilter struct {
	SenderID    string
	RecipientID string
	Type        FeedbackType
	Status      FeedbackStatus
	ViewerID    string
	ViewerStaff bool
	Offset      int
	Limit       int
}
