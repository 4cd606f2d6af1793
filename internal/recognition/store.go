package recognition

import "context"

// Store persists kudos, tags, feedback and comments. Deleting a kudos or a
// feedback entry cascades to its comments.
type Store interface {
	CreateKudos(ctx context.Context, k *Kudos) error
	FindKudos(ctx context.Context, id string) (*Kudos, error)
	ListKudos(ctx context.Context, f KudosFilter) ([]*Kudos, int, error)
	UpdateKudos(ctx context.Context, k *Kudos) error
	DeleteKudos(ctx context.Context, id string) error

	ListTags(ctx context.Context) ([]Tag, error)
	// FindTags resolves tag ids, failing with ErrUnknownTag when any id does
	// not exist in the catalog.
	FindTags(ctx context.Context, ids []string) ([]Tag, error)

	CreateFeedback(ctx context.Context, f *Feedback) error
	FindFeedback(ctx context.Context, id string) (*Feedback, error)
	ListFeedback(ctx context.Context, f FeedbackFilter) ([]*Feedback, int, error)
	UpdateFeedback(ctx context.Context, f *Feedback) error
	DeleteFeedback(ctx context.Context, id string) error

	CreateComment(ctx context.Context, c *Comment) error
	FindComment(ctx context.Context, id string) (*Comment, error)
	ListComments(ctx context.Context, kudosID, feedbackID string, offset, limit int) ([]*Comment, int, error)
	UpdateComment(ctx context.Context, c *Comment) error
	DeleteComment(ctx context.Context, id string) error
}
