package recognition

import "errors"

var (
	ErrNotFound      = errors.New("recognition: not found")
	ErrUnauthorized  = errors.New("recognition: unauthorized")
	ErrInvalidInput  = errors.New("recognition: invalid input")
	ErrUnknownTag    = errors.New("recognition: unknown tag")
	ErrMessageLength = errors.New("recognition: message must be 1-500 characters")
	// ErrNotPending guards the terminal kudos states: approve and reject
	// apply to PENDING records exactly once.
	ErrNotPending = errors.New("recognition: kudos is not pending")
	// ErrCommentParent is returned when a comment does not reference exactly
	// one of a kudos or a feedback entry.
	ErrCommentParent = errors.New("recognition: comment must reference exactly one of kudos or feedback")
)
