package feed

import "errors"

var (
	ErrNotFound = errors.New("feed: not found")
)
