package directory

import "errors"

var (
	ErrNotFound      = errors.New("directory: not found")
	ErrEmailTaken    = errors.New("directory: email already registered")
	ErrAlreadyMember = errors.New("directory: user is already a team member")
	ErrInvalidInput  = errors.New("directory: invalid input")
	ErrUnauthorized  = errors.New("directory: unauthorized")
	ErrInactive      = errors.New("directory: account is inactive")
)
