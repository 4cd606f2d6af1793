package budget

import "errors"

var (
	ErrNotFound = errors.New("budget: not found")
	// ErrNoBudget is returned when a monetary kudos is attempted by a user
	// without an allocated budget.
	ErrNoBudget            = errors.New("budget: no budget allocated for user")
	ErrInvalidAmount       = errors.New("budget: amount must be positive")
	ErrInsufficientTotal   = errors.New("budget: amount exceeds available total budget")
	ErrInsufficientMonthly = errors.New("budget: amount exceeds available monthly budget")
	ErrUnauthorized        = errors.New("budget: unauthorized")
)
