// Package budget manages per-user spending allowances for monetary kudos.
// Amounts are integer cents. The monthly allotment resets lazily: whenever a
// budget is read or spent and its reset date's calendar month is at least one
// month behind now, used spending is zeroed first.
package budget

import "time"

// Budget is the per-user allowance. One row per user.
type Budget struct {
	UserID    string    `json:"userId"`
	Total     int64     `json:"totalBudget"`
	Used      int64     `json:"usedBudget"`
	Monthly   int64     `json:"monthlyBudget"`
	ResetDate time.Time `json:"resetDate"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Available returns the remaining lifetime allowance.
func (b Budget) Available() int64 { return b.Total - b.Used }

// AvailableMonthly returns the remaining allowance for the current month.
func (b Budget) AvailableMonthly() int64 { return b.Monthly - b.Used }

// ApplyMonthlyReset zeroes used spending when the reset date's calendar month
// is at least one month behind now. Returns true when the budget changed.
// Repeated application within the same month is a no-op.
func ApplyMonthlyReset(b *Budget, now time.Time) bool {
	if monthIndex(now) <= monthIndex(b.ResetDate) {
		return false
	}
	b.Used = 0
	b.ResetDate = now
	return true
}

func monthIndex(t time.Time) int {
	t = t.UTC()
	return t.Year()*12 + int(t.Month()) - 1
}
