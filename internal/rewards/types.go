// Package rewards owns reward vouchers issued to users and their redemption.
package rewards

import "time"

// Voucher is a redeemable reward granted to a user.
type Voucher struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Value       int64      `json:"value"`
	Currency    string     `json:"currency"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	Redeemed    bool       `json:"isRedeemed"`
	RedeemedAt  *time.Time `json:"redeemedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Expired reports whether the voucher is past its expiry at the given time.
func (v *Voucher) Expired(now time.Time) bool {
	return v.ExpiresAt != nil && now.After(*v.ExpiresAt)
}

// Filter narrows voucher listings.
type Filter struct {
	UserID   string
	Category string
	Redeemed *bool
	Offset   int
	Limit    int
}
