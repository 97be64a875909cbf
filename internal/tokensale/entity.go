// AngelaMos | 2026
// entity.go

// Package tokensale records token-sale contributions. A row is keyed by
// the checkout session id so an initiating purchase call and the
// confirming webhook converge on the same row regardless of arrival
// order.
package tokensale

import (
	"time"
)

const (
	StatusInitiated = "initiated"
	StatusConfirmed = "confirmed"
)

type Contribution struct {
	SessionID    string    `db:"session_id"`
	Wallet       string    `db:"wallet"`
	Amount       int64     `db:"amount"`
	Currency     string    `db:"currency"`
	Status       string    `db:"status"`
	ReferralCode *string   `db:"referral_code"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}
