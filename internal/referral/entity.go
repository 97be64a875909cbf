// AngelaMos | 2026
// entity.go

// Package referral implements the one-time mutual bonus triggered by a
// referred user's first quest completion. The completed flag on the
// link row is the sole idempotency guard and is flipped in the same
// transaction as the credits.
package referral

import (
	"time"
)

// Link pairs a referrer with a referred wallet. A wallet appears at
// most once as referred; first write wins.
type Link struct {
	ReferrerWallet string     `db:"referrer_wallet"`
	ReferredWallet string     `db:"referred_wallet"`
	Completed      bool       `db:"completed"`
	CreatedAt      time.Time  `db:"created_at"`
	CompletedAt    *time.Time `db:"completed_at"`
}
