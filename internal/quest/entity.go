// AngelaMos | 2026
// entity.go

// Package quest implements the idempotent quest award ledger. A
// completion row per (wallet, quest) is the sole source of truth for
// "already claimed"; the unique constraint on that pair is the
// serialization point for concurrent claims.
package quest

import (
	"time"
)

type Quest struct {
	ID              int64     `db:"id"`
	Code            string    `db:"code"`
	Title           string    `db:"title"`
	XPReward        int       `db:"xp_reward"`
	Active          bool      `db:"active"`
	VerificationTag *string   `db:"verification_tag"`
	CreatedAt       time.Time `db:"created_at"`
}

// Completion rows are written exactly once and never updated or
// deleted.
type Completion struct {
	Wallet      string    `db:"wallet"`
	QuestID     int64     `db:"quest_id"`
	CompletedAt time.Time `db:"completed_at"`
}
