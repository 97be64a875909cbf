// AngelaMos | 2026
// entity.go

// Package subscription tracks paid-tier checkouts. Status moves one way
// only: pending to active via a verified webhook, active to expired via
// the scheduled sweep.
package subscription

import (
	"time"
)

const (
	StatusPending = "pending"
	StatusActive  = "active"
	StatusExpired = "expired"
)

// CanTransition encodes the one-way state machine.
func CanTransition(from, to string) bool {
	switch {
	case from == StatusPending && to == StatusActive:
		return true
	case from == StatusActive && to == StatusExpired:
		return true
	}
	return false
}

type Subscription struct {
	SessionID   string     `db:"session_id"`
	Wallet      string     `db:"wallet"`
	Tier        string     `db:"tier"`
	Status      string     `db:"status"`
	Nonce       string     `db:"nonce"`
	RenewalDate *time.Time `db:"renewal_date"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
