// AngelaMos | 2026
// entity.go

package webhook

import (
	"time"
)

// Event is the write-once delivery log. The unique event_id is the
// dedupe key for redelivered webhooks; rows are never updated.
type Event struct {
	EventID    string    `db:"event_id"`
	Payload    []byte    `db:"payload"`
	ReceivedAt time.Time `db:"received_at"`
}

// Event types understood by the processor.
const (
	TypeSubscriptionPaid  = "subscription.paid"
	TypeTokenSalePurchase = "tokensale.purchase"
)

// Payload is the parsed webhook body. EventID comes from the payment
// counterparty and is globally unique per logical event.
type Payload struct {
	EventID      string  `json:"event_id"`
	Type         string  `json:"type"`
	SessionID    string  `json:"session_id"`
	Nonce        string  `json:"nonce,omitempty"`
	Wallet       string  `json:"wallet"`
	Tier         string  `json:"tier,omitempty"`
	Amount       int64   `json:"amount,omitempty"`
	Currency     string  `json:"currency,omitempty"`
	ReferralCode *string `json:"referral_code,omitempty"`
}
