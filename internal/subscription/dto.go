// AngelaMos | 2026
// dto.go

package subscription

import (
	"time"
)

type CheckoutRequest struct {
	Wallet string `json:"wallet" validate:"required,max=128"`
	Tier   string `json:"tier"   validate:"required,oneof=bronze silver gold"`
}

type CheckoutResponse struct {
	SessionID string `json:"session_id"`
	Wallet    string `json:"wallet"`
	Tier      string `json:"tier"`
	Status    string `json:"status"`
	// Nonce must be echoed back by the payment counterparty in the
	// confirming webhook.
	Nonce string `json:"nonce"`
}

type SubscriptionResponse struct {
	SessionID   string     `json:"session_id"`
	Wallet      string     `json:"wallet"`
	Tier        string     `json:"tier"`
	Status      string     `json:"status"`
	RenewalDate *time.Time `json:"renewal_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToSubscriptionResponse(s *Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		SessionID:   s.SessionID,
		Wallet:      s.Wallet,
		Tier:        s.Tier,
		Status:      s.Status,
		RenewalDate: s.RenewalDate,
		CreatedAt:   s.CreatedAt,
	}
}
