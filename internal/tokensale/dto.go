// AngelaMos | 2026
// dto.go

package tokensale

import (
	"time"
)

type PurchaseRequest struct {
	Wallet       string  `json:"wallet"        validate:"required,max=128"`
	Amount       int64   `json:"amount"        validate:"required,gt=0"`
	Currency     string  `json:"currency"      validate:"required,len=3"`
	ReferralCode *string `json:"referral_code" validate:"omitempty,max=32"`
}

type ContributionResponse struct {
	SessionID    string    `json:"session_id"`
	Wallet       string    `json:"wallet"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	Status       string    `json:"status"`
	ReferralCode *string   `json:"referral_code,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func ToContributionResponse(c *Contribution) ContributionResponse {
	return ContributionResponse{
		SessionID:    c.SessionID,
		Wallet:       c.Wallet,
		Amount:       c.Amount,
		Currency:     c.Currency,
		Status:       c.Status,
		ReferralCode: c.ReferralCode,
		CreatedAt:    c.CreatedAt,
	}
}

func ToContributionResponseList(cs []Contribution) []ContributionResponse {
	responses := make([]ContributionResponse, 0, len(cs))
	for _, c := range cs {
		responses = append(responses, ToContributionResponse(&c))
	}
	return responses
}
