// AngelaMos | 2026
// dto.go

package referral

type BindRequest struct {
	Wallet string `json:"wallet" validate:"required,max=128"`
	Code   string `json:"code"   validate:"required,min=1,max=32"`
}

type BindResult struct {
	Bound          bool   `json:"bound"`
	AlreadyBound   bool   `json:"already_bound"`
	ReferrerWallet string `json:"referrer_wallet,omitempty"`
}

type StatsResponse struct {
	Wallet        string `json:"wallet"`
	TotalReferred int    `json:"total_referred"`
	Completed     int    `json:"completed"`
	XPEarned      int    `json:"xp_earned"`
}
