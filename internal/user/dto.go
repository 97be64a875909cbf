// AngelaMos | 2026
// dto.go

package user

import (
	"strings"
	"time"

	"github.com/angelamos/questledger/internal/progression"
)

type ProfileResponse struct {
	Wallet       string           `json:"wallet"`
	TotalXP      int              `json:"total_xp"`
	Tier         string           `json:"tier"`
	Multiplier   float64          `json:"multiplier"`
	ReferralCode string           `json:"referral_code"`
	ReferredBy   *string          `json:"referred_by,omitempty"`
	Level        progression.Info `json:"level"`
	CreatedAt    time.Time        `json:"created_at"`
}

type LevelResponse struct {
	Wallet  string           `json:"wallet"`
	TotalXP int              `json:"total_xp"`
	Level   progression.Info `json:"level"`
}

func ToProfileResponse(u *User) ProfileResponse {
	return ProfileResponse{
		Wallet:       u.Wallet,
		TotalXP:      u.TotalXP,
		Tier:         u.Tier,
		Multiplier:   TierMultiplier(u.Tier),
		ReferralCode: u.ReferralCode,
		ReferredBy:   u.ReferredBy,
		Level:        progression.Derive(u.TotalXP),
		CreatedAt:    u.CreatedAt,
	}
}

type LevelThreshold struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	MinXP  int    `json:"min_xp"`
}

func ToLevelThresholds(levels []progression.Level) []LevelThreshold {
	thresholds := make([]LevelThreshold, 0, len(levels))
	for _, l := range levels {
		thresholds = append(thresholds, LevelThreshold{
			Name:   l.Name,
			Symbol: l.Symbol,
			MinXP:  l.MinXP,
		})
	}
	return thresholds
}

// NormalizeWallet canonicalizes a wallet address for use as an
// identity key.
func NormalizeWallet(wallet string) string {
	return strings.ToLower(strings.TrimSpace(wallet))
}

const maxWalletLen = 128

// ValidWallet rejects empty or absurdly long identifiers. Address
// checksum rules belong to the chain layer, not the ledger.
func ValidWallet(wallet string) bool {
	return wallet != "" && len(wallet) <= maxWalletLen
}
