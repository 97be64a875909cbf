// AngelaMos | 2026
// entity.go

package user

import (
	"time"
)

// User is keyed by wallet address. TotalXP only ever grows; the tier is
// driven by the subscription lifecycle and scales quest rewards.
type User struct {
	Wallet       string    `db:"wallet"`
	TotalXP      int       `db:"total_xp"`
	Tier         string    `db:"tier"`
	ReferralCode string    `db:"referral_code"`
	ReferredBy   *string   `db:"referred_by"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

const (
	TierFree   = "free"
	TierBronze = "bronze"
	TierSilver = "silver"
	TierGold   = "gold"
)

func ValidTier(tier string) bool {
	switch tier {
	case TierFree, TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

// tierMultipliers is a tunable policy table. The structural requirement
// is only that multipliers never decrease from free to gold.
var tierMultipliers = map[string]float64{
	TierFree:   1.0,
	TierBronze: 1.05,
	TierSilver: 1.10,
	TierGold:   1.25,
}

// TierMultiplier returns the XP multiplier for a tier. Unknown tiers
// fall back to the free multiplier.
func TierMultiplier(tier string) float64 {
	if m, ok := tierMultipliers[tier]; ok {
		return m
	}
	return tierMultipliers[TierFree]
}

func (u *User) IsReferred() bool {
	return u.ReferredBy != nil && *u.ReferredBy != ""
}
