// AngelaMos | 2026
// entity_test.go

package user

import (
	"strings"
	"testing"
)

func TestNormalizeWallet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0xABCdef", "0xabcdef"},
		{"  0xabc  ", "0xabc"},
		{"", ""},
		{"WALLET", "wallet"},
	}

	for _, tt := range tests {
		if got := NormalizeWallet(tt.in); got != tt.want {
			t.Errorf("NormalizeWallet(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestValidWallet(t *testing.T) {
	if ValidWallet("") {
		t.Error("empty wallet must be invalid")
	}
	if !ValidWallet("0xabc") {
		t.Error("short wallet must be valid")
	}
	if ValidWallet(strings.Repeat("a", 129)) {
		t.Error("overlong wallet must be invalid")
	}
	if !ValidWallet(strings.Repeat("a", 128)) {
		t.Error("wallet at the limit must be valid")
	}
}

func TestTierMultiplier(t *testing.T) {
	ordered := []string{TierFree, TierBronze, TierSilver, TierGold}
	for i := 1; i < len(ordered); i++ {
		lo := TierMultiplier(ordered[i-1])
		hi := TierMultiplier(ordered[i])
		if hi < lo {
			t.Errorf("multiplier for %s (%v) < %s (%v)", ordered[i], hi, ordered[i-1], lo)
		}
	}

	if got := TierMultiplier("platinum"); got != TierMultiplier(TierFree) {
		t.Errorf("unknown tier multiplier = %v, want free fallback", got)
	}
}

func TestValidTier(t *testing.T) {
	for _, tier := range []string{TierFree, TierBronze, TierSilver, TierGold} {
		if !ValidTier(tier) {
			t.Errorf("ValidTier(%q) = false, want true", tier)
		}
	}
	for _, tier := range []string{"", "platinum", "Gold"} {
		if ValidTier(tier) {
			t.Errorf("ValidTier(%q) = true, want false", tier)
		}
	}
}
