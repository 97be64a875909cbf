// AngelaMos | 2026
// table_test.go

package progression

import (
	"reflect"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name    string
		totalXP int
		want    Info
	}{
		{
			name:    "below first threshold is unranked",
			totalXP: 40,
			want: Info{
				Name:        "Unranked",
				Symbol:      "—",
				TierIndex:   0,
				XPIntoLevel: 40,
				XPForNext:   100,
				Progress:    0.4,
			},
		},
		{
			name:    "zero xp",
			totalXP: 0,
			want: Info{
				Name:        "Unranked",
				Symbol:      "—",
				TierIndex:   0,
				XPIntoLevel: 0,
				XPForNext:   100,
				Progress:    0,
			},
		},
		{
			name:    "negative xp clamps to zero",
			totalXP: -50,
			want: Info{
				Name:        "Unranked",
				Symbol:      "—",
				TierIndex:   0,
				XPIntoLevel: 0,
				XPForNext:   100,
				Progress:    0,
			},
		},
		{
			name:    "exactly on threshold belongs to higher level",
			totalXP: 100,
			want: Info{
				Name:        "Initiate",
				Symbol:      "I",
				TierIndex:   1,
				XPIntoLevel: 0,
				XPForNext:   400,
				Progress:    0,
			},
		},
		{
			name:    "mid level",
			totalXP: 300,
			want: Info{
				Name:        "Initiate",
				Symbol:      "I",
				TierIndex:   1,
				XPIntoLevel: 200,
				XPForNext:   400,
				Progress:    0.5,
			},
		},
		{
			name:    "top level pins progress to one against the cap",
			totalXP: 30000,
			want: Info{
				Name:        "Grandmaster",
				Symbol:      "VI",
				TierIndex:   6,
				XPIntoLevel: 5000,
				XPForNext:   25000,
				Progress:    1,
			},
		},
		{
			name:    "beyond the cap stays pinned",
			totalXP: 999999,
			want: Info{
				Name:        "Grandmaster",
				Symbol:      "VI",
				TierIndex:   6,
				XPIntoLevel: 974999,
				XPForNext:   25000,
				Progress:    1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.totalXP)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Derive(%d) = %+v, want %+v", tt.totalXP, got, tt.want)
			}
		})
	}
}

func TestDeriveDeterministic(t *testing.T) {
	for _, xp := range []int{0, 99, 100, 4321, 25000, 70000} {
		first := Derive(xp)
		for i := 0; i < 10; i++ {
			if got := Derive(xp); !reflect.DeepEqual(got, first) {
				t.Fatalf("Derive(%d) not deterministic: %+v vs %+v", xp, got, first)
			}
		}
	}
}

func TestDeriveTierIndexMonotonic(t *testing.T) {
	prev := -1
	for xp := 0; xp <= 60000; xp += 7 {
		info := Derive(xp)
		if info.TierIndex < prev {
			t.Fatalf("tier index decreased at xp=%d: %d < %d", xp, info.TierIndex, prev)
		}
		prev = info.TierIndex
	}
}

func TestDeriveProgressBounded(t *testing.T) {
	for xp := 0; xp <= 60000; xp += 13 {
		info := Derive(xp)
		if info.Progress < 0 || info.Progress > 1 {
			t.Fatalf("progress out of range at xp=%d: %f", xp, info.Progress)
		}
	}
}
