// AngelaMos | 2026
// table.go

// Package progression derives a named level from a total XP value.
// The table is fixed and the derivation is pure: identical input always
// yields identical output.
package progression

type Level struct {
	Name   string
	Symbol string
	MinXP  int
}

// Thresholds are inclusive lower bounds, strictly increasing.
var levels = []Level{
	{Name: "Initiate", Symbol: "I", MinXP: 100},
	{Name: "Apprentice", Symbol: "II", MinXP: 500},
	{Name: "Adept", Symbol: "III", MinXP: 1500},
	{Name: "Expert", Symbol: "IV", MinXP: 4000},
	{Name: "Master", Symbol: "V", MinXP: 10000},
	{Name: "Grandmaster", Symbol: "VI", MinXP: 25000},
}

// MaxXPCap is the display ceiling used as the "next requirement" once
// the final level is reached.
const MaxXPCap = 50000

const (
	unrankedName   = "Unranked"
	unrankedSymbol = "—"
)

type Info struct {
	Name        string  `json:"name"`
	Symbol      string  `json:"symbol"`
	TierIndex   int     `json:"tier_index"`
	XPIntoLevel int     `json:"xp_into_level"`
	XPForNext   int     `json:"xp_for_next"`
	Progress    float64 `json:"progress"`
}

// Derive maps a total XP value to its level descriptor. Negative input
// is clamped to zero; it never fails.
func Derive(totalXP int) Info {
	if totalXP < 0 {
		totalXP = 0
	}

	idx := -1
	for i := len(levels) - 1; i >= 0; i-- {
		if totalXP >= levels[i].MinXP {
			idx = i
			break
		}
	}

	if idx < 0 {
		first := levels[0]
		return Info{
			Name:        unrankedName,
			Symbol:      unrankedSymbol,
			TierIndex:   0,
			XPIntoLevel: totalXP,
			XPForNext:   first.MinXP,
			Progress:    clamp(float64(totalXP) / float64(first.MinXP)),
		}
	}

	current := levels[idx]

	if idx == len(levels)-1 {
		return Info{
			Name:        current.Name,
			Symbol:      current.Symbol,
			TierIndex:   idx + 1,
			XPIntoLevel: totalXP - current.MinXP,
			XPForNext:   MaxXPCap - current.MinXP,
			Progress:    1,
		}
	}

	next := levels[idx+1]
	span := next.MinXP - current.MinXP

	return Info{
		Name:        current.Name,
		Symbol:      current.Symbol,
		TierIndex:   idx + 1,
		XPIntoLevel: totalXP - current.MinXP,
		XPForNext:   span,
		Progress:    clamp(float64(totalXP-current.MinXP) / float64(span)),
	}
}

// Levels returns a copy of the threshold table for catalog display.
func Levels() []Level {
	out := make([]Level, len(levels))
	copy(out, levels)
	return out
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
