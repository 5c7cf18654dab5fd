// Package compare holds the tie-aware key comparison used by every layer
// that ranks one team's keys against another's. Tie semantics live here and
// nowhere else.
package compare

import (
	"math"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// DefaultEpsilon is the float-equality tolerance for declaring a tie.
const DefaultEpsilon = 1e-9

// Key names in presentation order.
const (
	KeyTOP = "TOP"
	KeyTO  = "TO"
	KeyBIG = "BIG"
	Key3D  = "3D"
	KeyRZ  = "RZ"
)

// KeyOrder is the canonical ordering of the five keys.
var KeyOrder = []string{KeyTOP, KeyTO, KeyBIG, Key3D, KeyRZ}

// HigherBetter reports the direction of a key. Turnovers is the only key
// where less is more.
func HigherBetter(key string) bool {
	return key != KeyTO
}

// Compare evaluates one key. Margin is always a-b regardless of direction;
// |margin| <= eps is a tie.
func Compare(key string, a, b float64, eps float64) model.KeyComparison {
	c := model.KeyComparison{
		Key:          key,
		ValueA:       a,
		ValueB:       b,
		Margin:       a - b,
		AbsMargin:    math.Abs(a - b),
		HigherBetter: HigherBetter(key),
	}
	switch {
	case c.AbsMargin <= eps:
		c.Winner = "TIE"
	case (a > b) == c.HigherBetter:
		c.Winner = "A"
	default:
		c.Winner = "B"
	}
	return c
}

// CompareKeys compares all five keys of two TeamKeys in canonical order.
func CompareKeys(a, b model.TeamKeys, eps float64) []model.KeyComparison {
	return []model.KeyComparison{
		Compare(KeyTOP, a.TOPMinutes, b.TOPMinutes, eps),
		Compare(KeyTO, a.Turnovers, b.Turnovers, eps),
		Compare(KeyBIG, a.BigPlays, b.BigPlays, eps),
		Compare(Key3D, a.ThirdDownPct(), b.ThirdDownPct(), eps),
		Compare(KeyRZ, a.RedZoneTDPct(), b.RedZoneTDPct(), eps),
	}
}

// Tally counts wins per side and collects tied key names.
func Tally(comparisons []model.KeyComparison) (wonA, wonB int, tied []string) {
	for _, c := range comparisons {
		switch c.Winner {
		case "A":
			wonA++
		case "B":
			wonB++
		default:
			tied = append(tied, c.Key)
		}
	}
	return wonA, wonB, tied
}
