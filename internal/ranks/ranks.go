// Package ranks places a team's keys among a population of teams as
// percentiles. Pure derived reporting, no state.
package ranks

import (
	"math"

	"github.com/dmorales/go-nfl-keys/internal/compare"
	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Percentile returns the share (0-100) of the population whose value is no
// better than the given one, respecting the key's direction. An empty
// population yields a neutral 50.
func Percentile(value float64, population []float64, higherBetter bool) float64 {
	if len(population) == 0 {
		return 50.0
	}
	noBetter := 0
	for _, v := range population {
		if higherBetter {
			if v <= value {
				noBetter++
			}
		} else {
			if v >= value {
				noBetter++
			}
		}
	}
	return round1(100 * float64(noBetter) / float64(len(population)))
}

// KeyPercentiles computes a team's percentile for each of the five keys
// against the given population (which conventionally includes the team
// itself).
func KeyPercentiles(team model.TeamKeys, population []model.TeamKeys) map[string]float64 {
	values := func(key string) []float64 {
		out := make([]float64, len(population))
		for i, k := range population {
			out[i] = keyValue(k, key)
		}
		return out
	}
	out := make(map[string]float64, len(compare.KeyOrder))
	for _, key := range compare.KeyOrder {
		out[key] = Percentile(keyValue(team, key), values(key), compare.HigherBetter(key))
	}
	return out
}

func keyValue(k model.TeamKeys, key string) float64 {
	switch key {
	case compare.KeyTOP:
		return k.TOPMinutes
	case compare.KeyTO:
		return k.Turnovers
	case compare.KeyBIG:
		return k.BigPlays
	case compare.Key3D:
		return k.ThirdDownPct()
	default:
		return k.RedZoneTDPct()
	}
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
