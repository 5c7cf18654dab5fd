// Package weighting assigns per-game weights for fair multi-game
// aggregation: quality opponents count more, and games decided by an
// opponent's turnover meltdown count less.
package weighting

import (
	"math"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Config tunes the two weight factors.
type Config struct {
	Base  float64 // opponent-strength floor
	Scale float64 // multiplied by opponent win pct

	TurnoverThreshold float64 // opponent giveaways at/above this dampen the game
	Dampener          float64
}

// DefaultConfig gives opponent weights in roughly [0.75, 1.25] and an 0.80
// dampener for 4+ giveaway games.
func DefaultConfig() Config {
	return Config{
		Base:              0.75,
		Scale:             0.5,
		TurnoverThreshold: 4,
		Dampener:          0.80,
	}
}

// WithOpponentWeights returns a copy of the rows with each weight
// multiplied by the opponent-strength factor. Opponents missing from the
// win-percentage table are treated as average (0.5).
func WithOpponentWeights(rows []model.TeamGameKeys, winPct map[string]float64, cfg Config) []model.TeamGameKeys {
	out := make([]model.TeamGameKeys, len(rows))
	for i, r := range rows {
		pct, ok := winPct[r.Opponent]
		if !ok {
			pct = 0.5
		}
		r.Weight *= cfg.Base + cfg.Scale*pct
		out[i] = r
	}
	return out
}

// WithTurnoverDampener returns a copy of the rows with the dampener applied
// to games where the opponent committed TurnoverThreshold or more
// turnovers. The opponent's count comes from the per-game keys over the
// same play set.
func WithTurnoverDampener(rows []model.TeamGameKeys, plays []model.PlayRecord, schema model.Schema, th keys.Thresholds, cfg Config) []model.TeamGameKeys {
	out := make([]model.TeamGameKeys, len(rows))
	for i, r := range rows {
		gk := keys.ComputeGameKeys(plays, schema, r.GameID, th)
		if opp, ok := gk[r.Opponent]; ok && opp.Turnovers >= cfg.TurnoverThreshold {
			r.Weight *= cfg.Dampener
		}
		out[i] = r
	}
	return out
}

// AggregateWeighted collapses a per-game table into one TeamKeys using the
// rows' weights. Minutes, turnovers and big plays become weighted means;
// the rate denominators are weighted-summed and the rates recomputed from
// them. Turnovers and big plays are rounded to whole counts after
// weighting. Zero total weight falls back to unweighted; empty input yields
// zeroed keys.
func AggregateWeighted(team string, rows []model.TeamGameKeys) model.TeamKeys {
	out := model.TeamKeys{Team: team}
	if len(rows) == 0 {
		return out
	}

	var totalW float64
	for _, r := range rows {
		totalW += r.Weight
	}
	weight := func(r model.TeamGameKeys) float64 { return r.Weight }
	if totalW == 0 {
		totalW = float64(len(rows))
		weight = func(model.TeamGameKeys) float64 { return 1 }
	}

	var top, to, big float64
	for _, r := range rows {
		w := weight(r)
		top += w * r.Keys.TOPMinutes
		to += w * r.Keys.Turnovers
		big += w * r.Keys.BigPlays
		out.ThirdDownConverted += w * r.Keys.ThirdDownConverted
		out.ThirdDownAttempts += w * r.Keys.ThirdDownAttempts
		out.RedZoneTDDrives += w * r.Keys.RedZoneTDDrives
		out.RedZoneTrips += w * r.Keys.RedZoneTrips
	}
	out.TOPMinutes = model.Round2(top / totalW)
	out.Turnovers = math.Round(to / totalW)
	out.BigPlays = math.Round(big / totalW)
	return out
}
