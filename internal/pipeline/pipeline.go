// Package pipeline prepares a matchup for the prediction engine: it picks
// the aggregation path for the selected mode and builds the optional
// per-team contexts.
package pipeline

import (
	"fmt"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/predict"
	"github.com/dmorales/go-nfl-keys/internal/sos"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

// Mode selects how a team's games collapse into one TeamKeys.
type Mode string

const (
	// ModeAggregate computes totals over the whole play scope at once.
	ModeAggregate Mode = "aggregate"
	// ModePerGame averages equal-weighted per-game keys.
	ModePerGame Mode = "per_game"
	// ModeOppWeighted averages per-game keys weighted by opponent quality
	// and the turnover-outlier dampener.
	ModeOppWeighted Mode = "opp_weighted"
)

// ParseMode validates a mode string from the CLI.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAggregate, ModePerGame, ModeOppWeighted:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (want aggregate, per_game or opp_weighted)", s)
	}
}

// Inputs carries the materialized play scopes and configuration for one
// matchup build.
type Inputs struct {
	// Plays is the scope being predicted over, typically playoff rows.
	Plays  []model.PlayRecord
	Schema model.Schema
	// RegPlays supplies regular-season results for win percentages and SOS;
	// may be nil, which disables opponent weighting inputs.
	RegPlays []model.PlayRecord

	Thresholds keys.Thresholds
	Weighting  weighting.Config
}

// Matchup is the pipeline output: one TeamKeys per side, plus the per-game
// tables for the modes that build them (nil for aggregate).
type Matchup struct {
	KeysA  model.TeamKeys
	KeysB  model.TeamKeys
	GamesA []model.TeamGameKeys
	GamesB []model.TeamGameKeys
}

// BuildMatchup computes both teams' keys under the given mode.
func BuildMatchup(in Inputs, teamA, teamB string, mode Mode) (Matchup, error) {
	switch mode {
	case ModeAggregate:
		return Matchup{
			KeysA: keys.ComputeTeamKeys(in.Plays, in.Schema, teamA, in.Thresholds),
			KeysB: keys.ComputeTeamKeys(in.Plays, in.Schema, teamB, in.Thresholds),
		}, nil
	case ModePerGame, ModeOppWeighted:
		rowsA := keys.TeamGameRows(in.Plays, in.Schema, teamA, in.Thresholds)
		rowsB := keys.TeamGameRows(in.Plays, in.Schema, teamB, in.Thresholds)
		if mode == ModeOppWeighted {
			winPct := sos.WinPct(sos.BuildGameResults(in.RegPlays))
			rowsA = weightRows(rowsA, winPct, in)
			rowsB = weightRows(rowsB, winPct, in)
		}
		return Matchup{
			KeysA:  weighting.AggregateWeighted(teamA, rowsA),
			KeysB:  weighting.AggregateWeighted(teamB, rowsB),
			GamesA: rowsA,
			GamesB: rowsB,
		}, nil
	default:
		return Matchup{}, fmt.Errorf("unknown mode %q", mode)
	}
}

func weightRows(rows []model.TeamGameKeys, winPct map[string]float64, in Inputs) []model.TeamGameKeys {
	rows = weighting.WithOpponentWeights(rows, winPct, in.Weighting)
	return weighting.WithTurnoverDampener(rows, in.Plays, in.Schema, in.Thresholds, in.Weighting)
}

// SOSContexts builds the SOS z-score context for both teams from
// regular-season plays. Teams absent from the league table keep a zero
// context.
func SOSContexts(regPlays []model.PlayRecord, teamA, teamB string) (model.TeamContext, model.TeamContext) {
	results := sos.BuildGameResults(regPlays)
	z := sos.ZScores(sos.LeagueSOS(results))

	var ctxA, ctxB model.TeamContext
	if v, ok := z[teamA]; ok {
		ctxA.SOSZ = v
		ctxA.HasSOSZ = true
	}
	if v, ok := z[teamB]; ok {
		ctxB.SOSZ = v
		ctxB.HasSOSZ = true
	}
	return ctxA, ctxB
}

// WithExpectedTurnovers adds the blended expected-turnovers figure to a
// context when both scopes have games for the team.
func WithExpectedTurnovers(ctx model.TeamContext, in Inputs, team string) model.TeamContext {
	post, okPost := turnoversPerGame(in.Plays, in.Schema, team, in.Thresholds)
	season, okSeason := turnoversPerGame(in.RegPlays, in.Schema, team, in.Thresholds)
	if !okPost || !okSeason {
		return ctx
	}
	ctx.ExpectedTurnovers = predict.ExpectedTurnovers(post, season)
	ctx.HasExpectedTurnovers = true
	return ctx
}

func turnoversPerGame(plays []model.PlayRecord, schema model.Schema, team string, th keys.Thresholds) (float64, bool) {
	rows := keys.TeamGameRows(plays, schema, team, th)
	if len(rows) == 0 {
		return 0, false
	}
	var total float64
	for _, r := range rows {
		total += r.Keys.Turnovers
	}
	return total / float64(len(rows)), true
}
