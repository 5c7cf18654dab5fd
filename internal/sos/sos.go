// Package sos derives strength of schedule: win percentages from game
// results, per-team mean opponent win percentage, and league z-scores.
package sos

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// BuildGameResults reconstructs final scores from play-by-play rows by
// taking the max cumulative score per game. Used when no schedule table is
// available. Results are ordered by game id.
func BuildGameResults(plays []model.PlayRecord) []model.GameResult {
	byGame := make(map[string]*model.GameResult)
	for _, p := range plays {
		g, ok := byGame[p.GameID]
		if !ok {
			g = &model.GameResult{
				GameID:     p.GameID,
				Season:     p.Season,
				Week:       p.Week,
				SeasonType: p.SeasonType,
				HomeTeam:   p.HomeTeam,
				AwayTeam:   p.AwayTeam,
			}
			byGame[p.GameID] = g
		}
		if !math.IsNaN(p.HomeScore) && p.HomeScore > g.HomeScore {
			g.HomeScore = p.HomeScore
		}
		if !math.IsNaN(p.AwayScore) && p.AwayScore > g.AwayScore {
			g.AwayScore = p.AwayScore
		}
	}

	out := make([]model.GameResult, 0, len(byGame))
	for _, g := range byGame {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GameID < out[j].GameID })
	return out
}

// WinPct returns wins/games per team. A tie counts as a played game with no
// win for either side.
func WinPct(results []model.GameResult) map[string]float64 {
	wins := make(map[string]float64)
	games := make(map[string]float64)
	for _, g := range results {
		games[g.HomeTeam]++
		games[g.AwayTeam]++
		if w := g.Winner(); w != "" {
			wins[w]++
		}
	}
	out := make(map[string]float64, len(games))
	for team, n := range games {
		out[team] = wins[team] / n
	}
	return out
}

// TeamSOS returns the mean win percentage of a team's opponents across its
// games. Opponents absent from the win-percentage table are skipped; a team
// with no games (or no rated opponents) gets 0.
func TeamSOS(team string, results []model.GameResult, winPct map[string]float64) float64 {
	var sum float64
	var n int
	for _, g := range results {
		var opp string
		switch team {
		case g.HomeTeam:
			opp = g.AwayTeam
		case g.AwayTeam:
			opp = g.HomeTeam
		default:
			continue
		}
		if pct, ok := winPct[opp]; ok {
			sum += pct
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// LeagueSOS computes TeamSOS for every team appearing in the results.
func LeagueSOS(results []model.GameResult) map[string]float64 {
	winPct := WinPct(results)
	out := make(map[string]float64, len(winPct))
	for team := range winPct {
		out[team] = TeamSOS(team, results, winPct)
	}
	return out
}

// ZScores normalizes per-team values by subtracting the mean and dividing
// by the sample standard deviation. Fewer than 2 teams or zero spread
// yields all zeros.
func ZScores(values map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(values))
	n := float64(len(values))
	if n < 2 {
		for team := range values {
			out[team] = 0
		}
		return out
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / n

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	std := math.Sqrt(ss / (n - 1))
	if std == 0 {
		for team := range values {
			out[team] = 0
		}
		return out
	}

	for team, v := range values {
		out[team] = (v - mean) / std
	}
	return out
}

// ValidationError flags an implausible derived distribution. Callers should
// refuse to feed the values into a model.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("implausible strength distribution: %s", strings.Join(e.Problems, "; "))
}

// ValidateZScores sanity-checks a league z-score map: a full playoff-era
// league has at least 20 teams, and z-scores should be centered near 0 with
// spread near 1.
func ValidateZScores(z map[string]float64) error {
	var problems []string
	if len(z) < 20 {
		problems = append(problems, fmt.Sprintf("only %d teams (need >= 20)", len(z)))
	}
	if len(z) >= 2 {
		var sum float64
		for _, v := range z {
			sum += v
		}
		mean := sum / float64(len(z))

		var ss float64
		for _, v := range z {
			d := v - mean
			ss += d * d
		}
		std := math.Sqrt(ss / float64(len(z)-1))

		if math.Abs(mean) > 0.15 {
			problems = append(problems, fmt.Sprintf("mean %.3f too far from 0", mean))
		}
		if std < 0.5 || std > 1.5 {
			problems = append(problems, fmt.Sprintf("std %.3f outside [0.5, 1.5]", std))
		}
	}
	if len(problems) > 0 {
		return &ValidationError{Problems: problems}
	}
	return nil
}
