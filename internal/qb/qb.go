// Package qb builds quarterback stat lines and the postseason production
// score from the same play-by-play rows as the keys, with turnover
// attribution heuristics and strict QB/team/scope validation.
package qb

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// NameMatches reports whether a play-by-play player name refers to the
// given quarterback: exact match after trim/upper, or any token of the QB
// name contained in the play-by-play name ("Drake Maye" matches "D.Maye").
func NameMatches(pbpName, qb string) bool {
	a := strings.ToUpper(strings.TrimSpace(pbpName))
	if a == "" {
		return false
	}
	b := strings.ToUpper(strings.TrimSpace(qb))
	if a == b {
		return true
	}
	for _, tok := range strings.Fields(b) {
		if tok != "" && strings.Contains(a, tok) {
			return true
		}
	}
	return false
}

func isQBPlay(p model.PlayRecord, schema model.Schema, team, qb string) bool {
	if p.PosTeam != team {
		return false
	}
	if schema.HasPasser && NameMatches(p.PasserName, qb) {
		return true
	}
	if schema.HasRusher && NameMatches(p.RusherName, qb) {
		return true
	}
	return false
}

func hasQBColumns(schema model.Schema) bool {
	return schema.HasPasser || schema.HasRusher
}

// BuildLine assembles a QB stat line over the given play scope.
func BuildLine(plays []model.PlayRecord, schema model.Schema, qb, team string) model.QBLine {
	line := model.QBLine{Name: qb, Team: team}
	games := make(map[string]bool)

	for _, p := range plays {
		if p.PosTeam != team {
			continue
		}
		passer := schema.HasPasser && NameMatches(p.PasserName, qb)
		rusher := schema.HasRusher && NameMatches(p.RusherName, qb)
		if !passer && !rusher {
			continue
		}
		games[p.GameID] = true

		if passer {
			if p.Sack || p.PlayType == "sack" {
				line.Sacks++
			} else if p.PassAttempt || p.PlayType == "pass" {
				line.Attempts++
				if p.CompletePass {
					line.Completions++
					line.PassYards += orZero(p.YardsGained)
				}
				if p.Touchdown {
					line.PassTDs++
				}
			}
			if p.Interception {
				line.INTs++
			}
		}
		if rusher && (p.RushAttempt || p.PlayType == "run") {
			line.RushAttempts++
			line.RushYards += orZero(p.YardsGained)
			if p.Touchdown {
				line.RushTDs++
			}
		}
		if p.FumbleLost {
			line.FumblesLost++
		}
	}
	line.Games = len(games)
	return line
}

// TeamsFor lists the teams a QB has at least one pass or rush play for in
// the given scope. Empty when the source has no player-name columns.
func TeamsFor(plays []model.PlayRecord, schema model.Schema, qb string) []string {
	if !hasQBColumns(schema) {
		return nil
	}
	seen := make(map[string]bool)
	for _, p := range plays {
		if p.PosTeam == "" {
			continue
		}
		if (schema.HasPasser && NameMatches(p.PasserName, qb)) ||
			(schema.HasRusher && NameMatches(p.RusherName, qb)) {
			seen[p.PosTeam] = true
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// AttributionError means the claimed QB/team/scope combination has no
// supporting plays. It reports where the QB actually appears so the caller
// can fix the flags without digging through the data.
type AttributionError struct {
	QB        string
	Team      string
	Season    int
	GameIDs   []string
	TeamsSeen []string
}

func (e *AttributionError) Error() string {
	seen := "(none; check passer/rusher name columns)"
	if len(e.TeamsSeen) > 0 {
		seen = strings.Join(e.TeamsSeen, ", ")
	}
	return fmt.Sprintf("QB %q has 0 plays in %s postseason games %v (season %d); QB appears for: %s",
		e.QB, e.Team, e.GameIDs, e.Season, seen)
}

// GameCheck is the validated mapping of a QB to their team's postseason
// games, with per-game involvement counts.
type GameCheck struct {
	QB        string
	Team      string
	Season    int
	GameIDs   []string
	Opponents []string

	DropbacksByGame map[string]int
	PlaysByGame     map[string]int
}

// FindGames cross-checks the schedule (ground truth for which postseason
// games the team played) against play-by-play QB involvement. It errors if
// the QB has zero plays in those games, or plays in team games outside the
// schedule.
func FindGames(plays []model.PlayRecord, schema model.Schema, schedule []model.GameResult, qb, team string, season int) (GameCheck, error) {
	check := GameCheck{
		QB: qb, Team: team, Season: season,
		DropbacksByGame: make(map[string]int),
		PlaysByGame:     make(map[string]int),
	}
	for _, g := range schedule {
		if g.SeasonType != model.SeasonPost {
			continue
		}
		if season != 0 && g.Season != season {
			continue
		}
		if g.HomeTeam != team && g.AwayTeam != team {
			continue
		}
		check.GameIDs = append(check.GameIDs, g.GameID)
		opp := g.HomeTeam
		if g.HomeTeam == team {
			opp = g.AwayTeam
		}
		check.Opponents = append(check.Opponents, opp)
		check.DropbacksByGame[g.GameID] = 0
		check.PlaysByGame[g.GameID] = 0
	}

	inSchedule := make(map[string]bool, len(check.GameIDs))
	for _, id := range check.GameIDs {
		inSchedule[id] = true
	}

	for _, p := range plays {
		if p.PosTeam != team || !isQBPlay(p, schema, team, qb) {
			continue
		}
		if !inSchedule[p.GameID] {
			return check, fmt.Errorf("QB %q has plays in game %s, which is not in %s's postseason schedule (season %d)",
				qb, p.GameID, team, season)
		}
		check.PlaysByGame[p.GameID]++
		if schema.HasPasser && NameMatches(p.PasserName, qb) &&
			(p.PlayType == "pass" || p.PlayType == "sack") {
			check.DropbacksByGame[p.GameID]++
		}
	}

	total := 0
	for _, n := range check.PlaysByGame {
		total += n
	}
	if len(check.GameIDs) > 0 && total == 0 {
		return check, &AttributionError{
			QB: qb, Team: team, Season: season,
			GameIDs:   check.GameIDs,
			TeamsSeen: TeamsFor(plays, schema, qb),
		}
	}
	return check, nil
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
