// Package keys computes the five keys (time of possession, turnovers, big
// plays, third-down conversion rate, red-zone touchdown rate) from raw
// play-by-play rows. All functions are pure: empty input yields zeroed
// values, never an error.
package keys

import (
	"math"
	"sort"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Thresholds configures the keys engine. Zero value is not useful; start
// from DefaultThresholds.
type Thresholds struct {
	BigPlayPassYards float64
	BigPlayRushYards float64
	RedZoneYardline  float64
	ThirdDown        int // the down treated as "third down"; settable for 4th-down studies
}

// DefaultThresholds returns the standard key definitions: 15+ yard passes
// and 10+ yard runs are big plays, the red zone starts at the 20.
func DefaultThresholds() Thresholds {
	return Thresholds{
		BigPlayPassYards: 15,
		BigPlayRushYards: 10,
		RedZoneYardline:  20,
		ThirdDown:        3,
	}
}

type driveKey struct {
	gameID string
	drive  int
}

// ComputeTeamKeys derives one TeamKeys from the given play set, considering
// only plays where team has possession. Zero offensive plays returns an
// all-zero TeamKeys for the team label.
func ComputeTeamKeys(plays []model.PlayRecord, schema model.Schema, team string, th Thresholds) model.TeamKeys {
	out := model.TeamKeys{Team: team}

	var own []model.PlayRecord
	for _, p := range plays {
		if p.PosTeam == team {
			own = append(own, p)
		}
	}
	if len(own) == 0 {
		return out
	}

	// Time of possession: one clock value per unique (game, drive). Every
	// play on a drive carries the same drive-level clock, so only the first
	// occurrence counts.
	seenDrive := make(map[driveKey]bool)
	topSeconds := 0
	for _, p := range own {
		if p.Drive == 0 {
			continue
		}
		dk := driveKey{p.GameID, p.Drive}
		if seenDrive[dk] {
			continue
		}
		seenDrive[dk] = true
		topSeconds += ParseClock(p.DriveTOP)
	}
	out.TOPMinutes = model.Round2(float64(topSeconds) / 60)

	for _, p := range own {
		if p.Interception {
			out.Turnovers++
		}
		if p.FumbleLost {
			out.Turnovers++
		}
	}

	for _, p := range own {
		if excludedNoPlay(p, schema) {
			continue
		}
		gain := orZero(p.YardsGained)
		if (p.PlayType == "pass" && gain >= th.BigPlayPassYards) ||
			(p.PlayType == "run" && gain >= th.BigPlayRushYards) {
			out.BigPlays++
		}
	}

	for _, p := range own {
		if p.Down != th.ThirdDown || (p.PlayType != "pass" && p.PlayType != "run") {
			continue
		}
		out.ThirdDownAttempts++
		if converted(p, schema) {
			out.ThirdDownConverted++
		}
	}

	// Red zone is drive-level: a trip is any (game, drive) that reached the
	// threshold, and a trip scores at most one TD drive no matter how many
	// touchdown-flagged plays it contains.
	trips := make(map[driveKey]bool)
	tdDrives := make(map[driveKey]bool)
	for _, p := range own {
		if p.Drive == 0 {
			continue
		}
		yl := p.Yardline100
		if math.IsNaN(yl) {
			continue
		}
		if yl <= th.RedZoneYardline {
			trips[driveKey{p.GameID, p.Drive}] = true
		}
	}
	for _, p := range own {
		if p.Drive == 0 || !p.Touchdown {
			continue
		}
		dk := driveKey{p.GameID, p.Drive}
		if trips[dk] {
			tdDrives[dk] = true
		}
	}
	out.RedZoneTrips = float64(len(trips))
	out.RedZoneTDDrives = float64(len(tdDrives))

	return out
}

func excludedNoPlay(p model.PlayRecord, schema model.Schema) bool {
	if schema.HasNoPlay {
		return p.NoPlay
	}
	return p.PlayType == "no_play"
}

func converted(p model.PlayRecord, schema model.Schema) bool {
	if p.Touchdown {
		return true
	}
	if schema.HasFirstDown {
		return p.FirstDown
	}
	togo := p.YdsToGo
	if math.IsNaN(togo) {
		// Unknown distance can never be credited as converted.
		togo = math.Inf(1)
	}
	return orZero(p.YardsGained) >= togo
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// ComputeGameKeys computes TeamKeys independently for every team with
// offensive plays in the given game.
func ComputeGameKeys(plays []model.PlayRecord, schema model.Schema, gameID string, th Thresholds) map[string]model.TeamKeys {
	var game []model.PlayRecord
	teams := make(map[string]bool)
	for _, p := range plays {
		if p.GameID != gameID {
			continue
		}
		game = append(game, p)
		if p.PosTeam != "" {
			teams[p.PosTeam] = true
		}
	}

	out := make(map[string]model.TeamKeys, len(teams))
	for team := range teams {
		out[team] = ComputeTeamKeys(game, schema, team, th)
	}
	return out
}

// Aggregate collapses per-game TeamKeys into one record: minutes, turnovers
// and big plays are summed, and the two rates are recomputed from summed
// attempt/conversion counts. Averaging the per-game percentages directly
// would let low-attempt games inflate the rate.
func Aggregate(team string, list []model.TeamKeys) model.TeamKeys {
	out := model.TeamKeys{Team: team}
	for _, k := range list {
		out.TOPMinutes += k.TOPMinutes
		out.Turnovers += k.Turnovers
		out.BigPlays += k.BigPlays
		out.ThirdDownConverted += k.ThirdDownConverted
		out.ThirdDownAttempts += k.ThirdDownAttempts
		out.RedZoneTDDrives += k.RedZoneTDDrives
		out.RedZoneTrips += k.RedZoneTrips
	}
	out.TOPMinutes = model.Round2(out.TOPMinutes)
	return out
}

// TeamGameRows builds the per-game keys table for a team, one row per game
// with matchup context attached. Weight starts at 1; the weighting module
// overwrites it for opponent-weighted aggregation. Rows are ordered by week,
// then game id.
func TeamGameRows(plays []model.PlayRecord, schema model.Schema, team string, th Thresholds) []model.TeamGameKeys {
	type gameMeta struct {
		week       int
		seasonType model.SeasonType
		opponent   string
		home       bool
	}
	metas := make(map[string]gameMeta)
	byGame := make(map[string][]model.PlayRecord)
	for _, p := range plays {
		if p.PosTeam != team {
			continue
		}
		byGame[p.GameID] = append(byGame[p.GameID], p)
		if _, ok := metas[p.GameID]; !ok {
			m := gameMeta{week: p.Week, seasonType: p.SeasonType, home: p.HomeTeam == team}
			if p.DefTeam != "" {
				m.opponent = p.DefTeam
			} else if m.home {
				m.opponent = p.AwayTeam
			} else {
				m.opponent = p.HomeTeam
			}
			metas[p.GameID] = m
		}
	}

	rows := make([]model.TeamGameKeys, 0, len(byGame))
	for gameID, gp := range byGame {
		m := metas[gameID]
		rows = append(rows, model.TeamGameKeys{
			GameID:   gameID,
			Week:     m.week,
			Round:    RoundLabel(m.seasonType, m.week),
			Opponent: m.opponent,
			Home:     m.home,
			Weight:   1,
			Keys:     ComputeTeamKeys(gp, schema, team, th),
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Week != rows[j].Week {
			return rows[i].Week < rows[j].Week
		}
		return rows[i].GameID < rows[j].GameID
	})
	return rows
}

// RoundLabel maps a season segment and week to a display label. Playoff
// week numbering follows the 18-game era (wild card = week 19).
func RoundLabel(st model.SeasonType, week int) string {
	if st != model.SeasonPost {
		return "REG"
	}
	switch week {
	case 19:
		return "WC"
	case 20:
		return "DIV"
	case 21:
		return "CONF"
	case 22:
		return "SB"
	default:
		return "POST"
	}
}
