package qb

import (
	"fmt"
	"math"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Attribution splits a team's turnovers into QB-fault and non-QB-fault
// buckets with documented heuristics, then weights them into one figure.
// Interceptions only count when the passer matches the QB; a deep or
// intermediate pick is on the QB, a tipped or short one mostly is not.
// A fumble is the QB's when it comes on a sack or a QB run.
type Attribution struct {
	QBFaultINT    float64
	NonQBFaultINT float64
	QBFaultFum    float64
	NonQBFaultFum float64

	QBFaultTO         float64
	NonQBFaultTO      float64
	WeightedTurnovers float64

	TotalINT         int
	TotalFumblesLost int
	Notes            []string
}

// TurnoverAttribution classifies every turnover in the team's plays.
func TurnoverAttribution(plays []model.PlayRecord, schema model.Schema, qb, team string, cfg Config) Attribution {
	var a Attribution

	var teamPlays []model.PlayRecord
	for _, p := range plays {
		if p.PosTeam == team {
			teamPlays = append(teamPlays, p)
		}
	}
	if len(teamPlays) == 0 {
		a.Notes = append(a.Notes, "no team plays in scope")
		return a
	}

	for _, p := range teamPlays {
		if p.Interception {
			a.TotalINT++
		}
		if p.FumbleLost {
			a.TotalFumblesLost++
		}
	}

	if !schema.HasPasser {
		a.Notes = append(a.Notes, "INT attribution skipped: no passer names; cannot assign interceptions to QB")
	} else {
		for _, p := range teamPlays {
			if !p.Interception || !NameMatches(p.PasserName, qb) {
				continue
			}
			air := p.AirYards
			if math.IsNaN(air) {
				air = -999
			}
			switch {
			case air >= 8 || p.PassDepth == "deep" || p.PassDepth == "intermediate":
				a.QBFaultINT++
			case p.TippedPass:
				a.NonQBFaultINT++
			case air < 8 || p.PassDepth == "short":
				a.NonQBFaultINT++
			default:
				a.QBFaultINT++
			}
		}
		if a.TotalINT > 0 && a.QBFaultINT+a.NonQBFaultINT == 0 {
			a.Notes = append(a.Notes, fmt.Sprintf("team threw %d INT(s) but none match the QB name; possible name mismatch", a.TotalINT))
		}
	}

	if !schema.HasFumbleLost {
		a.Notes = append(a.Notes, "fumble attribution skipped: fumble_lost column missing")
	} else {
		for _, p := range teamPlays {
			if !p.FumbleLost {
				continue
			}
			qbPlay := isQBPlay(p, schema, team, qb)
			if hasQBColumns(schema) && !qbPlay {
				a.NonQBFaultFum++
				continue
			}
			switch {
			case p.Sack || p.PlayType == "sack":
				a.QBFaultFum++
			case qbPlay && p.PlayType == "run":
				a.QBFaultFum++
			default:
				a.NonQBFaultFum++
			}
		}
	}

	a.QBFaultTO = model.Round3(cfg.QBFaultINTWeight*a.QBFaultINT + cfg.QBFaultFumWeight*a.QBFaultFum)
	a.NonQBFaultTO = model.Round3(cfg.NonQBFaultINTWeight*a.NonQBFaultINT + cfg.NonQBFaultFumWeight*a.NonQBFaultFum)
	a.WeightedTurnovers = model.Round3(a.QBFaultTO + a.NonQBFaultTO)
	return a
}
