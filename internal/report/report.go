// Package report renders keys tables, comparisons, predictions and QB
// summaries for the terminal, plus a JSON export of the full prediction
// artifact.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/dmorales/go-nfl-keys/internal/compare"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pbp"
	"github.com/dmorales/go-nfl-keys/internal/qb"
)

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

// PrintScopeHeader prints a one-line summary header for a keys scope.
func PrintScopeHeader(w io.Writer, season int, st model.SeasonType, mode string, teams int) {
	fmt.Fprintf(w, "\nSeason: %d  |  Segment: %s  |  Mode: %s  |  Teams: %d\n\n",
		season, st, mode, teams)
}

// PrintKeysTable prints one row per team with all five keys. Rates show "—"
// when the denominator is zero.
func PrintKeysTable(w io.Writer, keys []model.TeamKeys) {
	table := newTable(w)
	table.Header("TEAM", "TOP_MIN", "TO", "BIG", "3D%", "3D", "RZ_TD%", "RZ")

	for _, k := range keys {
		thirdPct := "—"
		if k.ThirdDownAttempts > 0 {
			thirdPct = fmt.Sprintf("%.1f%%", k.ThirdDownPct())
		}
		rzPct := "—"
		if k.RedZoneTrips > 0 {
			rzPct = fmt.Sprintf("%.1f%%", k.RedZoneTDPct())
		}
		table.Append(
			k.Team,
			fmt.Sprintf("%.2f", k.TOPMinutes),
			fmt.Sprintf("%.0f", k.Turnovers),
			fmt.Sprintf("%.0f", k.BigPlays),
			thirdPct,
			fmt.Sprintf("%.0f/%.0f", k.ThirdDownConverted, k.ThirdDownAttempts),
			rzPct,
			fmt.Sprintf("%.0f/%.0f", k.RedZoneTDDrives, k.RedZoneTrips),
		)
	}
	table.Render()
}

// PrintGameRows prints a team's per-game keys with the aggregation weight
// assigned to each row.
func PrintGameRows(w io.Writer, team string, rows []model.TeamGameKeys) {
	fmt.Fprintf(w, "\n%s — %d game(s)\n\n", team, len(rows))

	table := newTable(w)
	table.Header("GAME", "WK", "ROUND", "OPP", "H/A", "WEIGHT", "TOP_MIN", "TO", "BIG", "3D%", "RZ_TD%")

	for _, r := range rows {
		side := "A"
		if r.Home {
			side = "H"
		}
		thirdPct := "—"
		if r.Keys.ThirdDownAttempts > 0 {
			thirdPct = fmt.Sprintf("%.1f%%", r.Keys.ThirdDownPct())
		}
		rzPct := "—"
		if r.Keys.RedZoneTrips > 0 {
			rzPct = fmt.Sprintf("%.1f%%", r.Keys.RedZoneTDPct())
		}
		table.Append(
			r.GameID,
			strconv.Itoa(r.Week),
			r.Round,
			r.Opponent,
			side,
			fmt.Sprintf("%.3f", r.Weight),
			fmt.Sprintf("%.2f", r.Keys.TOPMinutes),
			fmt.Sprintf("%.0f", r.Keys.Turnovers),
			fmt.Sprintf("%.0f", r.Keys.BigPlays),
			thirdPct,
			rzPct,
		)
	}
	table.Render()
}

// PrintComparisonTable prints the per-key tally between two teams.
func PrintComparisonTable(w io.Writer, teamA, teamB string, comps []model.KeyComparison) {
	table := newTable(w)
	table.Header("KEY", teamA, teamB, "MARGIN", "WINNER")

	for _, c := range comps {
		winner := "TIE"
		switch c.Winner {
		case "A":
			winner = teamA
		case "B":
			winner = teamB
		}
		table.Append(
			c.Key,
			formatKeyValue(c.Key, c.ValueA),
			formatKeyValue(c.Key, c.ValueB),
			fmt.Sprintf("%+.2f", c.Margin),
			winner,
		)
	}
	table.Render()
}

func formatKeyValue(key string, v float64) string {
	switch key {
	case compare.KeyTOP:
		return fmt.Sprintf("%.2f", v)
	case compare.Key3D, compare.KeyRZ:
		return fmt.Sprintf("%.1f%%", v)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// PrintPrediction prints the headline probability plus the logit breakdown.
// Top drivers are marked with "*".
func PrintPrediction(w io.Writer, r model.PredictionResult) {
	fmt.Fprintf(w, "\n%s %.1f%%  vs  %s %.1f%%  →  %s\n",
		r.TeamA, r.ProbA*100, r.TeamB, r.ProbB*100, r.PredictedWinner)
	fmt.Fprintf(w, "Keys: %s %d, %s %d, ties %d\n\n",
		r.TeamA, r.KeysWonA, r.TeamB, r.KeysWonB, r.Ties)

	top := make(map[string]bool, len(r.Explanation.TopDrivers))
	for _, d := range r.Explanation.TopDrivers {
		top[d.Component] = true
	}

	table := newTable(w)
	table.Header(" ", "COMPONENT", "CONTRIBUTION")
	for _, c := range r.Explanation.Contributions {
		marker := " "
		if top[c.Component] {
			marker = "*"
		}
		table.Append(marker, c.Component, fmt.Sprintf("%+.4f", c.Value))
	}
	table.Append(" ", "logit", fmt.Sprintf("%+.4f", r.Explanation.Logit))
	table.Render()
}

// PrintRanksTable prints each team's percentile per key, sorted by team.
func PrintRanksTable(w io.Writer, percentiles map[string]map[string]float64) {
	teams := make([]string, 0, len(percentiles))
	for t := range percentiles {
		teams = append(teams, t)
	}
	sort.Strings(teams)

	table := newTable(w)
	table.Header("TEAM", "TOP", "TO", "BIG", "3D", "RZ")
	for _, t := range teams {
		p := percentiles[t]
		table.Append(
			t,
			fmt.Sprintf("%.1f", p[compare.KeyTOP]),
			fmt.Sprintf("%.1f", p[compare.KeyTO]),
			fmt.Sprintf("%.1f", p[compare.KeyBIG]),
			fmt.Sprintf("%.1f", p[compare.Key3D]),
			fmt.Sprintf("%.1f", p[compare.KeyRZ]),
		)
	}
	table.Render()
}

// PrintAvailability prints the per-key-group data availability verdicts.
func PrintAvailability(w io.Writer, groups []pbp.GroupAvailability) {
	table := newTable(w)
	table.Header("KEY GROUP", "STATUS", "NOTE")
	for _, g := range groups {
		note := g.Note
		if note == "" {
			note = "—"
		}
		table.Append(g.KeyGroup, string(g.Status), note)
	}
	table.Render()
}

// PrintSOSTable prints per-team strength of schedule with z-scores, sorted
// by z descending.
func PrintSOSTable(w io.Writer, sos map[string]float64, z map[string]float64) {
	type row struct {
		team string
		sos  float64
		z    float64
	}
	rows := make([]row, 0, len(sos))
	for t, v := range sos {
		rows = append(rows, row{t, v, z[t]})
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].z != rows[j].z {
			return rows[i].z > rows[j].z
		}
		return rows[i].team < rows[j].team
	})

	table := newTable(w)
	table.Header("TEAM", "SOS", "Z")
	for _, r := range rows {
		table.Append(r.team, fmt.Sprintf("%.4f", r.sos), fmt.Sprintf("%+.2f", r.z))
	}
	table.Render()
}

// PrintQBLine prints a quarterback stat line for a scope.
func PrintQBLine(w io.Writer, line model.QBLine) {
	fmt.Fprintf(w, "\n%s (%s) — %d game(s)\n\n", line.Name, line.Team, line.Games)

	table := newTable(w)
	table.Header("CMP/ATT", "CMP%", "YDS", "Y/A", "TD", "INT", "SACK", "RUSH", "RUSH_YDS", "FUM_LOST")
	table.Append(
		fmt.Sprintf("%d/%d", line.Completions, line.Attempts),
		fmt.Sprintf("%.1f%%", line.CompletionPct()),
		fmt.Sprintf("%.0f", line.PassYards),
		fmt.Sprintf("%.1f", line.YardsPerAttempt()),
		strconv.Itoa(line.PassTDs),
		strconv.Itoa(line.INTs),
		strconv.Itoa(line.Sacks),
		strconv.Itoa(line.RushAttempts),
		fmt.Sprintf("%.0f", line.RushYards),
		strconv.Itoa(line.FumblesLost),
	)
	table.Render()
}

// PrintAttribution prints the turnover fault split and the weighted total.
func PrintAttribution(w io.Writer, a qb.Attribution) {
	table := newTable(w)
	table.Header("BUCKET", "INT", "FUM", "WEIGHTED")
	table.Append("QB fault",
		fmt.Sprintf("%.0f", a.QBFaultINT),
		fmt.Sprintf("%.0f", a.QBFaultFum),
		fmt.Sprintf("%.3f", a.QBFaultTO))
	table.Append("Not QB fault",
		fmt.Sprintf("%.0f", a.NonQBFaultINT),
		fmt.Sprintf("%.0f", a.NonQBFaultFum),
		fmt.Sprintf("%.3f", a.NonQBFaultTO))
	table.Append("Total",
		strconv.Itoa(a.TotalINT),
		strconv.Itoa(a.TotalFumblesLost),
		fmt.Sprintf("%.3f", a.WeightedTurnovers))
	table.Render()

	for _, n := range a.Notes {
		fmt.Fprintf(w, "  note: %s\n", n)
	}
}

// PrintProductionScore prints the production score and its components.
func PrintProductionScore(w io.Writer, s qb.Score, c qb.Components) {
	fmt.Fprintf(w, "\nProduction score: %.1f / 100\n\n", s.Total)

	table := newTable(w)
	table.Header("COMPONENT", "SCORE", "DETAIL")
	table.Append("Drive sustainability", fmt.Sprintf("%.1f", s.DriveSustain),
		fmt.Sprintf("3D %.1f%%, sack avoid %.1f%%", c.ThirdDownPct, c.SackAvoidancePct))
	table.Append("Situational execution", fmt.Sprintf("%.1f", s.Situational),
		fmt.Sprintf("RZ TD %.1f%% (%d/%d)", c.RZTDPct, c.RZTDDrives, c.RZTrips))
	table.Append("Off-script value", fmt.Sprintf("%.1f", s.OffScript),
		fmt.Sprintf("scramble %.1f yds/g", c.ScrambleYdsPG))
	table.Append("Defense adjustment", fmt.Sprintf("%+.1f", s.DefAdjPoints),
		fmt.Sprintf("avg opp def z %+.3f", s.AvgDefZ))
	table.Render()
}

// PredictionExport is the JSON shape written by the export command.
type PredictionExport struct {
	TeamA           string                    `json:"team_a"`
	TeamB           string                    `json:"team_b"`
	ProbA           float64                   `json:"prob_a"`
	ProbB           float64                   `json:"prob_b"`
	PredictedWinner string                    `json:"predicted_winner"`
	KeysWonA        int                       `json:"keys_won_a"`
	KeysWonB        int                       `json:"keys_won_b"`
	Ties            int                       `json:"ties"`
	Logit           float64                   `json:"logit"`
	Margins         map[string]float64        `json:"margins"`
	KeyWinners      []model.KeyComparison     `json:"key_winners"`
	Contributions   []model.Contribution      `json:"contributions"`
	TopDrivers      []model.Contribution      `json:"top_drivers"`
	Keys            map[string]model.TeamKeys `json:"keys,omitempty"`
}

// WritePredictionJSON writes the full prediction artifact as indented JSON.
func WritePredictionJSON(w io.Writer, r model.PredictionResult, keys map[string]model.TeamKeys) error {
	out := PredictionExport{
		TeamA:           r.TeamA,
		TeamB:           r.TeamB,
		ProbA:           r.ProbA,
		ProbB:           r.ProbB,
		PredictedWinner: r.PredictedWinner,
		KeysWonA:        r.KeysWonA,
		KeysWonB:        r.KeysWonB,
		Ties:            r.Ties,
		Logit:           r.Explanation.Logit,
		Margins:         r.Explanation.Margins,
		KeyWinners:      r.Explanation.KeyWinners,
		Contributions:   r.Explanation.Contributions,
		TopDrivers:      r.Explanation.TopDrivers,
		Keys:            keys,
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
