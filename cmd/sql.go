package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the keys database",
	Long: `Run an arbitrary SQL query against the keys database and print results as a table.

Schema overview:
  imports(id, source, kind, imported_at, row_count, columns)
  games(game_id, season, season_type, week, round, gameday, home_team, away_team,
    home_score, away_score)
  plays(game_id, play_no, season, season_type, week, posteam, defteam, drive,
    down, ydstogo, yardline_100, play_type, yards_gained, epa, air_yards,
    pass_depth, interception, fumble_lost, sack, touchdown, third_down_converted, ...)
  team_keys(season, season_type, team, mode, top_minutes, turnovers, big_plays,
    third_down_converted, third_down_attempts, red_zone_td_drives, red_zone_trips)
  score_models(name, trained_at, n_samples, feature_names, margin_coef,
    margin_intercept, margin_std, total_coef, total_intercept, total_std)
  predictions(id, created_at, season, mode, team_a, team_b, prob_a, prob_b,
    predicted_winner, keys_won_a, keys_won_b, ties, logit, detail)

Note: nullable play stats (epa, air_yards, ...) are NULL when the source
column was missing. Use IS NOT NULL to filter them.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))

	colsAny := make([]any, len(cols))
	for i, c := range cols {
		colsAny[i] = c
	}
	table.Header(colsAny...)

	for _, row := range rows {
		rowAny := make([]any, len(row))
		for i, v := range row {
			rowAny[i] = v
		}
		table.Append(rowAny...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}
