package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

var listPredLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored seasons and recent predictions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listPredLimit, "predictions", 10, "number of recent predictions to show")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	seasons, err := db.Seasons()
	if err != nil {
		return fmt.Errorf("list seasons: %w", err)
	}
	if len(seasons) == 0 {
		fmt.Fprintln(os.Stdout, "No plays stored yet. Run 'nflkeys import plays <pbp.csv>' to add some.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %8s  %8s  %6s\n", "SEASON", "REG", "POST", "GAMES")
	fmt.Fprintf(os.Stdout, "%-8s  %8s  %8s  %6s\n", "────────", "────────", "────────", "──────")
	for _, season := range seasons {
		reg, err := db.LoadPlays([]int{season}, model.SeasonRegular)
		if err != nil {
			return err
		}
		post, err := db.LoadPlays([]int{season}, model.SeasonPost)
		if err != nil {
			return err
		}
		schedule, err := db.LoadSchedule(season, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%-8d  %8d  %8d  %6d\n", season, len(reg), len(post), len(schedule))
	}

	preds, err := db.ListPredictions(listPredLimit)
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}
	if len(preds) == 0 {
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n%-20s  %-6s  %-12s  %-10s  %7s  %s\n",
		"WHEN", "SEASON", "MODE", "MATCHUP", "PROB", "PICK")
	for _, p := range preds {
		matchup := fmt.Sprintf("%s-%s", p.Result.TeamA, p.Result.TeamB)
		fmt.Fprintf(os.Stdout, "%-20s  %-6d  %-12s  %-10s  %6.1f%%  %s\n",
			p.CreatedAt, p.Season, p.Mode, matchup, p.Result.ProbA*100, p.Result.PredictedWinner)
	}
	return nil
}
