package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/qb"
	"github.com/dmorales/go-nfl-keys/internal/report"
)

var (
	qbTeam   string
	qbSeason int
)

var qbCmd = &cobra.Command{
	Use:   "qb <name>",
	Short: "Quarterback postseason line, turnover attribution and production score",
	Args:  cobra.ExactArgs(1),
	RunE:  runQB,
}

func init() {
	qbCmd.Flags().StringVar(&qbTeam, "team", "", "team abbreviation (required)")
	qbCmd.Flags().IntVar(&qbSeason, "season", 0, "season year (required)")
	qbCmd.MarkFlagRequired("team")
	qbCmd.MarkFlagRequired("season")
}

func runQB(cmd *cobra.Command, args []string) error {
	name := args[0]

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{qbSeason}, model.SeasonPost)
	if err != nil {
		return err
	}
	schedule, err := db.LoadSchedule(qbSeason, model.SeasonPost)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}

	if len(schedule) > 0 {
		check, err := qb.FindGames(plays, schema, schedule, name, qbTeam, qbSeason)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Verified %d postseason game(s): %v\n", len(check.GameIDs), check.GameIDs)
	} else {
		fmt.Fprintln(os.Stderr, "warning: no schedule stored; skipping game verification")
	}

	line := qb.BuildLine(plays, schema, name, qbTeam)
	if line.Games == 0 {
		return fmt.Errorf("no plays for %q on %s in %d; teams seen: %v",
			name, qbTeam, qbSeason, qb.TeamsFor(plays, schema, name))
	}
	report.PrintQBLine(os.Stdout, line)

	cfg := qb.DefaultConfig()
	attr := qb.TurnoverAttribution(plays, schema, name, qbTeam, cfg)
	fmt.Fprintln(os.Stdout, "\nTurnover attribution:")
	report.PrintAttribution(os.Stdout, attr)

	var defZ map[string]float64
	regPlays, err := loadRegPlays(db, []int{qbSeason})
	if err != nil {
		return err
	}
	if len(regPlays) > 0 {
		defZ = qb.DefenseStrength(regPlays, schema)
	}

	comps := qb.ProductionComponents(plays, schema, schedule, name, qbTeam, defZ, cfg)
	score := qb.ProductionScore(comps, cfg)
	report.PrintProductionScore(os.Stdout, score, comps)
	return nil
}
