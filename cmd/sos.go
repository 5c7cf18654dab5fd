package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/sos"
)

var sosSeason int

var sosCmd = &cobra.Command{
	Use:   "sos",
	Short: "Show strength of schedule from regular-season results",
	Args:  cobra.NoArgs,
	RunE:  runSOS,
}

func init() {
	sosCmd.Flags().IntVar(&sosSeason, "season", 0, "season year (required)")
	sosCmd.MarkFlagRequired("season")
}

func runSOS(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	regPlays, err := loadRegPlays(db, []int{sosSeason})
	if err != nil {
		return err
	}
	if len(regPlays) == 0 {
		return fmt.Errorf("no regular-season plays stored for %d", sosSeason)
	}

	results := sos.BuildGameResults(regPlays)
	league := sos.LeagueSOS(results)
	z := sos.ZScores(league)

	report.PrintSOSTable(os.Stdout, league, z)

	if err := sos.ValidateZScores(z); err != nil {
		fmt.Fprintf(os.Stderr, "\nwarning: %v\n", err)
	}
	return nil
}
