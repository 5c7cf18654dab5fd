package cmd

import (
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/ranks"
	"github.com/dmorales/go-nfl-keys/internal/report"
)

var (
	rankSeason int
	rankType   string
	rankMode   string
)

var rankCmd = &cobra.Command{
	Use:   "rank [team...]",
	Short: "Rank teams by key percentile within a season scope",
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().IntVar(&rankSeason, "season", 0, "season year (required)")
	rankCmd.Flags().StringVar(&rankType, "type", "POST", "season segment (REG or POST)")
	rankCmd.Flags().StringVar(&rankMode, "mode", "aggregate", "aggregation mode (aggregate, per_game, opp_weighted)")
	rankCmd.MarkFlagRequired("season")
}

func runRank(cmd *cobra.Command, args []string) error {
	mode, err := pipeline.ParseMode(rankMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(rankType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{rankSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{rankSeason})
	if err != nil {
		return err
	}

	// The population is always every team in the scope, even when only a
	// few teams are being shown.
	population := teamsInScope(plays)
	table, err := computeScopeKeys(plays, schema, regPlays, population, mode, thresholdsFromFlags())
	if err != nil {
		return err
	}

	show := population
	if len(args) > 0 {
		show = args
	}
	wanted := make(map[string]bool, len(show))
	for _, t := range show {
		wanted[t] = true
	}

	byTeam := make(map[string]model.TeamKeys, len(table))
	for _, k := range table {
		byTeam[k.Team] = k
	}

	percentiles := make(map[string]map[string]float64, len(show))
	for team := range wanted {
		k, ok := byTeam[team]
		if !ok {
			continue
		}
		percentiles[team] = ranks.KeyPercentiles(k, table)
	}

	report.PrintScopeHeader(os.Stdout, rankSeason, st, string(mode), len(percentiles))
	report.PrintRanksTable(os.Stdout, percentiles)
	return nil
}
