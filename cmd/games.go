package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/sos"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

var (
	gamesSeason int
	gamesType   string
	gamesMode   string
)

var gamesCmd = &cobra.Command{
	Use:   "games <team>",
	Short: "Show a team's per-game keys with aggregation weights",
	Args:  cobra.ExactArgs(1),
	RunE:  runGames,
}

func init() {
	gamesCmd.Flags().IntVar(&gamesSeason, "season", 0, "season year (required)")
	gamesCmd.Flags().StringVar(&gamesType, "type", "POST", "season segment (REG or POST)")
	gamesCmd.Flags().StringVar(&gamesMode, "mode", "per_game", "aggregation mode (per_game, opp_weighted)")
	gamesCmd.MarkFlagRequired("season")
}

func runGames(cmd *cobra.Command, args []string) error {
	team := args[0]
	mode, err := pipeline.ParseMode(gamesMode)
	if err != nil {
		return err
	}
	if mode == pipeline.ModeAggregate {
		return fmt.Errorf("mode aggregate has no per-game table; use per_game or opp_weighted")
	}
	st := model.SeasonType(strings.ToUpper(gamesType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{gamesSeason}, st)
	if err != nil {
		return err
	}

	th := keys.DefaultThresholds()
	rows := keys.TeamGameRows(plays, schema, team, th)
	if len(rows) == 0 {
		return fmt.Errorf("no games for %s in %d %s", team, gamesSeason, st)
	}

	if mode == pipeline.ModeOppWeighted {
		regPlays, err := loadRegPlays(db, []int{gamesSeason})
		if err != nil {
			return err
		}
		wcfg := weighting.DefaultConfig()
		winPct := sos.WinPct(sos.BuildGameResults(regPlays))
		rows = weighting.WithOpponentWeights(rows, winPct, wcfg)
		rows = weighting.WithTurnoverDampener(rows, plays, schema, th, wcfg)
	}

	report.PrintGameRows(os.Stdout, team, rows)

	agg := weighting.AggregateWeighted(team, rows)
	fmt.Fprintln(os.Stdout, "\nCollapsed:")
	report.PrintKeysTable(os.Stdout, []model.TeamKeys{agg})
	return nil
}
