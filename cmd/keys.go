package cmd

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pbp"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/sos"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

var (
	keysSeason  int
	keysType    string
	keysMode    string
	keysSave    bool
	bigPassYds  float64
	bigRushYds  float64
	redZoneLine float64
)

var keysCmd = &cobra.Command{
	Use:   "keys [team...]",
	Short: "Compute the five keys per team for a season scope",
	RunE:  runKeys,
}

func init() {
	keysCmd.Flags().IntVar(&keysSeason, "season", 0, "season year (required)")
	keysCmd.Flags().StringVar(&keysType, "type", "POST", "season segment (REG or POST)")
	keysCmd.Flags().StringVar(&keysMode, "mode", "aggregate", "aggregation mode (aggregate, per_game, opp_weighted)")
	keysCmd.Flags().BoolVar(&keysSave, "save", false, "cache the computed keys in the database")
	keysCmd.Flags().Float64Var(&bigPassYds, "big-pass", 15, "big-play pass yard threshold")
	keysCmd.Flags().Float64Var(&bigRushYds, "big-rush", 10, "big-play rush yard threshold")
	keysCmd.Flags().Float64Var(&redZoneLine, "redzone", 20, "red-zone yardline threshold")
	keysCmd.MarkFlagRequired("season")
}

func thresholdsFromFlags() keys.Thresholds {
	th := keys.DefaultThresholds()
	th.BigPlayPassYards = bigPassYds
	th.BigPlayRushYards = bigRushYds
	th.RedZoneYardline = redZoneLine
	return th
}

func runKeys(cmd *cobra.Command, args []string) error {
	mode, err := pipeline.ParseMode(keysMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(keysType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{keysSeason}, st)
	if err != nil {
		return err
	}
	if cols, cerr := db.ImportedColumns("plays"); cerr == nil {
		set := make(map[string]bool, len(cols))
		for _, c := range cols {
			set[c] = true
		}
		for _, e := range pbp.ValidateKeyGroups(set) {
			fmt.Fprintf(os.Stderr, "warning: %v\n", e)
		}
	}
	regPlays, err := loadRegPlays(db, []int{keysSeason})
	if err != nil {
		return err
	}

	teams := args
	if len(teams) == 0 {
		teams = teamsInScope(plays)
	}

	table, err := computeScopeKeys(plays, schema, regPlays, teams, mode, thresholdsFromFlags())
	if err != nil {
		return err
	}

	report.PrintScopeHeader(os.Stdout, keysSeason, st, string(mode), len(table))
	report.PrintKeysTable(os.Stdout, table)

	if keysSave {
		if err := db.SaveTeamKeys(keysSeason, st, string(mode), table); err != nil {
			return fmt.Errorf("save keys: %w", err)
		}
		fmt.Fprintf(os.Stdout, "\nCached %d team snapshot(s).\n", len(table))
	}
	return nil
}

// computeScopeKeys collapses each team's games into one TeamKeys under the
// selected mode.
func computeScopeKeys(plays []model.PlayRecord, schema model.Schema, regPlays []model.PlayRecord,
	teams []string, mode pipeline.Mode, th keys.Thresholds) ([]model.TeamKeys, error) {

	wcfg := weighting.DefaultConfig()
	var winPct map[string]float64
	if mode == pipeline.ModeOppWeighted {
		winPct = sos.WinPct(sos.BuildGameResults(regPlays))
	}

	out := make([]model.TeamKeys, 0, len(teams))
	for _, team := range teams {
		switch mode {
		case pipeline.ModeAggregate:
			out = append(out, keys.ComputeTeamKeys(plays, schema, team, th))
		case pipeline.ModePerGame, pipeline.ModeOppWeighted:
			rows := keys.TeamGameRows(plays, schema, team, th)
			if mode == pipeline.ModeOppWeighted {
				rows = weighting.WithOpponentWeights(rows, winPct, wcfg)
				rows = weighting.WithTurnoverDampener(rows, plays, schema, th, wcfg)
			}
			out = append(out, weighting.AggregateWeighted(team, rows))
		default:
			return nil, fmt.Errorf("unknown mode %q", mode)
		}
	}
	return out, nil
}

func teamsInScope(plays []model.PlayRecord) []string {
	seen := make(map[string]bool)
	for _, p := range plays {
		if p.PosTeam != "" {
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

func parseSeasonList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid season %q", part)
		}
		out = append(out, y)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no seasons given")
	}
	return out, nil
}
