package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/predict"
	"github.com/dmorales/go-nfl-keys/internal/ranks"
	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

var (
	exportSeason int
	exportType   string
	exportMode   string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export keys or predictions as JSON",
}

var exportKeysCmd = &cobra.Command{
	Use:   "keys [team...]",
	Short: "Export a season scope's keys and percentiles",
	RunE:  runExportKeys,
}

var exportPredictionCmd = &cobra.Command{
	Use:   "prediction <teamA> <teamB>",
	Short: "Export a full prediction artifact",
	Args:  cobra.ExactArgs(2),
	RunE:  runExportPrediction,
}

func init() {
	exportCmd.PersistentFlags().IntVar(&exportSeason, "season", 0, "season year (required)")
	exportCmd.PersistentFlags().StringVar(&exportType, "type", "POST", "season segment (REG or POST)")
	exportCmd.PersistentFlags().StringVar(&exportMode, "mode", "aggregate", "aggregation mode")
	exportCmd.PersistentFlags().StringVar(&exportOut, "out", "", "write to this file instead of stdout")
	exportCmd.MarkPersistentFlagRequired("season")

	exportCmd.AddCommand(exportKeysCmd)
	exportCmd.AddCommand(exportPredictionCmd)
}

func exportWriter() (io.Writer, func() error, error) {
	if exportOut == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(exportOut)
	if err != nil {
		return nil, nil, fmt.Errorf("create %s: %w", exportOut, err)
	}
	return f, f.Close, nil
}

type keysExportRow struct {
	Keys        model.TeamKeys     `json:"keys"`
	ThirdPct    float64            `json:"third_down_pct"`
	RedZonePct  float64            `json:"red_zone_td_pct"`
	Percentiles map[string]float64 `json:"percentiles"`
}

func runExportKeys(cmd *cobra.Command, args []string) error {
	mode, err := pipeline.ParseMode(exportMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(exportType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{exportSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{exportSeason})
	if err != nil {
		return err
	}

	population := teamsInScope(plays)
	table, err := computeScopeKeys(plays, schema, regPlays, population, mode, thresholdsFromFlags())
	if err != nil {
		return err
	}

	wanted := population
	if len(args) > 0 {
		wanted = args
	}
	byTeam := make(map[string]model.TeamKeys, len(table))
	for _, k := range table {
		byTeam[k.Team] = k
	}

	doc := make(map[string]keysExportRow, len(wanted))
	for _, team := range wanted {
		k, ok := byTeam[team]
		if !ok {
			return fmt.Errorf("no plays for %s in %d %s", team, exportSeason, st)
		}
		doc[team] = keysExportRow{
			Keys:        k,
			ThirdPct:    k.ThirdDownPct(),
			RedZonePct:  k.RedZoneTDPct(),
			Percentiles: ranks.KeyPercentiles(k, table),
		}
	}

	w, closeFn, err := exportWriter()
	if err != nil {
		return err
	}
	defer closeFn()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"season": exportSeason,
		"type":   st,
		"mode":   mode,
		"teams":  doc,
	})
}

func runExportPrediction(cmd *cobra.Command, args []string) error {
	teamA, teamB := args[0], args[1]
	mode, err := pipeline.ParseMode(exportMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(exportType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{exportSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{exportSeason})
	if err != nil {
		return err
	}

	in := pipeline.Inputs{
		Plays:      plays,
		Schema:     schema,
		RegPlays:   regPlays,
		Thresholds: thresholdsFromFlags(),
		Weighting:  weighting.DefaultConfig(),
	}
	m, err := pipeline.BuildMatchup(in, teamA, teamB, mode)
	if err != nil {
		return err
	}

	var ctxA, ctxB model.TeamContext
	if len(regPlays) > 0 {
		ctxA, ctxB = pipeline.SOSContexts(regPlays, teamA, teamB)
	}
	res := predict.Predict(m.KeysA, m.KeysB, ctxA, ctxB, predict.DefaultConfig())

	w, closeFn, err := exportWriter()
	if err != nil {
		return err
	}
	defer closeFn()

	return report.WritePredictionJSON(w, res, map[string]model.TeamKeys{
		teamA: m.KeysA,
		teamB: m.KeysB,
	})
}
