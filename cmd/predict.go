package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/predict"
	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/scoremodel"
	"github.com/dmorales/go-nfl-keys/internal/sos"
	"github.com/dmorales/go-nfl-keys/internal/storage"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

var (
	predictSeason     int
	predictType       string
	predictMode       string
	predictUseSOS     bool
	predictExpectedTO bool
	predictScore      bool
	predictSave       bool
)

var predictCmd = &cobra.Command{
	Use:   "predict <teamA> <teamB>",
	Short: "Predict a matchup from the five keys",
	Args:  cobra.ExactArgs(2),
	RunE:  runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictSeason, "season", 0, "season year (required)")
	predictCmd.Flags().StringVar(&predictType, "type", "POST", "season segment the keys come from")
	predictCmd.Flags().StringVar(&predictMode, "mode", "aggregate", "aggregation mode (aggregate, per_game, opp_weighted)")
	predictCmd.Flags().BoolVar(&predictUseSOS, "sos", false, "add the strength-of-schedule term from REG results")
	predictCmd.Flags().BoolVar(&predictExpectedTO, "expected-to", false, "blend postseason and season turnover rates into the turnover margin")
	predictCmd.Flags().BoolVar(&predictScore, "score", false, "add an implied score from the trained score model")
	predictCmd.Flags().BoolVar(&predictSave, "save", false, "record the prediction in the database")
	predictCmd.MarkFlagRequired("season")
}

func runPredict(cmd *cobra.Command, args []string) error {
	teamA, teamB := args[0], args[1]
	mode, err := pipeline.ParseMode(predictMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(predictType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{predictSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{predictSeason})
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
	if predictUseSOS {
		if len(regPlays) == 0 {
			return fmt.Errorf("--sos needs regular-season plays for %d; import them first", predictSeason)
		}
		ctxA, ctxB = pipeline.SOSContexts(regPlays, teamA, teamB)
		z := sos.ZScores(sos.LeagueSOS(sos.BuildGameResults(regPlays)))
		if err := sos.ValidateZScores(z); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	if predictExpectedTO {
		ctxA = pipeline.WithExpectedTurnovers(ctxA, in, teamA)
		ctxB = pipeline.WithExpectedTurnovers(ctxB, in, teamB)
	}

	res := predict.Predict(m.KeysA, m.KeysB, ctxA, ctxB, predict.DefaultConfig())

	cHeader.Fprintf(os.Stdout, "\n%s vs %s  (%d %s, %s)\n", teamA, teamB, predictSeason, st, mode)
	report.PrintComparisonTable(os.Stdout, teamA, teamB, res.Explanation.KeyWinners)
	report.PrintPrediction(os.Stdout, res)

	if predictScore {
		if err := printImpliedScore(db, m.KeysA, m.KeysB, ctxA, ctxB, teamA, teamB); err != nil {
			return err
		}
	}

	if predictSave {
		if err := db.SavePrediction(predictSeason, string(mode), res); err != nil {
			return fmt.Errorf("save prediction: %w", err)
		}
		fmt.Fprintln(os.Stdout, "\nPrediction recorded.")
	}
	return nil
}

func printImpliedScore(db *storage.DB, a, b model.TeamKeys, ctxA, ctxB model.TeamContext, teamA, teamB string) error {
	art, err := db.LoadScoreModel("default")
	if err != nil {
		return fmt.Errorf("load score model: %w", err)
	}
	if art == nil {
		return fmt.Errorf("no trained score model; run 'nflkeys train' first")
	}
	features := scoremodel.Features(a, b, ctxA.SOSZ, ctxB.SOSZ)
	scoreA, scoreB := scoremodel.ImpliedScore(*art, features)
	fmt.Fprintf(os.Stdout, "\nImplied score: %s %.0f - %s %.0f  (model of %d games)\n",
		teamA, scoreA, teamB, scoreB, art.NSamples)
	return nil
}
