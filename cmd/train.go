package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/scoremodel"
	"github.com/dmorales/go-nfl-keys/internal/sos"
)

var (
	trainSeasons string
	trainAlpha   float64
	trainName    string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit the implied-score regression on stored postseason games",
	Args:  cobra.NoArgs,
	RunE:  runTrain,
}

func init() {
	trainCmd.Flags().StringVar(&trainSeasons, "seasons", "", "comma-separated season years (required)")
	trainCmd.Flags().Float64Var(&trainAlpha, "alpha", scoremodel.DefaultAlpha, "ridge regularization strength")
	trainCmd.Flags().StringVar(&trainName, "name", "default", "name to store the model under")
	trainCmd.MarkFlagRequired("seasons")
}

func runTrain(cmd *cobra.Command, args []string) error {
	seasons, err := parseSeasonList(trainSeasons)
	if err != nil {
		return err
	}

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	th := thresholdsFromFlags()
	var samples []scoremodel.Sample
	for _, season := range seasons {
		plays, schema, err := loadStoredPlays(db, []int{season}, model.SeasonPost)
		if err != nil {
			return err
		}
		schedule, err := db.LoadSchedule(season, model.SeasonPost)
		if err != nil {
			return fmt.Errorf("load schedule for %d: %w", season, err)
		}

		var sosZ map[string]float64
		regPlays, err := loadRegPlays(db, []int{season})
		if err != nil {
			return err
		}
		if len(regPlays) > 0 {
			sosZ = sos.ZScores(sos.LeagueSOS(sos.BuildGameResults(regPlays)))
		}

		seasonSamples := scoremodel.BuildSamples(plays, schema, th, schedule, sosZ)
		fmt.Fprintf(os.Stdout, "Season %d: %d game sample(s)\n", season, len(seasonSamples))
		samples = append(samples, seasonSamples...)
	}

	art, err := scoremodel.Fit(samples, trainAlpha)
	if err != nil {
		return err
	}
	if err := db.SaveScoreModel(trainName, art); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	fmt.Fprintf(os.Stdout, "\nFitted %q on %d samples (alpha %.2f)\n", trainName, art.NSamples, trainAlpha)
	fmt.Fprintf(os.Stdout, "%-12s  %10s  %10s\n", "FEATURE", "MARGIN", "TOTAL")
	for i, name := range art.FeatureNames {
		fmt.Fprintf(os.Stdout, "%-12s  %10.4f  %10.4f\n", name, art.MarginCoef[i], art.TotalCoef[i])
	}
	fmt.Fprintf(os.Stdout, "%-12s  %10.4f  %10.4f\n", "intercept", art.MarginIntercept, art.TotalIntercept)
	fmt.Fprintf(os.Stdout, "%-12s  %10.4f  %10.4f\n", "residual sd", art.MarginStd, art.TotalStd)
	return nil
}
