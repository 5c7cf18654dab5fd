package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pbp"
	"github.com/dmorales/go-nfl-keys/internal/storage"
)

var dbPath string

var rootCmd = &cobra.Command{
	Use:   "nflkeys",
	Short: "NFL playoff keys engine",
	Long:  "Compute the five keys from play-by-play data, compare playoff teams and predict matchups.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaultDB := filepath.Join(mustUserHome(), ".nflkeys", "keys.db")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDB, "path to SQLite database")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(keysCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(sosCmd)
	rootCmd.AddCommand(standingsCmd)
	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(qbCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
}

func mustUserHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func openDB() (*storage.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	return db, nil
}

// loadStoredPlays pulls a play scope out of the database together with the
// schema descriptor rebuilt from the recorded import columns.
func loadStoredPlays(db *storage.DB, seasons []int, st model.SeasonType) ([]model.PlayRecord, model.Schema, error) {
	plays, err := db.LoadPlays(seasons, st)
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("load plays: %w", err)
	}
	if len(plays) == 0 {
		return nil, model.Schema{}, &pbp.SeasonNotAvailableError{Seasons: seasons, SeasonType: st}
	}
	cols, err := db.ImportedColumns("plays")
	if err != nil {
		return nil, model.Schema{}, fmt.Errorf("load import columns: %w", err)
	}
	set := make(map[string]bool, len(cols))
	for _, c := range cols {
		set[c] = true
	}
	return plays, pbp.SchemaFromColumns(set), nil
}

// loadRegPlays is loadStoredPlays for the regular-season companion scope,
// tolerating absence (returns nil when no REG rows are stored).
func loadRegPlays(db *storage.DB, seasons []int) ([]model.PlayRecord, error) {
	plays, err := db.LoadPlays(seasons, model.SeasonRegular)
	if err != nil {
		return nil, fmt.Errorf("load regular-season plays: %w", err)
	}
	return plays, nil
}
