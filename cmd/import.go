package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/pbp"
	"github.com/dmorales/go-nfl-keys/internal/report"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import play-by-play or schedule CSV files",
}

var importPlaysCmd = &cobra.Command{
	Use:   "plays <pbp.csv[.gz|.zst]>...",
	Short: "Import play-by-play files and report key availability",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImportPlays,
}

var importScheduleCmd = &cobra.Command{
	Use:   "schedule <schedule.csv[.gz|.zst]>...",
	Short: "Import schedule files with final scores",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runImportSchedule,
}

func init() {
	importCmd.AddCommand(importPlaysCmd)
	importCmd.AddCommand(importScheduleCmd)
}

func runImportPlays(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range args {
		fmt.Fprintf(os.Stdout, "Importing %s...\n", path)
		ds, err := pbp.LoadPlays(path)
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if err := db.InsertPlays(ds.Plays); err != nil {
			return fmt.Errorf("store plays from %s: %w", path, err)
		}
		cols := make([]string, 0, len(ds.Columns))
		for c := range ds.Columns {
			cols = append(cols, c)
		}
		if err := db.RecordImport(path, "plays", len(ds.Plays), cols); err != nil {
			return fmt.Errorf("record import: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Stored %d plays.\n\n", len(ds.Plays))
		report.PrintAvailability(os.Stdout, pbp.CheckAvailability(ds.Columns))
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

func runImportSchedule(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	for _, path := range args {
		r, err := pbp.Open(path)
		if err != nil {
			return err
		}
		games, err := pbp.ReadSchedule(r)
		r.Close()
		if err != nil {
			return fmt.Errorf("import %s: %w", path, err)
		}
		if err := db.InsertGames(games); err != nil {
			return fmt.Errorf("store games from %s: %w", path, err)
		}
		if err := db.RecordImport(path, "schedule", len(games), nil); err != nil {
			return fmt.Errorf("record import: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Stored %d games from %s.\n", len(games), path)
	}
	return nil
}
