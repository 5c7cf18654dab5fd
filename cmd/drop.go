package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	dropForce  bool
	dropSeason int
)

// dropCmd deletes stored data, either one season or the whole database file.
var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Delete the keys database or a single season",
	Long:  "Permanently delete the SQLite keys database, or just one season's plays, games and cached keys with --season. Re-import afterwards to rebuild.",
	Args:  cobra.NoArgs,
	RunE:  runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().IntVar(&dropSeason, "season", 0, "delete only this season's data")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if !dropForce {
		if dropSeason != 0 {
			fmt.Fprintf(os.Stderr, "This will permanently delete season %d from: %s\n", dropSeason, dbPath)
		} else {
			fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		}
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}

	if dropSeason != 0 {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := db.DropSeason(dropSeason); err != nil {
			return fmt.Errorf("drop season: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Deleted season %d\n", dropSeason)
		return nil
	}

	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}
