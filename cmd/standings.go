package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/storage"
)

var (
	standingsSeason int
	standingsType   string
)

var standingsCmd = &cobra.Command{
	Use:   "standings [team]",
	Short: "Win/loss records from the stored schedule",
	Long: `Show win/loss/tie records for a season segment. With a team argument,
list that team's games instead, with final scores reconstructed from the
stored plays.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStandings,
}

func init() {
	standingsCmd.Flags().IntVar(&standingsSeason, "season", 0, "season year (required)")
	standingsCmd.Flags().StringVar(&standingsType, "type", "REG", "season segment (REG or POST)")
	standingsCmd.MarkFlagRequired("season")
}

func runStandings(cmd *cobra.Command, args []string) error {
	st := strings.ToUpper(standingsType)

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if len(args) == 1 {
		return printTeamGames(db, args[0], st)
	}

	records, err := db.TeamRecords(standingsSeason, st)
	if err != nil {
		return fmt.Errorf("load records: %w", err)
	}
	if len(records) == 0 {
		return fmt.Errorf("no schedule stored for %d %s; run 'nflkeys import schedule' first", standingsSeason, st)
	}

	fmt.Fprintf(os.Stdout, "%-6s  %3s  %3s  %3s  %3s\n", "TEAM", "W", "L", "T", "GP")
	for _, r := range records {
		fmt.Fprintf(os.Stdout, "%-6s  %3d  %3d  %3d  %3d\n", r.Team, r.Wins, r.Losses, r.Ties, r.Played)
	}
	return nil
}

func printTeamGames(db *storage.DB, team, st string) error {
	refs, err := db.TeamGames(team, standingsSeason, st)
	if err != nil {
		return fmt.Errorf("load games: %w", err)
	}
	if len(refs) == 0 {
		teams, terr := db.Teams([]int{standingsSeason}, st)
		if terr == nil && len(teams) > 0 {
			return fmt.Errorf("no games for %s in %d %s; teams in scope: %v", team, standingsSeason, st, teams)
		}
		return fmt.Errorf("no games for %s in %d %s", team, standingsSeason, st)
	}

	scores, err := db.GameScores([]int{standingsSeason}, st)
	if err != nil {
		return fmt.Errorf("load scores: %w", err)
	}
	byGame := make(map[string]storage.GameScoreRow, len(scores))
	for _, s := range scores {
		byGame[s.GameID] = s
	}

	fmt.Fprintf(os.Stdout, "%-18s  %4s  %-4s  %3s  %7s\n", "GAME", "WK", "OPP", "H/A", "SCORE")
	for _, ref := range refs {
		side := "A"
		if ref.Home {
			side = "H"
		}
		score := "—"
		if s, ok := byGame[ref.GameID]; ok {
			us, them := s.AwayScore, s.HomeScore
			if ref.Home {
				us, them = s.HomeScore, s.AwayScore
			}
			score = fmt.Sprintf("%.0f-%.0f", us, them)
		}
		fmt.Fprintf(os.Stdout, "%-18s  %4d  %-4s  %3s  %7s\n", ref.GameID, ref.Week, ref.Opponent, side, score)
	}
	return nil
}
