package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/predict"
	"github.com/dmorales/go-nfl-keys/internal/ranks"
	"github.com/dmorales/go-nfl-keys/internal/report"
	"github.com/dmorales/go-nfl-keys/internal/sos"
	"github.com/dmorales/go-nfl-keys/internal/storage"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	cGreeting.Println("nflkeys shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("nflkeys")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "keys":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: keys <season> [team...]")
				continue
			}
			shellKeys(db, args)
		case "predict":
			if len(args) != 3 {
				cError.Fprintln(os.Stderr, "usage: predict <season> <teamA> <teamB>")
				continue
			}
			shellPredict(db, args[0], args[1], args[2])
		case "ranks":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: ranks <season>")
				continue
			}
			shellRanks(db, args[0])
		case "sos":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: sos <season>")
				continue
			}
			shellSOS(db, args[0])
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list stored seasons and recent predictions"},
		{"keys <season> [team...]", "postseason keys table for a season"},
		{"predict <season> <teamA> <teamB>", "win probability for a matchup"},
		{"ranks <season>", "key percentiles across the postseason field"},
		{"sos <season>", "regular-season strength of schedule"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellSeason(arg string) (int, bool) {
	season, err := strconv.Atoi(arg)
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid season %q\n", arg)
		return 0, false
	}
	return season, true
}

func shellList(db *storage.DB) {
	seasons, err := db.Seasons()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(seasons) == 0 {
		cMuted.Println("No plays stored yet.")
		return
	}
	cHeader.Fprintf(os.Stdout, "%-8s  %8s  %8s  %6s\n", "SEASON", "REG", "POST", "GAMES")
	cMuted.Fprintf(os.Stdout, "%-8s  %8s  %8s  %6s\n", "────────", "────────", "────────", "──────")
	for _, season := range seasons {
		reg, err := db.LoadPlays([]int{season}, model.SeasonRegular)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		post, err := db.LoadPlays([]int{season}, model.SeasonPost)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		schedule, err := db.LoadSchedule(season, "")
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		fmt.Fprintf(os.Stdout, "%-8d  %8d  %8d  %6d\n", season, len(reg), len(post), len(schedule))
	}
}

// shellScope loads a season's postseason plays plus the regular-season
// context used for opponent weighting and SOS.
func shellScope(db *storage.DB, season int) ([]model.PlayRecord, model.Schema, []model.PlayRecord, bool) {
	plays, schema, err := loadStoredPlays(db, []int{season}, model.SeasonPost)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, model.Schema{}, nil, false
	}
	regPlays, err := loadRegPlays(db, []int{season})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return nil, model.Schema{}, nil, false
	}
	return plays, schema, regPlays, true
}

func shellKeys(db *storage.DB, args []string) {
	season, ok := shellSeason(args[0])
	if !ok {
		return
	}
	plays, schema, regPlays, ok := shellScope(db, season)
	if !ok {
		return
	}
	teams := args[1:]
	if len(teams) == 0 {
		teams = teamsInScope(plays)
	}
	table, err := computeScopeKeys(plays, schema, regPlays, teams, pipeline.ModeAggregate, thresholdsFromFlags())
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintScopeHeader(os.Stdout, season, model.SeasonPost, string(pipeline.ModeAggregate), len(table))
	report.PrintKeysTable(os.Stdout, table)
}

func shellPredict(db *storage.DB, seasonArg, teamA, teamB string) {
	season, ok := shellSeason(seasonArg)
	if !ok {
		return
	}
	plays, schema, regPlays, ok := shellScope(db, season)
	if !ok {
		return
	}
	in := pipeline.Inputs{
		Plays:      plays,
		Schema:     schema,
		RegPlays:   regPlays,
		Thresholds: thresholdsFromFlags(),
		Weighting:  weighting.DefaultConfig(),
	}
	m, err := pipeline.BuildMatchup(in, teamA, teamB, pipeline.ModeAggregate)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	var ctxA, ctxB model.TeamContext
	if len(regPlays) > 0 {
		ctxA, ctxB = pipeline.SOSContexts(regPlays, teamA, teamB)
	}
	res := predict.Predict(m.KeysA, m.KeysB, ctxA, ctxB, predict.DefaultConfig())
	report.PrintComparisonTable(os.Stdout, teamA, teamB, res.Explanation.KeyWinners)
	report.PrintPrediction(os.Stdout, res)
}

func shellRanks(db *storage.DB, seasonArg string) {
	season, ok := shellSeason(seasonArg)
	if !ok {
		return
	}
	plays, schema, regPlays, ok := shellScope(db, season)
	if !ok {
		return
	}
	population := teamsInScope(plays)
	table, err := computeScopeKeys(plays, schema, regPlays, population, pipeline.ModeAggregate, thresholdsFromFlags())
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	percentiles := make(map[string]map[string]float64, len(table))
	for _, k := range table {
		percentiles[k.Team] = ranks.KeyPercentiles(k, table)
	}
	report.PrintRanksTable(os.Stdout, percentiles)
}

func shellSOS(db *storage.DB, seasonArg string) {
	season, ok := shellSeason(seasonArg)
	if !ok {
		return
	}
	regPlays, err := loadRegPlays(db, []int{season})
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(regPlays) == 0 {
		cWarn.Fprintf(os.Stderr, "no regular-season plays for %d\n", season)
		return
	}
	s := sos.LeagueSOS(sos.BuildGameResults(regPlays))
	z := sos.ZScores(s)
	report.PrintSOSTable(os.Stdout, s, z)
	if err := sos.ValidateZScores(z); err != nil {
		cWarn.Fprintf(os.Stderr, "warning: %v\n", err)
	}
}
