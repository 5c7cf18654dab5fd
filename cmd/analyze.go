package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/pipeline"
	"github.com/dmorales/go-nfl-keys/internal/predict"
	"github.com/dmorales/go-nfl-keys/internal/ranks"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

const analyzeSystemPrompt = `You are an NFL playoff analyst. You are given structured data from a
keys-computation tool and a question from the user.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable — focus on what actually separates the teams.
- Avoid generic football commentary unless it directly explains a pattern in the data.

Metrics glossary:
- TOP: time of possession in minutes. More possession means more control.
- TO: turnovers committed (lower is better). The heaviest single factor.
- BIG: big plays — passes of 15+ yards or runs of 10+ yards.
- 3D%: third-down conversion rate. Sustains drives.
- RZ_TD%: share of red-zone trips (drives reaching the 20) that end in a touchdown.
- SOS z: strength of schedule as a z-score across the league. Positive = harder slate.
- Percentile: where the team sits among the scope's teams for that key (higher is better).
- prob_a/prob_b: the engine's win probabilities; contributions are the additive
  logit terms behind them, top_drivers the largest ones.`

var (
	analyzeModel  string
	analyzeAPIKey string
	analyzeSeason int
	analyzeType   string
	analyzeMode   string
	analyzeRender bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzeMatchupCmd = &cobra.Command{
	Use:   "matchup <teamA> <teamB> <question>",
	Short: "Analyze a matchup prediction with AI",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnalyzeMatchup,
}

var analyzeTeamCmd = &cobra.Command{
	Use:   "team <team> <question>",
	Short: "Analyze one team's keys with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeTeam,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "claude-haiku-4-5-20251001", "Anthropic model to use")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().IntVar(&analyzeSeason, "season", 0, "season year (required)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeType, "type", "POST", "season segment (REG or POST)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeMode, "mode", "aggregate", "aggregation mode")
	analyzeCmd.PersistentFlags().BoolVar(&analyzeRender, "render", false, "buffer the response and render it as markdown")
	analyzeCmd.MarkPersistentFlagRequired("season")

	analyzeCmd.AddCommand(analyzeMatchupCmd)
	analyzeCmd.AddCommand(analyzeTeamCmd)
}

func runAnalyzeMatchup(cmd *cobra.Command, args []string) error {
	teamA, teamB, question := args[0], args[1], args[2]
	mode, err := pipeline.ParseMode(analyzeMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(analyzeType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{analyzeSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{analyzeSeason})
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

	doc := map[string]any{
		"subject": "matchup",
		"season":  analyzeSeason,
		"mode":    mode,
		"teams": map[string]any{
			teamA: keysContext(m.KeysA, ctxA),
			teamB: keysContext(m.KeysB, ctxB),
		},
		"prediction": map[string]any{
			"prob_a":        res.ProbA,
			"prob_b":        res.ProbB,
			"winner":        res.PredictedWinner,
			"keys_won_a":    res.KeysWonA,
			"keys_won_b":    res.KeysWonB,
			"ties":          res.Ties,
			"margins":       res.Explanation.Margins,
			"contributions": res.Explanation.Contributions,
			"top_drivers":   res.Explanation.TopDrivers,
			"logit":         res.Explanation.Logit,
		},
	}
	contextJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, string(contextJSON), question)
}

func runAnalyzeTeam(cmd *cobra.Command, args []string) error {
	team, question := args[0], args[1]
	mode, err := pipeline.ParseMode(analyzeMode)
	if err != nil {
		return err
	}
	st := model.SeasonType(strings.ToUpper(analyzeType))

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	plays, schema, err := loadStoredPlays(db, []int{analyzeSeason}, st)
	if err != nil {
		return err
	}
	regPlays, err := loadRegPlays(db, []int{analyzeSeason})
	if err != nil {
		return err
	}

	population := teamsInScope(plays)
	table, err := computeScopeKeys(plays, schema, regPlays, population, mode, thresholdsFromFlags())
	if err != nil {
		return err
	}
	var teamKeys *model.TeamKeys
	for i := range table {
		if table[i].Team == team {
			teamKeys = &table[i]
		}
	}
	if teamKeys == nil {
		return fmt.Errorf("no plays for %s in %d %s", team, analyzeSeason, st)
	}

	doc := map[string]any{
		"subject":     "team",
		"season":      analyzeSeason,
		"mode":        mode,
		"team":        team,
		"keys":        keysContext(*teamKeys, model.TeamContext{}),
		"percentiles": ranks.KeyPercentiles(*teamKeys, table),
		"scope_teams": len(table),
	}
	contextJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), analyzeAPIKey, analyzeModel, string(contextJSON), question)
}

// keysContext serialises one team's keys into compact JSON.
func keysContext(k model.TeamKeys, ctx model.TeamContext) map[string]any {
	out := map[string]any{
		"top_minutes": k.TOPMinutes,
		"turnovers":   k.Turnovers,
		"big_plays":   k.BigPlays,
		"third_down":  fmt.Sprintf("%.0f/%.0f (%.1f%%)", k.ThirdDownConverted, k.ThirdDownAttempts, k.ThirdDownPct()),
		"red_zone":    fmt.Sprintf("%.0f/%.0f (%.1f%%)", k.RedZoneTDDrives, k.RedZoneTrips, k.RedZoneTDPct()),
	}
	if ctx.HasSOSZ {
		out["sos_z"] = ctx.SOSZ
	}
	if ctx.HasExpectedTurnovers {
		out["expected_turnovers"] = ctx.ExpectedTurnovers
	}
	return out
}

// callAnthropic streams a response from the Anthropic API and prints it to stdout.
func callAnthropic(ctx context.Context, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	userMsg := fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question)

	fmt.Fprintln(os.Stdout, "\n─── AI Analysis ─────────────────────────────────────")

	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMsg)),
		},
	})

	var buf strings.Builder
	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				text := delta.Delta.AsTextDelta().Text
				if analyzeRender {
					buf.WriteString(text)
				} else {
					fmt.Fprint(os.Stdout, text)
				}
			}
		}
	}
	if analyzeRender && buf.Len() > 0 {
		rendered, rerr := glamour.Render(buf.String(), "auto")
		if rerr != nil {
			fmt.Fprint(os.Stdout, buf.String())
		} else {
			fmt.Fprint(os.Stdout, rendered)
		}
	}
	fmt.Fprintln(os.Stdout, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		// Provide a cleaner error message for common API errors.
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return fmt.Errorf("API authentication failed — check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
