package sos

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

func result(id, home, away string, hs, as float64) model.GameResult {
	return model.GameResult{GameID: id, HomeTeam: home, AwayTeam: away, HomeScore: hs, AwayScore: as}
}

func TestBuildGameResultsTakesMaxCumulativeScore(t *testing.T) {
	mk := func(game string, hs, as float64) model.PlayRecord {
		return model.PlayRecord{
			GameID: game, HomeTeam: "KC", AwayTeam: "BUF",
			HomeScore: hs, AwayScore: as,
			YdsToGo: math.NaN(), YardsGained: math.NaN(), Yardline100: math.NaN(), AirYards: math.NaN(),
		}
	}
	plays := []model.PlayRecord{
		mk("g1", 0, 0),
		mk("g1", 14, 7),
		mk("g1", math.NaN(), math.NaN()), // score columns blank on some rows
		mk("g1", 21, 17),
	}
	res := BuildGameResults(plays)
	if len(res) != 1 {
		t.Fatalf("got %d results, want 1", len(res))
	}
	if res[0].HomeScore != 21 || res[0].AwayScore != 17 {
		t.Errorf("score = %v-%v, want 21-17", res[0].HomeScore, res[0].AwayScore)
	}
	if res[0].Winner() != "KC" {
		t.Errorf("winner = %q, want KC", res[0].Winner())
	}
}

func TestWinPctTiesCountAgainstBoth(t *testing.T) {
	results := []model.GameResult{
		result("g1", "KC", "BUF", 27, 20),
		result("g2", "BUF", "KC", 24, 24), // tie
		result("g3", "KC", "MIA", 10, 31),
	}
	pct := WinPct(results)
	if pct["KC"] != 1.0/3 {
		t.Errorf("KC = %v, want 1/3", pct["KC"])
	}
	if pct["BUF"] != 0 {
		t.Errorf("BUF = %v, want 0", pct["BUF"])
	}
	if pct["MIA"] != 1 {
		t.Errorf("MIA = %v, want 1", pct["MIA"])
	}
}

func TestTeamSOSSkipsUnratedOpponents(t *testing.T) {
	results := []model.GameResult{
		result("g1", "KC", "BUF", 27, 20),
		result("g2", "KC", "XXX", 30, 3), // opponent not in the table
	}
	winPct := map[string]float64{"BUF": 0.75, "KC": 1}
	if got := TeamSOS("KC", results, winPct); got != 0.75 {
		t.Errorf("SOS = %v, want 0.75 (unrated opponent skipped)", got)
	}
	if got := TeamSOS("DEN", results, winPct); got != 0 {
		t.Errorf("SOS for team with no games = %v, want 0", got)
	}
}

func TestZScoresShape(t *testing.T) {
	vals := map[string]float64{"A": 0.40, "B": 0.50, "C": 0.55, "D": 0.65}
	z := ZScores(vals)

	var sum float64
	for _, v := range z {
		sum += v
	}
	mean := sum / float64(len(z))
	if math.Abs(mean) > 1e-12 {
		t.Errorf("z mean = %v, want 0", mean)
	}

	var ss float64
	for _, v := range z {
		ss += (v - mean) * (v - mean)
	}
	std := math.Sqrt(ss / float64(len(z)-1))
	if math.Abs(std-1) > 1e-12 {
		t.Errorf("z std = %v, want 1", std)
	}
}

func TestZScoresDegenerate(t *testing.T) {
	for name, vals := range map[string]map[string]float64{
		"single team": {"A": 0.5},
		"zero spread": {"A": 0.5, "B": 0.5, "C": 0.5},
	} {
		z := ZScores(vals)
		for team, v := range z {
			if v != 0 {
				t.Errorf("%s: z[%s] = %v, want 0", name, team, v)
			}
		}
	}
}

func TestValidateZScores(t *testing.T) {
	good := make(map[string]float64, 24)
	for i := 0; i < 24; i++ {
		// Symmetric spread around 0 with sample std close to 1.
		good[fmt.Sprintf("T%02d", i)] = (float64(i) - 11.5) / 7.0
	}
	if err := ValidateZScores(good); err != nil {
		t.Errorf("expected valid distribution, got %v", err)
	}

	small := map[string]float64{"A": -1, "B": 1}
	err := ValidateZScores(small)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	skewed := make(map[string]float64, 24)
	for i := 0; i < 24; i++ {
		skewed[fmt.Sprintf("T%02d", i)] = 5 + float64(i)*0.01
	}
	if err := ValidateZScores(skewed); err == nil {
		t.Error("expected error for off-center, compressed distribution")
	}
}
