package pipeline

import (
	"math"
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/weighting"
)

func mkPlay(game, team, opp string, week int, st model.SeasonType) model.PlayRecord {
	return model.PlayRecord{
		GameID: game, PosTeam: team, DefTeam: opp,
		HomeTeam: team, AwayTeam: opp,
		Week: week, SeasonType: st, Season: 2023,
		Drive: 1, DriveTOP: "3:00",
		YdsToGo: math.NaN(), YardsGained: math.NaN(), Yardline100: math.NaN(),
		HomeScore: math.NaN(), AwayScore: math.NaN(), AirYards: math.NaN(),
	}
}

func testInputs() Inputs {
	post := []model.PlayRecord{
		mkPlay("p1", "KC", "MIA", 19, model.SeasonPost),
		mkPlay("p1", "MIA", "KC", 19, model.SeasonPost),
		mkPlay("p2", "KC", "BUF", 20, model.SeasonPost),
		mkPlay("p2", "BUF", "KC", 20, model.SeasonPost),
	}
	reg := func() []model.PlayRecord {
		a := mkPlay("r1", "MIA", "NYJ", 1, model.SeasonRegular)
		a.HomeScore = 30
		a.AwayScore = 10
		b := mkPlay("r2", "BUF", "NE", 1, model.SeasonRegular)
		b.HomeScore = 3
		b.AwayScore = 20
		return []model.PlayRecord{a, b}
	}()
	return Inputs{
		Plays:      post,
		RegPlays:   reg,
		Schema:     model.Schema{HasDriveTOP: true},
		Thresholds: keys.DefaultThresholds(),
		Weighting:  weighting.DefaultConfig(),
	}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"aggregate", "per_game", "opp_weighted"} {
		if _, err := ParseMode(s); err != nil {
			t.Errorf("ParseMode(%q): %v", s, err)
		}
	}
	if _, err := ParseMode("weighted"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestBuildMatchupAggregateTotals(t *testing.T) {
	m, err := BuildMatchup(testInputs(), "KC", "MIA", ModeAggregate)
	if err != nil {
		t.Fatalf("BuildMatchup: %v", err)
	}
	if m.KeysA.TOPMinutes != 6 { // two 3:00 drives summed
		t.Errorf("aggregate TOP = %v, want 6", m.KeysA.TOPMinutes)
	}
	if m.GamesA != nil || m.GamesB != nil {
		t.Error("aggregate mode must not build per-game tables")
	}
}

func TestBuildMatchupPerGameMeans(t *testing.T) {
	m, err := BuildMatchup(testInputs(), "KC", "MIA", ModePerGame)
	if err != nil {
		t.Fatalf("BuildMatchup: %v", err)
	}
	if m.KeysA.TOPMinutes != 3 { // mean of two 3:00 games
		t.Errorf("per-game TOP = %v, want 3", m.KeysA.TOPMinutes)
	}
	if len(m.GamesA) != 2 {
		t.Fatalf("got %d KC rows, want 2", len(m.GamesA))
	}
	for _, r := range m.GamesA {
		if r.Weight != 1 {
			t.Errorf("per-game weight = %v, want 1", r.Weight)
		}
	}
}

func TestBuildMatchupOppWeighted(t *testing.T) {
	m, err := BuildMatchup(testInputs(), "KC", "MIA", ModeOppWeighted)
	if err != nil {
		t.Fatalf("BuildMatchup: %v", err)
	}
	if len(m.GamesA) != 2 {
		t.Fatalf("got %d KC rows, want 2", len(m.GamesA))
	}
	// MIA won its only regular-season game (weight 1.25); BUF lost its only
	// one (weight 0.75).
	byOpp := map[string]float64{}
	for _, r := range m.GamesA {
		byOpp[r.Opponent] = r.Weight
	}
	if math.Abs(byOpp["MIA"]-1.25) > 1e-12 {
		t.Errorf("MIA game weight = %v, want 1.25", byOpp["MIA"])
	}
	if math.Abs(byOpp["BUF"]-0.75) > 1e-12 {
		t.Errorf("BUF game weight = %v, want 0.75", byOpp["BUF"])
	}
}

func TestSOSContexts(t *testing.T) {
	in := testInputs()
	ctxA, ctxB := SOSContexts(in.RegPlays, "MIA", "XXX")
	if !ctxA.HasSOSZ {
		t.Error("MIA should have an SOS z-score")
	}
	if ctxB.HasSOSZ {
		t.Error("unknown team should have no SOS context")
	}
}

func TestWithExpectedTurnovers(t *testing.T) {
	in := testInputs()
	ctx := WithExpectedTurnovers(model.TeamContext{}, in, "KC")
	if ctx.HasExpectedTurnovers {
		t.Error("KC has no regular-season games here; no blend possible")
	}

	// Give KC a regular-season game so both scopes exist.
	in.RegPlays = append(in.RegPlays, mkPlay("r3", "KC", "DEN", 2, model.SeasonRegular))
	ctx = WithExpectedTurnovers(model.TeamContext{}, in, "KC")
	if !ctx.HasExpectedTurnovers {
		t.Fatal("expected a blended turnover context")
	}
	if ctx.ExpectedTurnovers != 0.4 { // zero turnovers everywhere, clamped up
		t.Errorf("ExpectedTurnovers = %v, want clamp floor 0.4", ctx.ExpectedTurnovers)
	}
}
