package weighting

import (
	"math"
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
)

func row(game, opp string, k model.TeamKeys) model.TeamGameKeys {
	return model.TeamGameKeys{GameID: game, Opponent: opp, Weight: 1, Keys: k}
}

func TestWithOpponentWeights(t *testing.T) {
	rows := []model.TeamGameKeys{
		row("g1", "BUF", model.TeamKeys{}),
		row("g2", "CAR", model.TeamKeys{}),
		row("g3", "XXX", model.TeamKeys{}), // unrated opponent
	}
	winPct := map[string]float64{"BUF": 1.0, "CAR": 0.0}

	got := WithOpponentWeights(rows, winPct, DefaultConfig())
	want := []float64{1.25, 0.75, 1.0}
	for i, w := range want {
		if math.Abs(got[i].Weight-w) > 1e-12 {
			t.Errorf("row %d weight = %v, want %v", i, got[i].Weight, w)
		}
	}
	if rows[0].Weight != 1 {
		t.Error("input rows were mutated")
	}
}

func TestWithTurnoverDampener(t *testing.T) {
	mk := func(game, team string, fumbleLost bool) model.PlayRecord {
		return model.PlayRecord{
			GameID: game, PosTeam: team, FumbleLost: fumbleLost,
			YdsToGo: math.NaN(), YardsGained: math.NaN(), Yardline100: math.NaN(), AirYards: math.NaN(),
		}
	}
	// Opponent melts down with 4 giveaways in g1, clean in g2.
	var plays []model.PlayRecord
	for i := 0; i < 4; i++ {
		plays = append(plays, mk("g1", "DEN", true))
	}
	plays = append(plays, mk("g1", "KC", false), mk("g2", "LV", false), mk("g2", "KC", false))

	rows := []model.TeamGameKeys{
		row("g1", "DEN", model.TeamKeys{}),
		row("g2", "LV", model.TeamKeys{}),
	}
	got := WithTurnoverDampener(rows, plays, model.Schema{}, keys.DefaultThresholds(), DefaultConfig())
	if got[0].Weight != 0.80 {
		t.Errorf("meltdown game weight = %v, want 0.80", got[0].Weight)
	}
	if got[1].Weight != 1 {
		t.Errorf("clean game weight = %v, want 1", got[1].Weight)
	}
}

func TestAggregateWeighted(t *testing.T) {
	k1 := model.TeamKeys{TOPMinutes: 30, Turnovers: 2, BigPlays: 4,
		ThirdDownConverted: 4, ThirdDownAttempts: 10, RedZoneTDDrives: 2, RedZoneTrips: 4}
	k2 := model.TeamKeys{TOPMinutes: 20, Turnovers: 0, BigPlays: 1,
		ThirdDownConverted: 6, ThirdDownAttempts: 10, RedZoneTDDrives: 0, RedZoneTrips: 2}

	r1 := row("g1", "BUF", k1)
	r1.Weight = 3
	r2 := row("g2", "MIA", k2)
	r2.Weight = 1

	agg := AggregateWeighted("KC", []model.TeamGameKeys{r1, r2})
	if agg.TOPMinutes != 27.5 {
		t.Errorf("TOPMinutes = %v, want 27.5", agg.TOPMinutes)
	}
	// (3*2 + 1*0)/4 = 1.5, rounded to a whole count.
	if agg.Turnovers != 2 {
		t.Errorf("Turnovers = %v, want 2", agg.Turnovers)
	}
	if agg.BigPlays != 3 { // (12+1)/4 = 3.25
		t.Errorf("BigPlays = %v, want 3", agg.BigPlays)
	}
	// Rates come from weighted sums: (3*4+6)/(3*10+10) = 18/40.
	if got := agg.ThirdDownPct(); got != 45 {
		t.Errorf("ThirdDownPct = %v, want 45", got)
	}
	if got := agg.RedZoneTDPct(); got != model.Round2(100*6.0/14.0) {
		t.Errorf("RedZoneTDPct = %v, want %v", got, model.Round2(100*6.0/14.0))
	}
}

func TestAggregateWeightedZeroTotalWeightFallsBackUnweighted(t *testing.T) {
	r1 := row("g1", "BUF", model.TeamKeys{TOPMinutes: 30, Turnovers: 1})
	r1.Weight = 0
	r2 := row("g2", "MIA", model.TeamKeys{TOPMinutes: 20, Turnovers: 3})
	r2.Weight = 0

	agg := AggregateWeighted("KC", []model.TeamGameKeys{r1, r2})
	if agg.TOPMinutes != 25 {
		t.Errorf("TOPMinutes = %v, want unweighted mean 25", agg.TOPMinutes)
	}
	if agg.Turnovers != 2 {
		t.Errorf("Turnovers = %v, want 2", agg.Turnovers)
	}
}

func TestAggregateWeightedEmpty(t *testing.T) {
	agg := AggregateWeighted("KC", nil)
	if agg != (model.TeamKeys{Team: "KC"}) {
		t.Errorf("expected zeroed keys, got %+v", agg)
	}
}
