package ranks

import (
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

func TestPercentileHigherBetter(t *testing.T) {
	pop := []float64{10, 20, 30, 40}
	if got := Percentile(40, pop, true); got != 100 {
		t.Errorf("best value percentile = %v, want 100", got)
	}
	if got := Percentile(10, pop, true); got != 25 {
		t.Errorf("worst value percentile = %v, want 25 (counts itself)", got)
	}
	if got := Percentile(25, pop, true); got != 50 {
		t.Errorf("mid value percentile = %v, want 50", got)
	}
}

func TestPercentileLowerBetter(t *testing.T) {
	// Turnover-style key: fewest is best.
	pop := []float64{0, 1, 2, 3}
	if got := Percentile(0, pop, false); got != 100 {
		t.Errorf("fewest turnovers percentile = %v, want 100", got)
	}
	if got := Percentile(3, pop, false); got != 25 {
		t.Errorf("most turnovers percentile = %v, want 25", got)
	}
}

func TestPercentileEmptyPopulation(t *testing.T) {
	if got := Percentile(7, nil, true); got != 50 {
		t.Errorf("empty population percentile = %v, want neutral 50", got)
	}
}

func TestKeyPercentiles(t *testing.T) {
	mk := func(name string, top, to float64) model.TeamKeys {
		return model.TeamKeys{Team: name, TOPMinutes: top, Turnovers: to,
			ThirdDownConverted: 5, ThirdDownAttempts: 10, RedZoneTDDrives: 1, RedZoneTrips: 2}
	}
	pop := []model.TeamKeys{
		mk("KC", 32, 0),
		mk("BUF", 30, 1),
		mk("MIA", 28, 2),
	}
	got := KeyPercentiles(pop[0], pop)
	if got["TOP"] != 100 {
		t.Errorf("TOP percentile = %v, want 100", got["TOP"])
	}
	if got["TO"] != 100 {
		t.Errorf("TO percentile = %v, want 100 (fewest turnovers)", got["TO"])
	}
	// All three teams share identical rates, so everyone is "no better".
	if got["3D"] != 100 || got["RZ"] != 100 {
		t.Errorf("tied-rate percentiles = %v/%v, want 100/100", got["3D"], got["RZ"])
	}
	worst := KeyPercentiles(pop[2], pop)
	if worst["TOP"] != 33.3 {
		t.Errorf("TOP percentile = %v, want 33.3", worst["TOP"])
	}
}
