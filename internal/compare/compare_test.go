package compare

import (
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

func TestCompareDirections(t *testing.T) {
	cases := []struct {
		key  string
		a, b float64
		want string
	}{
		{KeyTOP, 32.5, 27.5, "A"},
		{KeyTOP, 27.5, 32.5, "B"},
		{KeyTO, 1, 3, "A"}, // fewer turnovers wins
		{KeyTO, 3, 1, "B"},
		{KeyBIG, 6, 6, "TIE"},
		{Key3D, 45.0, 45.0 + 1e-12, "TIE"}, // inside epsilon
		{KeyRZ, 60, 40, "A"},
	}
	for _, c := range cases {
		got := Compare(c.key, c.a, c.b, DefaultEpsilon)
		if got.Winner != c.want {
			t.Errorf("Compare(%s, %v, %v) winner = %s, want %s", c.key, c.a, c.b, got.Winner, c.want)
		}
	}
}

func TestCompareMarginIsAlwaysAMinusB(t *testing.T) {
	c := Compare(KeyTO, 3, 1, DefaultEpsilon)
	if c.Margin != 2 {
		t.Errorf("margin = %v, want 2 (raw a-b even though B wins)", c.Margin)
	}
	if c.Winner != "B" {
		t.Errorf("winner = %s, want B", c.Winner)
	}
}

func TestCompareSwapSymmetry(t *testing.T) {
	for _, key := range KeyOrder {
		fwd := Compare(key, 10, 4, DefaultEpsilon)
		rev := Compare(key, 4, 10, DefaultEpsilon)
		if fwd.Margin != -rev.Margin {
			t.Errorf("%s: margins not negated: %v vs %v", key, fwd.Margin, rev.Margin)
		}
		if fwd.Winner == "TIE" || rev.Winner == "TIE" {
			t.Fatalf("%s: unexpected tie", key)
		}
		if fwd.Winner == rev.Winner {
			t.Errorf("%s: winner did not swap", key)
		}
	}
}

func TestCompareKeysTallySumsToFive(t *testing.T) {
	a := model.TeamKeys{Team: "A", TOPMinutes: 30, Turnovers: 1, BigPlays: 5,
		ThirdDownConverted: 5, ThirdDownAttempts: 10, RedZoneTDDrives: 2, RedZoneTrips: 4}
	b := model.TeamKeys{Team: "B", TOPMinutes: 30, Turnovers: 2, BigPlays: 3,
		ThirdDownConverted: 6, ThirdDownAttempts: 10, RedZoneTDDrives: 2, RedZoneTrips: 4}

	comps := CompareKeys(a, b, DefaultEpsilon)
	if len(comps) != 5 {
		t.Fatalf("got %d comparisons, want 5", len(comps))
	}
	wonA, wonB, tied := Tally(comps)
	if wonA+wonB+len(tied) != 5 {
		t.Errorf("tally %d+%d+%d != 5", wonA, wonB, len(tied))
	}
	if wonA != 2 || wonB != 1 || len(tied) != 2 {
		t.Errorf("tally = %d/%d/%v, want 2/1/[TOP RZ]", wonA, wonB, tied)
	}
}
