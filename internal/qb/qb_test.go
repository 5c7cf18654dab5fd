package qb

import (
	"errors"
	"math"
	"testing"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

func qbSchema() model.Schema {
	return model.Schema{
		HasFirstDown:  true,
		HasFumbleLost: true,
		HasPasser:     true,
		HasRusher:     true,
		HasAirYards:   true,
		HasPassDepth:  true,
		HasTippedPass: true,
	}
}

func basePlay(team string) model.PlayRecord {
	return model.PlayRecord{
		GameID: "g1", PosTeam: team, Drive: 1,
		YdsToGo: math.NaN(), YardsGained: math.NaN(), Yardline100: math.NaN(),
		HomeScore: math.NaN(), AwayScore: math.NaN(), AirYards: math.NaN(), EPA: math.NaN(),
	}
}

func TestNameMatches(t *testing.T) {
	cases := []struct {
		pbp, qb string
		want    bool
	}{
		{"D.Maye", "D.Maye", true},
		{"D.Maye", "Drake Maye", true}, // token "MAYE" contained
		{"P.Mahomes", "Patrick Mahomes", true},
		{"J.Allen", "Drake Maye", false},
		{"", "Drake Maye", false},
	}
	for _, c := range cases {
		if got := NameMatches(c.pbp, c.qb); got != c.want {
			t.Errorf("NameMatches(%q, %q) = %v, want %v", c.pbp, c.qb, got, c.want)
		}
	}
}

func TestDeepINTIsQBFault(t *testing.T) {
	p := basePlay("NE")
	p.Interception = true
	p.PlayType = "pass"
	p.PasserName = "D.Maye"
	p.AirYards = 18
	p.PassDepth = "deep"

	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.QBFaultINT != 1 || a.NonQBFaultINT != 0 {
		t.Errorf("deep INT attribution = %v/%v, want 1/0", a.QBFaultINT, a.NonQBFaultINT)
	}
}

func TestShortINTIsDiscounted(t *testing.T) {
	p := basePlay("NE")
	p.Interception = true
	p.PlayType = "pass"
	p.PasserName = "D.Maye"
	p.AirYards = 3
	p.PassDepth = "short"

	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.QBFaultINT != 0 || a.NonQBFaultINT != 1 {
		t.Errorf("short INT attribution = %v/%v, want 0/1", a.QBFaultINT, a.NonQBFaultINT)
	}
}

func TestTippedINTIsDiscounted(t *testing.T) {
	p := basePlay("NE")
	p.Interception = true
	p.PlayType = "pass"
	p.PasserName = "D.Maye"
	p.TippedPass = true // air yards unknown

	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.NonQBFaultINT != 1 {
		t.Errorf("tipped INT attribution = %v/%v, want 0/1", a.QBFaultINT, a.NonQBFaultINT)
	}
}

func TestSackFumbleIsQBFault(t *testing.T) {
	p := basePlay("NE")
	p.FumbleLost = true
	p.PlayType = "sack"
	p.Sack = true
	p.PasserName = "D.Maye"

	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.QBFaultFum != 1 || a.NonQBFaultFum != 0 {
		t.Errorf("sack fumble attribution = %v/%v, want 1/0", a.QBFaultFum, a.NonQBFaultFum)
	}
}

func TestReceiverFumbleIsDiscounted(t *testing.T) {
	p := basePlay("NE")
	p.FumbleLost = true
	p.PlayType = "pass"
	p.PasserName = "D.Maye"

	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.QBFaultFum != 0 || a.NonQBFaultFum != 1 {
		t.Errorf("pass-play fumble attribution = %v/%v, want 0/1", a.QBFaultFum, a.NonQBFaultFum)
	}
}

func TestWeightedTurnoversCombineWeights(t *testing.T) {
	deep := basePlay("NE")
	deep.Interception = true
	deep.PlayType = "pass"
	deep.PasserName = "D.Maye"
	deep.AirYards = 20
	deep.PassDepth = "deep"

	short := basePlay("NE")
	short.Interception = true
	short.PlayType = "pass"
	short.PasserName = "D.Maye"
	short.AirYards = 2
	short.PassDepth = "short"

	a := TurnoverAttribution([]model.PlayRecord{deep, short}, qbSchema(), "D.Maye", "NE", DefaultConfig())
	if a.QBFaultINT != 1 || a.NonQBFaultINT != 1 {
		t.Fatalf("attribution = %v/%v, want 1/1", a.QBFaultINT, a.NonQBFaultINT)
	}
	if math.Abs(a.WeightedTurnovers-1.35) > 0.01 {
		t.Errorf("weighted turnovers = %v, want 1.35", a.WeightedTurnovers)
	}
}

func TestAttributionEmptyTeam(t *testing.T) {
	p := basePlay("SEA")
	a := TurnoverAttribution([]model.PlayRecord{p}, qbSchema(), "Maye", "NE", DefaultConfig())
	if a.WeightedTurnovers != 0 {
		t.Errorf("empty team weighted turnovers = %v, want 0", a.WeightedTurnovers)
	}
	if len(a.Notes) == 0 {
		t.Error("expected a diagnostic note for empty team scope")
	}
}

func TestBuildLine(t *testing.T) {
	complete := basePlay("KC")
	complete.PlayType = "pass"
	complete.PassAttempt = true
	complete.CompletePass = true
	complete.PasserName = "P.Mahomes"
	complete.YardsGained = 25
	complete.Touchdown = true

	incomplete := basePlay("KC")
	incomplete.PlayType = "pass"
	incomplete.PassAttempt = true
	incomplete.PasserName = "P.Mahomes"

	sack := basePlay("KC")
	sack.PlayType = "sack"
	sack.Sack = true
	sack.PasserName = "P.Mahomes"

	run := basePlay("KC")
	run.GameID = "g2"
	run.PlayType = "run"
	run.RushAttempt = true
	run.RusherName = "P.Mahomes"
	run.YardsGained = 12

	other := basePlay("KC")
	other.PlayType = "run"
	other.RushAttempt = true
	other.RusherName = "I.Pacheco"
	other.YardsGained = 50

	line := BuildLine([]model.PlayRecord{complete, incomplete, sack, run, other}, qbSchema(), "Patrick Mahomes", "KC")
	if line.Attempts != 2 || line.Completions != 1 || line.PassYards != 25 || line.PassTDs != 1 {
		t.Errorf("passing line wrong: %+v", line)
	}
	if line.Sacks != 1 || line.RushAttempts != 1 || line.RushYards != 12 {
		t.Errorf("sack/rush line wrong: %+v", line)
	}
	if line.Games != 2 {
		t.Errorf("games = %d, want 2", line.Games)
	}
	if line.CompletionPct() != 50 {
		t.Errorf("completion pct = %v, want 50", line.CompletionPct())
	}
}

func TestFindGamesAttributionError(t *testing.T) {
	schedule := []model.GameResult{
		{GameID: "g1", Season: 2023, SeasonType: model.SeasonPost, HomeTeam: "NE", AwayTeam: "BUF"},
	}
	// The QB's plays are all for another team.
	p := basePlay("KC")
	p.PlayType = "pass"
	p.PasserName = "D.Maye"

	_, err := FindGames([]model.PlayRecord{p}, qbSchema(), schedule, "Drake Maye", "NE", 2023)
	var attr *AttributionError
	if !errors.As(err, &attr) {
		t.Fatalf("expected AttributionError, got %v", err)
	}
	if len(attr.TeamsSeen) != 1 || attr.TeamsSeen[0] != "KC" {
		t.Errorf("TeamsSeen = %v, want [KC]", attr.TeamsSeen)
	}
}

func TestFindGamesHappyPath(t *testing.T) {
	schedule := []model.GameResult{
		{GameID: "g1", Season: 2023, SeasonType: model.SeasonPost, HomeTeam: "NE", AwayTeam: "BUF"},
		{GameID: "r1", Season: 2023, SeasonType: model.SeasonRegular, HomeTeam: "NE", AwayTeam: "MIA"},
	}
	p := basePlay("NE")
	p.PlayType = "pass"
	p.PasserName = "D.Maye"

	check, err := FindGames([]model.PlayRecord{p}, qbSchema(), schedule, "Drake Maye", "NE", 2023)
	if err != nil {
		t.Fatalf("FindGames: %v", err)
	}
	if len(check.GameIDs) != 1 || check.GameIDs[0] != "g1" {
		t.Errorf("game ids = %v, want [g1] (regular season excluded)", check.GameIDs)
	}
	if check.Opponents[0] != "BUF" {
		t.Errorf("opponent = %v, want BUF", check.Opponents[0])
	}
	if check.DropbacksByGame["g1"] != 1 {
		t.Errorf("dropbacks = %d, want 1", check.DropbacksByGame["g1"])
	}
}

func TestFindGamesOutOfScheduleGame(t *testing.T) {
	schedule := []model.GameResult{
		{GameID: "g1", Season: 2023, SeasonType: model.SeasonPost, HomeTeam: "NE", AwayTeam: "BUF"},
	}
	p := basePlay("NE")
	p.GameID = "g9"
	p.PlayType = "pass"
	p.PasserName = "D.Maye"

	if _, err := FindGames([]model.PlayRecord{p}, qbSchema(), schedule, "Drake Maye", "NE", 2023); err == nil {
		t.Error("expected error for QB plays outside the postseason schedule")
	}
}

func TestProductionScoreBounds(t *testing.T) {
	mk := func(drive int, down int, playType, passer string, yardline, yards float64, td bool) model.PlayRecord {
		p := basePlay("NE")
		p.Drive = drive
		p.Down = down
		p.PlayType = playType
		p.PasserName = passer
		p.Yardline100 = yardline
		p.YardsGained = yards
		p.Touchdown = td
		p.FirstDown = td
		return p
	}
	plays := []model.PlayRecord{
		mk(1, 3, "pass", "D.Maye", 45, 12, false),
		mk(1, 1, "pass", "D.Maye", 18, 18, true),
		mk(2, 3, "pass", "D.Maye", 60, 2, false),
		mk(2, 2, "sack", "D.Maye", 70, -7, false),
	}
	plays[0].FirstDown = true

	schema := qbSchema()
	c := ProductionComponents(plays, schema, nil, "Drake Maye", "NE", nil, DefaultConfig())
	if c.Games != 1 {
		t.Errorf("games = %d, want 1", c.Games)
	}
	if c.ThirdDownPct != 50 {
		t.Errorf("third down pct = %v, want 50", c.ThirdDownPct)
	}
	if c.RZTrips != 1 || c.RZTDDrives != 1 {
		t.Errorf("red zone = %d/%d, want 1/1", c.RZTDDrives, c.RZTrips)
	}

	s := ProductionScore(c, DefaultConfig())
	if s.Total < 0 || s.Total > 100 {
		t.Errorf("production score = %v, out of [0, 100]", s.Total)
	}
}

func TestDefenseStrength(t *testing.T) {
	schema := model.Schema{HasEPA: true}
	mk := func(def string, epa float64) model.PlayRecord {
		p := basePlay("XX")
		p.DefTeam = def
		p.PlayType = "pass"
		p.EPA = epa
		return p
	}
	var plays []model.PlayRecord
	for i := 0; i < 4; i++ {
		plays = append(plays, mk("NE", -0.2)) // stingy defense
		plays = append(plays, mk("LV", 0.3))
		plays = append(plays, mk("KC", 0.05))
	}
	z := DefenseStrength(plays, schema)
	if len(z) != 3 {
		t.Fatalf("got %d teams, want 3", len(z))
	}
	if z["NE"] <= z["KC"] || z["KC"] <= z["LV"] {
		t.Errorf("ordering wrong: NE=%v KC=%v LV=%v (NE should be toughest)", z["NE"], z["KC"], z["LV"])
	}

	if got := DefenseStrength(plays, model.Schema{}); len(got) != 0 {
		t.Errorf("expected empty map without EPA column, got %v", got)
	}
}
