package pbp

import (
	"compress/gzip"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

const sampleCSV = `game_id,season,week,season_type,posteam,defteam,home_team,away_team,drive,drive_time_of_possession,play_type,down,ydstogo,yards_gained,yardline_100,touchdown,interception,fumble_lost,first_down,no_play,total_home_score,total_away_score
2023_19_MIA_KC,2023,19,POST,KC,MIA,KC,MIA,1,2:30,pass,1,10,12,75,0,0,0,1,0,0,0
2023_19_MIA_KC,2023,19,POST,KC,MIA,KC,MIA,1,2:30,run,2,5,3,,0,0,0,0,0,7,0
2023_19_MIA_KC,2023,19,POST,MIA,KC,KC,MIA,2,1:45,pass,3,8,NA,63,0,1,0,0,0,7,0
`

func TestReadPlays(t *testing.T) {
	ds, err := ReadPlays(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadPlays: %v", err)
	}
	if len(ds.Plays) != 3 {
		t.Fatalf("got %d plays, want 3", len(ds.Plays))
	}

	p := ds.Plays[0]
	if p.GameID != "2023_19_MIA_KC" || p.PosTeam != "KC" || p.Drive != 1 || p.Down != 1 {
		t.Errorf("row 0 parsed wrong: %+v", p)
	}
	if p.DriveTOP != "2:30" || p.YardsGained != 12 || !p.FirstDown {
		t.Errorf("row 0 parsed wrong: %+v", p)
	}
	if p.SeasonType != model.SeasonPost {
		t.Errorf("season type = %q, want POST", p.SeasonType)
	}

	// Blank numeric cells become NaN.
	if !math.IsNaN(ds.Plays[1].Yardline100) {
		t.Errorf("blank yardline = %v, want NaN", ds.Plays[1].Yardline100)
	}

	if !ds.Plays[2].Interception {
		t.Error("row 2 interception flag lost")
	}
	if !math.IsNaN(ds.Plays[2].YardsGained) {
		t.Errorf("NA yards_gained = %v, want NaN", ds.Plays[2].YardsGained)
	}
}

func TestReadPlaysSchemaAndAliases(t *testing.T) {
	ds, err := ReadPlays(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadPlays: %v", err)
	}
	s := ds.Schema
	if !s.HasFirstDown || !s.HasNoPlay || !s.HasInterception || !s.HasDriveTOP || !s.HasYardline {
		t.Errorf("schema underdetected: %+v", s)
	}
	if s.HasPasser || s.HasAirYards {
		t.Errorf("schema overdetected: %+v", s)
	}
	// total_home_score aliases to home_score.
	if !s.HasScores {
		t.Error("score columns not detected through alias")
	}
	if !ds.Columns["home_score"] || ds.Columns["total_home_score"] {
		t.Errorf("alias not canonicalized in column set: %v", ds.Columns)
	}
	if ds.Plays[1].HomeScore != 7 {
		t.Errorf("home score = %v, want 7", ds.Plays[1].HomeScore)
	}
}

func TestAliasDoesNotShadowCanonicalColumn(t *testing.T) {
	// nflverse headers carry goal_to_go before the real ydstogo; the
	// distance column must win.
	csv := `game_id,season,week,season_type,posteam,goal_to_go,ydstogo,yards_gained,total_home_score,home_score
2023_19_MIA_KC,2023,19,POST,KC,0,7,8,14,21
`
	ds, err := ReadPlays(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadPlays: %v", err)
	}
	p := ds.Plays[0]
	if p.YdsToGo != 7 {
		t.Errorf("YdsToGo = %v, want 7 (real ydstogo column shadowed)", p.YdsToGo)
	}
	if p.HomeScore != 21 {
		t.Errorf("HomeScore = %v, want 21 (real home_score column shadowed)", p.HomeScore)
	}
	if ds.Columns["goal_to_go"] || ds.Columns["total_home_score"] {
		t.Errorf("alias names leaked into column set: %v", ds.Columns)
	}
}

func TestFilterSeason(t *testing.T) {
	ds, err := ReadPlays(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ReadPlays: %v", err)
	}
	got, err := FilterSeason(ds.Plays, []int{2023}, model.SeasonPost)
	if err != nil {
		t.Fatalf("FilterSeason: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("got %d plays, want 3", len(got))
	}

	_, err = FilterSeason(ds.Plays, []int{2031}, model.SeasonPost)
	var nav *SeasonNotAvailableError
	if !errors.As(err, &nav) {
		t.Fatalf("expected SeasonNotAvailableError, got %v", err)
	}
	if len(nav.Seasons) != 1 || nav.Seasons[0] != 2031 {
		t.Errorf("error seasons = %v, want [2031]", nav.Seasons)
	}
}

func TestOpenCompressed(t *testing.T) {
	dir := t.TempDir()

	gzPath := filepath.Join(dir, "pbp.csv.gz")
	f, err := os.Create(gzPath)
	if err != nil {
		t.Fatal(err)
	}
	gw := gzip.NewWriter(f)
	if _, err := gw.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	zstPath := filepath.Join(dir, "pbp.csv.zst")
	f, err = os.Create(zstPath)
	if err != nil {
		t.Fatal(err)
	}
	zw, err := zstd.NewWriter(f)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := zw.Write([]byte(sampleCSV)); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{gzPath, zstPath} {
		ds, err := LoadPlays(path)
		if err != nil {
			t.Fatalf("LoadPlays(%s): %v", path, err)
		}
		if len(ds.Plays) != 3 {
			t.Errorf("%s: got %d plays, want 3", path, len(ds.Plays))
		}
	}
}

func TestReadSchedule(t *testing.T) {
	csv := `game_id,season,week,season_type,home_team,away_team,home_score,away_score
2023_01_DET_KC,2023,1,REG,KC,DET,20,21
2023_19_MIA_KC,2023,19,POST,KC,MIA,26,7
`
	games, err := ReadSchedule(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("ReadSchedule: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("got %d games, want 2", len(games))
	}
	if games[0].Winner() != "DET" {
		t.Errorf("winner = %q, want DET", games[0].Winner())
	}
	if games[1].SeasonType != model.SeasonPost || games[1].Week != 19 {
		t.Errorf("game 1 parsed wrong: %+v", games[1])
	}
}
