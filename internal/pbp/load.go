// Package pbp is the data-source boundary: it reads play-by-play and
// schedule CSV files (plain, gzip or zstd compressed), normalizes column
// aliases, detects which optional columns are present, and validates the
// table per key group before anything reaches the core.
package pbp

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// columnAliases maps provider-specific column names to the canonical ones.
var columnAliases = map[string]string{
	"goal_to_go":       "ydstogo",
	"total_home_score": "home_score",
	"total_away_score": "away_score",
	"pass_length":      "pass_depth",
}

// Open opens a CSV file, transparently decompressing .gz and .zst.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	switch {
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd reader for %s: %w", path, err)
		}
		return &zstdCloser{zr: zr, f: f}, nil
	case strings.HasSuffix(path, ".gz"):
		gr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader for %s: %w", path, err)
		}
		return &gzipCloser{gr: gr, f: f}, nil
	default:
		return f, nil
	}
}

type zstdCloser struct {
	zr *zstd.Decoder
	f  *os.File
}

func (c *zstdCloser) Read(p []byte) (int, error) { return c.zr.Read(p) }
func (c *zstdCloser) Close() error {
	c.zr.Close()
	return c.f.Close()
}

type gzipCloser struct {
	gr *gzip.Reader
	f  *os.File
}

func (c *gzipCloser) Read(p []byte) (int, error) { return c.gr.Read(p) }
func (c *gzipCloser) Close() error {
	c.gr.Close()
	return c.f.Close()
}

// table is a thin header-indexed view over one CSV row.
type table struct {
	index map[string]int
	row   []string
}

func (t *table) has(col string) bool {
	_, ok := t.index[col]
	return ok
}

func (t *table) str(col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(t.row) {
		return ""
	}
	return strings.TrimSpace(t.row[i])
}

// num returns the cell as float64, NaN for blank/NA/unparseable.
func (t *table) num(col string) float64 {
	s := t.str(col)
	if s == "" || s == "NA" || s == "NaN" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// intval returns the cell as int, 0 for missing.
func (t *table) intval(col string) int {
	v := t.num(col)
	if math.IsNaN(v) {
		return 0
	}
	return int(v)
}

// boolval treats any nonzero numeric (or "true") as set.
func (t *table) boolval(col string) bool {
	s := t.str(col)
	if s == "" || s == "NA" {
		return false
	}
	if strings.EqualFold(s, "true") {
		return true
	}
	v, err := strconv.ParseFloat(s, 64)
	return err == nil && v != 0
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	aliasPos := make(map[string]int)
	for i, raw := range header {
		col := strings.ToLower(strings.TrimSpace(raw))
		if _, isAlias := columnAliases[col]; isAlias {
			if _, dup := aliasPos[col]; !dup {
				aliasPos[col] = i
			}
			continue
		}
		if _, dup := index[col]; !dup {
			index[col] = i
		}
	}
	// An alias stands in for its canonical column only when the canonical
	// column itself is absent. nflverse carries goal_to_go alongside the
	// real ydstogo; mapping it unconditionally would shadow the distance.
	for alias, i := range aliasPos {
		canon := columnAliases[alias]
		if _, ok := index[canon]; !ok {
			index[canon] = i
		}
	}
	return index
}

// Dataset is one loaded play-by-play table: the rows, the optional-column
// schema descriptor, and the full canonical column set for availability
// checks.
type Dataset struct {
	Plays   []model.PlayRecord
	Schema  model.Schema
	Columns map[string]bool
}

// ReadPlays parses a play-by-play CSV.
func ReadPlays(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	index := headerIndex(header)

	cols := make(map[string]bool, len(index))
	for col := range index {
		cols[col] = true
	}
	schema := SchemaFromColumns(cols)

	t := &table{index: index}

	var plays []model.PlayRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(plays)+2, err)
		}
		t.row = row
		plays = append(plays, model.PlayRecord{
			GameID:       t.str("game_id"),
			Season:       t.intval("season"),
			Week:         t.intval("week"),
			SeasonType:   model.SeasonType(strings.ToUpper(t.str("season_type"))),
			PosTeam:      t.str("posteam"),
			DefTeam:      t.str("defteam"),
			HomeTeam:     t.str("home_team"),
			AwayTeam:     t.str("away_team"),
			Drive:        t.intval("drive"),
			DriveTOP:     t.str("drive_time_of_possession"),
			PlayType:     t.str("play_type"),
			Down:         t.intval("down"),
			YdsToGo:      t.num("ydstogo"),
			YardsGained:  t.num("yards_gained"),
			Yardline100:  t.num("yardline_100"),
			Touchdown:    t.boolval("touchdown"),
			Interception: t.boolval("interception"),
			FumbleLost:   t.boolval("fumble_lost"),
			FirstDown:    t.boolval("first_down"),
			NoPlay:       t.boolval("no_play"),
			HomeScore:    t.num("home_score"),
			AwayScore:    t.num("away_score"),
			PasserName:   t.str("passer_player_name"),
			RusherName:   t.str("rusher_player_name"),
			PassAttempt:  t.boolval("pass_attempt"),
			CompletePass: t.boolval("complete_pass"),
			RushAttempt:  t.boolval("rush_attempt"),
			Sack:         t.boolval("sack"),
			QBScramble:   t.boolval("qb_scramble"),
			QBHit:        t.boolval("qb_hit"),
			Fumble:       t.boolval("fumble"),
			AirYards:     t.num("air_yards"),
			PassDepth:    strings.ToLower(t.str("pass_depth")),
			TippedPass:   t.boolval("tipped_pass"),
			EPA:          t.num("epa"),
		})
	}

	return &Dataset{Plays: plays, Schema: schema, Columns: cols}, nil
}

// SchemaFromColumns builds the optional-column descriptor from a canonical
// column set. Column names must already be alias-normalized.
func SchemaFromColumns(cols map[string]bool) model.Schema {
	return model.Schema{
		HasFirstDown:    cols["first_down"],
		HasNoPlay:       cols["no_play"],
		HasInterception: cols["interception"],
		HasFumbleLost:   cols["fumble_lost"],
		HasDriveTOP:     cols["drive_time_of_possession"],
		HasYardline:     cols["yardline_100"],
		HasScores:       cols["home_score"] && cols["away_score"],
		HasPasser:       cols["passer_player_name"],
		HasRusher:       cols["rusher_player_name"],
		HasAirYards:     cols["air_yards"],
		HasPassDepth:    cols["pass_depth"],
		HasTippedPass:   cols["tipped_pass"],
		HasQBScramble:   cols["qb_scramble"],
		HasQBHit:        cols["qb_hit"],
		HasEPA:          cols["epa"],
	}
}

// LoadPlays opens and parses a play-by-play file in one step.
func LoadPlays(path string) (*Dataset, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return ReadPlays(r)
}

// ReadSchedule parses a schedule CSV into final score lines.
func ReadSchedule(r io.Reader) ([]model.GameResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	t := &table{index: headerIndex(header)}

	var games []model.GameResult
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", len(games)+2, err)
		}
		t.row = row
		games = append(games, model.GameResult{
			GameID:     t.str("game_id"),
			Season:     t.intval("season"),
			Week:       t.intval("week"),
			SeasonType: model.SeasonType(strings.ToUpper(t.str("season_type"))),
			HomeTeam:   t.str("home_team"),
			AwayTeam:   t.str("away_team"),
			HomeScore:  orZero(t.num("home_score")),
			AwayScore:  orZero(t.num("away_score")),
		})
	}
	return games, nil
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// FilterSeason keeps rows for the given seasons and segment. "" keeps all
// segments; an empty season list keeps all years. An empty result is a
// SeasonNotAvailableError, never an implicit all-zero stat line.
func FilterSeason(plays []model.PlayRecord, seasons []int, st model.SeasonType) ([]model.PlayRecord, error) {
	want := make(map[int]bool, len(seasons))
	for _, s := range seasons {
		want[s] = true
	}
	var out []model.PlayRecord
	for _, p := range plays {
		if len(want) > 0 && !want[p.Season] {
			continue
		}
		if st != "" && p.SeasonType != st {
			continue
		}
		out = append(out, p)
	}
	if len(out) == 0 {
		return nil, &SeasonNotAvailableError{Seasons: seasons, SeasonType: st}
	}
	return out, nil
}
