package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// RecordImport logs one source file import with its canonical column set.
func (db *DB) RecordImport(source, kind string, rowCount int, columns []string) error {
	_, err := db.conn.Exec(`
		INSERT INTO imports(source, kind, imported_at, row_count, columns)
		VALUES (?, ?, ?, ?, ?)`,
		source, kind, time.Now().UTC().Format(time.RFC3339), rowCount, strings.Join(columns, ","),
	)
	return err
}

// ImportedColumns returns the union of column names across all imports of
// the given kind. Schema detection runs against this set on load.
func (db *DB) ImportedColumns(kind string) ([]string, error) {
	rows, err := db.conn.Query(`SELECT columns FROM imports WHERE kind = ?`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var out []string
	for rows.Next() {
		var cols string
		if err := rows.Scan(&cols); err != nil {
			return nil, err
		}
		for _, c := range strings.Split(cols, ",") {
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out, rows.Err()
}

// InsertGames upserts schedule rows. Uses INSERT OR REPLACE for idempotency.
func (db *DB) InsertGames(games []model.GameResult) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO games(
			game_id, season, week, season_type,
			home_team, away_team, home_score, away_score
		) VALUES (?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, g := range games {
		_, err = stmt.Exec(
			g.GameID, g.Season, g.Week, string(g.SeasonType),
			g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore,
		)
		if err != nil {
			return fmt.Errorf("insert game %s: %w", g.GameID, err)
		}
	}
	return tx.Commit()
}

// InsertPlays bulk-inserts play rows in a transaction, numbering plays per
// game in source order so reloads preserve it.
func (db *DB) InsertPlays(plays []model.PlayRecord) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO plays(
			game_id, play_no, season, week, season_type,
			posteam, defteam, home_team, away_team,
			drive, drive_top, play_type, down,
			ydstogo, yards_gained, yardline_100,
			touchdown, interception, fumble_lost, first_down, no_play,
			home_score, away_score,
			passer_player_name, rusher_player_name,
			pass_attempt, complete_pass, rush_attempt,
			sack, qb_scramble, qb_hit, fumble,
			air_yards, pass_depth, tipped_pass, epa
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	seq := make(map[string]int)
	for _, p := range plays {
		seq[p.GameID]++
		_, err = stmt.Exec(
			p.GameID, seq[p.GameID], p.Season, p.Week, string(p.SeasonType),
			p.PosTeam, p.DefTeam, p.HomeTeam, p.AwayTeam,
			p.Drive, p.DriveTOP, p.PlayType, p.Down,
			nf(p.YdsToGo), nf(p.YardsGained), nf(p.Yardline100),
			boolInt(p.Touchdown), boolInt(p.Interception), boolInt(p.FumbleLost),
			boolInt(p.FirstDown), boolInt(p.NoPlay),
			nf(p.HomeScore), nf(p.AwayScore),
			p.PasserName, p.RusherName,
			boolInt(p.PassAttempt), boolInt(p.CompletePass), boolInt(p.RushAttempt),
			boolInt(p.Sack), boolInt(p.QBScramble), boolInt(p.QBHit), boolInt(p.Fumble),
			nf(p.AirYards), p.PassDepth, boolInt(p.TippedPass), nf(p.EPA),
		)
		if err != nil {
			return fmt.Errorf("insert play %s #%d: %w", p.GameID, seq[p.GameID], err)
		}
	}
	return tx.Commit()
}

const playColumns = `
	game_id, season, week, season_type,
	posteam, defteam, home_team, away_team,
	drive, drive_top, play_type, down,
	ydstogo, yards_gained, yardline_100,
	touchdown, interception, fumble_lost, first_down, no_play,
	home_score, away_score,
	passer_player_name, rusher_player_name,
	pass_attempt, complete_pass, rush_attempt,
	sack, qb_scramble, qb_hit, fumble,
	air_yards, pass_depth, tipped_pass, epa`

// LoadPlays returns plays for the given seasons and segment in stored
// order. Empty seasons or "" season type mean no filter on that axis.
func (db *DB) LoadPlays(seasons []int, st model.SeasonType) ([]model.PlayRecord, error) {
	query := "SELECT" + playColumns + " FROM plays"
	var where []string
	var args []any
	if len(seasons) > 0 {
		ph := make([]string, len(seasons))
		for i, s := range seasons {
			ph[i] = "?"
			args = append(args, s)
		}
		where = append(where, "season IN ("+strings.Join(ph, ",")+")")
	}
	if st != "" {
		where = append(where, "season_type = ?")
		args = append(args, string(st))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY game_id, play_no"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.PlayRecord
	for rows.Next() {
		var p model.PlayRecord
		var typ string
		var ydstogo, yards, yardline, home, away, air, epa sql.NullFloat64
		var td, intc, fl, fd, np, pa, cp, ra, sk, scr, hit, fum, tip int
		if err := rows.Scan(
			&p.GameID, &p.Season, &p.Week, &typ,
			&p.PosTeam, &p.DefTeam, &p.HomeTeam, &p.AwayTeam,
			&p.Drive, &p.DriveTOP, &p.PlayType, &p.Down,
			&ydstogo, &yards, &yardline,
			&td, &intc, &fl, &fd, &np,
			&home, &away,
			&p.PasserName, &p.RusherName,
			&pa, &cp, &ra,
			&sk, &scr, &hit, &fum,
			&air, &p.PassDepth, &tip, &epa,
		); err != nil {
			return nil, err
		}
		p.SeasonType = model.SeasonType(typ)
		p.YdsToGo = unf(ydstogo)
		p.YardsGained = unf(yards)
		p.Yardline100 = unf(yardline)
		p.HomeScore = unf(home)
		p.AwayScore = unf(away)
		p.AirYards = unf(air)
		p.EPA = unf(epa)
		p.Touchdown = td != 0
		p.Interception = intc != 0
		p.FumbleLost = fl != 0
		p.FirstDown = fd != 0
		p.NoPlay = np != 0
		p.PassAttempt = pa != 0
		p.CompletePass = cp != 0
		p.RushAttempt = ra != 0
		p.Sack = sk != 0
		p.QBScramble = scr != 0
		p.QBHit = hit != 0
		p.Fumble = fum != 0
		p.TippedPass = tip != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// LoadSchedule returns stored games, optionally filtered by season and
// segment, ordered by week.
func (db *DB) LoadSchedule(season int, st model.SeasonType) ([]model.GameResult, error) {
	query := `SELECT game_id, season, week, season_type, home_team, away_team, home_score, away_score FROM games`
	var where []string
	var args []any
	if season != 0 {
		where = append(where, "season = ?")
		args = append(args, season)
	}
	if st != "" {
		where = append(where, "season_type = ?")
		args = append(args, string(st))
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY season, week, game_id"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.GameResult
	for rows.Next() {
		var g model.GameResult
		var typ string
		if err := rows.Scan(&g.GameID, &g.Season, &g.Week, &typ,
			&g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore); err != nil {
			return nil, err
		}
		g.SeasonType = model.SeasonType(typ)
		out = append(out, g)
	}
	return out, rows.Err()
}

// Seasons lists the distinct seasons with stored plays, newest first.
func (db *DB) Seasons() ([]int, error) {
	rows, err := db.conn.Query(`SELECT DISTINCT season FROM plays ORDER BY season DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var s int
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveTeamKeys upserts a computed keys snapshot for one scope.
func (db *DB) SaveTeamKeys(season int, st model.SeasonType, mode string, keys []model.TeamKeys) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO team_keys(
			season, season_type, team, mode,
			top_minutes, turnovers, big_plays,
			third_down_conv, third_down_att, rz_td_drives, rz_trips,
			computed_at
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, k := range keys {
		_, err = stmt.Exec(
			season, string(st), k.Team, mode,
			k.TOPMinutes, k.Turnovers, k.BigPlays,
			k.ThirdDownConverted, k.ThirdDownAttempts, k.RedZoneTDDrives, k.RedZoneTrips,
			now,
		)
		if err != nil {
			return fmt.Errorf("insert team_keys for %s: %w", k.Team, err)
		}
	}
	return tx.Commit()
}

// GetTeamKeys returns the stored keys snapshot for one scope, ordered by team.
func (db *DB) GetTeamKeys(season int, st model.SeasonType, mode string) ([]model.TeamKeys, error) {
	rows, err := db.conn.Query(`
		SELECT team, top_minutes, turnovers, big_plays,
		       third_down_conv, third_down_att, rz_td_drives, rz_trips
		FROM team_keys
		WHERE season = ? AND season_type = ? AND mode = ?
		ORDER BY team`, season, string(st), mode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.TeamKeys
	for rows.Next() {
		var k model.TeamKeys
		if err := rows.Scan(&k.Team, &k.TOPMinutes, &k.Turnovers, &k.BigPlays,
			&k.ThirdDownConverted, &k.ThirdDownAttempts, &k.RedZoneTDDrives, &k.RedZoneTrips); err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// SaveScoreModel upserts fitted score-regression artifacts under a name.
func (db *DB) SaveScoreModel(name string, a model.ScoreArtifacts) error {
	features, err := json.Marshal(a.FeatureNames)
	if err != nil {
		return err
	}
	marginCoef, err := json.Marshal(a.MarginCoef)
	if err != nil {
		return err
	}
	totalCoef, err := json.Marshal(a.TotalCoef)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT OR REPLACE INTO score_models(
			name, trained_at, n_samples, feature_names,
			margin_coef, margin_intercept, margin_std,
			total_coef, total_intercept, total_std
		) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		name, time.Now().UTC().Format(time.RFC3339), a.NSamples, string(features),
		string(marginCoef), a.MarginIntercept, a.MarginStd,
		string(totalCoef), a.TotalIntercept, a.TotalStd,
	)
	return err
}

// LoadScoreModel returns the named artifacts, or nil when absent.
func (db *DB) LoadScoreModel(name string) (*model.ScoreArtifacts, error) {
	var a model.ScoreArtifacts
	var features, marginCoef, totalCoef string
	err := db.conn.QueryRow(`
		SELECT n_samples, feature_names,
		       margin_coef, margin_intercept, margin_std,
		       total_coef, total_intercept, total_std
		FROM score_models WHERE name = ?`, name).
		Scan(&a.NSamples, &features,
			&marginCoef, &a.MarginIntercept, &a.MarginStd,
			&totalCoef, &a.TotalIntercept, &a.TotalStd)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(features), &a.FeatureNames); err != nil {
		return nil, fmt.Errorf("decode feature names: %w", err)
	}
	if err := json.Unmarshal([]byte(marginCoef), &a.MarginCoef); err != nil {
		return nil, fmt.Errorf("decode margin coef: %w", err)
	}
	if err := json.Unmarshal([]byte(totalCoef), &a.TotalCoef); err != nil {
		return nil, fmt.Errorf("decode total coef: %w", err)
	}
	return &a, nil
}

// SavePrediction appends one prediction to the history with its full
// explanation as JSON.
func (db *DB) SavePrediction(season int, mode string, r model.PredictionResult) error {
	detail, err := json.Marshal(r.Explanation)
	if err != nil {
		return err
	}
	_, err = db.conn.Exec(`
		INSERT INTO predictions(
			created_at, season, mode, team_a, team_b,
			prob_a, prob_b, predicted_winner,
			keys_won_a, keys_won_b, ties, logit, detail
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().UTC().Format(time.RFC3339), season, mode, r.TeamA, r.TeamB,
		r.ProbA, r.ProbB, r.PredictedWinner,
		r.KeysWonA, r.KeysWonB, r.Ties, r.Explanation.Logit, string(detail),
	)
	return err
}

// PredictionRow is one stored prediction with its bookkeeping columns.
type PredictionRow struct {
	ID        int64
	CreatedAt string
	Season    int
	Mode      string
	Result    model.PredictionResult
}

// ListPredictions returns the newest predictions first, up to limit
// (0 means all).
func (db *DB) ListPredictions(limit int) ([]PredictionRow, error) {
	query := `
		SELECT id, created_at, season, mode, team_a, team_b,
		       prob_a, prob_b, predicted_winner,
		       keys_won_a, keys_won_b, ties, detail
		FROM predictions ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PredictionRow
	for rows.Next() {
		var row PredictionRow
		var detail string
		if err := rows.Scan(&row.ID, &row.CreatedAt, &row.Season, &row.Mode,
			&row.Result.TeamA, &row.Result.TeamB,
			&row.Result.ProbA, &row.Result.ProbB, &row.Result.PredictedWinner,
			&row.Result.KeysWonA, &row.Result.KeysWonB, &row.Result.Ties, &detail); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(detail), &row.Result.Explanation); err != nil {
			return nil, fmt.Errorf("decode prediction %d detail: %w", row.ID, err)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// DropSeason deletes all plays, games and cached keys for one season.
func (db *DB) DropSeason(season int) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM plays WHERE season = ?`, season); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM games WHERE season = ?`, season); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM team_keys WHERE season = ?`, season); err != nil {
		return err
	}
	return tx.Commit()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nf maps NaN to NULL so missing floats survive a round trip.
func nf(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func unf(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
