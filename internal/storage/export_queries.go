package storage

import (
	"strings"
)

// GameScoreRow is a final score reconstructed from play rows, used when no
// schedule was imported for the scope.
type GameScoreRow struct {
	GameID    string
	Season    int
	Week      int
	HomeTeam  string
	AwayTeam  string
	HomeScore float64
	AwayScore float64
}

// TeamRecord holds win/loss/tie counts for one team over a scope.
type TeamRecord struct {
	Team   string
	Wins   int
	Losses int
	Ties   int
	Played int
}

// TeamGameRef identifies one game a team played, with the opponent resolved.
type TeamGameRef struct {
	GameID   string
	Week     int
	Opponent string
	Home     bool
}

// GameScores reconstructs final scores per game from the running score
// columns, taking the maximum cumulative score seen in each game.
func (db *DB) GameScores(seasons []int, seasonType string) ([]GameScoreRow, error) {
	query := `
		SELECT game_id, MAX(season), MAX(week), MAX(home_team), MAX(away_team),
		       COALESCE(MAX(home_score), 0), COALESCE(MAX(away_score), 0)
		FROM plays`
	var where []string
	var args []any
	if len(seasons) > 0 {
		where = append(where, "season IN ("+placeholders(len(seasons))+")")
		for _, s := range seasons {
			args = append(args, s)
		}
	}
	if seasonType != "" {
		where = append(where, "season_type = ?")
		args = append(args, seasonType)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " GROUP BY game_id ORDER BY MAX(season), MAX(week), game_id"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GameScoreRow
	for rows.Next() {
		var r GameScoreRow
		if err := rows.Scan(&r.GameID, &r.Season, &r.Week, &r.HomeTeam, &r.AwayTeam,
			&r.HomeScore, &r.AwayScore); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TeamRecords returns win/loss/tie counts per team from the stored schedule.
func (db *DB) TeamRecords(season int, seasonType string) ([]TeamRecord, error) {
	query := `
		SELECT team,
		  COALESCE(SUM(won), 0),
		  COALESCE(SUM(lost), 0),
		  COALESCE(SUM(tied), 0),
		  COUNT(*)
		FROM (
		  SELECT home_team AS team,
		         CASE WHEN home_score > away_score THEN 1 ELSE 0 END AS won,
		         CASE WHEN home_score < away_score THEN 1 ELSE 0 END AS lost,
		         CASE WHEN home_score = away_score THEN 1 ELSE 0 END AS tied
		  FROM games WHERE season = ? AND season_type = ?
		  UNION ALL
		  SELECT away_team,
		         CASE WHEN away_score > home_score THEN 1 ELSE 0 END,
		         CASE WHEN away_score < home_score THEN 1 ELSE 0 END,
		         CASE WHEN away_score = home_score THEN 1 ELSE 0 END
		  FROM games WHERE season = ? AND season_type = ?
		)
		GROUP BY team ORDER BY team`

	rows, err := db.conn.Query(query, season, seasonType, season, seasonType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamRecord
	for rows.Next() {
		var r TeamRecord
		if err := rows.Scan(&r.Team, &r.Wins, &r.Losses, &r.Ties, &r.Played); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// TeamGames lists the games one team played in a scope, opponent resolved,
// ordered by week.
func (db *DB) TeamGames(team string, season int, seasonType string) ([]TeamGameRef, error) {
	rows, err := db.conn.Query(`
		SELECT game_id, week,
		       CASE WHEN home_team = ? THEN away_team ELSE home_team END,
		       CASE WHEN home_team = ? THEN 1 ELSE 0 END
		FROM games
		WHERE (home_team = ? OR away_team = ?) AND season = ? AND season_type = ?
		ORDER BY week, game_id`,
		team, team, team, team, season, seasonType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TeamGameRef
	for rows.Next() {
		var r TeamGameRef
		var home int
		if err := rows.Scan(&r.GameID, &r.Week, &r.Opponent, &home); err != nil {
			return nil, err
		}
		r.Home = home != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// Teams lists the distinct possession teams with stored plays in a scope.
func (db *DB) Teams(seasons []int, seasonType string) ([]string, error) {
	query := `SELECT DISTINCT posteam FROM plays WHERE posteam != ''`
	var args []any
	if len(seasons) > 0 {
		query += " AND season IN (" + placeholders(len(seasons)) + ")"
		for _, s := range seasons {
			args = append(args, s)
		}
	}
	if seasonType != "" {
		query += " AND season_type = ?"
		args = append(args, seasonType)
	}
	query += " ORDER BY posteam"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// placeholders returns a comma-separated string of n "?" for SQL IN clauses,
// e.g. placeholders(3) → "?,?,?".
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?,", n-1) + "?"
}
