package model

import "math"

// SeasonType distinguishes regular-season rows from playoff rows.
type SeasonType string

const (
	SeasonRegular SeasonType = "REG"
	SeasonPost    SeasonType = "POST"
)

// ---- Raw rows supplied by the data source ----

// PlayRecord is one normalized row of a play-by-play table. Numeric fields
// that can be absent in the source carry NaN; integer-ish identifiers use 0
// for "missing" (a real down is 1-4, a real drive is >= 1).
type PlayRecord struct {
	GameID     string
	Season     int
	Week       int
	SeasonType SeasonType

	PosTeam  string
	DefTeam  string
	HomeTeam string
	AwayTeam string

	Drive    int    // unique only within a game; 0 = missing
	DriveTOP string // drive time of possession, "MM:SS"; "" = missing

	PlayType    string // "pass", "run", "no_play", "punt", ...
	Down        int    // 0 = missing
	YdsToGo     float64
	YardsGained float64
	Yardline100 float64 // distance to opponent goal line

	Touchdown    bool
	Interception bool
	FumbleLost   bool
	FirstDown    bool
	NoPlay       bool

	// Cumulative score after this play; NaN when the source omits scores.
	HomeScore float64
	AwayScore float64

	// Optional passer/rusher detail used by the QB module.
	PasserName   string
	RusherName   string
	PassAttempt  bool
	CompletePass bool
	RushAttempt  bool
	Sack         bool
	QBScramble   bool
	QBHit        bool
	Fumble       bool
	AirYards     float64
	PassDepth    string // "short", "intermediate", "deep"; "" = missing
	TippedPass   bool
	EPA          float64
}

// Schema reports which optional play-by-play columns were present in the
// source table. The keys and QB logic consult it once to pick a fallback
// strategy instead of re-checking per play.
type Schema struct {
	HasFirstDown    bool
	HasNoPlay       bool
	HasInterception bool
	HasFumbleLost   bool
	HasDriveTOP     bool
	HasYardline     bool
	HasScores       bool
	HasPasser       bool
	HasRusher       bool
	HasAirYards     bool
	HasPassDepth    bool
	HasTippedPass   bool
	HasQBScramble   bool
	HasQBHit        bool
	HasEPA          bool
}

// GameResult is one final score line, either from a schedule source or
// reconstructed from the max cumulative score in the play-by-play.
type GameResult struct {
	GameID     string
	Season     int
	Week       int
	SeasonType SeasonType
	HomeTeam   string
	AwayTeam   string
	HomeScore  float64
	AwayScore  float64
}

// Winner returns the winning team, or "" on a tie.
func (g GameResult) Winner() string {
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeam
	case g.AwayScore > g.HomeScore:
		return g.AwayTeam
	default:
		return ""
	}
}

// ---- The five keys ----

// TeamKeys is an immutable snapshot of one team's five keys for a scope
// (a single game or an aggregate). Rates are always derived from the
// retained denominators, never stored, so re-aggregation cannot inflate
// percentages.
type TeamKeys struct {
	Team       string
	TOPMinutes float64
	Turnovers  float64
	BigPlays   float64

	ThirdDownConverted float64
	ThirdDownAttempts  float64
	RedZoneTDDrives    float64
	RedZoneTrips       float64
}

// ThirdDownPct returns the conversion rate in [0, 100], 0 when no attempts.
func (k TeamKeys) ThirdDownPct() float64 {
	if k.ThirdDownAttempts == 0 {
		return 0
	}
	return Round2(100 * k.ThirdDownConverted / k.ThirdDownAttempts)
}

// RedZoneTDPct returns the drive-level touchdown rate in [0, 100].
func (k TeamKeys) RedZoneTDPct() float64 {
	if k.RedZoneTrips == 0 {
		return 0
	}
	return Round2(100 * k.RedZoneTDDrives / k.RedZoneTrips)
}

// TeamGameKeys is one per-game row in a team's keys table: the keys for a
// single game plus matchup context and the aggregation weight assigned to
// the row. Weight is 1 for unweighted modes.
type TeamGameKeys struct {
	GameID   string
	Week     int
	Round    string // "WC", "DIV", "CONF", "SB", or "REG"
	Opponent string
	Home     bool
	Weight   float64
	Keys     TeamKeys
}

// TeamContext carries optional matchup-level signals into the prediction
// engine. A zero value means "no context".
type TeamContext struct {
	SOSZ    float64
	HasSOSZ bool

	// ExpectedTurnovers, when set for both sides, replaces raw turnover
	// counts in the turnover margin.
	ExpectedTurnovers    float64
	HasExpectedTurnovers bool

	// DGI is the auxiliary defensive-grade index; 0 disables the term.
	DGI float64
}

// ---- Comparison and prediction ----

// KeyComparison is the outcome of comparing one key between two teams.
type KeyComparison struct {
	Key          string // "TOP", "TO", "BIG", "3D", "RZ"
	ValueA       float64
	ValueB       float64
	Margin       float64 // ValueA - ValueB, regardless of direction
	AbsMargin    float64
	Winner       string // "A", "B", or "TIE"
	HigherBetter bool
}

// Contribution is one named additive term of the logit.
type Contribution struct {
	Component string
	Value     float64
}

// Explanation carries everything needed to render or export a prediction
// without re-running the engine.
type Explanation struct {
	KeyWinners    []KeyComparison
	Margins       map[string]float64
	Contributions []Contribution
	TopDrivers    []Contribution
	Logit         float64
}

// PredictionResult is the engine's output for one matchup.
type PredictionResult struct {
	TeamA string
	TeamB string

	ProbA           float64
	ProbB           float64
	PredictedWinner string

	KeysWonA int
	KeysWonB int
	Ties     int
	TiedKeys []string

	Explanation Explanation
}

// ---- Auxiliary model artifacts ----

// ScoreArtifacts holds the fitted score-regression coefficients: one linear
// model for point differential and one for total points, over the same
// engineered margin features. Round-trips exactly through storage.
type ScoreArtifacts struct {
	FeatureNames    []string
	MarginCoef      []float64
	MarginIntercept float64
	MarginStd       float64
	TotalCoef       []float64
	TotalIntercept  float64
	TotalStd        float64
	NSamples        int
}

// QBLine is a quarterback stat line over a scope, built from the same
// play-by-play rows as the keys.
type QBLine struct {
	Name  string
	Team  string
	Games int

	Attempts    int
	Completions int
	PassYards   float64
	PassTDs     int
	INTs        int
	Sacks       int

	RushAttempts int
	RushYards    float64
	RushTDs      int
	FumblesLost  int
}

// CompletionPct returns completions per attempt in [0, 100].
func (q QBLine) CompletionPct() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return Round2(100 * float64(q.Completions) / float64(q.Attempts))
}

// YardsPerAttempt returns passing yards per attempt.
func (q QBLine) YardsPerAttempt() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return Round2(q.PassYards / float64(q.Attempts))
}

// TDRate returns passing touchdowns per attempt in [0, 100].
func (q QBLine) TDRate() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return Round2(100 * float64(q.PassTDs) / float64(q.Attempts))
}

// INTRate returns interceptions per attempt in [0, 100].
func (q QBLine) INTRate() float64 {
	if q.Attempts == 0 {
		return 0
	}
	return Round2(100 * float64(q.INTs) / float64(q.Attempts))
}

// SackRate returns sacks per dropback in [0, 100].
func (q QBLine) SackRate() float64 {
	dropbacks := q.Attempts + q.Sacks
	if dropbacks == 0 {
		return 0
	}
	return Round2(100 * float64(q.Sacks) / float64(dropbacks))
}

// RushYPC returns rushing yards per carry.
func (q QBLine) RushYPC() float64 {
	if q.RushAttempts == 0 {
		return 0
	}
	return Round2(q.RushYards / float64(q.RushAttempts))
}

// TurnoversPerGame returns (INTs + lost fumbles) per game played.
func (q QBLine) TurnoversPerGame() float64 {
	if q.Games == 0 {
		return 0
	}
	return Round2(float64(q.INTs+q.FumblesLost) / float64(q.Games))
}

// ---- Rounding helpers ----

// Round2 rounds to 2 decimal places (minutes, percentages).
func Round2(v float64) float64 { return math.Round(v*100) / 100 }

// Round3 rounds to 3 decimal places (probabilities).
func Round3(v float64) float64 { return math.Round(v*1000) / 1000 }

// Round4 rounds to 4 decimal places (logits).
func Round4(v float64) float64 { return math.Round(v*10000) / 10000 }
