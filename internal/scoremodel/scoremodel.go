// Package scoremodel fits ridge regressions of game margin and total
// points on the engineered key margins, and turns a fitted model into an
// implied score line for a matchup.
package scoremodel

import (
	"fmt"
	"math"

	"github.com/dmorales/go-nfl-keys/internal/keys"
	"github.com/dmorales/go-nfl-keys/internal/model"
	"github.com/dmorales/go-nfl-keys/internal/sos"
)

// FeatureNames is the fixed feature order, all from the home team's
// perspective.
var FeatureNames = []string{
	"margin_top", "margin_to", "margin_big", "margin_3d", "margin_rz", "sos_z",
}

// DefaultAlpha is the ridge penalty.
const DefaultAlpha = 1.0

// MinSamples is the fewest games a fit will accept; residual spread means
// nothing below this.
const MinSamples = 8

// Sample is one training row.
type Sample struct {
	GameID   string
	Features []float64
	Margin   float64 // home - away
	Total    float64 // home + away
}

// Features builds the engineered margin vector for a matchup, team A as
// "home". Positive turnover margin favors A, matching the prediction
// engine.
func Features(a, b model.TeamKeys, sosZA, sosZB float64) []float64 {
	return []float64{
		a.TOPMinutes - b.TOPMinutes,
		b.Turnovers - a.Turnovers,
		a.BigPlays - b.BigPlays,
		a.ThirdDownPct() - b.ThirdDownPct(),
		a.RedZoneTDPct() - b.RedZoneTDPct(),
		sosZA - sosZB,
	}
}

// BuildSamples constructs training rows from play-by-play: one sample per
// game with a known final score. Schedule results take precedence; games
// missing from the schedule fall back to max cumulative score.
func BuildSamples(plays []model.PlayRecord, schema model.Schema, th keys.Thresholds, schedule []model.GameResult, sosZ map[string]float64) []Sample {
	results := make(map[string]model.GameResult)
	for _, g := range sos.BuildGameResults(plays) {
		results[g.GameID] = g
	}
	for _, g := range schedule {
		results[g.GameID] = g
	}

	seen := make(map[string]bool)
	var order []string
	for _, p := range plays {
		if !seen[p.GameID] {
			seen[p.GameID] = true
			order = append(order, p.GameID)
		}
	}

	var samples []Sample
	for _, gameID := range order {
		g, ok := results[gameID]
		if !ok || (g.HomeScore == 0 && g.AwayScore == 0) {
			continue
		}
		gk := keys.ComputeGameKeys(plays, schema, gameID, th)
		home, okH := gk[g.HomeTeam]
		away, okA := gk[g.AwayTeam]
		if !okH || !okA {
			continue
		}
		samples = append(samples, Sample{
			GameID:   gameID,
			Features: Features(home, away, sosZ[g.HomeTeam], sosZ[g.AwayTeam]),
			Margin:   g.HomeScore - g.AwayScore,
			Total:    g.HomeScore + g.AwayScore,
		})
	}
	return samples
}

// Fit trains both targets with a shared ridge penalty. The intercept is
// unpenalized (features and target are centered before solving).
func Fit(samples []Sample, alpha float64) (model.ScoreArtifacts, error) {
	if len(samples) < MinSamples {
		return model.ScoreArtifacts{}, fmt.Errorf("score model needs at least %d games, have %d", MinSamples, len(samples))
	}

	x := make([][]float64, len(samples))
	margins := make([]float64, len(samples))
	totals := make([]float64, len(samples))
	for i, s := range samples {
		if len(s.Features) != len(FeatureNames) {
			return model.ScoreArtifacts{}, fmt.Errorf("sample %s has %d features, want %d", s.GameID, len(s.Features), len(FeatureNames))
		}
		x[i] = s.Features
		margins[i] = s.Margin
		totals[i] = s.Total
	}

	mCoef, mIntercept, mStd, err := ridge(x, margins, alpha)
	if err != nil {
		return model.ScoreArtifacts{}, fmt.Errorf("fit margin target: %w", err)
	}
	tCoef, tIntercept, tStd, err := ridge(x, totals, alpha)
	if err != nil {
		return model.ScoreArtifacts{}, fmt.Errorf("fit total target: %w", err)
	}

	return model.ScoreArtifacts{
		FeatureNames:    append([]string(nil), FeatureNames...),
		MarginCoef:      mCoef,
		MarginIntercept: mIntercept,
		MarginStd:       mStd,
		TotalCoef:       tCoef,
		TotalIntercept:  tIntercept,
		TotalStd:        tStd,
		NSamples:        len(samples),
	}, nil
}

// ridge solves (Xc'Xc + alpha*I) beta = Xc'yc on centered data and returns
// coefficients, intercept and the residual standard deviation.
func ridge(x [][]float64, y []float64, alpha float64) (coef []float64, intercept, residStd float64, err error) {
	n := len(x)
	k := len(x[0])

	xMean := make([]float64, k)
	for _, row := range x {
		for j, v := range row {
			xMean[j] += v
		}
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	var yMean float64
	for _, v := range y {
		yMean += v
	}
	yMean /= float64(n)

	// Normal equations on centered data.
	a := make([][]float64, k)
	b := make([]float64, k)
	for i := range a {
		a[i] = make([]float64, k)
	}
	for i := 0; i < n; i++ {
		for p := 0; p < k; p++ {
			xp := x[i][p] - xMean[p]
			b[p] += xp * (y[i] - yMean)
			for q := p; q < k; q++ {
				a[p][q] += xp * (x[i][q] - xMean[q])
			}
		}
	}
	for p := 0; p < k; p++ {
		for q := 0; q < p; q++ {
			a[p][q] = a[q][p]
		}
		a[p][p] += alpha
	}

	coef, err = solve(a, b)
	if err != nil {
		return nil, 0, 0, err
	}

	intercept = yMean
	for j, c := range coef {
		intercept -= c * xMean[j]
	}

	var ss float64
	for i := 0; i < n; i++ {
		pred := intercept
		for j, c := range coef {
			pred += c * x[i][j]
		}
		ss += (y[i] - pred) * (y[i] - pred)
	}
	residStd = math.Sqrt(ss / float64(n))
	return coef, intercept, residStd, nil
}

// solve runs Gaussian elimination with partial pivoting on a copy of the
// system.
func solve(a [][]float64, b []float64) ([]float64, error) {
	k := len(b)
	m := make([][]float64, k)
	for i := range m {
		m[i] = append(append([]float64(nil), a[i]...), b[i])
	}

	for col := 0; col < k; col++ {
		pivot := col
		for r := col + 1; r < k; r++ {
			if math.Abs(m[r][col]) > math.Abs(m[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(m[pivot][col]) < 1e-12 {
			return nil, fmt.Errorf("singular system at column %d", col)
		}
		m[col], m[pivot] = m[pivot], m[col]
		for r := col + 1; r < k; r++ {
			f := m[r][col] / m[col][col]
			for c := col; c <= k; c++ {
				m[r][c] -= f * m[col][c]
			}
		}
	}

	out := make([]float64, k)
	for r := k - 1; r >= 0; r-- {
		v := m[r][k]
		for c := r + 1; c < k; c++ {
			v -= m[r][c] * out[c]
		}
		out[r] = v / m[r][r]
	}
	return out, nil
}

// ImpliedScore converts fitted margin/total predictions into a score line
// for team A (the "home" perspective of the feature vector) and team B.
// Scores are whole points and never negative.
func ImpliedScore(art model.ScoreArtifacts, features []float64) (scoreA, scoreB float64) {
	margin := art.MarginIntercept
	total := art.TotalIntercept
	for j, v := range features {
		margin += art.MarginCoef[j] * v
		total += art.TotalCoef[j] * v
	}
	scoreA = math.Max(0, math.Round((total+margin)/2))
	scoreB = math.Max(0, math.Round((total-margin)/2))
	return scoreA, scoreB
}
