// Package predict turns two teams' keys into a win probability through a
// hand-weighted logistic model, with a discrete bonus and a consistency
// clamp for the side that wins a clear majority of keys.
package predict

import (
	"math"
	"sort"

	"github.com/dmorales/go-nfl-keys/internal/compare"
	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Weights are the per-component logit coefficients.
type Weights struct {
	Turnover  float64
	Key       float64
	SOS       float64
	DGI       float64
	RuleBonus float64
}

// Divisors rescale each key's raw margin onto a comparable logit scale: a
// 6-minute possession edge should weigh about like a 1-turnover edge.
type Divisors struct {
	TOP       float64
	Turnover  float64
	BigPlay   float64
	ThirdDown float64
	RedZone   float64
}

// Config is the full engine tuning. Thread it explicitly; there is no
// ambient default state.
type Config struct {
	Weights  Weights
	Divisors Divisors
	Epsilon  float64
}

// DefaultConfig returns the hand-tuned production coefficients.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Turnover:  1.35,
			Key:       0.55,
			SOS:       0.15,
			DGI:       0.12,
			RuleBonus: 0.40,
		},
		Divisors: Divisors{
			TOP:       6,
			Turnover:  1,
			BigPlay:   2,
			ThirdDown: 10,
			RedZone:   12,
		},
		Epsilon: compare.DefaultEpsilon,
	}
}

// Component names beyond the five keys.
const (
	ComponentSOS  = "SOS_z"
	ComponentDGI  = "DGI"
	ComponentRule = "rule_3_keys"
)

// Predict runs the full pipeline for one matchup: compare the five keys,
// build weighted margin contributions, apply the 3-plus-keys bonus and
// consistency clamp, and assemble the explanation. Never errors for valid
// TeamKeys input.
func Predict(a, b model.TeamKeys, ctxA, ctxB model.TeamContext, cfg Config) model.PredictionResult {
	comps := compare.CompareKeys(a, b, cfg.Epsilon)
	wonA, wonB, tied := compare.Tally(comps)

	// Turnover margin is flipped so that positive always favors team A.
	// An expected-turnovers override replaces raw counts when both sides
	// supply one.
	turnoverMargin := b.Turnovers - a.Turnovers
	if ctxA.HasExpectedTurnovers && ctxB.HasExpectedTurnovers {
		turnoverMargin = ctxB.ExpectedTurnovers - ctxA.ExpectedTurnovers
	}

	margins := map[string]float64{
		compare.KeyTOP: a.TOPMinutes - b.TOPMinutes,
		compare.KeyTO:  turnoverMargin,
		compare.KeyBIG: a.BigPlays - b.BigPlays,
		compare.Key3D:  a.ThirdDownPct() - b.ThirdDownPct(),
		compare.KeyRZ:  a.RedZoneTDPct() - b.RedZoneTDPct(),
		ComponentSOS:   ctxA.SOSZ - ctxB.SOSZ,
		ComponentDGI:   ctxA.DGI - ctxB.DGI,
	}

	w, d := cfg.Weights, cfg.Divisors
	var ruleBonus float64
	switch {
	case wonA >= 3 && wonB < 3:
		ruleBonus = w.RuleBonus
	case wonB >= 3 && wonA < 3:
		ruleBonus = -w.RuleBonus
	}

	contributions := []model.Contribution{
		{Component: compare.KeyTOP, Value: w.Key * margins[compare.KeyTOP] / d.TOP},
		{Component: compare.KeyTO, Value: w.Turnover * margins[compare.KeyTO] / d.Turnover},
		{Component: compare.KeyBIG, Value: w.Key * margins[compare.KeyBIG] / d.BigPlay},
		{Component: compare.Key3D, Value: w.Key * margins[compare.Key3D] / d.ThirdDown},
		{Component: compare.KeyRZ, Value: w.Key * margins[compare.KeyRZ] / d.RedZone},
		{Component: ComponentSOS, Value: w.SOS * margins[ComponentSOS]},
		{Component: ComponentDGI, Value: w.DGI * margins[ComponentDGI]},
		{Component: ComponentRule, Value: ruleBonus},
	}

	var logit float64
	for _, c := range contributions {
		logit += c.Value
	}

	// Consistency clamp: a team that wins 3+ keys is never reported as the
	// loser, whatever the weighted margins say.
	var keysWinner string
	switch {
	case wonA >= 3:
		keysWinner = "A"
	case wonB >= 3:
		keysWinner = "B"
	}
	p := sigmoid(logit)
	if keysWinner == "A" && p < 0.5 {
		logit = math.Max(logit, 0)
		p = sigmoid(logit)
	} else if keysWinner == "B" && p >= 0.5 {
		logit = math.Min(logit, -0.01)
		p = sigmoid(logit)
	}

	probA := model.Round3(p)
	probB := model.Round3(1 - probA)
	winner := b.Team
	if p >= 0.5 {
		winner = a.Team
	}

	return model.PredictionResult{
		TeamA:           a.Team,
		TeamB:           b.Team,
		ProbA:           probA,
		ProbB:           probB,
		PredictedWinner: winner,
		KeysWonA:        wonA,
		KeysWonB:        wonB,
		Ties:            len(tied),
		TiedKeys:        tied,
		Explanation: model.Explanation{
			KeyWinners:    comps,
			Margins:       margins,
			Contributions: contributions,
			TopDrivers:    topDrivers(contributions, 3),
			Logit:         model.Round4(logit),
		},
	}
}

// topDrivers keeps the n largest nonzero contributions by absolute value.
// The sort is stable over the fixed component order, so equal magnitudes
// rank deterministically.
func topDrivers(contributions []model.Contribution, n int) []model.Contribution {
	drivers := make([]model.Contribution, 0, len(contributions))
	for _, c := range contributions {
		if c.Value != 0 {
			drivers = append(drivers, c)
		}
	}
	sort.SliceStable(drivers, func(i, j int) bool {
		return math.Abs(drivers[i].Value) > math.Abs(drivers[j].Value)
	})
	if len(drivers) > n {
		drivers = drivers[:n]
	}
	return drivers
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// ExpectedTurnovers blends a team's playoff and regular-season turnover
// rates into one expected-per-game figure, clamped to a plausible range so
// a tiny playoff sample cannot dominate.
func ExpectedTurnovers(postPerGame, seasonPerGame float64) float64 {
	v := 0.55*postPerGame + 0.45*seasonPerGame
	if v < 0.4 {
		v = 0.4
	}
	if v > 2.2 {
		v = 2.2
	}
	return model.Round2(v)
}
