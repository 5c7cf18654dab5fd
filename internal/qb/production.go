package qb

import (
	"math"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// Config tunes the production score: component weights, turnover
// attribution weights, and the normalization ranges that map postseason
// stat lines onto 0-100 component scores.
type Config struct {
	ScrambleMinYards float64

	WDrive       float64
	WSituational float64
	WOffScript   float64
	WDefAdj      float64

	QBFaultINTWeight    float64
	NonQBFaultINTWeight float64
	QBFaultFumWeight    float64
	NonQBFaultFumWeight float64

	// Normalization ranges, postseason-typical.
	ThirdDownPctRange [2]float64
	SackAvoidRange    [2]float64 // 100 - sack rate
	RZTDPctRange      [2]float64
	ScrambleYdsRange  [2]float64 // scramble yards per game
	PressureSackRange [2]float64 // sacks/(qb hits + sacks); lower better
}

// DefaultConfig returns the production-score tuning.
func DefaultConfig() Config {
	return Config{
		ScrambleMinYards:    5,
		WDrive:              0.40,
		WSituational:        0.40,
		WOffScript:          0.20,
		WDefAdj:             0.25,
		QBFaultINTWeight:    1.0,
		NonQBFaultINTWeight: 0.35,
		QBFaultFumWeight:    0.75,
		NonQBFaultFumWeight: 0.25,
		ThirdDownPctRange:   [2]float64{25, 55},
		SackAvoidRange:      [2]float64{85, 98},
		RZTDPctRange:        [2]float64{30, 80},
		ScrambleYdsRange:    [2]float64{0, 25},
		PressureSackRange:   [2]float64{0.05, 0.35},
	}
}

// Components are the auditable inputs to the production score: three
// normalized component scores plus the raw figures behind them.
type Components struct {
	DriveSustainability  float64
	SituationalExecution float64
	OffScriptValue       float64

	ThirdDownPct      float64
	SackAvoidancePct  float64
	RZTDPct           float64
	RZTrips           int
	RZTDDrives        int
	LeverageTOPerPlay float64
	ScrambleYdsPG     float64
	PressureToSack    float64

	Attribution Attribution
	AvgDefZ     float64
	Games       int
}

// Score is the final production report.
type Score struct {
	Total        float64
	DriveSustain float64
	Situational  float64
	OffScript    float64
	DefAdjPoints float64
	AvgDefZ      float64
}

// ProductionComponents computes the component metrics for one QB over a
// postseason play scope. Degrades per missing column: without player names
// every team play counts as a QB play, without a scramble flag scrambles
// fall back to QB runs of ScrambleMinYards+, without a qb_hit column the
// pressure term drops out.
func ProductionComponents(plays []model.PlayRecord, schema model.Schema, schedule []model.GameResult, qbName, team string, defZ map[string]float64, cfg Config) Components {
	var c Components

	var teamPlays []model.PlayRecord
	for _, p := range plays {
		if p.PosTeam == team {
			teamPlays = append(teamPlays, p)
		}
	}
	if len(teamPlays) == 0 {
		return c
	}
	qbNames := hasQBColumns(schema)
	qbPlay := func(p model.PlayRecord) bool {
		if !qbNames {
			return true
		}
		return isQBPlay(p, schema, team, qbName)
	}

	// Drive sustainability: third downs on QB plays plus sack avoidance.
	var thirdAtt, thirdConv float64
	for _, p := range teamPlays {
		if p.Down != 3 || !qbPlay(p) {
			continue
		}
		thirdAtt++
		if thirdDownConverted(p, schema) {
			thirdConv++
		}
	}
	if thirdAtt > 0 {
		c.ThirdDownPct = 100 * thirdConv / thirdAtt
	}

	var dropbacks, sacks float64
	for _, p := range teamPlays {
		if !qbPlay(p) || (p.PlayType != "pass" && p.PlayType != "sack") {
			continue
		}
		dropbacks++
		if p.PlayType == "sack" {
			sacks++
		}
	}
	sackRate := 0.0
	if dropbacks > 0 {
		sackRate = 100 * sacks / dropbacks
	}
	c.SackAvoidancePct = 100 - sackRate

	// Situational execution: red-zone TD rate on QB-led drives, plus
	// turnover avoidance on leverage plays.
	type driveID struct {
		game  string
		drive int
	}
	drivePlays := make(map[driveID][]model.PlayRecord)
	for _, p := range teamPlays {
		if p.Drive == 0 {
			continue
		}
		k := driveID{p.GameID, p.Drive}
		drivePlays[k] = append(drivePlays[k], p)
	}
	for _, grp := range drivePlays {
		led := false
		inRZ := false
		td := false
		for _, p := range grp {
			if qbPlay(p) {
				led = true
			}
			if yardline(p) <= 20 {
				inRZ = true
			}
			if p.Touchdown {
				td = true
			}
		}
		if !led || !inRZ {
			continue
		}
		c.RZTrips++
		if td {
			c.RZTDDrives++
		}
	}
	if c.RZTrips > 0 {
		c.RZTDPct = 100 * float64(c.RZTDDrives) / float64(c.RZTrips)
	}

	c.Attribution = TurnoverAttribution(plays, schema, qbName, team, cfg)
	var leverage float64
	for _, p := range teamPlays {
		if p.Down == 3 || yardline(p) <= 20 {
			leverage++
		}
	}
	if leverage > 0 {
		c.LeverageTOPerPlay = c.Attribution.WeightedTurnovers / leverage
	}
	leverageAvoid := 100 - math.Min(100, c.LeverageTOPerPlay*200)

	// Off-script: scramble production and a pressure-to-sack proxy.
	games := make(map[string]bool)
	for _, p := range teamPlays {
		games[p.GameID] = true
	}
	c.Games = len(games)
	nGames := float64(c.Games)
	if nGames == 0 {
		nGames = 1
	}

	var scrambleYds float64
	for _, p := range teamPlays {
		if schema.HasQBScramble {
			if p.QBScramble {
				scrambleYds += orZero(p.YardsGained)
			}
		} else if qbNames && p.PlayType == "run" &&
			NameMatches(p.RusherName, qbName) && orZero(p.YardsGained) >= cfg.ScrambleMinYards {
			scrambleYds += orZero(p.YardsGained)
		}
	}
	c.ScrambleYdsPG = scrambleYds / nGames

	if schema.HasQBHit {
		var hits, sackCount float64
		for _, p := range teamPlays {
			if p.QBHit {
				hits++
			}
			if p.PlayType == "sack" {
				sackCount++
			}
		}
		if hits+sackCount > 0 {
			c.PressureToSack = sackCount / (hits + sackCount)
		}
	} else {
		// No pressure metric: lean harder on the scramble term.
		c.ScrambleYdsPG *= 1.2
	}

	// Average opponent defense toughness from the schedule.
	if len(schedule) > 0 {
		var sum float64
		var n int
		for id := range games {
			for _, g := range schedule {
				if g.GameID != id {
					continue
				}
				opp := g.HomeTeam
				if g.HomeTeam == team {
					opp = g.AwayTeam
				}
				sum += defZ[opp]
				n++
				break
			}
		}
		if n > 0 {
			c.AvgDefZ = sum / float64(n)
		}
	}

	// Normalize onto 0-100 component scores.
	drive := (normalize(c.ThirdDownPct, cfg.ThirdDownPctRange) +
		normalize(c.SackAvoidancePct, cfg.SackAvoidRange)) / 2
	c.DriveSustainability = round1(clamp100(drive))

	situational := 0.6*clamp100(normalize(c.RZTDPct, cfg.RZTDPctRange)) + 0.4*leverageAvoid
	c.SituationalExecution = round1(clamp100(situational))

	scramble := clamp100(normalize(c.ScrambleYdsPG, cfg.ScrambleYdsRange))
	if schema.HasQBHit {
		pressure := clamp100(100 * (1 - (c.PressureToSack-cfg.PressureSackRange[0])/(cfg.PressureSackRange[1]-cfg.PressureSackRange[0])))
		c.OffScriptValue = round1(clamp100(0.6*scramble + 0.4*pressure))
	} else {
		c.OffScriptValue = round1(scramble)
	}

	c.ThirdDownPct = round1(c.ThirdDownPct)
	c.SackAvoidancePct = round1(c.SackAvoidancePct)
	c.RZTDPct = round1(c.RZTDPct)
	c.ScrambleYdsPG = round1(c.ScrambleYdsPG)
	c.LeverageTOPerPlay = model.Round4(c.LeverageTOPerPlay)
	c.PressureToSack = model.Round3(c.PressureToSack)
	c.AvgDefZ = model.Round3(c.AvgDefZ)
	return c
}

// ProductionScore combines the components and the defense-difficulty
// adjustment into the 0-100 production score.
func ProductionScore(c Components, cfg Config) Score {
	base := cfg.WDrive*c.DriveSustainability +
		cfg.WSituational*c.SituationalExecution +
		cfg.WOffScript*c.OffScriptValue
	adj := cfg.WDefAdj * c.AvgDefZ * 10
	return Score{
		Total:        round1(clamp100(base + adj)),
		DriveSustain: c.DriveSustainability,
		Situational:  c.SituationalExecution,
		OffScript:    c.OffScriptValue,
		DefAdjPoints: round1(adj),
		AvgDefZ:      c.AvgDefZ,
	}
}

// DefenseStrength derives a toughness z-score per defense from
// regular-season EPA allowed on real offensive plays. Higher z means a
// tougher defense. Without an EPA column the map is empty and callers
// treat every opponent as average.
func DefenseStrength(regPlays []model.PlayRecord, schema model.Schema) map[string]float64 {
	if !schema.HasEPA || len(regPlays) == 0 {
		return map[string]float64{}
	}

	sum := make(map[string]float64)
	n := make(map[string]float64)
	for _, p := range regPlays {
		if p.PlayType != "run" && p.PlayType != "pass" && p.PlayType != "sack" {
			continue
		}
		if schema.HasNoPlay && p.NoPlay {
			continue
		}
		if math.IsNaN(p.EPA) {
			continue
		}
		def := p.DefTeam
		if def == "" {
			if p.PosTeam == p.HomeTeam {
				def = p.AwayTeam
			} else {
				def = p.HomeTeam
			}
		}
		if def == "" {
			continue
		}
		sum[def] += p.EPA
		n[def]++
	}
	if len(sum) == 0 {
		return map[string]float64{}
	}

	tough := make(map[string]float64, len(sum))
	var mean float64
	for def := range sum {
		tough[def] = -(sum[def] / n[def])
		mean += tough[def]
	}
	mean /= float64(len(tough))

	var ss float64
	for _, v := range tough {
		ss += (v - mean) * (v - mean)
	}
	out := make(map[string]float64, len(tough))
	if len(tough) < 2 {
		for def := range tough {
			out[def] = 0
		}
		return out
	}
	sd := math.Sqrt(ss / float64(len(tough)-1))
	if sd == 0 {
		for def := range tough {
			out[def] = 0
		}
		return out
	}
	for def, v := range tough {
		out[def] = model.Round4((v - mean) / sd)
	}
	return out
}

func thirdDownConverted(p model.PlayRecord, schema model.Schema) bool {
	if p.Touchdown {
		return true
	}
	if schema.HasFirstDown {
		return p.FirstDown
	}
	return orZero(p.YardsGained) >= orZero(p.YdsToGo)
}

func yardline(p model.PlayRecord) float64 {
	if math.IsNaN(p.Yardline100) {
		return 999
	}
	return p.Yardline100
}

func normalize(v float64, r [2]float64) float64 {
	if r[1] <= r[0] {
		return 50
	}
	return 100 * (v - r[0]) / (r[1] - r[0])
}

func clamp100(v float64) float64 { return math.Max(0, math.Min(100, v)) }

func round1(v float64) float64 { return math.Round(v*10) / 10 }
