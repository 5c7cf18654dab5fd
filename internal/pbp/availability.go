package pbp

// Status grades how well the source table supports one key group.
type Status string

const (
	StatusGreen  Status = "GREEN"  // full column support
	StatusYellow Status = "YELLOW" // computable via a documented fallback
	StatusRed    Status = "RED"    // required columns missing
)

// GroupAvailability is one row of the availability report.
type GroupAvailability struct {
	KeyGroup string
	Status   Status
	Missing  []string
	Note     string
}

// Key group names used across reports and errors.
const (
	GroupTOP       = "Time of Possession"
	GroupTurnovers = "Turnovers"
	GroupBigPlays  = "Big Plays"
	GroupThirdDown = "Third Down"
	GroupRedZone   = "Red Zone"
)

// CheckAvailability grades every key group against the loaded column set.
// Order is the canonical key order.
func CheckAvailability(cols map[string]bool) []GroupAvailability {
	missing := func(names ...string) []string {
		var out []string
		for _, n := range names {
			if !cols[n] {
				out = append(out, n)
			}
		}
		return out
	}

	var report []GroupAvailability

	top := GroupAvailability{KeyGroup: GroupTOP, Status: StatusGreen}
	if m := missing("game_id", "drive", "drive_time_of_possession"); len(m) > 0 {
		top.Status = StatusRed
		top.Missing = m
	}
	report = append(report, top)

	to := GroupAvailability{KeyGroup: GroupTurnovers, Status: StatusGreen}
	switch m := missing("interception", "fumble_lost"); len(m) {
	case 1:
		to.Status = StatusYellow
		to.Missing = m
		to.Note = "missing indicator treated as zero; counts will undercount"
	case 2:
		to.Status = StatusRed
		to.Missing = m
	}
	report = append(report, to)

	big := GroupAvailability{KeyGroup: GroupBigPlays, Status: StatusGreen}
	if m := missing("play_type", "yards_gained"); len(m) > 0 {
		big.Status = StatusRed
		big.Missing = m
	} else if !cols["no_play"] {
		big.Status = StatusYellow
		big.Note = "no penalty flag; negated plays excluded by play_type only"
	}
	report = append(report, big)

	third := GroupAvailability{KeyGroup: GroupThirdDown, Status: StatusGreen}
	if m := missing("down"); len(m) > 0 {
		third.Status = StatusRed
		third.Missing = m
	} else if !cols["first_down"] {
		if m := missing("ydstogo", "yards_gained"); len(m) > 0 {
			third.Status = StatusRed
			third.Missing = append([]string{"first_down"}, m...)
		} else {
			third.Status = StatusYellow
			third.Note = "no first_down flag; conversions inferred from yards gained vs to-go"
		}
	}
	report = append(report, third)

	rz := GroupAvailability{KeyGroup: GroupRedZone, Status: StatusGreen}
	if m := missing("yardline_100", "drive", "game_id", "touchdown"); len(m) > 0 {
		rz.Status = StatusRed
		rz.Missing = m
	}
	report = append(report, rz)

	return report
}

// ValidateKeyGroups returns one MissingColumnsError per key group that
// cannot be computed at all. YELLOW fallbacks pass.
func ValidateKeyGroups(cols map[string]bool) []*MissingColumnsError {
	var errs []*MissingColumnsError
	for _, g := range CheckAvailability(cols) {
		if g.Status == StatusRed {
			errs = append(errs, &MissingColumnsError{KeyGroup: g.KeyGroup, Columns: g.Missing})
		}
	}
	return errs
}
