package pbp

import "testing"

func fullColumns() map[string]bool {
	cols := make(map[string]bool)
	for _, c := range []string{
		"game_id", "drive", "drive_time_of_possession",
		"interception", "fumble_lost",
		"play_type", "yards_gained", "no_play",
		"down", "ydstogo", "first_down",
		"yardline_100", "touchdown",
	} {
		cols[c] = true
	}
	return cols
}

func statusOf(t *testing.T, report []GroupAvailability, group string) GroupAvailability {
	t.Helper()
	for _, g := range report {
		if g.KeyGroup == group {
			return g
		}
	}
	t.Fatalf("group %q missing from report", group)
	return GroupAvailability{}
}

func TestCheckAvailabilityAllGreen(t *testing.T) {
	for _, g := range CheckAvailability(fullColumns()) {
		if g.Status != StatusGreen {
			t.Errorf("%s = %s, want GREEN", g.KeyGroup, g.Status)
		}
	}
	if errs := ValidateKeyGroups(fullColumns()); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestCheckAvailabilityFallbacks(t *testing.T) {
	cols := fullColumns()
	delete(cols, "first_down")
	delete(cols, "no_play")
	delete(cols, "fumble_lost")

	report := CheckAvailability(cols)
	if g := statusOf(t, report, GroupThirdDown); g.Status != StatusYellow {
		t.Errorf("third down = %s, want YELLOW (yards fallback)", g.Status)
	}
	if g := statusOf(t, report, GroupBigPlays); g.Status != StatusYellow {
		t.Errorf("big plays = %s, want YELLOW", g.Status)
	}
	if g := statusOf(t, report, GroupTurnovers); g.Status != StatusYellow {
		t.Errorf("turnovers = %s, want YELLOW", g.Status)
	}
	// Fallbacks are not hard failures.
	if errs := ValidateKeyGroups(cols); len(errs) != 0 {
		t.Errorf("unexpected validation errors: %v", errs)
	}
}

func TestCheckAvailabilityRed(t *testing.T) {
	cols := fullColumns()
	delete(cols, "drive_time_of_possession")
	delete(cols, "interception")
	delete(cols, "fumble_lost")
	delete(cols, "yardline_100")

	report := CheckAvailability(cols)
	for _, group := range []string{GroupTOP, GroupTurnovers, GroupRedZone} {
		if g := statusOf(t, report, group); g.Status != StatusRed {
			t.Errorf("%s = %s, want RED", group, g.Status)
		}
	}

	errs := ValidateKeyGroups(cols)
	if len(errs) != 3 {
		t.Fatalf("got %d errors, want 3: %v", len(errs), errs)
	}
	for _, e := range errs {
		if len(e.Columns) == 0 {
			t.Errorf("%s error names no columns", e.KeyGroup)
		}
	}
}
