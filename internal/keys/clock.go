package keys

import (
	"strconv"
	"strings"
)

// ParseClock converts a drive clock string ("MM:SS") into total seconds.
// Missing or malformed input parses to 0, never an error: drive clocks in
// play-by-play feeds are frequently blank or garbage for kneel-down drives.
func ParseClock(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0
	}
	mins, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0
	}
	secs, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0
	}
	if mins < 0 || secs < 0 {
		return 0
	}
	return mins*60 + secs
}
