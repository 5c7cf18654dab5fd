package pbp

import (
	"fmt"
	"strings"

	"github.com/dmorales/go-nfl-keys/internal/model"
)

// SeasonNotAvailableError means a requested scope produced zero rows after
// filtering. Distinct from an all-zero stat line: the data simply is not
// there yet.
type SeasonNotAvailableError struct {
	Seasons    []int
	SeasonType model.SeasonType
}

func (e *SeasonNotAvailableError) Error() string {
	return fmt.Sprintf("no %s play-by-play rows for seasons %v (data not available yet?)", e.SeasonType, e.Seasons)
}

// MissingColumnsError names the columns a specific key group needs but the
// source table lacks. Checked per group so one degraded key does not take
// the others down.
type MissingColumnsError struct {
	KeyGroup string
	Columns  []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("key group %q requires missing columns: %s", e.KeyGroup, strings.Join(e.Columns, ", "))
}
