package digest

import (
	"time"

	"github.com/CosmoTheDev/slack-digest/internal/config"
)

const secondsPerDay = 24 * 3600

// Window is the inclusive range [Oldest, Latest] of Unix seconds covered by
// a run. Both bounds are day aligned in UTC.
type Window struct {
	Oldest int64
	Latest int64
}

// ComputeWindow returns the daysBack whole UTC days that end just before
// the UTC day containing now.
func ComputeWindow(now time.Time, daysBack int) (Window, error) {
	if err := config.ValidateDaysBack(daysBack); err != nil {
		return Window{}, err
	}
	sec := now.Unix()

	oldest := sec - int64(daysBack)*secondsPerDay
	oldest -= floorMod(oldest, secondsPerDay)
	latest := sec - floorMod(sec, secondsPerDay) - 1

	return Window{Oldest: oldest, Latest: latest}, nil
}

// Day is the UTC date of the first day in the window, YYYY-MM-DD.
func (w Window) Day() string {
	return time.Unix(w.Oldest, 0).UTC().Format("2006-01-02")
}

func (w Window) String() string {
	return formatUnix(w.Oldest) + " .. " + formatUnix(w.Latest)
}

// floorMod keeps pre-1970 instants on the correct day boundary.
func floorMod(a, b int64) int64 {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
