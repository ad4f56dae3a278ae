package protocol

import (
	"fmt"
	"time"

	"rrpe/internal/config"
)

// withinWindow reports whether now falls inside [start, end] anchored on the
// trade date in the exchange time zone. Invocations on a different calendar
// day are outside by construction.
func withinWindow(now time.Time, date string, start, end config.TimeOfDay, loc *time.Location) (bool, error) {
	day, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return false, fmt.Errorf("invalid trade date %q: %w", date, err)
	}
	startDT := start.On(day.Year(), day.Month(), day.Day(), loc)
	endDT := end.On(day.Year(), day.Month(), day.Day(), loc)
	cur := now.In(loc)
	return !cur.Before(startDT) && !cur.After(endDT), nil
}
