package market

import (
	"fmt"
	"time"
)

// nyseHolidays lists full-day NYSE closures. Half days still trade and are
// deliberately not listed.
var nyseHolidays = map[string]bool{
	// 2024
	"2024-01-01": true, "2024-01-15": true, "2024-02-19": true,
	"2024-03-29": true, "2024-05-27": true, "2024-06-19": true,
	"2024-07-04": true, "2024-09-02": true, "2024-11-28": true,
	"2024-12-25": true,
	// 2025
	"2025-01-01": true, "2025-01-09": true, "2025-01-20": true,
	"2025-02-17": true, "2025-04-18": true, "2025-05-26": true,
	"2025-06-19": true, "2025-07-04": true, "2025-09-01": true,
	"2025-11-27": true, "2025-12-25": true,
	// 2026
	"2026-01-01": true, "2026-01-19": true, "2026-02-16": true,
	"2026-04-03": true, "2026-05-25": true, "2026-06-19": true,
	"2026-07-03": true, "2026-09-07": true, "2026-11-26": true,
	"2026-12-25": true,
}

// NYSECalendar is a table-driven NYSE trading calendar: weekdays minus
// full-day holidays.
type NYSECalendar struct{}

// IsTradingDay reports whether the exchange is open on date.
func (NYSECalendar) IsTradingDay(date string) (bool, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("calendar: invalid date %q: %w", date, err)
	}
	if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false, nil
	}
	return !nyseHolidays[date], nil
}

// PreviousTradingDay returns the latest trading day strictly before date,
// searching back two weeks.
func (c NYSECalendar) PreviousTradingDay(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("calendar: invalid date %q: %w", date, err)
	}
	for i := 0; i < 14; i++ {
		d = d.AddDate(0, 0, -1)
		candidate := d.Format("2006-01-02")
		trading, err := c.IsTradingDay(candidate)
		if err != nil {
			return "", err
		}
		if trading {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("calendar: no trading day in the two weeks before %s", date)
}
