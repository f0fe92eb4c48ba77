package khabar

import (
	"fmt"
	"time"
)

// Month identifies one calendar month.
type Month struct {
	Year  int
	Month time.Month
}

func (m Month) String() string {
	return fmt.Sprintf("%d/%02d", m.Year, int(m.Month))
}

// MonthsBack returns n target months ending at now, newest first.
//
// By default step i is now minus 30*i days. That drifts from real months:
// over several steps a month can be skipped or visited twice. With calendar
// set, step i is exactly i calendar months before now's month.
func MonthsBack(now time.Time, n int, calendar bool) []Month {
	months := make([]Month, 0, max(n, 0))
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for i := range n {
		var target time.Time
		if calendar {
			target = first.AddDate(0, -i, 0)
		} else {
			target = now.AddDate(0, 0, -30*i)
		}
		months = append(months, Month{Year: target.Year(), Month: target.Month()})
	}

	return months
}
