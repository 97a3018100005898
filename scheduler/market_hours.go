package scheduler

import "time"

/**
 * The trading window is approximated as a fixed UTC-5 offset with no
 * daylight-saving adjustment: regular session 09:30-16:00, weekdays
 * only. Good enough to gate intraday refresh schedules; not a market
 * calendar (holidays and half-days pass through).
 */
var marketZone = time.FixedZone("UTC-5", -5*60*60)

const (
	marketOpenMinute  = 9*60 + 30
	marketCloseMinute = 16 * 60
)

func WithinMarketHours(t time.Time) bool {
	local := t.In(marketZone)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}

	minute := local.Hour()*60 + local.Minute()
	return minute >= marketOpenMinute && minute < marketCloseMinute
}
