package marketdata

import "time"

// chinaOffset approximates China Standard Time (UTC+8, no DST) for the
// 15:00 market-close cutoff spec.md §4.2 defines expiry around.
var chinaOffset = 8 * time.Hour

// NextDataExpire implements spec.md §4.2's expiry policy: market data
// for a day becomes stable after that day's 15:00 China-time close.
// With expireDays == 0 and now before today's 15:00 CST, the datum
// expires at the next non-weekend day's 15:00; otherwise it expires
// expireDays calendar days out, skipping weekends, at 15:00.
func NextDataExpire(expireDays int, now time.Time) time.Time {
	cst := now.In(time.FixedZone("CST", int(chinaOffset.Seconds())))
	todayClose := time.Date(cst.Year(), cst.Month(), cst.Day(), 15, 0, 0, 0, cst.Location())

	if expireDays == 0 && cst.Before(todayClose) {
		return nextTradeDay(todayClose)
	}

	d := todayClose
	for remaining := expireDays; remaining > 0; {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		remaining--
	}
	for d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func nextTradeDay(from time.Time) time.Time {
	d := from
	for {
		d = d.AddDate(0, 0, 1)
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			return d
		}
	}
}
