package service

import "time"

func nowUTC() time.Time {
	return time.Now().UTC()
}

// addCalendarMonth moves t forward by one calendar month, clamping to the
// last day of shorter months (Jan 31 -> Feb 28/29). All period math runs
// in UTC so a renewal is never off by a DST hour.
func addCalendarMonth(t time.Time) time.Time {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
	lastDay := firstOfNext.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfNext.Year(), firstOfNext.Month(), day, hour, min, sec, t.Nanosecond(), time.UTC)
}
