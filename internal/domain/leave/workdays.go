package leave

import "time"

// CountWorkingDays returns the number of Monday-to-Friday days in the
// inclusive range [start, end]. Time of day is ignored. It fails with
// ErrInvalidRange when end falls before start.
func CountWorkingDays(start, end time.Time) (int, error) {
	from := calendarDay(start)
	to := calendarDay(end)
	if to.Before(from) {
		return 0, ErrInvalidRange
	}

	total := int((to.Unix()-from.Unix())/secondsPerDay) + 1
	weeks := total / 7
	days := weeks * 5

	weekday := from.Weekday()
	for i := 0; i < total%7; i++ {
		if weekday != time.Saturday && weekday != time.Sunday {
			days++
		}
		weekday = (weekday + 1) % 7
	}

	return days, nil
}

const secondsPerDay = 24 * 60 * 60

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
