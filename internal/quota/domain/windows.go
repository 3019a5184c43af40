package domain

import "time"

// DayStart truncates now to the UTC midnight opening its daily window.
func DayStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

// NextDayStart is the UTC midnight at which the daily counter resets.
func NextDayStart(now time.Time) time.Time {
	return DayStart(now).AddDate(0, 0, 1)
}

// MonthStart truncates now to the first of its calendar month, UTC.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart is the boundary at which the monthly counter resets.
func NextMonthStart(now time.Time) time.Time {
	return MonthStart(now).AddDate(0, 1, 0)
}
