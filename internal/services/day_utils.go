package services

import (
	"fmt"
	"time"
)

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	localized := value.In(location)
	year, month, day := localized.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, location)
}

// DayRange returns the local midnight of value and the following midnight.
func DayRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	start := DateAtLocation(value, location)
	return start, start.AddDate(0, 0, 1)
}

// WeekRange returns the Monday midnight of value's ISO week and the Monday after.
func WeekRange(value time.Time, location *time.Location) (time.Time, time.Time) {
	day := DateAtLocation(value, location)
	offset := int(day.Weekday())
	if offset == 0 {
		offset = 7
	}
	monday := day.AddDate(0, 0, 1-offset)
	return monday, monday.AddDate(0, 0, 7)
}

func DayKey(value time.Time) string {
	return value.Format(dayLayout)
}

func WeekKey(value time.Time) string {
	year, week := value.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}
