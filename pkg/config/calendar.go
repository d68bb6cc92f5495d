package config

import (
	"strings"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

type Weekday string

const (
	Sunday    Weekday = "Sunday"
	Monday    Weekday = "Monday"
	Tuesday   Weekday = "Tuesday"
	Wednesday Weekday = "Wednesday"
	Thursday  Weekday = "Thursday"
	Friday    Weekday = "Friday"
	Saturday  Weekday = "Saturday"
)

var AllWeekdays = []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}

// ToTime maps the stored weekday name onto time.Weekday.
func (d Weekday) ToTime() (time.Weekday, bool) {
	for i, w := range AllWeekdays {
		if strings.EqualFold(string(w), strings.TrimSpace(string(d))) {
			return time.Weekday(i), true
		}
	}
	return time.Sunday, false
}

func WeekdayOf(d time.Weekday) Weekday {
	return AllWeekdays[int(d)%len(AllWeekdays)]
}

func parseWeekdays(csv string) []Weekday {
	var days []Weekday
	for _, part := range strings.Split(csv, ",") {
		day := Weekday(strings.TrimSpace(part))
		if wd, ok := day.ToTime(); ok {
			days = append(days, WeekdayOf(wd))
		}
	}
	return days
}
