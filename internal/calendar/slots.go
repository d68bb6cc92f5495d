package calendar

import (
	"fmt"
	"time"

	"washbook/pkg/config"
	"washbook/pkg/model"
)

// DayHours is a provider's opening window on one date, as instants.
type DayHours struct {
	Open  time.Time
	Close time.Time
}

// GenerateSlots walks the window in duration-sized steps of wall-clock time
// from Open, in Open's location, so slots keep their local times across a
// daylight-saving change. A slot whose end would pass Close is not offered,
// nor is one that starts before the previous slot ends (a clock jump
// forward).
func GenerateSlots(hours DayHours, durationMinutes int) []model.Slot {
	if durationMinutes <= 0 || !hours.Open.Before(hours.Close) {
		return nil
	}

	step := time.Duration(durationMinutes) * time.Minute
	year, month, day := hours.Open.Date()
	openMinute := hours.Open.Hour()*60 + hours.Open.Minute()
	loc := hours.Open.Location()

	var slots []model.Slot
	var prevEnd time.Time
	for k := 0; ; k++ {
		start := time.Date(year, month, day, 0, openMinute+k*durationMinutes, 0, 0, loc)
		end := start.Add(step)
		if end.After(hours.Close) {
			break
		}
		if start.Before(prevEnd) {
			continue
		}
		slots = append(slots, model.Slot{
			StartTime: start,
			EndTime:   end,
			Available: true,
		})
		prevEnd = end
	}
	return slots
}

// ClockOn resolves a provider-local date and HH:MM clock to an instant.
func ClockOn(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(config.DateLayout+" "+config.ClockLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time %s %s: %w", date, clock, err)
	}
	return t, nil
}

// ParseClock returns minutes since midnight for an HH:MM string.
func ParseClock(clock string) (int, error) {
	t, err := time.Parse(config.ClockLayout, clock)
	if err != nil || len(clock) != len(config.ClockLayout) {
		return 0, fmt.Errorf("invalid clock %q, must be HH:MM", clock)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// ResolveDay picks the override for date when present, else the weekday
// default, and converts it to instants. ok is false when the provider is
// closed that day.
func ResolveDay(p *model.Provider, date string) (DayHours, bool, error) {
	loc, err := p.Location()
	if err != nil {
		return DayHours{}, false, err
	}

	day, err := time.ParseInLocation(config.DateLayout, date, loc)
	if err != nil {
		return DayHours{}, false, fmt.Errorf("invalid date %q: %w", date, err)
	}

	var open, closeAt string
	if override, found := p.Overrides[date]; found {
		if !override.IsOpen {
			return DayHours{}, false, nil
		}
		open, closeAt = override.Open, override.Close
	} else {
		wh, found := p.HoursOn(day.Weekday())
		if !found || !wh.IsOpen {
			return DayHours{}, false, nil
		}
		open, closeAt = wh.Open, wh.Close
	}

	openAt, err := ClockOn(date, open, loc)
	if err != nil {
		return DayHours{}, false, err
	}
	closeTime, err := ClockOn(date, closeAt, loc)
	if err != nil {
		return DayHours{}, false, err
	}
	if !openAt.Before(closeTime) {
		return DayHours{}, false, nil
	}

	return DayHours{Open: openAt, Close: closeTime}, true, nil
}

// DefaultWeeklyHours builds the seven-entry week used for new providers.
func DefaultWeeklyHours(open, closeAt string, workingDays []config.Weekday) []model.WorkingHours {
	working := make(map[config.Weekday]bool, len(workingDays))
	for _, d := range workingDays {
		working[d] = true
	}

	week := make([]model.WorkingHours, 0, len(config.AllWeekdays))
	for _, d := range config.AllWeekdays {
		wh := model.WorkingHours{Day: d, IsOpen: working[d]}
		if wh.IsOpen {
			wh.Open, wh.Close = open, closeAt
		}
		week = append(week, wh)
	}
	return week
}
