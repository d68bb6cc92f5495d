package calendar

import (
	"strings"
	"testing"
	"time"

	"washbook/internal/testfixtures"
	"washbook/pkg/config"
	"washbook/pkg/model"
)

func TestGenerateSlots(t *testing.T) {
	loc, _ := time.LoadLocation("UTC")
	at := func(clock string) time.Time {
		ts, err := ClockOn("2025-06-02", clock, loc)
		if err != nil {
			t.Fatalf("ClockOn(%s): %v", clock, err)
		}
		return ts
	}

	tests := []struct {
		name      string
		open      string
		close     string
		duration  int
		wantCount int
		wantFirst string
		wantLast  string
	}{
		{name: "full day hourly", open: "09:00", close: "19:00", duration: 60, wantCount: 10, wantFirst: "09:00", wantLast: "18:00"},
		{name: "partial trailing slot dropped", open: "09:00", close: "10:30", duration: 60, wantCount: 1, wantFirst: "09:00", wantLast: "09:00"},
		{name: "window shorter than duration", open: "09:00", close: "09:45", duration: 60, wantCount: 0},
		{name: "ninety minute wash", open: "08:00", close: "14:00", duration: 90, wantCount: 4, wantFirst: "08:00", wantLast: "12:30"},
		{name: "zero duration", open: "09:00", close: "19:00", duration: 0, wantCount: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := GenerateSlots(DayHours{Open: at(tt.open), Close: at(tt.close)}, tt.duration)
			if len(slots) != tt.wantCount {
				t.Fatalf("expected %d slots, got %d", tt.wantCount, len(slots))
			}
			if tt.wantCount == 0 {
				return
			}
			if !slots[0].StartTime.Equal(at(tt.wantFirst)) {
				t.Errorf("first slot starts %v, want %s", slots[0].StartTime, tt.wantFirst)
			}
			if !slots[len(slots)-1].StartTime.Equal(at(tt.wantLast)) {
				t.Errorf("last slot starts %v, want %s", slots[len(slots)-1].StartTime, tt.wantLast)
			}
			for i, s := range slots {
				if s.EndTime.Sub(s.StartTime) != time.Duration(tt.duration)*time.Minute {
					t.Errorf("slot %d has length %v", i, s.EndTime.Sub(s.StartTime))
				}
				if !s.Available {
					t.Errorf("slot %d should be available", i)
				}
				if s.EndTime.After(at(tt.close)) {
					t.Errorf("slot %d ends after close", i)
				}
			}
		})
	}
}

func TestGenerateSlots_DaylightSaving(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	tests := []struct {
		name     string
		date     string
		open     string
		close    string
		duration int
		want     []string
	}{
		{name: "clocks fall back", date: "2025-11-02", open: "00:00", close: "04:00", duration: 60, want: []string{"00:00", "01:00", "02:00", "03:00"}},
		{name: "clocks spring forward hourly", date: "2025-03-09", open: "00:00", close: "05:00", duration: 60, want: []string{"00:00", "01:00", "03:00", "04:00"}},
		{name: "clocks spring forward ninety minutes", date: "2025-03-09", open: "00:00", close: "06:00", duration: 90, want: []string{"00:00", "01:30", "04:30"}},
		{name: "ordinary day", date: "2025-06-02", open: "08:00", close: "11:00", duration: 90, want: []string{"08:00", "09:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			open, _ := ClockOn(tt.date, tt.open, loc)
			closeAt, _ := ClockOn(tt.date, tt.close, loc)
			slots := GenerateSlots(DayHours{Open: open, Close: closeAt}, tt.duration)

			got := make([]string, 0, len(slots))
			for i, s := range slots {
				got = append(got, s.StartTime.In(loc).Format(config.ClockLayout))
				if s.EndTime.Sub(s.StartTime) != time.Duration(tt.duration)*time.Minute {
					t.Errorf("slot %d has length %v", i, s.EndTime.Sub(s.StartTime))
				}
				if i > 0 && s.StartTime.Before(slots[i-1].EndTime) {
					t.Errorf("slot %d overlaps the previous slot", i)
				}
			}
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("slot starts = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{in: "00:00", want: 0},
		{in: "09:30", want: 570},
		{in: "23:59", want: 1439},
		{in: "9:30", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "noon", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseClock(%q) = %d, %v; want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestResolveDay(t *testing.T) {
	p := testfixtures.Provider("America/New_York", false)
	p.WeeklyHours[0] = model.WorkingHours{Day: config.Sunday, IsOpen: false}
	p.Overrides = map[string]model.HoursOverride{
		"2025-06-04": {Open: "12:00", Close: "15:00", IsOpen: true},
		"2025-06-05": {IsOpen: false},
		"2025-06-06": {Open: "15:00", Close: "12:00", IsOpen: true},
	}
	loc, _ := time.LoadLocation("America/New_York")

	tests := []struct {
		name      string
		date      string
		wantOpen  bool
		openAt    string
		closeAt   string
		wantError bool
	}{
		{name: "weekday default", date: "2025-06-03", wantOpen: true, openAt: "09:00", closeAt: "19:00"},
		{name: "closed weekday", date: "2025-06-01", wantOpen: false},
		{name: "override replaces default", date: "2025-06-04", wantOpen: true, openAt: "12:00", closeAt: "15:00"},
		{name: "override closes day", date: "2025-06-05", wantOpen: false},
		{name: "inverted override is closed", date: "2025-06-06", wantOpen: false},
		{name: "bad date", date: "06/03/2025", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, open, err := ResolveDay(p, tt.date)
			if tt.wantError {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if open != tt.wantOpen {
				t.Fatalf("open = %v, want %v", open, tt.wantOpen)
			}
			if !open {
				return
			}
			wantOpen, _ := ClockOn(tt.date, tt.openAt, loc)
			wantClose, _ := ClockOn(tt.date, tt.closeAt, loc)
			if !hours.Open.Equal(wantOpen) || !hours.Close.Equal(wantClose) {
				t.Errorf("got %v-%v, want %v-%v", hours.Open, hours.Close, wantOpen, wantClose)
			}
		})
	}
}

func TestResolveDay_UsesProviderZone(t *testing.T) {
	p := testfixtures.Provider("Asia/Tokyo", false)

	hours, open, err := ResolveDay(p, "2025-06-03")
	if err != nil || !open {
		t.Fatalf("expected open day, got open=%v err=%v", open, err)
	}
	if got := hours.Open.UTC().Format("15:04"); got != "00:00" {
		t.Errorf("09:00 Tokyo should be 00:00 UTC, got %s", got)
	}
}

func TestDefaultWeeklyHours(t *testing.T) {
	week := DefaultWeeklyHours("08:00", "18:00", []config.Weekday{config.Monday, config.Friday})
	if len(week) != 7 {
		t.Fatalf("expected 7 days, got %d", len(week))
	}
	for _, wh := range week {
		working := wh.Day == config.Monday || wh.Day == config.Friday
		if wh.IsOpen != working {
			t.Errorf("%s: IsOpen = %v", wh.Day, wh.IsOpen)
		}
		if working && (wh.Open != "08:00" || wh.Close != "18:00") {
			t.Errorf("%s: hours %s-%s", wh.Day, wh.Open, wh.Close)
		}
		if !working && wh.Open != "" {
			t.Errorf("%s: closed day should have no hours", wh.Day)
		}
	}
}
