package validator

import (
	"testing"

	"washbook/pkg/config"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

func weekly() []model.WorkingHours {
	out := make([]model.WorkingHours, 0, len(config.AllWeekdays))
	for _, d := range config.AllWeekdays {
		out = append(out, model.WorkingHours{Day: d, Open: "09:00", Close: "19:00", IsOpen: d != config.Saturday})
	}
	return out
}

func TestValidateWeeklyHours(t *testing.T) {
	v := NewCalendarValidator(logger.Discard())

	tests := []struct {
		name      string
		mutate    func(w []model.WorkingHours) []model.WorkingHours
		wantError bool
	}{
		{name: "valid", mutate: func(w []model.WorkingHours) []model.WorkingHours { return w }},
		{name: "six days", mutate: func(w []model.WorkingHours) []model.WorkingHours { return w[:6] }, wantError: true},
		{
			name: "duplicate day",
			mutate: func(w []model.WorkingHours) []model.WorkingHours {
				w[1].Day = config.Sunday
				return w
			},
			wantError: true,
		},
		{
			name: "unknown day",
			mutate: func(w []model.WorkingHours) []model.WorkingHours {
				w[2].Day = "Funday"
				return w
			},
			wantError: true,
		},
		{
			name: "open after close",
			mutate: func(w []model.WorkingHours) []model.WorkingHours {
				w[3].Open, w[3].Close = "18:00", "08:00"
				return w
			},
			wantError: true,
		},
		{
			name: "open day without hours",
			mutate: func(w []model.WorkingHours) []model.WorkingHours {
				w[4].Open, w[4].Close = "", ""
				return w
			},
			wantError: true,
		},
		{
			name: "closed day ignores hours",
			mutate: func(w []model.WorkingHours) []model.WorkingHours {
				w[6].Open, w[6].Close = "", ""
				return w
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update := &model.WeeklyHoursUpdate{Version: 1, WeeklyHours: tt.mutate(weekly())}
			err := v.ValidateWeeklyHours(update)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateWeeklyHours() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateOverride(t *testing.T) {
	v := NewCalendarValidator(logger.Discard())

	tests := []struct {
		name      string
		date      string
		override  model.HoursOverride
		wantError bool
	}{
		{"short day", "2030-12-24", model.HoursOverride{Open: "09:00", Close: "13:00", IsOpen: true}, false},
		{"closed", "2030-12-25", model.HoursOverride{IsOpen: false}, false},
		{"bad date", "24-12-2030", model.HoursOverride{IsOpen: false}, true},
		{"inverted", "2030-12-24", model.HoursOverride{Open: "13:00", Close: "09:00", IsOpen: true}, true},
		{"bad clock", "2030-12-24", model.HoursOverride{Open: "9am", Close: "13:00", IsOpen: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateOverride(tt.date, &tt.override)
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateOverride() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestValidateProfile(t *testing.T) {
	v := NewCalendarValidator(logger.Discard())

	if err := v.ValidateProfile(&model.ProviderProfile{ID: "wash-1", Name: "Sparkle Wash", TimeZone: "Asia/Jerusalem"}); err != nil {
		t.Errorf("ValidateProfile() unexpected error = %v", err)
	}
	if err := v.ValidateProfile(&model.ProviderProfile{ID: "wash-1", Name: "Sparkle Wash", TimeZone: "Mars/Olympus"}); err == nil {
		t.Error("ValidateProfile() accepted an unknown time zone")
	}
}
