package testfixtures

import (
	"time"

	"washbook/pkg/config"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

const (
	ProviderID = "prov-1"
	ServiceID  = "svc-wash"
)

// Provider returns a provider open 09:00-19:00 every day in tz.
func Provider(tz string, autoAccept bool) *model.Provider {
	week := make([]model.WorkingHours, 0, len(config.AllWeekdays))
	for _, d := range config.AllWeekdays {
		week = append(week, model.WorkingHours{Day: d, Open: "09:00", Close: "19:00", IsOpen: true})
	}
	return &model.Provider{
		ID:          ProviderID,
		Name:        "Sparkle Wash",
		TimeZone:    tz,
		AutoAccept:  autoAccept,
		WeeklyHours: week,
	}
}

// Service returns an active one-hour wash with capacity.
func Service(capacity int) *model.Service {
	return &model.Service{
		ID:              ServiceID,
		ProviderID:      ProviderID,
		Name:            "Exterior wash",
		DurationMinutes: 60,
		MaxCapacity:     capacity,
		PriceCents:      2500,
		Currency:        "USD",
		Active:          true,
	}
}

func IntPtr(v int) *int { return &v }

// Config returns the settings services read in tests.
func Config() *config.Config {
	return &config.Config{
		Log:                logger.Discard(),
		DefaultTimeZone:    "UTC",
		DefaultOpenTime:    "09:00",
		DefaultCloseTime:   "19:00",
		DefaultWorkingDays: []config.Weekday{config.Monday, config.Tuesday, config.Wednesday, config.Thursday, config.Friday, config.Saturday},
		ReadRetryAttempts:  3,
		ReadRetryBackoff:   0,
		BookingLockTTL:     5 * time.Second,
		BookingLockWait:    2 * time.Second,
	}
}
