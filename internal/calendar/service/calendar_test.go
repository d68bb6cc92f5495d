package service

import (
	"context"
	"testing"

	"washbook/internal/calendar/validator"
	"washbook/internal/testfixtures"
	"washbook/pkg/config"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

func newTestService(providers ...*model.Provider) (CalendarService, *testfixtures.Providers) {
	cfg := testfixtures.Config()
	repo := testfixtures.NewProviders(providers...)
	return NewCalendarService(repo, validator.NewCalendarValidator(cfg.Log), cfg), repo
}

func openWeek(open, closeAt string) []model.WorkingHours {
	week := make([]model.WorkingHours, 0, len(config.AllWeekdays))
	for _, d := range config.AllWeekdays {
		week = append(week, model.WorkingHours{Day: d, Open: open, Close: closeAt, IsOpen: true})
	}
	return week
}

func TestGenerateSlots_FullDay(t *testing.T) {
	svc, _ := newTestService(testfixtures.Provider("UTC", false))

	slots, err := svc.GenerateSlots(context.Background(), testfixtures.ProviderID, "2025-06-02", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 10 {
		t.Fatalf("expected 10 hourly slots between 09:00 and 19:00, got %d", len(slots))
	}
	if got := slots[0].StartTime.Format("15:04"); got != "09:00" {
		t.Errorf("first slot at %s", got)
	}
	if got := slots[9].EndTime.Format("15:04"); got != "19:00" {
		t.Errorf("last slot ends at %s", got)
	}
}

func TestGenerateSlots_UnknownProvider(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GenerateSlots(context.Background(), "missing", "2025-06-02", 60)
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateWeeklyHours(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(testfixtures.Provider("UTC", false))

	view, err := svc.UpdateWeeklyHours(ctx, testfixtures.ProviderID, &model.WeeklyHoursUpdate{
		Version:     0,
		WeeklyHours: openWeek("08:00", "12:00"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view.Version != 1 {
		t.Errorf("expected version 1, got %d", view.Version)
	}

	slots, err := svc.GenerateSlots(ctx, testfixtures.ProviderID, "2025-06-02", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 4 {
		t.Errorf("expected 4 slots after update, got %d", len(slots))
	}

	_, err = svc.UpdateWeeklyHours(ctx, testfixtures.ProviderID, &model.WeeklyHoursUpdate{
		Version:     0,
		WeeklyHours: openWeek("10:00", "12:00"),
	})
	if !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Fatalf("stale version should conflict, got %v", err)
	}
}

func TestUpdateWeeklyHours_Validation(t *testing.T) {
	svc, _ := newTestService(testfixtures.Provider("UTC", false))

	inverted := openWeek("09:00", "19:00")
	inverted[2].Open, inverted[2].Close = "18:00", "10:00"

	duplicated := openWeek("09:00", "19:00")
	duplicated[6].Day = config.Monday

	tests := []struct {
		name  string
		hours []model.WorkingHours
	}{
		{name: "open after close", hours: inverted},
		{name: "duplicate weekday", hours: duplicated},
		{name: "missing days", hours: openWeek("09:00", "19:00")[:5]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateWeeklyHours(context.Background(), testfixtures.ProviderID, &model.WeeklyHoursUpdate{WeeklyHours: tt.hours})
			if !apperrors.HasCode(err, apperrors.CodeValidation) {
				t.Fatalf("expected VALIDATION_ERROR, got %v", err)
			}
		})
	}
}

func TestOverrides(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(testfixtures.Provider("UTC", false))

	view, err := svc.SetOverride(ctx, testfixtures.ProviderID, "2025-06-02", &model.HoursOverride{IsOpen: false, Open: "09:00", Close: "10:00"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o := view.Overrides["2025-06-02"]; o.Open != "" || o.Close != "" {
		t.Errorf("closed override should not keep hours, got %+v", o)
	}

	slots, err := svc.GenerateSlots(ctx, testfixtures.ProviderID, "2025-06-02", 60)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("closed day should have no slots, got %d", len(slots))
	}

	if _, err := svc.DeleteOverride(ctx, testfixtures.ProviderID, "2025-06-02"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slots, _ = svc.GenerateSlots(ctx, testfixtures.ProviderID, "2025-06-02", 60)
	if len(slots) != 10 {
		t.Errorf("weekday default should apply again, got %d slots", len(slots))
	}

	_, err = svc.DeleteOverride(ctx, testfixtures.ProviderID, "2025-06-02")
	if !apperrors.HasCode(err, apperrors.CodeNotFound) {
		t.Errorf("deleting a missing override should be NOT_FOUND, got %v", err)
	}

	_, err = svc.SetOverride(ctx, testfixtures.ProviderID, "June 2", &model.HoursOverride{IsOpen: true, Open: "09:00", Close: "10:00"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("bad date should be VALIDATION_ERROR, got %v", err)
	}
}

func TestEnsureProvider(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()

	p, err := svc.EnsureProvider(ctx, &model.ProviderProfile{ID: "prov-2", Name: "  Bubbles   Car  Wash "})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name != "Bubbles Car Wash" {
		t.Errorf("name not normalized: %q", p.Name)
	}
	if p.TimeZone != "UTC" || len(p.WeeklyHours) != 7 {
		t.Errorf("defaults not applied: tz=%s days=%d", p.TimeZone, len(p.WeeklyHours))
	}

	autoAccept := true
	if _, err := svc.EnsureProvider(ctx, &model.ProviderProfile{ID: "prov-2", Name: "Bubbles", AutoAccept: &autoAccept}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored, _ := repo.FindByID(ctx, "prov-2")
	if !stored.AutoAccept || stored.Name != "Bubbles" {
		t.Errorf("profile not refreshed: %+v", stored)
	}

	_, err = svc.EnsureProvider(ctx, &model.ProviderProfile{ID: "prov-3", Name: "X"})
	if !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("short name should fail validation, got %v", err)
	}
}
