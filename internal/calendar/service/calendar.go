package service

import (
	"context"
	"errors"

	"washbook/internal/calendar"
	calendarerrors "washbook/internal/calendar/errors"
	"washbook/internal/calendar/repository"
	"washbook/internal/calendar/validator"
	"washbook/pkg/config"
	mongotx "washbook/pkg/db/mongo"
	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
	"washbook/pkg/sanitizer"
)

type CalendarService interface {
	GetProvider(ctx context.Context, providerID string) (*model.Provider, error)
	HoursFor(ctx context.Context, providerID string, date string) (calendar.DayHours, bool, error)
	GenerateSlots(ctx context.Context, providerID string, date string, durationMinutes int) ([]model.Slot, error)
	GetCalendar(ctx context.Context, providerID string) (*model.CalendarView, error)
	UpdateWeeklyHours(ctx context.Context, providerID string, update *model.WeeklyHoursUpdate) (*model.CalendarView, error)
	SetOverride(ctx context.Context, providerID string, date string, override *model.HoursOverride) (*model.CalendarView, error)
	DeleteOverride(ctx context.Context, providerID string, date string) (*model.CalendarView, error)
	EnsureProvider(ctx context.Context, profile *model.ProviderProfile) (*model.Provider, error)
}

type calendarService struct {
	repo      repository.ProviderRepository
	validator *validator.CalendarValidator
	cfg       *config.Config
}

func NewCalendarService(
	repo repository.ProviderRepository,
	validator *validator.CalendarValidator,
	cfg *config.Config,
) CalendarService {
	return &calendarService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *calendarService) readPolicy() mongotx.RetryPolicy {
	return mongotx.RetryPolicy{Attempts: s.cfg.ReadRetryAttempts, Backoff: s.cfg.ReadRetryBackoff}
}

func (s *calendarService) GetProvider(ctx context.Context, providerID string) (*model.Provider, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	provider, err := mongotx.WithRetry(ctx, s.readPolicy(), mongotx.IsTransient,
		func(ctx context.Context) (*model.Provider, error) {
			return s.repo.FindByID(ctx, providerID)
		})
	if err != nil {
		return nil, s.mapError(err, providerID, "Failed to load provider")
	}
	return provider, nil
}

// HoursFor reports the provider's opening window on date. Overrides win
// over the weekday default.
func (s *calendarService) HoursFor(ctx context.Context, providerID string, date string) (calendar.DayHours, bool, error) {
	provider, err := s.GetProvider(ctx, providerID)
	if err != nil {
		return calendar.DayHours{}, false, err
	}

	hours, open, err := calendar.ResolveDay(provider, date)
	if err != nil {
		return calendar.DayHours{}, false, apperrors.InvalidInput(err.Error())
	}
	return hours, open, nil
}

func (s *calendarService) GenerateSlots(ctx context.Context, providerID string, date string, durationMinutes int) ([]model.Slot, error) {
	hours, open, err := s.HoursFor(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	if !open {
		return nil, nil
	}
	return calendar.GenerateSlots(hours, durationMinutes), nil
}

func (s *calendarService) GetCalendar(ctx context.Context, providerID string) (*model.CalendarView, error) {
	provider, err := s.GetProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	return viewOf(provider), nil
}

func (s *calendarService) UpdateWeeklyHours(ctx context.Context, providerID string, update *model.WeeklyHoursUpdate) (*model.CalendarView, error) {
	if err := s.validator.ValidateWeeklyHours(update); err != nil {
		s.cfg.Log.Warn("Weekly hours validation failed", "provider_id", providerID, "error", err)
		return nil, validationError("Invalid weekly hours", err)
	}

	weekly := normalizeWeek(update.WeeklyHours)
	provider, err := s.repo.UpdateWeeklyHours(ctx, providerID, update.Version, weekly)
	if err != nil {
		return nil, s.mapError(err, providerID, "Failed to update weekly hours")
	}

	s.cfg.Log.Info("Weekly hours updated", "provider_id", providerID, "version", provider.Version)
	return viewOf(provider), nil
}

func (s *calendarService) SetOverride(ctx context.Context, providerID string, date string, override *model.HoursOverride) (*model.CalendarView, error) {
	if err := s.validator.ValidateOverride(date, override); err != nil {
		s.cfg.Log.Warn("Calendar override validation failed", "provider_id", providerID, "date", date, "error", err)
		return nil, validationError("Invalid calendar override", err)
	}

	stored := *override
	if !stored.IsOpen {
		stored.Open, stored.Close = "", ""
	}
	provider, err := s.repo.SetOverride(ctx, providerID, date, stored)
	if err != nil {
		return nil, s.mapError(err, providerID, "Failed to set calendar override")
	}

	s.cfg.Log.Info("Calendar override set", "provider_id", providerID, "date", date, "is_open", stored.IsOpen)
	return viewOf(provider), nil
}

func (s *calendarService) DeleteOverride(ctx context.Context, providerID string, date string) (*model.CalendarView, error) {
	provider, err := s.repo.DeleteOverride(ctx, providerID, date)
	if err != nil {
		if errors.Is(err, calendarerrors.ErrOverrideNotFound) {
			return nil, apperrors.NotFound("Calendar override for " + date)
		}
		return nil, s.mapError(err, providerID, "Failed to delete calendar override")
	}

	s.cfg.Log.Info("Calendar override removed", "provider_id", providerID, "date", date)
	return viewOf(provider), nil
}

// EnsureProvider creates the provider with the configured default calendar
// if it does not exist yet, and refreshes its catalog-owned profile.
func (s *calendarService) EnsureProvider(ctx context.Context, profile *model.ProviderProfile) (*model.Provider, error) {
	profile.Name = sanitizer.NormalizeName(profile.Name)
	if err := s.validator.ValidateProfile(profile); err != nil {
		return nil, validationError("Invalid provider profile", err)
	}

	defaults := &model.Provider{
		TimeZone:    s.cfg.DefaultTimeZone,
		AutoAccept:  s.cfg.DefaultAutoAccept,
		WeeklyHours: calendar.DefaultWeeklyHours(s.cfg.DefaultOpenTime, s.cfg.DefaultCloseTime, s.cfg.DefaultWorkingDays),
	}

	provider, err := s.repo.Upsert(ctx, *profile, defaults)
	if err != nil {
		s.cfg.Log.Error("Failed to upsert provider", "provider_id", profile.ID, "error", err)
		return nil, mongotx.StoreError("Failed to upsert provider", err)
	}
	s.cfg.Log.Info("Provider upserted", "provider_id", provider.ID, "time_zone", provider.TimeZone)
	return provider, nil
}

func (s *calendarService) mapError(err error, providerID, message string) error {
	switch {
	case errors.Is(err, calendarerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Provider", providerID)
	case errors.Is(err, calendarerrors.ErrVersionConflict):
		return apperrors.Conflict("Calendar was modified by another request; reload and retry")
	}
	s.cfg.Log.Error(message, "provider_id", providerID, "error", err)
	return mongotx.StoreError(message, err)
}

func validationError(message string, err error) error {
	var verrs model.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// normalizeWeek orders entries Sunday..Saturday and clears times on closed days.
func normalizeWeek(in []model.WorkingHours) []model.WorkingHours {
	out := make([]model.WorkingHours, len(config.AllWeekdays))
	for _, wh := range in {
		day, _ := wh.Day.ToTime()
		wh.Day = config.WeekdayOf(day)
		if !wh.IsOpen {
			wh.Open, wh.Close = "", ""
		}
		out[day] = wh
	}
	return out
}

func viewOf(p *model.Provider) *model.CalendarView {
	overrides := p.Overrides
	if overrides == nil {
		overrides = map[string]model.HoursOverride{}
	}
	return &model.CalendarView{
		ProviderID:  p.ID,
		TimeZone:    p.TimeZone,
		AutoAccept:  p.AutoAccept,
		WeeklyHours: p.WeeklyHours,
		Overrides:   overrides,
		Version:     p.Version,
	}
}
