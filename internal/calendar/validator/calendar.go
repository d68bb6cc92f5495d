package validator

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"washbook/internal/calendar"
	"washbook/pkg/config"
	"washbook/pkg/logger"
	"washbook/pkg/model"
)

type CalendarValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewCalendarValidator(log *logger.Logger) *CalendarValidator {
	v, err := model.NewValidate()
	if err != nil {
		log.Fatal("Failed to initialize calendar validator", "error", err)
	}

	return &CalendarValidator{
		validate: v,
		logger:   log,
	}
}

// ValidateWeeklyHours requires one entry per weekday and open < close on
// every open day.
func (v *CalendarValidator) ValidateWeeklyHours(update *model.WeeklyHoursUpdate) error {
	if err := model.CheckStruct(v.validate, update); err != nil {
		return err
	}

	var errs model.ValidationErrors
	seen := make(map[time.Weekday]bool, len(update.WeeklyHours))
	for i, wh := range update.WeeklyHours {
		field := fmt.Sprintf("weekly_hours[%d]", i)
		day, _ := wh.Day.ToTime()
		if seen[day] {
			errs = append(errs, model.ValidationError{Field: field, Message: fmt.Sprintf("%s appears more than once", config.WeekdayOf(day))})
		}
		seen[day] = true

		if wh.IsOpen {
			if err := checkWindow(wh.Open, wh.Close); err != nil {
				errs = append(errs, model.ValidationError{Field: field, Message: err.Error()})
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (v *CalendarValidator) ValidateOverride(date string, override *model.HoursOverride) error {
	if _, err := time.Parse(config.DateLayout, date); err != nil {
		return model.ValidationErrors{{Field: "date", Message: "date must be a YYYY-MM-DD date"}}
	}
	if err := model.CheckStruct(v.validate, override); err != nil {
		return err
	}
	if override.IsOpen {
		if err := checkWindow(override.Open, override.Close); err != nil {
			return model.ValidationErrors{{Field: "override", Message: err.Error()}}
		}
	}
	return nil
}

func (v *CalendarValidator) ValidateProfile(profile *model.ProviderProfile) error {
	return model.CheckStruct(v.validate, profile)
}

func checkWindow(open, closeAt string) error {
	if open == "" || closeAt == "" {
		return fmt.Errorf("open and close are required on an open day")
	}
	openMin, err := calendar.ParseClock(open)
	if err != nil {
		return err
	}
	closeMin, err := calendar.ParseClock(closeAt)
	if err != nil {
		return err
	}
	if openMin >= closeMin {
		return fmt.Errorf("open (%s) must be before close (%s)", open, closeAt)
	}
	return nil
}
