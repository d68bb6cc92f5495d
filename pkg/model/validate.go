package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"washbook/pkg/config"
)

// NewValidate returns a validator with the calendar tags registered:
// clock (HH:MM), datestr (YYYY-MM-DD) and weekday.
func NewValidate() (*validator.Validate, error) {
	v := validator.New()

	custom := map[string]validator.Func{
		"clock":   validateClock,
		"datestr": validateDate,
		"weekday": validateWeekday,
	}
	for tag, fn := range custom {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("failed to register %q validator: %w", tag, err)
		}
	}
	return v, nil
}

func validateClock(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != len(config.ClockLayout) {
		return false
	}
	_, err := time.Parse(config.ClockLayout, s)
	return err == nil
}

func validateDate(fl validator.FieldLevel) bool {
	_, err := time.Parse(config.DateLayout, fl.Field().String())
	return err == nil
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := config.Weekday(fl.Field().String()).ToTime()
	return ok
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details renders the errors for an AppError payload.
func (v ValidationErrors) Details() map[string]any {
	return map[string]any{"errors": []ValidationError(v)}
}

// CheckStruct runs struct validation and translates failures into
// ValidationErrors with readable messages.
func CheckStruct(v *validator.Validate, s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	out := make(ValidationErrors, 0, len(validationErrs))
	for _, fe := range validationErrs {
		out = append(out, ValidationError{Field: fe.Namespace(), Message: describe(fe)})
	}
	return out
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "clock":
		return fmt.Sprintf("%s must be in HH:MM 24-hour format", fe.Field())
	case "datestr":
		return fmt.Sprintf("%s must be a YYYY-MM-DD date", fe.Field())
	case "weekday":
		return fmt.Sprintf("%s must be a weekday name (Sunday-Saturday)", fe.Field())
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone", fe.Field())
	case "iso4217":
		return fmt.Sprintf("%s must be an ISO 4217 currency code", fe.Field())
	}
	return fe.Error()
}
