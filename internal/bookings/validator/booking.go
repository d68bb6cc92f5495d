package validator

import (
	"github.com/go-playground/validator/v10"

	"washbook/pkg/logger"
	"washbook/pkg/model"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v, err := model.NewValidate()
	if err != nil {
		log.Fatal("Failed to initialize booking validator", "error", err)
	}

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) ValidateRequest(req *model.BookingRequest) error {
	if err := model.CheckStruct(v.validate, req); err != nil {
		return err
	}
	return checkClockOrder(req.StartTime, req.EndTime)
}

func (v *BookingValidator) ValidateReschedule(req *model.RescheduleRequest) error {
	if err := model.CheckStruct(v.validate, req); err != nil {
		return err
	}
	return checkClockOrder(req.StartTime, req.EndTime)
}

func (v *BookingValidator) ValidateCancel(req *model.CancelRequest) error {
	return model.CheckStruct(v.validate, req)
}

func (v *BookingValidator) ValidateStatusUpdate(req *model.StatusUpdate) error {
	return model.CheckStruct(v.validate, req)
}

// checkClockOrder relies on HH:MM strings sorting chronologically.
func checkClockOrder(start, end string) error {
	if end <= start {
		return model.ValidationErrors{{Field: "end_time", Message: "end_time must be after start_time"}}
	}
	return nil
}
