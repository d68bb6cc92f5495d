package model

import (
	"slices"
	"time"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRejected  BookingStatus = "rejected"
	StatusNoShow    BookingStatus = "no_show"
)

// ActiveStatuses hold capacity. Everything else is terminal.
var ActiveStatuses = []BookingStatus{StatusPending, StatusConfirmed}

var AllStatuses = []BookingStatus{
	StatusPending, StatusConfirmed, StatusCompleted,
	StatusCancelled, StatusRejected, StatusNoShow,
}

var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusRejected},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

func (s BookingStatus) Valid() bool {
	return slices.Contains(AllStatuses, s)
}

func (s BookingStatus) IsActive() bool {
	return slices.Contains(ActiveStatuses, s)
}

func (s BookingStatus) IsTerminal() bool {
	return s.Valid() && !s.IsActive()
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	return slices.Contains(transitions[s], target)
}

// AllowedTransitions lists the statuses reachable from s.
func (s BookingStatus) AllowedTransitions() []BookingStatus {
	return slices.Clone(transitions[s])
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

type CustomerDetails struct {
	Name    string `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,max=32"`
	Email   string `json:"email,omitempty" bson:"email,omitempty" validate:"omitempty,email"`
	Vehicle string `json:"vehicle,omitempty" bson:"vehicle,omitempty" validate:"omitempty,max=100"`
	Notes   string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
}

type Booking struct {
	ID                 string          `json:"id,omitempty" bson:"_id,omitempty"`
	ProviderID         string          `json:"provider_id" bson:"provider_id"`
	ServiceID          string          `json:"service_id" bson:"service_id"`
	CustomerID         string          `json:"customer_id" bson:"customer_id"`
	BookingDate        string          `json:"booking_date" bson:"booking_date"`
	StartTime          time.Time       `json:"start_time" bson:"start_time"`
	EndTime            time.Time       `json:"end_time" bson:"end_time"`
	Status             BookingStatus   `json:"status" bson:"status"`
	PaymentStatus      PaymentStatus   `json:"payment_status" bson:"payment_status"`
	PriceCents         int64           `json:"price_cents" bson:"price_cents"`
	Currency           string          `json:"currency,omitempty" bson:"currency,omitempty"`
	Customer           CustomerDetails `json:"customer_details" bson:"customer_details"`
	CancellationReason string          `json:"cancellation_reason,omitempty" bson:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time      `json:"cancelled_at,omitempty" bson:"cancelled_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at" bson:"updated_at"`
}

// BookingRequest names a slot by provider-local date and clock times.
type BookingRequest struct {
	ProviderID string          `json:"provider_id" validate:"required,min=1,max=64"`
	ServiceID  string          `json:"service_id" validate:"required,min=1,max=64"`
	CustomerID string          `json:"customer_id" validate:"required,min=1,max=64"`
	Date       string          `json:"date" validate:"required,datestr"`
	StartTime  string          `json:"start_time" validate:"required,clock"`
	EndTime    string          `json:"end_time" validate:"required,clock"`
	Customer   CustomerDetails `json:"customer_details" validate:"required"`
}

type RescheduleRequest struct {
	Date      string `json:"date" validate:"required,datestr"`
	StartTime string `json:"start_time" validate:"required,clock"`
	EndTime   string `json:"end_time" validate:"required,clock"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type StatusUpdate struct {
	Status BookingStatus `json:"status" validate:"required,oneof=confirmed rejected completed no_show"`
}
