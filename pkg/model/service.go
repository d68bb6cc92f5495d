package model

import "time"

type Service struct {
	ID                     string    `json:"id" bson:"_id" validate:"required,min=1,max=64"`
	ProviderID             string    `json:"provider_id" bson:"provider_id" validate:"required,min=1,max=64"`
	Name                   string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	DurationMinutes        int       `json:"duration_minutes" bson:"duration_minutes" validate:"required,min=1,max=1440"`
	MinAdvanceBookingHours *int      `json:"min_advance_booking_hours,omitempty" bson:"min_advance_booking_hours,omitempty" validate:"omitempty,min=0"`
	MaxAdvanceBookingHours *int      `json:"max_advance_booking_hours,omitempty" bson:"max_advance_booking_hours,omitempty" validate:"omitempty,min=1"`
	MaxCapacity            int       `json:"max_capacity" bson:"max_capacity" validate:"required,min=1,max=200"`
	PriceCents             int64     `json:"price_cents" bson:"price_cents" validate:"min=0"`
	Currency               string    `json:"currency" bson:"currency" validate:"omitempty,iso4217"`
	Active                 bool      `json:"active" bson:"active"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// MinAdvance is zero when the service sets no lower bound.
func (s *Service) MinAdvance() time.Duration {
	if s.MinAdvanceBookingHours == nil {
		return 0
	}
	return time.Duration(*s.MinAdvanceBookingHours) * time.Hour
}

// MaxAdvance reports false when the service sets no upper bound.
func (s *Service) MaxAdvance() (time.Duration, bool) {
	if s.MaxAdvanceBookingHours == nil {
		return 0, false
	}
	return time.Duration(*s.MaxAdvanceBookingHours) * time.Hour, true
}
