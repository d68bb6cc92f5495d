package model

import (
	"encoding/json"
	"time"
)

const (
	EventBookingCreated       = "booking.created"
	EventBookingRescheduled   = "booking.rescheduled"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingStatusChanged = "booking.status_changed"

	EventProviderUpserted = "provider.upserted"
	EventServiceUpserted  = "service.upserted"
)

// BookingEvent is published after a ledger mutation commits.
type BookingEvent struct {
	ID             string        `json:"id"`
	Type           string        `json:"type"`
	OccurredAt     time.Time     `json:"occurred_at"`
	BookingID      string        `json:"booking_id"`
	ProviderID     string        `json:"provider_id"`
	ServiceID      string        `json:"service_id"`
	CustomerID     string        `json:"customer_id"`
	Status         BookingStatus `json:"status"`
	PreviousStatus BookingStatus `json:"previous_status,omitempty"`
	StartTime      time.Time     `json:"start_time"`
	EndTime        time.Time     `json:"end_time"`
	PreviousStart  *time.Time    `json:"previous_start,omitempty"`
	PreviousEnd    *time.Time    `json:"previous_end,omitempty"`
	Reason         string        `json:"reason,omitempty"`
}

// CatalogEvent carries a provider or service upsert from the catalog.
type CatalogEvent struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}
