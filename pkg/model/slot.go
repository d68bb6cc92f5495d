package model

import "time"

type Slot struct {
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
	Remaining int       `json:"remaining"`
}

type Availability struct {
	ProviderID string `json:"provider_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	TimeZone   string `json:"time_zone"`
	Available  bool   `json:"available"`
	Slots      []Slot `json:"slots"`
}
