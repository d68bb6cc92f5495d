package model

import (
	"fmt"
	"time"

	"washbook/pkg/config"
)

// WorkingHours is one weekday entry of a provider's weekly calendar.
type WorkingHours struct {
	Day    config.Weekday `json:"day" bson:"day" validate:"required,weekday"`
	Open   string         `json:"open" bson:"open" validate:"omitempty,clock"`
	Close  string         `json:"close" bson:"close" validate:"omitempty,clock"`
	IsOpen bool           `json:"is_open" bson:"is_open"`
}

// HoursOverride replaces the weekday default for a single provider-local date.
type HoursOverride struct {
	Open   string `json:"open,omitempty" bson:"open,omitempty" validate:"omitempty,clock"`
	Close  string `json:"close,omitempty" bson:"close,omitempty" validate:"omitempty,clock"`
	IsOpen bool   `json:"is_open" bson:"is_open"`
}

type Provider struct {
	ID          string                   `json:"id" bson:"_id" validate:"required,min=1,max=64"`
	Name        string                   `json:"name" bson:"name" validate:"required,min=2,max=100"`
	TimeZone    string                   `json:"time_zone" bson:"time_zone" validate:"required,timezone"`
	AutoAccept  bool                     `json:"auto_accept" bson:"auto_accept"`
	WeeklyHours []WorkingHours           `json:"weekly_hours" bson:"weekly_hours" validate:"required,len=7,dive"`
	Overrides   map[string]HoursOverride `json:"overrides,omitempty" bson:"overrides,omitempty" validate:"omitempty,dive,keys,datestr,endkeys"`
	Version     int64                    `json:"version" bson:"version"`
	CreatedAt   time.Time                `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time                `json:"updated_at" bson:"updated_at"`
}

// Location resolves the provider time zone.
func (p *Provider) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(p.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("provider %s has invalid time zone %q: %w", p.ID, p.TimeZone, err)
	}
	return loc, nil
}

// HoursOn returns the weekly entry for the given weekday.
func (p *Provider) HoursOn(day time.Weekday) (WorkingHours, bool) {
	for _, wh := range p.WeeklyHours {
		if d, ok := wh.Day.ToTime(); ok && d == day {
			return wh, true
		}
	}
	return WorkingHours{}, false
}

// ProviderProfile carries the catalog-owned part of a provider.
type ProviderProfile struct {
	ID         string `json:"id" validate:"required,min=1,max=64"`
	Name       string `json:"name" validate:"required,min=2,max=100"`
	TimeZone   string `json:"time_zone,omitempty" validate:"omitempty,timezone"`
	AutoAccept *bool  `json:"auto_accept,omitempty"`
}

type WeeklyHoursUpdate struct {
	Version     int64          `json:"version" validate:"min=0"`
	WeeklyHours []WorkingHours `json:"weekly_hours" validate:"required,len=7,dive"`
}

type CalendarView struct {
	ProviderID  string                   `json:"provider_id"`
	TimeZone    string                   `json:"time_zone"`
	AutoAccept  bool                     `json:"auto_accept"`
	WeeklyHours []WorkingHours           `json:"weekly_hours"`
	Overrides   map[string]HoursOverride `json:"overrides"`
	Version     int64                    `json:"version"`
}
