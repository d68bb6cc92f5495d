package locale

import (
	"strings"
)

const (
	DefaultTimezone = "UTC"
	DefaultRegion   = "US"
)

type Country struct {
	Code            string // ISO 3166-1 alpha-2 country code (e.g., "IL", "US")
	Name            string
	DefaultTimezone string // IANA timezone identifier
}

var (
	Countries = map[string]Country{
		"IL": {Code: "IL", Name: "Israel", DefaultTimezone: "Asia/Jerusalem"},
		"US": {Code: "US", Name: "United States", DefaultTimezone: "America/New_York"},
		"GB": {Code: "GB", Name: "United Kingdom", DefaultTimezone: "Europe/London"},
	}

	TimeZoneTags = map[string][]string{
		"IL": {"Asia/Jerusalem", "Israel", "Asia/Tel_Aviv"},
		"US": {
			"America/New_York", "America/Chicago", "America/Denver", "America/Phoenix",
			"America/Los_Angeles", "America/Anchorage", "Pacific/Honolulu",
			"US/Eastern", "US/Central", "US/Mountain", "US/Pacific",
		},
		"GB": {"Europe/London", "GB"},
	}
)

// DetectRegion maps an IANA zone to the phone region used to parse numbers
// written in national format. Unknown zones fall back to DefaultRegion.
func DetectRegion(tz string) string {
	tz = strings.TrimSpace(tz)
	for region, zones := range TimeZoneTags {
		for _, z := range zones {
			if strings.EqualFold(tz, z) {
				return region
			}
		}
	}
	return DefaultRegion
}
