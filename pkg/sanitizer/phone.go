package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	supportedRegions = []string{
		"US",
		"IL",
		"GB",
	}
)

// NormalizePhone returns the E.164 form of phone, trying region before the
// supported fallbacks. Numbers that parse nowhere become "".
func NormalizePhone(phone, region string) string {
	phone = strings.TrimSpace(phone)

	if phone == "" {
		return ""
	}

	regions := supportedRegions
	if region != "" {
		regions = append([]string{region}, supportedRegions...)
	}

	for _, r := range regions {
		parsedNumber, err := phonenumbers.Parse(phone, r)
		if err == nil {
			return phonenumbers.Format(parsedNumber, phonenumbers.E164)
		}
	}
	return ""
}
