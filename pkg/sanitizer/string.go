package sanitizer

import (
	"strings"
	"unicode"
)

const maxNotesRunes = 500

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NormalizeVehicle(vehicle string) string {
	return strings.ToUpper(TrimAndNormalize(vehicle))
}

// NormalizeNotes collapses whitespace and cuts the text at maxNotesRunes.
func NormalizeNotes(notes string) string {
	notes = TrimAndNormalize(notes)
	if r := []rune(notes); len(r) > maxNotesRunes {
		notes = strings.TrimSpace(string(r[:maxNotesRunes]))
	}
	return notes
}
