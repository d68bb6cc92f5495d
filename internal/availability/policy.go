package availability

import (
	"fmt"
	"time"

	apperrors "washbook/pkg/errors"
	"washbook/pkg/model"
)

// CheckStart enforces the booking window of svc for a slot starting at start.
func CheckStart(svc *model.Service, start, now time.Time) error {
	if start.Before(now) {
		return apperrors.PolicyViolation(apperrors.RuleSlotInPast,
			"Requested slot has already started",
			map[string]any{"requested_start": start, "now": now},
		)
	}

	if minAdvance := svc.MinAdvance(); minAdvance > 0 {
		earliest := now.Add(minAdvance)
		if start.Before(earliest) {
			return apperrors.PolicyViolation(apperrors.RuleMinAdvanceBooking,
				fmt.Sprintf("Bookings must be made at least %d hours in advance", *svc.MinAdvanceBookingHours),
				map[string]any{"requested_start": start, "earliest_start": earliest},
			)
		}
	}

	if maxAdvance, ok := svc.MaxAdvance(); ok {
		latest := now.Add(maxAdvance)
		if start.After(latest) {
			return apperrors.PolicyViolation(apperrors.RuleMaxAdvanceBooking,
				fmt.Sprintf("Bookings can be made at most %d hours in advance", *svc.MaxAdvanceBookingHours),
				map[string]any{"requested_start": start, "latest_start": latest},
			)
		}
	}

	return nil
}

// IsOffered reports whether [start, end) is exactly one of slots.
func IsOffered(slots []model.Slot, start, end time.Time) bool {
	for _, s := range slots {
		if s.StartTime.Equal(start) && s.EndTime.Equal(end) {
			return true
		}
	}
	return false
}

// countOverlaps returns how many bookings intersect [start, end).
// bookings must be sorted by start time.
func countOverlaps(bookings []*model.Booking, start, end time.Time) int {
	n := 0
	for _, b := range bookings {
		if !b.StartTime.Before(end) {
			break
		}
		if b.EndTime.After(start) {
			n++
		}
	}
	return n
}
