package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "without underlying error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "booking not found",
			},
			expected: "NOT_FOUND: booking not found",
		},
		{
			name: "with underlying error",
			appErr: &AppError{
				Code:    CodeTransientStore,
				Message: "ledger unavailable",
				Err:     errors.New("connection reset"),
			},
			expected: "TRANSIENT_STORE: ledger unavailable (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := Wrap(originalErr, CodeInternal, "wrapped", http.StatusInternalServerError)

	if errors.Unwrap(appErr) != originalErr {
		t.Errorf("Unwrap() should return original error")
	}
}

func TestAppError_StatusCodeDefaultsToInternal(t *testing.T) {
	err := &AppError{Code: "SOMETHING"}
	if err.StatusCode() != http.StatusInternalServerError {
		t.Errorf("StatusCode() = %d, want %d", err.StatusCode(), http.StatusInternalServerError)
	}
}

func TestNotFoundWithID(t *testing.T) {
	err := NotFoundWithID("Booking", "12345")

	if err.Code != CodeNotFound {
		t.Errorf("expected code %s, got %s", CodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Details["id"] != "12345" {
		t.Errorf("expected id '12345', got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Booking" {
		t.Errorf("expected resource 'Booking', got %v", err.Details["resource"])
	}
}

func TestSlotConflict(t *testing.T) {
	err := SlotConflict("slot is full", map[string]any{"max_capacity": 1})

	if err.Code != CodeSlotConflict {
		t.Errorf("expected code %s, got %s", CodeSlotConflict, err.Code)
	}
	if err.HTTPStatus != http.StatusConflict {
		t.Errorf("expected status %d, got %d", http.StatusConflict, err.HTTPStatus)
	}
	if err.Details["max_capacity"] != 1 {
		t.Errorf("expected max_capacity detail to be kept, got %v", err.Details["max_capacity"])
	}
	if _, ok := err.Details["hint"]; !ok {
		t.Errorf("expected refetch hint in details")
	}
}

func TestSlotConflict_NilDetails(t *testing.T) {
	err := SlotConflict("slot is full", nil)
	if err.Details == nil {
		t.Fatal("expected details to be allocated")
	}
}

func TestPolicyViolation(t *testing.T) {
	err := PolicyViolation(RuleMinAdvanceBooking, "too late to book", map[string]any{"min_advance_hours": 2})

	if err.Code != CodePolicyViolation {
		t.Errorf("expected code %s, got %s", CodePolicyViolation, err.Code)
	}
	if err.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("expected status %d, got %d", http.StatusUnprocessableEntity, err.HTTPStatus)
	}
	if err.Details["rule"] != RuleMinAdvanceBooking {
		t.Errorf("expected rule %s, got %v", RuleMinAdvanceBooking, err.Details["rule"])
	}
	if err.Details["min_advance_hours"] != 2 {
		t.Errorf("expected bound detail to be kept")
	}
}

func TestTransientStore(t *testing.T) {
	cause := errors.New("i/o timeout")
	err := TransientStore("ledger unavailable", cause)

	if err.HTTPStatus != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, err.HTTPStatus)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected TransientStore to wrap its cause")
	}
}

func TestIsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	wrapped := fmt.Errorf("lookup: %w", appErr)

	if !IsAppError(appErr) {
		t.Errorf("IsAppError() should return true for AppError")
	}
	if !IsAppError(wrapped) {
		t.Errorf("IsAppError() should see through wrapping")
	}
	if IsAppError(errors.New("regular error")) {
		t.Errorf("IsAppError() should return false for regular error")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := NotFound("Booking")
	regularErr := errors.New("regular error")

	if AsAppError(appErr) != appErr {
		t.Errorf("AsAppError() should return same AppError")
	}
	if AsAppError(fmt.Errorf("ctx: %w", appErr)) != appErr {
		t.Errorf("AsAppError() should unwrap to the AppError")
	}

	result := AsAppError(regularErr)
	if result.Code != CodeInternal {
		t.Errorf("AsAppError() should wrap regular error as internal error")
	}
	if result.Err != regularErr {
		t.Errorf("AsAppError() should wrap the original error")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("tx: %w", SlotConflict("full", nil))

	if !HasCode(err, CodeSlotConflict) {
		t.Errorf("HasCode() should match SLOT_CONFLICT")
	}
	if HasCode(err, CodePolicyViolation) {
		t.Errorf("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeSlotConflict) {
		t.Errorf("HasCode() should be false for plain errors")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	body := string(NotFoundWithID("Booking", "12345").ToJSON())

	if !strings.Contains(body, "NOT_FOUND") {
		t.Errorf("ToJSON() should contain error code")
	}
	if !strings.Contains(body, "not found") {
		t.Errorf("ToJSON() should contain error message")
	}
}
