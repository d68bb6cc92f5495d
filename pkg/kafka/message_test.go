package kafka

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMessage_RetryCount(t *testing.T) {
	var msg Message
	if got := msg.GetRetryCount(); got != 0 {
		t.Fatalf("GetRetryCount() = %d, want 0", got)
	}
	for i := 0; i < 12; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 12 {
		t.Errorf("GetRetryCount() = %d, want 12", got)
	}

	msg.Headers[HeaderRetryCount] = "garbage"
	if got := msg.GetRetryCount(); got != 0 {
		t.Errorf("GetRetryCount() with malformed header = %d, want 0", got)
	}
}

func TestMessageBuilder(t *testing.T) {
	msg, err := NewMessage().
		WithKey("booking-1").
		WithEventType("booking.created").
		WithValue(map[string]string{"id": "booking-1"}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if msg.GetEventID() == "" {
		t.Error("expected generated event id")
	}
	if msg.Headers[HeaderTimestamp] == "" {
		t.Error("expected timestamp header")
	}
	var decoded map[string]string
	if err := msg.DecodeValue(&decoded); err != nil || decoded["id"] != "booking-1" {
		t.Errorf("DecodeValue() = %v, %v", decoded, err)
	}

	if _, err := NewMessage().WithValue(make(chan int)).Build(); err == nil {
		t.Error("expected error for unencodable value")
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		retries int
		want    bool
	}{
		{"nil", nil, 0, false},
		{"transient", NewTransientError("x", nil), 0, true},
		{"transient exhausted", NewTransientError("x", nil), 3, false},
		{"permanent", NewPermanentError("x", nil), 0, false},
		{"deadline", fmt.Errorf("write: %w", context.DeadlineExceeded), 0, true},
		{"connection refused text", errors.New("dial tcp: Connection Refused"), 1, true},
		{"unknown", errors.New("unexpected field"), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldRetry(tt.err, tt.retries, 3); got != tt.want {
				t.Errorf("ShouldRetry() = %v, want %v", got, tt.want)
			}
		})
	}
}
