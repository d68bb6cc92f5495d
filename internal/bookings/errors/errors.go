package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	// ErrStatusChanged means the booking left the expected status between
	// read and write.
	ErrStatusChanged = errors.New("booking status changed concurrently")

	ErrLockTimeout = errors.New("timed out waiting for booking lock")

	// ErrLockLost means the lock expired and another owner took it over
	// before the holder committed.
	ErrLockLost = errors.New("booking lock lost before commit")
)
