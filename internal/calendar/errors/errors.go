package errors

import "errors"

var (
	ErrNotFound = errors.New("provider not found")

	ErrVersionConflict = errors.New("calendar was modified concurrently")

	ErrOverrideNotFound = errors.New("calendar override not found")
)
