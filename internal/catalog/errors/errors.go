package errors

import "errors"

var (
	ErrServiceNotFound = errors.New("service not found")

	ErrUnknownEvent = errors.New("unknown catalog event type")
)
