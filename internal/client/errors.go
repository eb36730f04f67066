package client

import "errors"

var (
	// ErrUnexpectedStatus is returned when the server replies with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status")

	// ErrInvalidResponse is returned when the reply body is not a completion object.
	ErrInvalidResponse = errors.New("invalid response")
)
