package domain

import "errors"

var (
	// ErrCacheMiss indicates no cached entry was found.
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoProvider indicates no registered provider can serve the request.
	ErrNoProvider = errors.New("no provider available")

	// ErrInvalidRequest indicates a request field is out of bounds.
	ErrInvalidRequest = errors.New("invalid request")
)
