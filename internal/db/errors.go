package db

import "errors"

var (
	// ErrNotFound is returned when no post has the requested id.
	ErrNotFound = errors.New("post not found")
	// ErrInvalidID is returned when the store rejects the shape of an id.
	ErrInvalidID = errors.New("invalid post id")
	// ErrUnavailable wraps failures to reach the store at all.
	ErrUnavailable = errors.New("store unavailable")
)
