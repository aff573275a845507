package repositories

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrInvalidVideo indicates a video cannot be stored as given.
	ErrInvalidVideo = errors.New("invalid video record")
)
