package videos

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested video does not exist.
	ErrNotFound = errors.New("video not found")
	// ErrNoVideos indicates a random pick from an empty catalog. It matches
	// ErrNotFound under errors.Is.
	ErrNoVideos = fmt.Errorf("no videos available: %w", ErrNotFound)
	// ErrIntegrity indicates a catalog entry is unusable, which points at a
	// configuration bug rather than a bad request.
	ErrIntegrity = errors.New("invalid video data")
)
