package handlers

import (
	"context"

	"github.com/cricketreels/backend/internal/videos"
)

// VideoService selects videos for the public API.
type VideoService interface {
	GetVideo(ctx context.Context, sel videos.Selector) (videos.Payload, error)
	Count() int
}
