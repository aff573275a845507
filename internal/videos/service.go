package videos

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/embeds"
	"github.com/cricketreels/backend/internal/logging"
	"github.com/cricketreels/backend/internal/models"
)

// Catalog is the read side of the video catalog.
type Catalog interface {
	Count() int
	PickRandom() (models.Video, error)
	PickByID(id int) (models.Video, error)
}

// EmbedResolver resolves a video URL into embed metadata. It never fails.
type EmbedResolver interface {
	Resolve(ctx context.Context, url string) embeds.Record
}

// Selector picks a video by id, or at random when ID is nil.
type Selector struct {
	ID *int
}

// ByID selects the video with the given id.
func ByID(id int) Selector {
	return Selector{ID: &id}
}

// Random selects a video uniformly at random.
func Random() Selector {
	return Selector{}
}

// Payload is the response body of GET /api/video.
type Payload struct {
	ID       int             `json:"id"`
	URL      string          `json:"url"`
	Platform models.Platform `json:"platform"`
	Embed    embeds.Record   `json:"embed"`
}

// Service selects videos and attaches embed metadata.
type Service struct {
	catalog  Catalog
	resolver EmbedResolver
}

// NewService wires a service over a catalog and resolver.
func NewService(c Catalog, r EmbedResolver) *Service {
	return &Service{catalog: c, resolver: r}
}

// GetVideo returns the selected video with its embed record.
func (s *Service) GetVideo(ctx context.Context, sel Selector) (Payload, error) {
	if s == nil || s.catalog == nil || s.resolver == nil {
		return Payload{}, fmt.Errorf("video service not configured: %w", ErrIntegrity)
	}

	video, err := s.pick(sel)
	if err != nil {
		return Payload{}, err
	}

	if strings.TrimSpace(video.URL) == "" {
		return Payload{}, fmt.Errorf("video %d has no url: %w", video.ID, ErrIntegrity)
	}

	logging.FromContext(ctx).Debug("video selected", "videoId", video.ID, "url", video.URL)

	return Payload{
		ID:       video.ID,
		URL:      video.URL,
		Platform: video.Platform,
		Embed:    s.resolver.Resolve(ctx, video.URL),
	}, nil
}

// Count returns the number of videos in the catalog.
func (s *Service) Count() int {
	if s == nil || s.catalog == nil {
		return 0
	}
	return s.catalog.Count()
}

func (s *Service) pick(sel Selector) (models.Video, error) {
	if sel.ID != nil {
		video, err := s.catalog.PickByID(*sel.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			return models.Video{}, fmt.Errorf("video %d: %w", *sel.ID, ErrNotFound)
		}
		return video, err
	}

	video, err := s.catalog.PickRandom()
	if errors.Is(err, catalog.ErrEmpty) {
		return models.Video{}, ErrNoVideos
	}
	return video, err
}
