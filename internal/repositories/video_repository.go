package repositories

import (
	"context"

	"github.com/cricketreels/backend/internal/models"
)

// VideoRepository exposes data access for catalog videos.
type VideoRepository interface {
	List(ctx context.Context) ([]models.Video, error)
	FindByID(ctx context.Context, id int) (models.Video, error)
	Seed(ctx context.Context, videos []models.Video) (int, error)
}
