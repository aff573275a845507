package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	crdbpgxv5 "github.com/cockroachdb/cockroach-go/v2/crdb/crdbpgxv5"
	"github.com/jackc/pgx/v5"

	"github.com/cricketreels/backend/internal/catalog"
	"github.com/cricketreels/backend/internal/db"
	"github.com/cricketreels/backend/internal/models"
)

// PostgresVideoRepository stores the video catalog in PostgreSQL or
// CockroachDB.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// List returns every video ordered by id.
func (r *PostgresVideoRepository) List(ctx context.Context) ([]models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, url, platform
        FROM videos
        ORDER BY id
    `)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []models.Video
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate videos: %w", err)
	}

	return videos, nil
}

// Load implements catalog.Source.
func (r *PostgresVideoRepository) Load(ctx context.Context) ([]models.Video, error) {
	return r.List(ctx)
}

// FindByID fetches a single video.
func (r *PostgresVideoRepository) FindByID(ctx context.Context, id int) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, url, platform
        FROM videos
        WHERE id = $1
    `, id)

	video, err := scanVideo(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Video{}, ErrNotFound
	}
	return video, err
}

// Seed upserts the given videos in a single transaction and returns the
// number written. The transaction is retried on serialization failures.
func (r *PostgresVideoRepository) Seed(ctx context.Context, videos []models.Video) (int, error) {
	for _, v := range videos {
		if strings.TrimSpace(v.URL) == "" || !v.Platform.Valid() {
			return 0, fmt.Errorf("video %d: %w", v.ID, ErrInvalidVideo)
		}
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	err = crdbpgxv5.ExecuteTx(ctx, conn, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, v := range videos {
			if _, err := tx.Exec(ctx, `
                INSERT INTO videos (id, url, platform)
                VALUES ($1, $2, $3)
                ON CONFLICT (id) DO UPDATE
                SET url = excluded.url, platform = excluded.platform
            `, v.ID, v.URL, string(v.Platform)); err != nil {
				return fmt.Errorf("upsert video %d: %w", v.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("seed videos: %w", err)
	}

	return len(videos), nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var (
		video    models.Video
		platform string
	)
	if err := row.Scan(&video.ID, &video.URL, &platform); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, err
		}
		return models.Video{}, fmt.Errorf("scan video: %w", err)
	}
	video.Platform = models.Platform(platform)
	return video, nil
}

var (
	_ VideoRepository = (*PostgresVideoRepository)(nil)
	_ catalog.Source  = (*PostgresVideoRepository)(nil)
)
