package catalog

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cricketreels/backend/internal/models"
)

var (
	// ErrNotFound indicates no entry carries the requested id.
	ErrNotFound = errors.New("video not found in catalog")
	// ErrEmpty indicates a random pick was requested from an empty catalog.
	ErrEmpty = errors.New("catalog is empty")
	// ErrDuplicateID indicates two entries share the same id.
	ErrDuplicateID = errors.New("duplicate video id")
)

// Catalog is an immutable, ordered list of videos with constant-time id lookup.
type Catalog struct {
	videos []models.Video
	byID   map[int]int

	mu   sync.Mutex
	rand *rand.Rand
}

// Option customises a Catalog at construction time.
type Option func(*Catalog)

// WithRand overrides the random source used by PickRandom.
func WithRand(r *rand.Rand) Option {
	return func(c *Catalog) {
		if r != nil {
			c.rand = r
		}
	}
}

// New copies entries into a catalog. Ids need not be contiguous but must be unique.
func New(entries []models.Video, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		videos: make([]models.Video, len(entries)),
		byID:   make(map[int]int, len(entries)),
		rand:   rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	copy(c.videos, entries)

	for idx, v := range c.videos {
		if _, exists := c.byID[v.ID]; exists {
			return nil, fmt.Errorf("catalog entry %d: %w", v.ID, ErrDuplicateID)
		}
		c.byID[v.ID] = idx
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Count returns the number of entries.
func (c *Catalog) Count() int {
	if c == nil {
		return 0
	}
	return len(c.videos)
}

// All returns a copy of the entries in catalog order.
func (c *Catalog) All() []models.Video {
	if c == nil {
		return nil
	}
	out := make([]models.Video, len(c.videos))
	copy(out, c.videos)
	return out
}

// PickRandom returns an entry chosen uniformly at random.
func (c *Catalog) PickRandom() (models.Video, error) {
	if c.Count() == 0 {
		return models.Video{}, ErrEmpty
	}

	// *rand.Rand is not safe for concurrent use.
	c.mu.Lock()
	idx := c.rand.IntN(len(c.videos))
	c.mu.Unlock()

	return c.videos[idx], nil
}

// PickByID returns the entry with the given id.
func (c *Catalog) PickByID(id int) (models.Video, error) {
	if c == nil {
		return models.Video{}, ErrNotFound
	}
	idx, ok := c.byID[id]
	if !ok {
		return models.Video{}, fmt.Errorf("video %d: %w", id, ErrNotFound)
	}
	return c.videos[idx], nil
}
