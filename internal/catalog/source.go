package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cricketreels/backend/internal/models"
)

// Source yields the entries a catalog is built from.
type Source interface {
	Load(ctx context.Context) ([]models.Video, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]models.Video, error)

// Load implements Source.
func (f SourceFunc) Load(ctx context.Context) ([]models.Video, error) {
	return f(ctx)
}

// BuiltinSource serves the compiled-in reel list.
var BuiltinSource Source = SourceFunc(func(context.Context) ([]models.Video, error) {
	return Builtin(), nil
})

// FileSource reads a JSON array of videos from disk.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) ([]models.Video, error) {
	if strings.TrimSpace(s.Path) == "" {
		return nil, errors.New("catalog file: path is required")
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open catalog file: %w", err)
	}
	defer f.Close()

	entries, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", s.Path, err)
	}
	return entries, nil
}

// Decode parses a JSON array of {"id","url","platform"} objects.
func Decode(r io.Reader) ([]models.Video, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var entries []models.Video
	if err := dec.Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	for i := range entries {
		entries[i].URL = strings.TrimSpace(entries[i].URL)
		if entries[i].Platform == "" {
			entries[i].Platform = models.PlatformInstagram
		}
		if !entries[i].Platform.Valid() {
			return nil, fmt.Errorf("decode catalog: entry %d has unknown platform %q", entries[i].ID, entries[i].Platform)
		}
	}

	return entries, nil
}

// Load builds a catalog from the given source.
func Load(ctx context.Context, src Source, opts ...Option) (*Catalog, error) {
	if src == nil {
		return nil, errors.New("catalog: source is required")
	}

	entries, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	return New(entries, opts...)
}
