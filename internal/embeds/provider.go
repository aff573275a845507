package embeds

import (
	"context"
	"errors"
)

var (
	// ErrProviderUnavailable indicates no embed provider is configured.
	ErrProviderUnavailable = errors.New("embed provider unavailable")
	// ErrEmptyMarkup indicates the provider answered without renderable html.
	ErrEmptyMarkup = errors.New("embed provider returned empty html")
)

// Markup is what a provider contributes to a Full record.
type Markup struct {
	HTML         string
	ThumbnailURL string
}

// Provider produces embed markup for a video URL.
type Provider interface {
	Fetch(ctx context.Context, url string) (Markup, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, url string) (Markup, error)

// Fetch implements Provider.
func (f ProviderFunc) Fetch(ctx context.Context, url string) (Markup, error) {
	return f(ctx, url)
}
