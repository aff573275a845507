package embeds

import (
	"context"
	"fmt"
	"html"
	"net/url"
	"strings"
)

// LocalProvider derives an iframe pointing at the post's own /embed/ page,
// avoiding any outbound call.
type LocalProvider struct {
	Width  int
	Height int
}

// Fetch implements Provider.
func (p LocalProvider) Fetch(_ context.Context, videoURL string) (Markup, error) {
	embedURL, err := EmbedURL(videoURL)
	if err != nil {
		return Markup{}, err
	}

	width, height := p.Width, p.Height
	if width <= 0 {
		width = 400
	}
	if height <= 0 {
		height = 480
	}

	markup := fmt.Sprintf(
		`<iframe src="%s" width="%d" height="%d" frameborder="0" scrolling="no" allowtransparency="true"></iframe>`,
		html.EscapeString(embedURL), width, height,
	)
	return Markup{HTML: markup}, nil
}

// EmbedURL returns the canonical embed page for a post URL, dropping any query
// or fragment.
func EmbedURL(videoURL string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(videoURL))
	if err != nil {
		return "", fmt.Errorf("parse video url: %w", err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if (scheme != "http" && scheme != "https") || parsed.Host == "" {
		return "", fmt.Errorf("unsupported video url %q", videoURL)
	}

	path := strings.TrimSuffix(parsed.Path, "/")
	if path == "" {
		return "", fmt.Errorf("video url %q has no post path", videoURL)
	}

	return fmt.Sprintf("%s://%s%s/embed/", scheme, parsed.Host, path), nil
}
