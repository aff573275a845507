package embeds

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultOEmbedEndpoint is Instagram's public oEmbed endpoint.
const DefaultOEmbedEndpoint = "https://api.instagram.com/oembed/"

const defaultOEmbedTimeout = 5 * time.Second

// maxOEmbedBody bounds how much of a provider response is read.
const maxOEmbedBody = 1 << 20

// HTTPDoer executes outbound HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// OEmbedProvider fetches markup from an oEmbed endpoint.
type OEmbedProvider struct {
	Endpoint  string
	MaxWidth  int
	UserAgent string
	Timeout   time.Duration
	Client    HTTPDoer
}

// NewOEmbedProvider constructs a provider for the given endpoint.
func NewOEmbedProvider(endpoint string, maxWidth int, timeout time.Duration) *OEmbedProvider {
	if strings.TrimSpace(endpoint) == "" {
		endpoint = DefaultOEmbedEndpoint
	}
	if timeout <= 0 {
		timeout = defaultOEmbedTimeout
	}
	return &OEmbedProvider{
		Endpoint:  endpoint,
		MaxWidth:  maxWidth,
		UserAgent: "cricketreels/1.0",
		Timeout:   timeout,
		Client:    &http.Client{Timeout: timeout},
	}
}

type oEmbedResponse struct {
	Type         string `json:"type"`
	Version      string `json:"version"`
	HTML         string `json:"html"`
	ThumbnailURL string `json:"thumbnail_url"`
	AuthorName   string `json:"author_name"`
	ProviderName string `json:"provider_name"`
}

// Fetch implements Provider.
func (p *OEmbedProvider) Fetch(ctx context.Context, videoURL string) (Markup, error) {
	if p == nil {
		return Markup{}, ErrProviderUnavailable
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultOEmbedTimeout
	}
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	endpoint, err := p.requestURL(videoURL)
	if err != nil {
		return Markup{}, err
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Markup{}, fmt.Errorf("build oembed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return Markup{}, fmt.Errorf("oembed fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Markup{}, fmt.Errorf("oembed endpoint returned status %d", resp.StatusCode)
	}

	var payload oEmbedResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxOEmbedBody)).Decode(&payload); err != nil {
		return Markup{}, fmt.Errorf("parse oembed response: %w", err)
	}

	if strings.TrimSpace(payload.HTML) == "" {
		return Markup{}, ErrEmptyMarkup
	}

	return Markup{HTML: payload.HTML, ThumbnailURL: payload.ThumbnailURL}, nil
}

func (p *OEmbedProvider) requestURL(videoURL string) (string, error) {
	base, err := url.Parse(p.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse oembed endpoint: %w", err)
	}

	q := base.Query()
	q.Set("url", videoURL)
	if p.MaxWidth > 0 {
		q.Set("maxwidth", strconv.Itoa(p.MaxWidth))
	}
	q.Set("hidecaption", "true")
	q.Set("omitscript", "true")
	base.RawQuery = q.Encode()

	return base.String(), nil
}
