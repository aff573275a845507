package embeds

import (
	"encoding/json"
	"strings"
)

// Status labels which shape a Record has on the wire.
type Status string

const (
	StatusFull     Status = "full"
	StatusDegraded Status = "degraded"
)

// Record is the embed metadata attached to a video. It is either Full or
// Degraded; callers type-switch on the concrete value.
type Record interface {
	isRecord()
}

// Full carries renderable markup returned by a provider.
type Full struct {
	Shortcode    string
	HTML         string
	ThumbnailURL string
}

// Degraded carries only the shortcode so clients can still link to the post.
type Degraded struct {
	Shortcode string
}

func (Full) isRecord()     {}
func (Degraded) isRecord() {}

type recordJSON struct {
	Status       Status `json:"status"`
	Shortcode    string `json:"shortcode"`
	HTML         string `json:"html,omitempty"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (f Full) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{
		Status:       StatusFull,
		Shortcode:    f.Shortcode,
		HTML:         f.HTML,
		ThumbnailURL: f.ThumbnailURL,
	})
}

// MarshalJSON implements json.Marshaler.
func (d Degraded) MarshalJSON() ([]byte, error) {
	return json.Marshal(recordJSON{Status: StatusDegraded, Shortcode: d.Shortcode})
}

// Shortcode returns the second-to-last "/"-separated segment of rawURL, which
// is the post identifier for URLs such as https://www.instagram.com/reel/ABC/.
func Shortcode(rawURL string) string {
	parts := strings.Split(rawURL, "/")
	if len(parts) < 2 {
		return parts[0]
	}
	return parts[len(parts)-2]
}

// CacheKey derives the cache key for a video URL.
func CacheKey(rawURL string) string {
	return "oembed_" + rawURL
}
