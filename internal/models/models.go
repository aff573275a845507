package models

// Platform identifies the social network that hosts a video.
type Platform string

const (
	PlatformInstagram Platform = "instagram"
)

// Valid reports whether the platform is one the service knows how to embed.
func (p Platform) Valid() bool {
	switch p {
	case PlatformInstagram:
		return true
	}
	return false
}

// Video is a single catalog entry. Entries are loaded once at startup and
// never mutated afterwards.
type Video struct {
	ID       int      `json:"id"`
	URL      string   `json:"url"`
	Platform Platform `json:"platform"`
}
