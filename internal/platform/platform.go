// Package platform defines the canonical music types shared by every
// provider, and the soft-failing adapter the resolver consumes.
package platform

import (
	"context"
	"errors"
	"strings"
)

// Platform identifies a music provider.
type Platform string

const (
	SoundCloud Platform = "soundcloud"
	YouTube    Platform = "youtube"
	Spotify    Platform = "spotify"
)

// All lists the supported platforms in provider preference order.
var All = []Platform{SoundCloud, YouTube, Spotify}

// Parse returns the platform named by s, ignoring case and surrounding space.
func Parse(s string) (Platform, bool) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case SoundCloud, YouTube, Spotify:
		return p, true
	}
	return "", false
}

func (p Platform) String() string { return string(p) }

// StreamType tells a player how to handle a Stream URL.
type StreamType string

const (
	StreamAudio        StreamType = "audio"
	StreamAudioPreview StreamType = "audio_preview"
	StreamEmbed        StreamType = "embed"
)

// Track is a track in the canonical cross-platform shape.
type Track struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Artist         string   `json:"artist"`
	Album          string   `json:"album"`
	Duration       int      `json:"duration"` // seconds
	DurationString string   `json:"durationString"`
	CoverArt       string   `json:"coverArt"`
	Source         Platform `json:"source"`
	PermalinkURL   string   `json:"permalinkUrl,omitempty"`
	PreviewURL     string   `json:"previewUrl,omitempty"`

	// LeadArtist is the first credited artist in provider order. Artist may
	// be reordered for display.
	LeadArtist string `json:"-"`
}

// PreviewStream returns the preview clip of t, if it has one.
func PreviewStream(t Track) (Stream, bool) {
	if t.PreviewURL == "" {
		return Stream{}, false
	}
	return Stream{
		URL:      t.PreviewURL,
		MimeType: "audio/mpeg",
		Type:     StreamAudioPreview,
		Source:   t.Source,
	}, true
}

// Stream is a playable URL for a track.
type Stream struct {
	URL      string     `json:"url"`
	MimeType string     `json:"mimeType"`
	Type     StreamType `json:"type"`
	Source   Platform   `json:"source"`
}

var (
	// ErrNotFound is returned by providers when the item does not exist
	// or has nothing playable.
	ErrNotFound = errors.New("platform: not found")

	// ErrNotConfigured is returned by providers missing credentials.
	ErrNotConfigured = errors.New("platform: provider not configured")

	// ErrProviderRateLimited is returned when the upstream answers 429.
	ErrProviderRateLimited = errors.New("platform: provider rate limited")
)

// Provider is implemented by each platform client. Errors are returned as-is.
type Provider interface {
	Platform() Platform
	Search(ctx context.Context, query string, limit int) ([]Track, error)
	Track(ctx context.Context, id string) (Track, error)
	Stream(ctx context.Context, id string) (Stream, error)
}

// Adapter is the soft-failing view of a Provider: failures of any kind
// surface as empty results.
type Adapter interface {
	Platform() Platform
	Search(ctx context.Context, query string, limit int) []Track
	Track(ctx context.Context, id string) (Track, bool)
	Stream(ctx context.Context, id string) (Stream, bool)
}
