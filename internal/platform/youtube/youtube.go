// Package youtube is a platform.Provider backed by a YouTube Music HTTP
// proxy (a thin service wrapping ytmusicapi).
package youtube

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

const (
	// DefaultMaxDuration drops search results longer than five minutes,
	// which on YouTube are mostly mixes and full albums.
	DefaultMaxDuration = 300 * time.Second

	embedURL = "https://www.youtube.com/embed/%s?autoplay=1"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Config for the YouTube client.
type Config struct {
	ProxyURL  string
	Timeout   time.Duration
	RateLimit float64

	// MaxDuration filters long search results. Negative disables the filter;
	// zero uses DefaultMaxDuration.
	MaxDuration time.Duration
}

// Client talks to the YouTube Music proxy.
type Client struct {
	configured  bool
	maxDuration int
	http        *platform.HTTPClient
}

var _ platform.Provider = (*Client)(nil)

// New creates a client. Without a proxy URL every call fails with
// platform.ErrNotConfigured.
func New(cfg Config) *Client {
	maxDuration := cfg.MaxDuration
	if maxDuration == 0 {
		maxDuration = DefaultMaxDuration
	}
	return &Client{
		configured:  cfg.ProxyURL != "",
		maxDuration: int(maxDuration.Seconds()),
		http: platform.NewHTTPClient(platform.HTTPConfig{
			BaseURL:   cfg.ProxyURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
		}),
	}
}

func (c *Client) Platform() platform.Platform { return platform.YouTube }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]platform.Track, error) {
	if !c.configured {
		return nil, platform.ErrNotConfigured
	}

	params := url.Values{
		"q":      {query},
		"filter": {"songs"},
		"limit":  {strconv.Itoa(limit)},
	}
	var items []apiTrack
	if err := c.http.GetJSON(ctx, "/api/search", params, &items); err != nil {
		return nil, fmt.Errorf("youtube search: %w", err)
	}

	log := slogx.FromContext(ctx)
	tracks := make([]platform.Track, 0, len(items))
	for _, item := range items {
		if item.VideoID == "" {
			continue
		}
		t := item.canonical()
		if c.maxDuration > 0 && t.Duration > c.maxDuration {
			log.Debug("youtube result over duration cap", "video_id", item.VideoID, "duration", t.Duration)
			continue
		}
		tracks = append(tracks, t)
		if limit > 0 && len(tracks) == limit {
			break
		}
	}
	return tracks, nil
}

func (c *Client) Track(ctx context.Context, id string) (platform.Track, error) {
	if !c.configured {
		return platform.Track{}, platform.ErrNotConfigured
	}
	if !videoIDPattern.MatchString(id) {
		return platform.Track{}, fmt.Errorf("youtube video id %q: %w", id, platform.ErrNotFound)
	}

	var item apiTrack
	if err := c.http.GetJSON(ctx, "/api/songs/"+id, nil, &item); err != nil {
		return platform.Track{}, fmt.Errorf("youtube song %s: %w", id, err)
	}
	if item.VideoID == "" {
		item.VideoID = id
	}
	return item.canonical(), nil
}

// Stream asks the proxy for a direct audio URL and falls back to the
// embeddable player when it has none.
func (c *Client) Stream(ctx context.Context, id string) (platform.Stream, error) {
	if !c.configured {
		return platform.Stream{}, platform.ErrNotConfigured
	}
	if !videoIDPattern.MatchString(id) {
		return platform.Stream{}, fmt.Errorf("youtube video id %q: %w", id, platform.ErrNotFound)
	}

	var resp struct {
		URL      string `json:"url"`
		MimeType string `json:"mimeType"`
	}
	err := c.http.GetJSON(ctx, "/api/streams/"+id, nil, &resp)
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return platform.Stream{}, err
	case err == nil && resp.URL != "":
		return platform.Stream{
			URL:      resp.URL,
			MimeType: cmp.Or(resp.MimeType, "audio/mp4"),
			Type:     platform.StreamAudio,
			Source:   platform.YouTube,
		}, nil
	case err != nil:
		slogx.FromContext(ctx).Debug("youtube proxy stream unavailable, using embed", "video_id", id, "err", err)
	}

	return platform.Stream{
		URL:      fmt.Sprintf(embedURL, id),
		MimeType: "text/html",
		Type:     platform.StreamEmbed,
		Source:   platform.YouTube,
	}, nil
}

type apiThumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type apiTrack struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album *struct {
		Name string `json:"name"`
	} `json:"album"`
	Duration    string         `json:"duration"`
	DurationSec int            `json:"duration_seconds"`
	Thumbnails  []apiThumbnail `json:"thumbnails"`
}

func (t apiTrack) canonical() platform.Track {
	seconds := t.DurationSec
	if seconds == 0 {
		seconds, _ = platform.ParseDuration(t.Duration)
	}

	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	artist := "Unknown Artist"
	if len(names) > 0 {
		artist = strings.Join(names, ", ")
	}

	var album string
	if t.Album != nil {
		album = t.Album.Name
	}

	return platform.Track{
		ID:             t.VideoID,
		Title:          cmp.Or(t.Title, "Unknown Title"),
		Artist:         artist,
		Album:          album,
		Duration:       seconds,
		DurationString: platform.FormatDuration(seconds),
		CoverArt:       bestThumbnail(t.Thumbnails),
		Source:         platform.YouTube,
		PermalinkURL:   "https://music.youtube.com/watch?v=" + t.VideoID,
	}
}

// bestThumbnail picks the largest thumbnail by area.
func bestThumbnail(thumbs []apiThumbnail) string {
	if len(thumbs) == 0 {
		return ""
	}
	best := slices.MaxFunc(thumbs, func(a, b apiThumbnail) int {
		return cmp.Compare(a.Width*a.Height, b.Width*b.Height)
	})
	return best.URL
}
