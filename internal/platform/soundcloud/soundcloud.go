// Package soundcloud is a platform.Provider backed by the SoundCloud v2 API.
package soundcloud

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

const (
	DefaultBaseURL = "https://api-v2.soundcloud.com"

	// appVersion is the web player build the API expects alongside client_id.
	appVersion = "1686318471"

	artworkSize = "t500x500"
)

// Config for the SoundCloud client.
type Config struct {
	BaseURL   string
	ClientID  string
	Timeout   time.Duration
	RateLimit float64
}

// Client talks to the SoundCloud API.
type Client struct {
	clientID string
	http     *platform.HTTPClient
}

var _ platform.Provider = (*Client)(nil)

// New creates a client. An empty ClientID yields a client whose calls all
// fail with platform.ErrNotConfigured.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return &Client{
		clientID: cfg.ClientID,
		http: platform.NewHTTPClient(platform.HTTPConfig{
			BaseURL:   cfg.BaseURL,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
			Header:    http.Header{"Referer": {"https://soundcloud.com/"}},
		}),
	}
}

func (c *Client) Platform() platform.Platform { return platform.SoundCloud }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]platform.Track, error) {
	if c.clientID == "" {
		return nil, platform.ErrNotConfigured
	}

	params := url.Values{
		"q":           {query},
		"client_id":   {c.clientID},
		"limit":       {strconv.Itoa(min(max(limit, 1), 50))},
		"offset":      {"0"},
		"app_version": {appVersion},
		"app_locale":  {"en"},
	}

	var resp searchResponse
	if err := c.http.GetJSON(ctx, "/search/tracks", params, &resp); err != nil {
		return nil, fmt.Errorf("soundcloud search: %w", err)
	}

	tracks := make([]platform.Track, 0, len(resp.Collection))
	for _, item := range resp.Collection {
		if t, ok := item.canonical(); ok {
			tracks = append(tracks, t)
		}
	}
	return tracks, nil
}

func (c *Client) Track(ctx context.Context, id string) (platform.Track, error) {
	raw, err := c.fetchTrack(ctx, id)
	if err != nil {
		return platform.Track{}, err
	}
	t, ok := raw.canonical()
	if !ok {
		return platform.Track{}, fmt.Errorf("soundcloud track %s not streamable: %w", id, platform.ErrNotFound)
	}
	return t, nil
}

// Stream resolves the progressive transcoding of a track to a direct media URL.
func (c *Client) Stream(ctx context.Context, id string) (platform.Stream, error) {
	raw, err := c.fetchTrack(ctx, id)
	if err != nil {
		return platform.Stream{}, err
	}

	transcoding := raw.progressiveURL()
	if transcoding == "" {
		return platform.Stream{}, fmt.Errorf("soundcloud track %s has no progressive stream: %w", id, platform.ErrNotFound)
	}

	var media struct {
		URL string `json:"url"`
	}
	params := url.Values{}
	if !strings.Contains(transcoding, "client_id=") {
		params.Set("client_id", c.clientID)
	}
	if err := c.http.GetJSON(ctx, transcoding, params, &media); err != nil {
		return platform.Stream{}, fmt.Errorf("soundcloud stream %s: %w", id, err)
	}
	if media.URL == "" {
		return platform.Stream{}, fmt.Errorf("soundcloud stream %s: empty media url: %w", id, platform.ErrNotFound)
	}

	return platform.Stream{
		URL:      media.URL,
		MimeType: "audio/mpeg",
		Type:     platform.StreamAudio,
		Source:   platform.SoundCloud,
	}, nil
}

func (c *Client) fetchTrack(ctx context.Context, id string) (apiTrack, error) {
	if c.clientID == "" {
		return apiTrack{}, platform.ErrNotConfigured
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return apiTrack{}, fmt.Errorf("soundcloud track id %q: %w", id, platform.ErrNotFound)
	}

	params := url.Values{
		"client_id":   {c.clientID},
		"app_version": {appVersion},
	}
	var raw apiTrack
	if err := c.http.GetJSON(ctx, "/tracks/"+id, params, &raw); err != nil {
		return apiTrack{}, fmt.Errorf("soundcloud track %s: %w", id, err)
	}
	return raw, nil
}
