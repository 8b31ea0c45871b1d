// Package spotify is a platform.Provider backed by the Spotify Web API,
// authenticated with the client credentials grant.
package spotify

import (
	"cmp"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
)

const (
	DefaultBaseURL  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
	DefaultMarket   = "US"
)

var trackIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{22}$`)

// Config for the Spotify client.
type Config struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	TokenURL     string
	Market       string
	Timeout      time.Duration
	RateLimit    float64
}

// Client talks to the Spotify Web API.
type Client struct {
	configured bool
	market     string
	http       *platform.HTTPClient
}

var _ platform.Provider = (*Client)(nil)

// New creates a client. Tokens are fetched lazily on the first call and
// cached until they expire. Without credentials every call fails with
// platform.ErrNotConfigured.
func New(cfg Config) *Client {
	cfg.BaseURL = cmp.Or(cfg.BaseURL, DefaultBaseURL)
	cfg.TokenURL = cmp.Or(cfg.TokenURL, DefaultTokenURL)
	cfg.Market = cmp.Or(cfg.Market, DefaultMarket)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
	// The token fetch uses base too, so it shares the timeout
	base := &http.Client{Timeout: cfg.Timeout}
	authed := cc.Client(context.WithValue(context.Background(), oauth2.HTTPClient, base))
	authed.Timeout = cfg.Timeout

	return &Client{
		configured: cfg.ClientID != "" && cfg.ClientSecret != "",
		market:     cfg.Market,
		http: platform.NewHTTPClient(platform.HTTPConfig{
			BaseURL:   cfg.BaseURL,
			RateLimit: cfg.RateLimit,
			Client:    authed,
		}),
	}
}

func (c *Client) Platform() platform.Platform { return platform.Spotify }

func (c *Client) Search(ctx context.Context, query string, limit int) ([]platform.Track, error) {
	if !c.configured {
		return nil, platform.ErrNotConfigured
	}

	params := url.Values{
		"q":      {query},
		"type":   {"track"},
		"limit":  {strconv.Itoa(min(max(limit, 1), 50))},
		"market": {c.market},
	}
	var resp struct {
		Tracks struct {
			Items []apiTrack `json:"items"`
		} `json:"tracks"`
	}
	if err := c.http.GetJSON(ctx, "/search", params, &resp); err != nil {
		return nil, fmt.Errorf("spotify search: %w", err)
	}

	tracks := make([]platform.Track, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
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
		return platform.Track{}, fmt.Errorf("spotify track %s: %w", id, platform.ErrNotFound)
	}
	return t, nil
}

// Stream returns the 30 second preview clip, when Spotify offers one.
func (c *Client) Stream(ctx context.Context, id string) (platform.Stream, error) {
	t, err := c.Track(ctx, id)
	if err != nil {
		return platform.Stream{}, err
	}
	s, ok := platform.PreviewStream(t)
	if !ok {
		return platform.Stream{}, fmt.Errorf("spotify track %s has no preview: %w", id, platform.ErrNotFound)
	}
	return s, nil
}

func (c *Client) fetchTrack(ctx context.Context, id string) (apiTrack, error) {
	if !c.configured {
		return apiTrack{}, platform.ErrNotConfigured
	}
	if !trackIDPattern.MatchString(id) {
		return apiTrack{}, fmt.Errorf("spotify track id %q: %w", id, platform.ErrNotFound)
	}

	var raw apiTrack
	if err := c.http.GetJSON(ctx, "/tracks/"+id, url.Values{"market": {c.market}}, &raw); err != nil {
		return apiTrack{}, fmt.Errorf("spotify track %s: %w", id, err)
	}
	return raw, nil
}

type apiTrack struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
	PreviewURL string `json:"preview_url"`
	Artists    []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

func (t apiTrack) canonical() (platform.Track, bool) {
	if t.ID == "" || (t.Type != "" && t.Type != "track") {
		return platform.Track{}, false
	}

	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	var lead string
	if len(names) > 0 {
		lead = names[0]
	}
	slices.Sort(names)
	artist := "Unknown Artist"
	if len(names) > 0 {
		artist = strings.Join(names, ", ")
	}

	var cover string
	if len(t.Album.Images) > 0 {
		cover = t.Album.Images[0].URL
	}

	seconds := t.DurationMS / 1000
	return platform.Track{
		ID:             t.ID,
		Title:          cmp.Or(t.Name, "Unknown Title"),
		Artist:         artist,
		Album:          cmp.Or(t.Album.Name, "Unknown Album"),
		Duration:       seconds,
		DurationString: platform.FormatDuration(seconds),
		CoverArt:       cover,
		Source:         platform.Spotify,
		PermalinkURL:   t.ExternalURLs.Spotify,
		PreviewURL:     t.PreviewURL,
		LeadArtist:     lead,
	}, true
}
