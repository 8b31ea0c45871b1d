package soundcloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/stretchr/testify/require"
)

const testClientID = "sc-test-client"

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	var srv *httptest.Server
	track := func(id int64, streamable bool, progressive bool) map[string]any {
		transcodings := []map[string]any{{
			"url":    srv.URL + "/media/hls",
			"format": map[string]any{"protocol": "hls"},
		}}
		if progressive {
			transcodings = append(transcodings, map[string]any{
				"url":    srv.URL + "/media/progressive",
				"format": map[string]any{"protocol": "progressive"},
			})
		}
		return map[string]any{
			"id":            id,
			"title":         "One More Time",
			"duration":      320_500,
			"streamable":    streamable,
			"artwork_url":   "https://i1.sndcdn.com/artworks-abc-large.jpg",
			"permalink_url": "https://soundcloud.com/daftpunk/one-more-time",
			"user":          map[string]any{"username": "Daft Punk", "avatar_url": "https://i1.sndcdn.com/avatars-xyz-large.jpg"},
			"media":         map[string]any{"transcodings": transcodings},
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /search/tracks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, testClientID, q.Get("client_id"))
		require.Equal(t, "50", q.Get("limit"))
		require.Equal(t, appVersion, q.Get("app_version"))
		_ = json.NewEncoder(w).Encode(map[string]any{"collection": []any{
			track(1, true, true),
			track(2, false, false), // not playable, dropped
			track(3, false, true),
		}})
	})
	mux.HandleFunc("GET /tracks/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case "1":
			_ = json.NewEncoder(w).Encode(track(1, true, true))
		case "4":
			_ = json.NewEncoder(w).Encode(track(4, true, false))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("GET /media/progressive", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, testClientID, r.URL.Query().Get("client_id"))
		_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://cf-media.sndcdn.com/one-more-time.mp3"})
	})

	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := New(Config{BaseURL: srv.URL, ClientID: testClientID})
	ctx := context.Background()

	t.Run("search filters unplayable tracks", func(t *testing.T) {
		tracks, err := c.Search(ctx, "daft punk", 500)
		require.NoError(t, err)
		require.Len(t, tracks, 2)

		got := tracks[0]
		require.Equal(t, "1", got.ID)
		require.Equal(t, "Daft Punk", got.Artist)
		require.Equal(t, 320, got.Duration)
		require.Equal(t, "5:20", got.DurationString)
		require.Equal(t, "https://i1.sndcdn.com/artworks-abc-t500x500.jpg", got.CoverArt)
		require.Equal(t, platform.SoundCloud, got.Source)
		require.Empty(t, got.Album)
	})

	t.Run("track", func(t *testing.T) {
		got, err := c.Track(ctx, "1")
		require.NoError(t, err)
		require.Equal(t, "One More Time", got.Title)

		_, err = c.Track(ctx, "999")
		require.ErrorIs(t, err, platform.ErrNotFound)

		_, err = c.Track(ctx, "not-a-number")
		require.ErrorIs(t, err, platform.ErrNotFound)
	})

	t.Run("stream follows progressive transcoding", func(t *testing.T) {
		got, err := c.Stream(ctx, "1")
		require.NoError(t, err)
		require.Equal(t, "https://cf-media.sndcdn.com/one-more-time.mp3", got.URL)
		require.Equal(t, platform.StreamAudio, got.Type)
		require.Equal(t, "audio/mpeg", got.MimeType)
	})

	t.Run("stream without progressive transcoding", func(t *testing.T) {
		_, err := c.Stream(ctx, "4")
		require.ErrorIs(t, err, platform.ErrNotFound)
	})
}

func TestClientNotConfigured(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	_, err := c.Search(context.Background(), "x", 5)
	require.ErrorIs(t, err, platform.ErrNotConfigured)
	_, err = c.Stream(context.Background(), "1")
	require.ErrorIs(t, err, platform.ErrNotConfigured)
}

func TestArtwork(t *testing.T) {
	t.Parallel()

	tests := []struct{ in, want string }{
		{"", ""},
		{"https://x/artworks-1-large.jpg", "https://x/artworks-1-t500x500.jpg"},
		{"https://x/artworks-1-t500x500.jpg", "https://x/artworks-1-t500x500.jpg"},
		{"https://x/artworks-1-original.png", "https://x/artworks-1-original.png"},
		{"https://x/plain.jpg", "https://x/plain.jpg"},
		{"ftp-ish-nonsense", ""},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, artwork(tt.in), "in=%q", tt.in)
	}
}
