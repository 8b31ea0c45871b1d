package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/stretchr/testify/require"
)

const (
	videoShort = "dQw4w9WgXcQ"
	videoLong  = "aaaaaaaaaaa"
	videoEmbed = "bbbbbbbbbbb"
)

func newTestProxy(t *testing.T) *httptest.Server {
	t.Helper()

	song := func(id, duration string, seconds int) map[string]any {
		return map[string]any{
			"videoId":          id,
			"title":            "Never Gonna Give You Up",
			"artists":          []map[string]string{{"name": "Rick Astley"}, {"name": " Stock Aitken Waterman "}},
			"album":            map[string]string{"name": "Whenever You Need Somebody"},
			"duration":         duration,
			"duration_seconds": seconds,
			"thumbnails": []map[string]any{
				{"url": "https://i.ytimg.com/small.jpg", "width": 60, "height": 60},
				{"url": "https://i.ytimg.com/large.jpg", "width": 544, "height": 544},
				{"url": "https://i.ytimg.com/medium.jpg", "width": 120, "height": 120},
			},
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "songs", r.URL.Query().Get("filter"))
		_ = json.NewEncoder(w).Encode([]any{
			song(videoShort, "3:33", 0),
			song(videoLong, "1:02:00", 3720),
			map[string]any{"title": "no video id"},
		})
	})
	mux.HandleFunc("GET /api/songs/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != videoShort {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(song(videoShort, "3:33", 213))
	})
	mux.HandleFunc("GET /api/streams/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.PathValue("id") {
		case videoShort:
			_ = json.NewEncoder(w).Encode(map[string]string{"url": "https://rr1.googlevideo.com/audio.m4a", "mimeType": "audio/mp4"})
		case videoEmbed:
			_ = json.NewEncoder(w).Encode(map[string]string{})
		default:
			http.Error(w, "extractor failed", http.StatusInternalServerError)
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient(t *testing.T) {
	t.Parallel()

	srv := newTestProxy(t)
	c := New(Config{ProxyURL: srv.URL})
	ctx := context.Background()

	t.Run("search drops long and id-less results", func(t *testing.T) {
		tracks, err := c.Search(ctx, "rick astley", 10)
		require.NoError(t, err)
		require.Len(t, tracks, 1)

		got := tracks[0]
		require.Equal(t, videoShort, got.ID)
		require.Equal(t, "Rick Astley, Stock Aitken Waterman", got.Artist)
		require.Equal(t, "Whenever You Need Somebody", got.Album)
		require.Equal(t, 213, got.Duration)
		require.Equal(t, "3:33", got.DurationString)
		require.Equal(t, "https://i.ytimg.com/large.jpg", got.CoverArt)
		require.Equal(t, platform.YouTube, got.Source)
	})

	t.Run("search without duration cap", func(t *testing.T) {
		uncapped := New(Config{ProxyURL: srv.URL, MaxDuration: -1})
		tracks, err := uncapped.Search(ctx, "rick astley", 10)
		require.NoError(t, err)
		require.Len(t, tracks, 2)
	})

	t.Run("track", func(t *testing.T) {
		got, err := c.Track(ctx, videoShort)
		require.NoError(t, err)
		require.Equal(t, 213, got.Duration)

		_, err = c.Track(ctx, videoLong)
		require.ErrorIs(t, err, platform.ErrNotFound)

		_, err = c.Track(ctx, "bad id")
		require.ErrorIs(t, err, platform.ErrNotFound)
	})

	t.Run("stream direct", func(t *testing.T) {
		got, err := c.Stream(ctx, videoShort)
		require.NoError(t, err)
		require.Equal(t, platform.StreamAudio, got.Type)
		require.Equal(t, "audio/mp4", got.MimeType)
	})

	t.Run("stream falls back to embed", func(t *testing.T) {
		for _, id := range []string{videoEmbed, videoLong} {
			got, err := c.Stream(ctx, id)
			require.NoError(t, err)
			require.Equal(t, platform.StreamEmbed, got.Type)
			require.Equal(t, "https://www.youtube.com/embed/"+id+"?autoplay=1", got.URL)
			require.Equal(t, "text/html", got.MimeType)
		}
	})
}

func TestClientNotConfigured(t *testing.T) {
	t.Parallel()

	c := New(Config{})
	_, err := c.Search(context.Background(), "x", 5)
	require.ErrorIs(t, err, platform.ErrNotConfigured)
	_, err = c.Stream(context.Background(), videoShort)
	require.ErrorIs(t, err, platform.ErrNotConfigured)
}
