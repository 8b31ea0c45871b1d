package platform

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHTTPClientGetJSON(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /ok", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "kaleidoscope-test", r.Header.Get("User-Agent"))
		require.Equal(t, "yes", r.Header.Get("X-Extra"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"q":"` + r.URL.Query().Get("q") + `","fixed":"` + r.URL.Query().Get("fixed") + `"}`))
	})
	mux.HandleFunc("GET /missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("GET /busy", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})
	mux.HandleFunc("GET /broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewHTTPClient(HTTPConfig{
		BaseURL:   srv.URL + "/",
		UserAgent: "kaleidoscope-test",
		Header:    http.Header{"X-Extra": {"yes"}},
		RateLimit: 100,
	})
	ctx := context.Background()

	t.Run("decodes body", func(t *testing.T) {
		var out struct{ Q, Fixed string }
		require.NoError(t, c.GetJSON(ctx, "/ok", url.Values{"q": {"daft punk"}}, &out))
		require.Equal(t, "daft punk", out.Q)
	})

	t.Run("absolute url keeps its query", func(t *testing.T) {
		var out struct{ Q, Fixed string }
		require.NoError(t, c.GetJSON(ctx, srv.URL+"/ok?fixed=1", url.Values{"q": {"x"}}, &out))
		require.Equal(t, "1", out.Fixed)
		require.Equal(t, "x", out.Q)
	})

	t.Run("404 is not found", func(t *testing.T) {
		err := c.GetJSON(ctx, "/missing", nil, &struct{}{})
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("429 is rate limited", func(t *testing.T) {
		err := c.GetJSON(ctx, "/busy", nil, &struct{}{})
		require.ErrorIs(t, err, ErrProviderRateLimited)
	})

	t.Run("other statuses carry the code", func(t *testing.T) {
		err := c.GetJSON(ctx, "/broken", nil, &struct{}{})
		var statusErr *StatusError
		require.True(t, errors.As(err, &statusErr))
		require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
		require.Contains(t, statusErr.Body, "upstream exploded")
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, c.GetJSON(cctx, "/ok", nil, &struct{}{}))
	})
}
