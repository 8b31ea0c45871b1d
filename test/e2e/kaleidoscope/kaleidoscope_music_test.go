package kaleidoscope_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
)

// Providers are not configured in the container, so every lookup comes back
// empty rather than failing.
func TestMusicWithoutProviders(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)
	session, _ := registerUser(t, client)

	for _, platform := range []string{"soundcloud", "youtube", "spotify"} {
		t.Run(platform, func(t *testing.T) {
			results, err := session.Search(t.Context(), platform, "daft punk", 5)
			require.NoError(t, err)
			require.Empty(t, results)

			_, err = session.Track(t.Context(), platform, "4uLU6hMCjMI75M1A2tKUQC")
			require.ErrorIs(t, err, kaleidosdk.ErrTrackNotFound)

			_, err = session.Stream(t.Context(), platform, "4uLU6hMCjMI75M1A2tKUQC")
			require.ErrorIs(t, err, kaleidosdk.ErrStreamNotAvailable)
		})
	}

	t.Run("unsupported platform", func(t *testing.T) {
		_, err := session.Search(t.Context(), "tidal", "daft punk", 5)
		require.ErrorIs(t, err, kaleidosdk.ErrUnsupportedPlatform)
	})

	t.Run("missing query", func(t *testing.T) {
		_, err := session.Search(t.Context(), "soundcloud", "", 5)
		require.ErrorIs(t, err, kaleidosdk.ErrMissingQuery)
	})
}

func TestMusicRequiresBearer(t *testing.T) {
	baseURL := setupContainer(t)

	resp, err := http.Get(baseURL + "/search/soundcloud?query=daft+punk")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
}
