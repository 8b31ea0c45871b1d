package kaleidoscope_test

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
)

// TestRegisterLoginRefresh tests the complete flow:
// 1. Register an account
// 2. Log in with the same credentials
// 3. Refresh the token
// 4. Verify rotation and that the old refresh token is dead
func TestRegisterLoginRefresh(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)

	_, email := registerUser(t, client)

	login, err := client.LoginTokens(t.Context(), strings.ToUpper(email), testPassword)
	require.NoError(t, err)
	assertTokenResponse(t, login)

	refreshed, err := client.Refresh(t.Context(), login.RefreshToken)
	require.NoError(t, err)
	assertTokenResponse(t, refreshed)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken, "Access token should be rotated")
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken, "Refresh token should be rotated")

	t.Run("replay revokes the chain", func(t *testing.T) {
		_, err := client.Refresh(t.Context(), login.RefreshToken)
		require.ErrorIs(t, err, kaleidosdk.ErrSessionNotFound)

		// The legitimate successor dies with it.
		_, err = client.Refresh(t.Context(), refreshed.RefreshToken)
		require.ErrorIs(t, err, kaleidosdk.ErrSessionNotFound)
	})
}

func TestRegisterValidation(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)

	_, email := registerUser(t, client)

	tests := []struct {
		name string
		req  kaleidosdk.RegisterRequest
		want *kaleidosdk.APIError
	}{
		{
			name: "duplicate email",
			req:  kaleidosdk.RegisterRequest{Email: email, Password: testPassword, Handle: "someone_new"},
			want: kaleidosdk.ErrEmailTaken,
		},
		{
			name: "invalid handle",
			req:  kaleidosdk.RegisterRequest{Email: "fresh@example.com", Password: testPassword, Handle: "no spaces"},
			want: kaleidosdk.ErrInvalidHandle,
		},
		{
			name: "short password",
			req:  kaleidosdk.RegisterRequest{Email: "fresh@example.com", Password: "short", Handle: "fresh"},
			want: kaleidosdk.ErrWeakPassword,
		},
		{
			name: "bad email",
			req:  kaleidosdk.RegisterRequest{Email: "not-an-email", Password: testPassword, Handle: "fresh"},
			want: kaleidosdk.ErrInvalidEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := client.RegisterTokens(t.Context(), tt.req)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)

	_, email := registerUser(t, client)

	_, wrongPassword := client.LoginTokens(t.Context(), email, "wrong password")
	_, unknownEmail := client.LoginTokens(t.Context(), "nobody@example.com", testPassword)

	require.ErrorIs(t, wrongPassword, kaleidosdk.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, kaleidosdk.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestConcurrentRefreshSingleWinner(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)

	session, _ := registerUser(t, client)
	token := session.RefreshToken()

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Refresh(t.Context(), token); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins, "exactly one concurrent refresh may succeed")
}

func TestLogout(t *testing.T) {
	baseURL := setupContainer(t)
	client := kaleidosdk.NewSDKClient(baseURL)

	t.Run("single session", func(t *testing.T) {
		session, _ := registerUser(t, client)

		require.NoError(t, session.Logout(t.Context()))

		err := session.Logout(t.Context())
		require.ErrorIs(t, err, kaleidosdk.ErrSessionNotFound)

		_, err = client.Refresh(t.Context(), session.RefreshToken())
		require.ErrorIs(t, err, kaleidosdk.ErrSessionNotFound)
	})

	t.Run("everywhere", func(t *testing.T) {
		first, email := registerUser(t, client)
		second, err := client.Login(t.Context(), email, testPassword)
		require.NoError(t, err)

		revoked, err := second.LogoutAll(t.Context())
		require.NoError(t, err)
		require.EqualValues(t, 2, revoked)

		_, err = client.Refresh(t.Context(), first.RefreshToken())
		require.ErrorIs(t, err, kaleidosdk.ErrSessionNotFound)

		// Access tokens stay valid until they expire.
		me, err := first.Me(t.Context())
		require.NoError(t, err)
		require.Equal(t, email, me.Email)
	})

	t.Run("garbage token", func(t *testing.T) {
		err := client.Logout(t.Context(), "definitely-not-a-token")
		require.ErrorIs(t, err, kaleidosdk.ErrInvalidRefreshToken)
	})
}
