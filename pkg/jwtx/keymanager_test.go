package jwtx_test

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

func TestNewEphemeralKeyManager(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "test-issuer",
		Audience: []string{"test-audience"},
		NumKeys:  1,
	})
	require.NoError(t, err)
	require.NotNil(t, km.Verifier)
	require.NotNil(t, km.KeySet)
	require.Equal(t, jwtx.AlgorithmEdDSA, km.Algorithm())
	require.True(t, km.IsReady())
	require.Equal(t, 1, km.NumSigners())
	require.True(t, strings.HasPrefix(km.GetSigner().KID(), jwtx.KeyIDPrefix))
}

func TestNewEphemeralKeyManager_ErrorCases(t *testing.T) {
	_, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Issuer is required")
}

func TestKeyManager_SignAndVerifyRoundTrip(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "test-issuer",
		Audience: []string{"test-audience"},
		NumKeys:  1,
	})
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("user-123", "chain-abc", "testuser", 5*time.Minute,
		"test-issuer", []string{"test-audience"}, time.Now().UTC())

	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)

	parsed, err := km.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, claims.Subject, parsed.Subject)
	require.Equal(t, claims.Issuer, parsed.Issuer)
	require.ElementsMatch(t, claims.Audience, parsed.Audience)
	require.Equal(t, claims.SID, parsed.SID)
	require.Equal(t, claims.Handle, parsed.Handle)
}

func TestKeyManager_DifferentAudiences(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:   "test-issuer",
		Audience: []string{"music"},
		NumKeys:  1,
	})
	require.NoError(t, err)

	claims := jwtx.NewAccessClaims("user-1", "chain-1", "", time.Minute,
		"test-issuer", []string{"admin"}, time.Now().UTC())
	token, err := km.GetSigner().Sign(claims)
	require.NoError(t, err)

	_, err = km.Verifier.Verify(token)
	require.ErrorIs(t, err, jwtx.ErrAudience)
}

func TestKeyManager_MultiKeyMode(t *testing.T) {
	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer: "test-issuer",
	})
	require.NoError(t, err)

	// Default is three keys, all published
	require.Equal(t, 3, km.NumSigners())
	require.Len(t, km.KeySet.PublicJWKS().Keys, 3)

	// Whatever key signs, the shared verifier accepts it
	for range 20 {
		claims := jwtx.NewAccessClaims("user-1", "chain-1", "", time.Minute,
			"test-issuer", nil, time.Now().UTC())
		token, err := km.GetSigner().Sign(claims)
		require.NoError(t, err)

		_, err = km.Verifier.Verify(token)
		require.NoError(t, err)
	}
}

func TestKeyManager_CustomNumKeys(t *testing.T) {
	tests := []struct {
		requested int
		want      int
	}{
		{-1, 3},
		{0, 3},
		{5, 5},
		{25, 10},
	}

	for _, tt := range tests {
		km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
			Issuer:  "test-issuer",
			NumKeys: tt.requested,
		})
		require.NoError(t, err)
		require.Equal(t, tt.want, km.NumSigners())
	}
}

func TestNewFileKeyManager_StableAcrossRestarts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signing.pem")
	opts := jwtx.KeyManagerOptions{Issuer: "test-issuer"}

	first, err := jwtx.NewFileKeyManager(path, opts)
	require.NoError(t, err)
	require.Equal(t, 1, first.NumSigners())

	claims := jwtx.NewAccessClaims("user-1", "chain-1", "", time.Minute,
		"test-issuer", nil, time.Now().UTC())
	token, err := first.GetSigner().Sign(claims)
	require.NoError(t, err)

	// A second manager over the same file has the same kid and accepts the token
	second, err := jwtx.NewFileKeyManager(path, opts)
	require.NoError(t, err)
	require.Equal(t, first.GetSigner().KID(), second.GetSigner().KID())

	parsed, err := second.Verifier.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", parsed.Subject)
}
