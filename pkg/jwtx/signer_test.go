package jwtx_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
)

const exampleIssuer = "https://kaleidoscope.example"

func newTestSigner(t *testing.T, kid string) (jwtx.Signer, *jwtx.KeySet) {
	t.Helper()

	pemKey, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)

	signer, err := jwtx.NewSigner(kid, pemKey)
	require.NoError(t, err)

	keyset := jwtx.NewKeySet()
	require.NoError(t, keyset.AddSigner(signer))
	return signer, keyset
}

func signAccess(t *testing.T, s jwtx.Signer, mutate func(*jwtx.Claims)) string {
	t.Helper()

	c := jwtx.NewAccessClaims("user-1", "chain-1", "dj", time.Minute, exampleIssuer, []string{"api"}, time.Now().UTC())
	if mutate != nil {
		mutate(&c)
	}
	token, err := s.Sign(c)
	require.NoError(t, err)
	return token
}

func TestSignerRoundTrip(t *testing.T) {
	signer, keyset := newTestSigner(t, "k-roundtrip")
	require.Equal(t, "k-roundtrip", signer.KID())

	jwk := signer.PublicJWK()
	require.Equal(t, "OKP", jwk.Kty)
	require.Equal(t, "Ed25519", jwk.Crv)
	require.Equal(t, jwtx.AlgorithmEdDSA, jwk.Alg)
	require.Len(t, keyset.PublicJWKS().Keys, 1)

	token := signAccess(t, signer, nil)

	got, err := jwtx.NewVerifier(keyset, exampleIssuer, []string{"api"}).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
	require.Equal(t, "chain-1", got.SID)
	require.Equal(t, "dj", got.Handle)
	require.Equal(t, exampleIssuer, got.Issuer)
	require.Equal(t, jwtx.TokenTypeAccess, got.Type)
	require.NotEmpty(t, got.ID)
}

func TestNewSignerRejectsBadPEM(t *testing.T) {
	_, err := jwtx.NewSigner("broken", []byte("not-a-pem-key"))
	require.ErrorContains(t, err, "invalid PEM")
}

func TestVerifierRejects(t *testing.T) {
	signer, keyset := newTestSigner(t, "k-main")
	other, _ := newTestSigner(t, "k-other")

	valid := signAccess(t, signer, nil)

	tests := []struct {
		name     string
		token    string
		issuer   string
		audience []string
		want     error
	}{
		{
			name:   "wrong issuer",
			token:  valid,
			issuer: "someone-else",
			want:   jwtx.ErrIssuer,
		},
		{
			name:     "wrong audience",
			token:    valid,
			issuer:   exampleIssuer,
			audience: []string{"billing"},
			want:     jwtx.ErrAudience,
		},
		{
			name:   "unknown key",
			token:  signAccess(t, other, nil),
			issuer: exampleIssuer,
			want:   jwtx.ErrNoKey,
		},
		{
			name: "expired",
			token: signAccess(t, signer, func(c *jwtx.Claims) {
				*c = jwtx.NewAccessClaims("user-1", "chain-1", "", 15*time.Minute, exampleIssuer, nil, time.Now().UTC().Add(-20*time.Minute))
			}),
			issuer: exampleIssuer,
			want:   jwtx.ErrExpired,
		},
		{
			name:   "no expiry",
			token:  signAccess(t, signer, func(c *jwtx.Claims) { c.ExpiresAt = nil }),
			issuer: exampleIssuer,
			want:   jwt.ErrTokenRequiredClaimMissing,
		},
		{
			name:   "refresh typed token",
			token:  signAccess(t, signer, func(c *jwtx.Claims) { c.Type = "refresh" }),
			issuer: exampleIssuer,
			want:   jwtx.ErrTokenType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := jwtx.NewVerifier(keyset, tt.issuer, tt.audience).Verify(tt.token)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestVerifierRejectsMalformed(t *testing.T) {
	signer, keyset := newTestSigner(t, "k-tamper")
	token := signAccess(t, signer, nil)
	v := jwtx.NewVerifier(keyset, exampleIssuer, nil)

	for _, bad := range []string{"", "not-a-jwt", token + "x", token[:len(token)-4] + "AAAA"} {
		_, err := v.Verify(bad)
		require.Error(t, err, "token %q", bad)
	}
}

func TestKeySetResetFromJWKS(t *testing.T) {
	signer, published := newTestSigner(t, "published")
	token := signAccess(t, signer, nil)

	remote := jwtx.NewKeySet()
	require.False(t, remote.IsReady())
	require.NoError(t, remote.ResetFromJWKS(published.PublicJWKS()))
	require.True(t, remote.IsReady())

	got, err := jwtx.NewVerifier(remote, exampleIssuer, nil).Verify(token)
	require.NoError(t, err)
	require.Equal(t, "user-1", got.Subject)
}
