package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJWKPublicKey(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	got, err := NewEd25519JWK("k1", "sig", AlgorithmEdDSA, pub).PublicKey()
	require.NoError(t, err)
	require.Equal(t, pub, got)

	bad := map[string]JWK{
		"rsa":         {Kty: "RSA", Kid: "k"},
		"other curve": {Kty: "OKP", Crv: "X25519", X: "AAAA"},
		"bad base64":  {Kty: "OKP", Crv: "Ed25519", X: "!!!"},
		"short key":   {Kty: "OKP", Crv: "Ed25519", X: "AAAA"},
	}
	for name, j := range bad {
		_, err := j.PublicKey()
		require.Error(t, err, name)
	}
}

func TestJWKThumbprint(t *testing.T) {
	// RFC 8037 A.3
	jwk := JWK{Kty: "OKP", Crv: "Ed25519", X: "11qYAYKxCrfVS_7TyWQHOg7hcvPapiMlrwIaaPcHURo"}

	thumb, err := jwk.Thumbprint()
	require.NoError(t, err)
	require.Equal(t, "kPrK_qmxVWaYVA9wwBF6Iuo3vVzz7TxHCTwXBygrS4k", thumb)

	jwk.Kid, jwk.Use, jwk.Alg = "anything", "sig", AlgorithmEdDSA
	again, err := jwk.Thumbprint()
	require.NoError(t, err)
	require.Equal(t, thumb, again)
}

func TestKeySetAddJWKReplacesKid(t *testing.T) {
	pub1, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	pub2, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.NoError(t, ks.AddJWK(NewEd25519JWK("same", "sig", AlgorithmEdDSA, pub1)))
	require.NoError(t, ks.AddJWK(NewEd25519JWK("same", "sig", AlgorithmEdDSA, pub2)))

	require.Len(t, ks.PublicJWKS().Keys, 1)
	got, err := ks.Get("same")
	require.NoError(t, err)
	require.Equal(t, pub2, got)

	_, err = ks.Get("missing")
	require.ErrorIs(t, err, ErrNoKey)
}

func TestKeySetResetFromJWKSKeepsOldSetOnError(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	ks := NewKeySet()
	require.NoError(t, ks.AddJWK(NewEd25519JWK("old", "sig", AlgorithmEdDSA, pub)))

	err = ks.ResetFromJWKS(JWKS{Keys: []JWK{{Kty: "RSA", Kid: "new"}}})
	require.Error(t, err)

	_, err = ks.Get("old")
	require.NoError(t, err)
}
