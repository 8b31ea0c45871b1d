package cryptox_test

import (
	"crypto/ed25519"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
)

func TestGenerateEd25519KeyParses(t *testing.T) {
	a, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	b, err := cryptox.GenerateEd25519Key()
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	block, rest := pem.Decode(a)
	require.NotNil(t, block)
	require.Empty(t, rest)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := cryptox.ParseEd25519PrivateKey(a)
	require.NoError(t, err)
	require.Len(t, key, ed25519.PrivateKeySize)

	msg := []byte("kaleidoscope")
	pub, ok := key.Public().(ed25519.PublicKey)
	require.True(t, ok)
	require.True(t, ed25519.Verify(pub, msg, ed25519.Sign(key, msg)))
}

func TestParseEd25519PrivateKeyRejects(t *testing.T) {
	_, err := cryptox.ParseEd25519PrivateKey([]byte("garbage"))
	require.ErrorContains(t, err, "invalid PEM")

	wrongType := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte{1, 2, 3}})
	_, err = cryptox.ParseEd25519PrivateKey(wrongType)
	require.ErrorContains(t, err, "PKCS8")

	badDER := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}})
	_, err = cryptox.ParseEd25519PrivateKey(badDER)
	require.Error(t, err)
}

func TestLoadOrGenerateEd25519Key(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys", "signing.pem")

	first, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)

	second, err := cryptox.LoadOrGenerateEd25519Key(path)
	require.NoError(t, err)
	require.Equal(t, first, second, "existing key is reused")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
