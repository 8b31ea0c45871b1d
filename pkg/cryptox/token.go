package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// Random token sizes in bytes, before base64url encoding.
const (
	TokenSize128 = 16 // 22 characters
	TokenSize256 = 32 // 43 characters
)

var tokenEncoding = base64.RawURLEncoding

// GenerateToken returns size random bytes encoded as unpadded base64url.
func GenerateToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("cryptox: token size %d is not positive", size)
	}

	raw := make([]byte, size)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("cryptox: read random: %w", err)
	}
	return tokenEncoding.EncodeToString(raw), nil
}

// IsTokenOfSize reports whether s could have come from GenerateToken(size).
func IsTokenOfSize(s string, size int) bool {
	if size <= 0 || len(s) != tokenEncoding.EncodedLen(size) {
		return false
	}
	raw, err := tokenEncoding.DecodeString(s)
	return err == nil && len(raw) == size
}

// FingerprintToken hashes a token with SHA-256 for storage. Only the
// fingerprint is persisted, never the token itself.
func FingerprintToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return tokenEncoding.EncodeToString(sum[:])
}
