package jwtx

import (
	"crypto/ed25519"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
)

// Signer turns Claims into a compact JWT under a single key id.
type Signer interface {
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
}

type ed25519Signer struct {
	kid  string
	priv ed25519.PrivateKey
}

// NewSigner builds an EdDSA Signer from a PKCS8 PEM encoded Ed25519 key.
func NewSigner(kid string, pemKey []byte) (Signer, error) {
	priv, err := cryptox.ParseEd25519PrivateKey(pemKey)
	if err != nil {
		return nil, fmt.Errorf("jwtx: signer %q: %w", kid, err)
	}
	return &ed25519Signer{kid: kid, priv: priv}, nil
}

func (s *ed25519Signer) KID() string { return s.kid }

func (s *ed25519Signer) Sign(c Claims) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodEdDSA, c)
	tok.Header["kid"] = s.kid

	signed, err := tok.SignedString(s.priv)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

func (s *ed25519Signer) PublicJWK() JWK {
	pub, _ := s.priv.Public().(ed25519.PublicKey)
	return NewEd25519JWK(s.kid, "sig", AlgorithmEdDSA, pub)
}
