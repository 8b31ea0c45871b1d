package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier checks an access token and returns its claims.
type Verifier interface {
	Verify(token string) (Claims, error)
}

type accessVerifier struct {
	keys     *KeySet
	issuer   string
	audience []string
	parser   *jwt.Parser
}

// NewVerifier accepts EdDSA access tokens signed by any key in keys. Tokens
// must carry exp. An empty issuer or audience is not enforced.
func NewVerifier(keys *KeySet, issuer string, audience []string) Verifier {
	return &accessVerifier{
		keys:     keys,
		issuer:   issuer,
		audience: audience,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{AlgorithmEdDSA}),
			jwt.WithExpirationRequired(),
		),
	}
}

func (v *accessVerifier) lookup(t *jwt.Token) (any, error) {
	kid, _ := t.Header["kid"].(string)
	if kid == "" {
		return nil, ErrMissingKID
	}
	pub, err := v.keys.Get(kid)
	if err != nil {
		return nil, fmt.Errorf("kid %q: %w", kid, err)
	}
	return pub, nil
}

func (v *accessVerifier) Verify(token string) (Claims, error) {
	var c Claims
	if _, err := v.parser.ParseWithClaims(token, &c, v.lookup); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, fmt.Errorf("%w: %w", ErrExpired, err)
		}
		return Claims{}, fmt.Errorf("jwtx: verify: %w", err)
	}

	if err := c.Check(v.issuer, v.audience, time.Now()); err != nil {
		return Claims{}, err
	}
	return c, nil
}
