package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default token lifetimes.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// TokenTypeAccess is the "type" claim of access tokens.
const TokenTypeAccess = "access"

var (
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrAudience    = errors.New("jwtx: audience mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenType   = errors.New("jwtx: wrong token type")
	ErrMissingKID  = errors.New("jwtx: missing kid")
)

// Claims are carried by every access token.
type Claims struct {
	jwt.RegisteredClaims

	Type   string `json:"type"`
	SID    string `json:"sid,omitempty"`    // refresh chain the token came from
	Handle string `json:"handle,omitempty"` // display only
}

// NewAccessClaims stamps an access token for subject, valid for ttl from now.
func NewAccessClaims(subject, sid, handle string, ttl time.Duration, issuer string, audience []string, now time.Time) Claims {
	var jti [20]byte
	_, _ = rand.Read(jti[:])

	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        base64.RawURLEncoding.EncodeToString(jti[:]),
			Issuer:    issuer,
			Subject:   subject,
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Type:   TokenTypeAccess,
		SID:    sid,
		Handle: handle,
	}
}

// Check applies the access-token rules at now. An empty issuer or audience
// is not enforced; a token matches an audience list when it names any entry.
func (c Claims) Check(issuer string, audience []string, now time.Time) error {
	if c.Type != TokenTypeAccess {
		return ErrTokenType
	}
	if issuer != "" && c.Issuer != issuer {
		return ErrIssuer
	}
	if len(audience) > 0 && !slices.ContainsFunc(audience, func(a string) bool {
		return slices.Contains(c.Audience, a)
	}) {
		return ErrAudience
	}
	if c.ExpiresAt != nil && !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Time) {
		return ErrNotYetValid
	}
	return nil
}
