package domain

import "time"

// TokenPair is what register, login and refresh hand back: a short-lived
// access token (JWT) and the opaque refresh token that rotates it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"` // always "bearer"
	ExpiresIn    int    `json:"expires_in"` // seconds until the access token expires
}

// SessionMeta describes the client a session was issued to.
type SessionMeta struct {
	UserAgent string
	IPAddress string
}

// RefreshSession is one link of a refresh chain. Each rotation revokes the
// current link and appends a new one with the same ChainID.
type RefreshSession struct {
	ID        string // ULID
	TokenHash string // base64url SHA-256 of the opaque refresh token
	SubjectID string
	ChainID   string // shared by every rotation of one login
	UserAgent string
	IPAddress string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Revoked   bool
	RevokedAt *time.Time
}

// IsExpired reports whether the session is past its expiry at now.
func (s RefreshSession) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
