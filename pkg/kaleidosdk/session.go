package kaleidosdk

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// refreshSkew treats access tokens as expired this long before the server does.
const refreshSkew = 30 * time.Second

// ErrNoRefreshToken is returned when a session needs to rotate but was
// created without a refresh token.
var ErrNoRefreshToken = errors.New("kaleidosdk: session has no refresh token")

type tokenSet struct {
	access  string
	refresh string
	renewAt time.Time
}

func tokenSetFrom(resp *TokenResponse, now time.Time) tokenSet {
	return tokenSet{
		access:  resp.AccessToken,
		refresh: resp.RefreshToken,
		renewAt: now.Add(time.Duration(resp.ExpiresIn)*time.Second - refreshSkew),
	}
}

// Session holds a token pair and rotates it before the access token lapses.
// It is safe for concurrent use; concurrent callers share one rotation.
type Session struct {
	client *SDKClient

	mu     sync.Mutex
	tokens tokenSet
}

func newSession(client *SDKClient, resp *TokenResponse) *Session {
	return &Session{client: client, tokens: tokenSetFrom(resp, time.Now())}
}

// bearer returns an access token that is not about to expire.
func (s *Session) bearer(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Now().Before(s.tokens.renewAt) {
		return s.tokens.access, nil
	}
	if err := s.rotate(ctx); err != nil {
		return "", err
	}
	return s.tokens.access, nil
}

// Refresh rotates the token pair immediately.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rotate(ctx)
}

// rotate must be called with mu held.
func (s *Session) rotate(ctx context.Context) error {
	if s.tokens.refresh == "" {
		return ErrNoRefreshToken
	}

	resp, err := s.client.Refresh(ctx, s.tokens.refresh)
	if err != nil {
		return fmt.Errorf("kaleidosdk: rotate session: %w", err)
	}
	s.tokens = tokenSetFrom(resp, time.Now())
	return nil
}

// Logout revokes the refresh token. The tokens are kept, so a second call
// reports the session as already gone.
func (s *Session) Logout(ctx context.Context) error {
	refresh := s.RefreshToken()
	if refresh == "" {
		return ErrNoRefreshToken
	}
	return s.client.Logout(ctx, refresh)
}

// AccessToken returns the current access token, expired or not.
func (s *Session) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.access
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens.refresh
}
