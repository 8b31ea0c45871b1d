package kaleidosdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the Kaleidoscope API.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent on every request. Sessions are bound to it server side.
	UserAgent string
}

// NewSDKClient creates a new API client.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		UserAgent: "kaleidosdk",
	}
}

// Login authenticates with email and password and returns a session.
func (c *SDKClient) Login(ctx context.Context, email, password string) (*Session, error) {
	tokenResp, err := c.LoginTokens(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// Register creates an account and returns a session for it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	tokenResp, err := c.RegisterTokens(ctx, req)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// AuthenticateWithRefreshToken creates a session from an existing refresh token.
// The token is rotated in the process, so the argument is spent afterwards.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tokenResp, err := c.Refresh(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return newSession(c, tokenResp), nil
}

// NewSessionFromTokens creates a session from tokens obtained elsewhere.
// The session still refreshes itself once the access token expires.
func (c *SDKClient) NewSessionFromTokens(accessToken, refreshToken string, expiresIn int) *Session {
	return newSession(c, &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    expiresIn,
	})
}
