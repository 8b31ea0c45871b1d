package kaleidosdk

import (
	"context"
	"net/http"
)

// RegisterTokens creates an account and returns its first token pair.
func (c *SDKClient) RegisterTokens(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	return c.requestToken(ctx, "/auth/register", req, http.StatusCreated)
}

// LoginTokens exchanges email and password for a token pair.
func (c *SDKClient) LoginTokens(ctx context.Context, email, password string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/auth/login", LoginRequest{Email: email, Password: password}, http.StatusOK)
}

// Refresh rotates a refresh token. The old token is spent even if the
// response is lost, so callers must keep the returned one.
func (c *SDKClient) Refresh(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	return c.requestToken(ctx, "/auth/refresh", RefreshRequest{RefreshToken: refreshToken}, http.StatusOK)
}

// Logout revokes a single refresh token.
func (c *SDKClient) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/logout", RefreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return err
	}
	var out struct{}
	return decodeJSON(resp, &out, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, path string, body any, expected int) (*TokenResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, path, body)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, expected); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}
