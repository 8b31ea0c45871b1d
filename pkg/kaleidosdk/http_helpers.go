package kaleidosdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// doRequest sends an unauthenticated request. A non-nil body goes out as JSON.
func (c *SDKClient) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return c.do(ctx, method, path, body, "")
}

func (c *SDKClient) do(ctx context.Context, method, path string, body any, bearer string) (*http.Response, error) {
	var payload io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("kaleidosdk: encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, payload)
	if err != nil {
		return nil, fmt.Errorf("kaleidosdk: build %s %s: %w", method, path, err)
	}

	h := req.Header
	h.Set("Accept", "application/json")
	if body != nil {
		h.Set("Content-Type", "application/json")
	}
	if c.UserAgent != "" {
		h.Set("User-Agent", c.UserAgent)
	}
	if bearer != "" {
		h.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kaleidosdk: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// doAuthRequest is do with the session's bearer token, rotated first if due.
func (s *Session) doAuthRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	token, err := s.bearer(ctx)
	if err != nil {
		return nil, err
	}
	return s.client.do(ctx, method, path, body, token)
}

// decodeJSON reads resp into target when it carries want, and turns any
// other status into an *APIError.
func decodeJSON(resp *http.Response, target any, want int) error {
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("kaleidosdk: read body: %w", err)
	}
	if resp.StatusCode != want {
		return parseErrorResponse(resp, raw)
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("kaleidosdk: decode %d response: %w", resp.StatusCode, err)
	}
	return nil
}
