package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultUserAgent mimics a desktop browser; some upstreams reject obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/114.0.0.0 Safari/537.36"

// maxErrorBody caps how much of an error response is kept for the message.
const maxErrorBody = 512

// HTTPConfig configures an HTTPClient.
type HTTPConfig struct {
	BaseURL   string
	UserAgent string
	Header    http.Header // sent with every request

	// Timeout for the underlying http.Client; ignored when Client is set
	Timeout time.Duration

	// RateLimit is the outbound request rate in requests per second.
	// Zero or less means unlimited.
	RateLimit float64
	Burst     int

	// Client overrides the http.Client, e.g. one carrying OAuth2 credentials.
	Client *http.Client
}

// HTTPClient is the outbound JSON plumbing shared by provider clients.
type HTTPClient struct {
	baseURL string
	header  http.Header
	client  *http.Client
	limiter *rate.Limiter
}

// StatusError is returned for non-2xx responses other than 404 and 429.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("platform: %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

// NewHTTPClient creates an HTTPClient from cfg.
func NewHTTPClient(cfg HTTPConfig) *HTTPClient {
	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	burst := cfg.Burst
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
		if burst <= 0 {
			burst = max(1, int(cfg.RateLimit))
		}
	}

	header := cfg.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	header.Set("User-Agent", ua)
	if header.Get("Accept") == "" {
		header.Set("Accept", "application/json")
	}

	return &HTTPClient{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		header:  header,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
	}
}

// GetJSON issues a GET and decodes the JSON response into out. target is
// either a path relative to the base URL or an absolute URL.
func (c *HTTPClient) GetJSON(ctx context.Context, target string, query url.Values, out any) error {
	u, err := c.resolve(target, query)
	if err != nil {
		return err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("platform: rate wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("platform: new request: %w", err)
	}
	req.Header = c.header.Clone()

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("platform: get %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, req.URL.Path)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrProviderRateLimited, req.URL.Path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{StatusCode: resp.StatusCode, URL: req.URL.Path, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("platform: empty response from %s", req.URL.Path)
		}
		return fmt.Errorf("platform: decode %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *HTTPClient) resolve(target string, query url.Values) (string, error) {
	raw := target
	if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
		raw = c.baseURL + "/" + strings.TrimPrefix(target, "/")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("platform: parse url: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}
