package kaleidosdk

import (
	"context"
	"net/http"
)

// GetVersion returns the version reported by GET /.
func (c *SDKClient) GetVersion(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return "", err
	}

	var root RootResponse
	if err := decodeJSON(resp, &root, http.StatusOK); err != nil {
		return "", err
	}
	return root["kaleidoscope-api"], nil
}

// GetLiveness checks if the service is alive.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/livez")
}

// GetReadiness checks if the service is ready to serve traffic.
// A 503 is returned as an *APIError.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	return c.health(ctx, "/readyz")
}

func (c *SDKClient) health(ctx context.Context, path string) (*HealthResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err := decodeJSON(resp, &health, http.StatusOK); err != nil {
		return nil, err
	}
	return &health, nil
}
