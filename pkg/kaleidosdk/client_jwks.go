package kaleidosdk

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
)

// GetJWKS retrieves the JSON Web Key Set used to verify access tokens.
func (c *SDKClient) GetJWKS(ctx context.Context) (*JWKSResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/.well-known/jwks.json", nil)
	if err != nil {
		return nil, err
	}

	var jwks JWKSResponse
	if err := decodeJSON(resp, &jwks, http.StatusOK); err != nil {
		return nil, err
	}
	return &jwks, nil
}

// NewVerifier fetches the published keys and returns a verifier that checks
// access tokens offline against them. Keys rotated after the call are not
// picked up; call NewVerifier again after a restart of the service.
func (c *SDKClient) NewVerifier(ctx context.Context, issuer string, audience []string) (jwtx.Verifier, error) {
	jwks, err := c.GetJWKS(ctx)
	if err != nil {
		return nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.ResetFromJWKS(jwtx.JWKS(*jwks)); err != nil {
		return nil, fmt.Errorf("kaleidosdk: load jwks: %w", err)
	}
	return jwtx.NewVerifier(keys, issuer, audience), nil
}
