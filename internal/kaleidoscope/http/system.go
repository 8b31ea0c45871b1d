package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/pkg/httpx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RootHandler godoc
//
//	@Summary	Service version
//	@Tags		Health
//	@Produce	json
//	@Success	200	{object}	kaleidosdk.RootResponse
//	@Router		/ [get]
func RootHandler(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, kaleidosdk.RootResponse{"kaleidoscope-api": version})
	}
}

// LivezHandler godoc
//
//	@Summary		Liveness probe
//	@Description	Always 200 while the process is serving.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	kaleidosdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get]
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, kaleidosdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness probe
//	@Description	Checks the database, the signing keys and Redis when configured.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	kaleidosdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	kaleidosdk.HealthResponse	"service not ready"
//	@Router			/readyz [get]
func ReadyzHandler(
	startTime time.Time,
	version string,
	db Pinger,
	redis Pinger,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		checks := &kaleidosdk.HealthChecks{
			Database: probe(db.Ping(ctx)),
			Signer:   "ok",
		}
		if !keys.IsReady() {
			checks.Signer = "error: no keys loaded"
		}
		if redis != nil {
			checks.Redis = probe(redis.Ping(ctx))
		}

		resp := kaleidosdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: version,
			Checks:  checks,
		}
		code := http.StatusOK
		for _, c := range []string{checks.Database, checks.Signer, checks.Redis} {
			if c != "" && c != "ok" {
				resp.Status = "degraded"
				code = http.StatusServiceUnavailable
			}
		}
		httpx.WriteJSON(w, code, resp)
	}
}

func probe(err error) string {
	if err != nil {
		return "error: " + err.Error()
	}
	return "ok"
}

// JWKSHandler exposes the public signing keys.
//
//	@Summary		Get JWKS
//	@Description	Returns the JSON Web Key Set used to verify access tokens.
//	@Tags			well-known
//	@Produce		json
//	@Success		200	{object}	kaleidosdk.JWKSResponse	"The JSON Web Key Set"
//	@Router			/.well-known/jwks.json [get]
func JWKSHandler(keys *jwtx.KeySet) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, kaleidosdk.JWKSResponse(keys.PublicJWKS()))
	}
}
