package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/service"
	"github.com/aussiebroadwan/kaleidoscope/pkg/kaleidosdk"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// serviceErrors maps service sentinels to their wire errors. Anything not
// listed is a 500.
var serviceErrors = []struct {
	err error
	api *kaleidosdk.APIError
}{
	{service.ErrInvalidRequest, kaleidosdk.ErrInvalidRequest},
	{service.ErrInvalidEmail, kaleidosdk.ErrInvalidEmail},
	{service.ErrWeakPassword, kaleidosdk.ErrWeakPassword},
	{service.ErrInvalidHandle, kaleidosdk.ErrInvalidHandle},
	{service.ErrEmailTaken, kaleidosdk.ErrEmailTaken},
	{service.ErrHandleTaken, kaleidosdk.ErrHandleTaken},
	{service.ErrInvalidCredentials, kaleidosdk.ErrInvalidCredentials},
	{service.ErrInvalidToken, kaleidosdk.ErrInvalidToken},
	{service.ErrIdentityNotFound, kaleidosdk.ErrInvalidToken},
	{service.ErrInvalidRefreshToken, kaleidosdk.ErrInvalidRefreshToken},
	{service.ErrSessionNotFound, kaleidosdk.ErrSessionNotFound},
	{service.ErrSessionExpired, kaleidosdk.ErrSessionExpired},
}

// writeError writes the wire form of err. Unexpected errors are logged with
// full detail and answered with a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			m.api.WriteError(w)
			return
		}
	}

	slogx.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"err", err,
	)
	kaleidosdk.ErrServerError.WriteError(w)
}
