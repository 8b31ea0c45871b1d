package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// Bearer error descriptions. The two cases are the only detail a caller gets.
const (
	DescMissingBearer = "Missing or invalid authorization header"
	DescInvalidBearer = "Invalid or expired token"
)

// SubjectVerifier resolves an access token to the subject it was issued for.
type SubjectVerifier interface {
	VerifyAccess(ctx context.Context, token string) (string, error)
}

// AuthnMiddleware requires a valid "Authorization: Bearer" access token and
// stores its subject in the request context.
func AuthnMiddleware(v SubjectVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			scheme, raw, ok := strings.Cut(authz, " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				writeBearerError(w, DescMissingBearer)
				return
			}

			subject, err := v.VerifyAccess(ctx, raw)
			if err != nil {
				log.Debug("access token rejected", "err", err)
				writeBearerError(w, DescInvalidBearer)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSubject(ctx, subject)))
		})
	}
}

// RFC 6750 style error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
