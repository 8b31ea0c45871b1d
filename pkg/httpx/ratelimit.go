package httpx

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/kaleidoscope/pkg/ratelimit"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// KeyExtractor is a function that extracts a unique key from the request
// for rate limiting purposes.
type KeyExtractor func(*http.Request) string

// IPKeyExtractor extracts the client IP address from the request.
// It handles X-Forwarded-For and X-Real-IP headers for proxied requests.
func IPKeyExtractor(r *http.Request) string {
	// X-Forwarded-For is a comma-separated list, client first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// RateLimited is the uniform body of every 429 response, whatever the class.
var RateLimited = map[string]string{
	"error":             "rate_limit_exceeded",
	"error_description": "Too many requests. Please try again later.",
}

// RateLimit admits each request through l under class, keyed by keyFn.
// Denials get a 429 with Retry-After. If the limiter itself fails the
// request is let through and the failure logged, so a Redis outage does not
// take the API down with it.
func RateLimit(l ratelimit.Limiter, class ratelimit.Class, keyFn KeyExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			key := keyFn(r)
			if key == "" {
				log.Warn("rate limit: unable to extract key, allowing request")
				next.ServeHTTP(w, r)
				return
			}

			d, err := l.Admit(ctx, key, class)
			if err != nil {
				log.Error("rate limit: limiter failed, allowing request",
					"class", string(class),
					"err", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			if d.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			}

			if !d.Allowed {
				retryAfter := int(d.RetryAfter(time.Now()).Seconds())
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn("rate limit exceeded",
					"key", key,
					"class", string(class),
					"endpoint", r.URL.Path,
					"retry_after", retryAfter,
				)

				WriteJSON(w, http.StatusTooManyRequests, RateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitByIP limits class per client IP.
func RateLimitByIP(l ratelimit.Limiter, class ratelimit.Class) Middleware {
	return RateLimit(l, class, IPKeyExtractor)
}
