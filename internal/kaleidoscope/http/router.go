package http

import (
	"log/slog"
	"net/http"
	"time"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/aussiebroadwan/kaleidoscope/api/kaleidoscope" // Swagger docs
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/service"
	"github.com/aussiebroadwan/kaleidoscope/internal/resolve"
	"github.com/aussiebroadwan/kaleidoscope/pkg/httpx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/ratelimit"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	limiter      ratelimit.Limiter

	db    Pinger
	redis Pinger // nil unless a Redis backend is configured

	AccountService *service.AccountService
	TokenService   *service.TokenService
	Resolver       *resolve.Resolver

	// Metrics is served on /metrics when set before ApplyRoutes.
	Metrics http.Handler
}

func NewRouter(
	keys *jwtx.KeySet,
	buildVersion string,
	limiter ratelimit.Limiter,
	db Pinger,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		limiter:      limiter,
		db:           db,
	}

	r.middlewares = []httpx.Middleware{
		httpx.SecurityHeaders(),
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// WithRedis adds a Redis check to readiness. Call before ApplyRoutes.
func (r *Router) WithRedis(p Pinger) *Router {
	r.redis = p
	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMusic()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Kaleidoscope API
//	@version		0.1.0
//	@description	Accounts, token sessions and cross-platform music lookup over SoundCloud, YouTube Music and Spotify.
//	@description
//	@description				Access tokens are EdDSA signed JWTs and can be verified using the JWKS endpoint.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/kaleidoscope
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// limited counts every attempt against class before anything else runs,
// so requests that later fail validation or authentication still count.
func (r *Router) limited(h http.Handler, class ratelimit.Class, mws ...httpx.Middleware) http.Handler {
	return httpx.Chain(h, append([]httpx.Middleware{httpx.RateLimitByIP(r.limiter, class)}, mws...)...)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{Accounts: r.AccountService, Tokens: r.TokenService}
	authn := httpx.AuthnMiddleware(r.TokenService)

	r.Mux.Handle("POST /auth/register", r.limited(http.HandlerFunc(h.HandleRegister), ratelimit.ClassRegister))
	r.Mux.Handle("POST /auth/login", r.limited(http.HandlerFunc(h.HandleLogin), ratelimit.ClassLogin))
	r.Mux.Handle("POST /auth/refresh", r.limited(http.HandlerFunc(h.HandleRefresh), ratelimit.ClassRefresh))
	r.Mux.Handle("POST /auth/logout", r.limited(http.HandlerFunc(h.HandleLogout), ratelimit.ClassLogout))
	r.Mux.Handle("POST /auth/logout-all", r.limited(http.HandlerFunc(h.HandleLogoutAll), ratelimit.ClassLogout, authn))
	r.Mux.Handle("GET /auth/me", r.limited(http.HandlerFunc(h.HandleMe), ratelimit.ClassMusic, authn))
}

func (r *Router) registerMusic() {
	h := &MusicHandler{Resolver: r.Resolver}
	authn := httpx.AuthnMiddleware(r.TokenService)

	search := r.limited(http.HandlerFunc(h.HandleSearch), ratelimit.ClassMusic, authn)
	r.Mux.Handle("GET /search/{platform}", search)
	r.Mux.Handle("POST /search/{platform}", search)
	r.Mux.Handle("GET /track/{platform}/{id}", r.limited(http.HandlerFunc(h.HandleTrack), ratelimit.ClassMusic, authn))
	r.Mux.Handle("GET /track/{platform}/{id}/stream", r.limited(http.HandlerFunc(h.HandleStream), ratelimit.ClassMusic, authn))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /{$}", RootHandler(r.buildVersion))
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.db, r.redis, r.keys))
	r.Mux.Handle("GET /.well-known/jwks.json", JWKSHandler(r.keys))

	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
