package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	httpapi "github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/http"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/service"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store/drivers/redis"
	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/store/drivers/sqlite"
	"github.com/aussiebroadwan/kaleidoscope/internal/metrics"
	"github.com/aussiebroadwan/kaleidoscope/internal/platform"
	"github.com/aussiebroadwan/kaleidoscope/internal/platform/soundcloud"
	"github.com/aussiebroadwan/kaleidoscope/internal/platform/spotify"
	"github.com/aussiebroadwan/kaleidoscope/internal/platform/youtube"
	"github.com/aussiebroadwan/kaleidoscope/internal/resolve"
	"github.com/aussiebroadwan/kaleidoscope/pkg/cryptox"
	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
	"github.com/aussiebroadwan/kaleidoscope/pkg/ratelimit"
	"github.com/aussiebroadwan/kaleidoscope/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=...".
var BuildVersion = "v0.1.0"

const redisPingTimeout = 5 * time.Second

// Application encapsulates the service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	stores     *Stores
	keyManager *jwtx.KeyManager
	metrics    *metrics.Metrics
	limiter    ratelimit.Limiter
	memLimiter *ratelimit.MemoryLimiter // nil when limits live in Redis

	// Services
	accountService      *service.AccountService
	tokenService        *service.TokenService
	housekeepingService *service.HousekeepingService
	resolver            *resolve.Resolver

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// NewLogger builds the process logger from cfg.
func NewLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: "kaleidoscope",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg:     cfg,
		logger:  NewLogger(cfg),
		metrics: metrics.New(),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	stores, err := OpenStores(context.Background(), cfg, app.logger)
	if err != nil {
		return nil, err
	}
	app.stores = stores

	keyManager, err := InitKeys(app.cfg, app.logger)
	if err != nil {
		_ = stores.Close()
		return nil, fmt.Errorf("failed to initialize JWT keys: %w", err)
	}
	app.keyManager = keyManager

	app.initLimiter()
	app.initServices()
	app.initResolver()
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("kaleidoscope starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"sessions", app.stores.SessionsBackend(),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.stores.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown drains in-flight requests, stops housekeeping and closes the stores.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down kaleidoscope...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.stores.Close(); err != nil {
		app.logger.Error("error closing stores", "error", err)
		return err
	}

	app.logger.Info("kaleidoscope stopped")
	return nil
}

// initLimiter uses Redis counters when Redis is configured so replicas share
// buckets, and the in-memory limiter otherwise.
func (app *Application) initLimiter() {
	policies := ratelimit.PoliciesFromEnv(ratelimit.DefaultPolicies())

	var base ratelimit.Limiter
	if app.stores.Redis != nil {
		base = ratelimit.NewRedisLimiter(app.stores.Redis, policies, redis.DefaultPrefix+":rl")
	} else {
		app.memLimiter = ratelimit.NewMemoryLimiter(policies)
		base = app.memLimiter
	}

	app.limiter = ratelimit.Instrumented(base, app.metrics.RateLimitDecisions)
}

func (app *Application) initServices() {
	app.accountService = &service.AccountService{Store: app.stores.DB}

	app.tokenService = &service.TokenService{
		KeyManager: app.keyManager,
		Identities: app.stores.DB.Identities(),
		Sessions:   app.stores.Sessions,
		Issuer:     app.cfg.Issuer,
		Audience:   app.cfg.Audience,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	var sweepers []service.Sweeper
	if app.memLimiter != nil {
		sweepers = append(sweepers, app.memLimiter)
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.stores.Sessions,
		app.logger,
		app.cfg.HousekeepingInterval,
		sweepers...,
	)
}

func (app *Application) initResolver() {
	app.resolver = NewResolver(app.cfg, app.metrics)
}

// NewResolver builds the provider clients from cfg and wraps each in a
// SoftAdapter reporting to m.
func NewResolver(cfg Config, m *metrics.Metrics) *resolve.Resolver {
	soft := platform.SoftOptions{
		Timeout:  cfg.ProviderTimeout,
		Calls:    m.ProviderCalls,
		Duration: m.ProviderDuration,
	}

	providers := []platform.Provider{
		soundcloud.New(soundcloud.Config{
			ClientID:  cfg.SoundCloudClientID,
			Timeout:   cfg.ProviderTimeout,
			RateLimit: cfg.ProviderRateLimit,
		}),
		youtube.New(youtube.Config{
			ProxyURL:    cfg.YouTubeProxyURL,
			Timeout:     cfg.ProviderTimeout,
			RateLimit:   cfg.ProviderRateLimit,
			MaxDuration: cfg.YouTubeMaxDuration,
		}),
		spotify.New(spotify.Config{
			ClientID:     cfg.SpotifyClientID,
			ClientSecret: cfg.SpotifyClientSecret,
			Timeout:      cfg.ProviderTimeout,
			RateLimit:    cfg.ProviderRateLimit,
		}),
	}

	adapters := make([]platform.Adapter, 0, len(providers))
	for _, p := range providers {
		adapters = append(adapters, platform.NewSoftAdapter(p, soft))
	}

	return resolve.New(adapters, resolve.Options{FallbackSteps: m.FallbackSteps})
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keyManager.KeySet,
		BuildVersion,
		app.limiter,
		app.stores.DB,
		app.logger,
	)
	if app.stores.Redis != nil {
		router.WithRedis(app.stores.Sessions)
	}

	router.AccountService = app.accountService
	router.TokenService = app.tokenService
	router.Resolver = app.resolver
	if app.cfg.MetricsEnabled {
		router.Metrics = app.metrics.Handler()
	}
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// Stores bundles the credential database with the session backend, which is
// either the same SQLite database or Redis.
type Stores struct {
	DB       *sqlite.Store
	Sessions store.Sessions
	Redis    goredis.UniversalClient // nil unless REDIS_URL is set
}

// OpenStores opens the SQLite database, applies migrations and, when
// configured, connects to Redis for sessions.
func OpenStores(ctx context.Context, cfg Config, logger *slog.Logger) (*Stores, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	logger.Info("database migrations applied successfully", "file", cfg.DatabaseFile)

	s := &Stores{DB: db, Sessions: db.Sessions()}
	if cfg.RedisURL == "" {
		return s, nil
	}

	opts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("redis connected", "addr", opts.Addr, "db", opts.DB)

	s.Redis = client
	s.Sessions = redis.NewSessions(client, redis.DefaultPrefix)
	return s, nil
}

// SessionsBackend names where refresh sessions are stored.
func (s *Stores) SessionsBackend() string {
	if s.Redis != nil {
		return "redis"
	}
	return "sqlite"
}

// Close releases Redis and the database.
func (s *Stores) Close() error {
	var errs []error
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	errs = append(errs, s.DB.Close())
	return errors.Join(errs...)
}

// Migrate applies pending migrations and exits.
func Migrate(cfg Config, logger *slog.Logger) error {
	stores, err := OpenStores(context.Background(), Config{DatabaseFile: cfg.DatabaseFile}, logger)
	if err != nil {
		return err
	}
	return stores.Close()
}

// PurgeSessions runs one housekeeping pass against the configured session
// backend and returns how many sessions were removed.
func PurgeSessions(ctx context.Context, cfg Config, logger *slog.Logger) (int64, error) {
	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return 0, err
	}
	defer func() { _ = stores.Close() }()

	hk := service.NewHousekeepingService(stores.Sessions, logger, cfg.HousekeepingInterval)
	return hk.RunOnce(ctx)
}
