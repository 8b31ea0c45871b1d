package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// ConfigFileEnv names the variable holding an optional TOML config path.
const ConfigFileEnv = "KALEIDOSCOPE_CONFIG"

// Key storage modes.
const (
	KeyStorageEphemeral = "ephemeral"
	KeyStorageFile      = "file"
)

type Config struct {
	Issuer   string   `toml:"issuer"`   // issuer claim for access tokens (default: kaleidoscope)
	Audience []string `toml:"audience"` // audience claim for access tokens (default: [kaleidoscope])

	KeyStorageMode string `toml:"key_storage_mode"` // ephemeral or file (default: ephemeral)
	KeyFile        string `toml:"key_file"`         // Ed25519 PEM used in file mode (default: data/signing.pem)
	NumKeys        int    `toml:"num_keys"`         // ephemeral signing keys (default: 3, max: 10)

	AccessTokenTTL  time.Duration `toml:"access_token_ttl"`  // default: 15m
	RefreshTokenTTL time.Duration `toml:"refresh_token_ttl"` // default: 168h

	DatabaseFile string `toml:"database_file"` // SQLite database path (default: kaleidoscope.db)
	PepperFile   string `toml:"pepper_file"`   // password pepper (default: data/pepper)
	RedisURL     string `toml:"redis_url"`     // optional: moves sessions and rate limits to Redis

	SoundCloudClientID  string        `toml:"soundcloud_client_id"`
	YouTubeProxyURL     string        `toml:"youtube_proxy_url"`
	YouTubeMaxDuration  time.Duration `toml:"youtube_max_duration"` // default: 300s, negative disables
	SpotifyClientID     string        `toml:"spotify_client_id"`
	SpotifyClientSecret string        `toml:"spotify_client_secret"`
	ProviderRateLimit   float64       `toml:"provider_rate_limit"` // outbound req/s per provider, 0 = unlimited (default: 10)
	ProviderTimeout     time.Duration `toml:"provider_timeout"`    // per provider call (default: 8s)

	Env                  string        `toml:"env"`                   // dev, staging, prod (default: dev)
	LogLevel             string        `toml:"log_level"`             // debug, info, warn, error (default: info)
	LogFormat            string        `toml:"log_format"`            // json, text, pretty (default: json)
	Port                 int           `toml:"port"`                  // default: 8080
	MetricsEnabled       bool          `toml:"metrics_enabled"`       // expose /metrics (default: true)
	ShutdownGracePeriod  time.Duration `toml:"shutdown_grace_period"` // default: 10s
	HousekeepingInterval time.Duration `toml:"housekeeping_interval"` // default: 1h
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		Issuer:               "kaleidoscope",
		Audience:             []string{"kaleidoscope"},
		KeyStorageMode:       KeyStorageEphemeral,
		KeyFile:              "data/signing.pem",
		NumKeys:              3,
		AccessTokenTTL:       15 * time.Minute,
		RefreshTokenTTL:      7 * 24 * time.Hour,
		DatabaseFile:         "kaleidoscope.db",
		PepperFile:           "data/pepper",
		YouTubeMaxDuration:   300 * time.Second,
		ProviderRateLimit:    10,
		ProviderTimeout:      8 * time.Second,
		Env:                  "dev",
		LogLevel:             "info",
		LogFormat:            "json",
		Port:                 8080,
		MetricsEnabled:       true,
		ShutdownGracePeriod:  10 * time.Second,
		HousekeepingInterval: time.Hour,
	}
}

// LoadConfig layers defaults, the TOML file named by KALEIDOSCOPE_CONFIG (if
// any) and environment variables, in that order, then validates the result.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	if path := os.Getenv(ConfigFileEnv); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Issuer = getEnvOrDefault("KALEIDOSCOPE_ISSUER", c.Issuer)
	if aud := os.Getenv("KALEIDOSCOPE_AUDIENCE"); aud != "" {
		c.Audience = []string{aud}
	}

	c.KeyStorageMode = getEnvOrDefault("KEY_STORAGE_MODE", c.KeyStorageMode)
	c.KeyFile = getEnvOrDefault("KEY_FILE", c.KeyFile)
	c.NumKeys = getEnvIntOrDefault("NUM_KEYS", c.NumKeys)

	c.AccessTokenTTL = getEnvDurationOrDefault("ACCESS_TOKEN_TTL", c.AccessTokenTTL)
	c.RefreshTokenTTL = getEnvDurationOrDefault("REFRESH_TOKEN_TTL", c.RefreshTokenTTL)

	c.DatabaseFile = getEnvOrDefault("DATABASE_FILE", c.DatabaseFile)
	c.PepperFile = getEnvOrDefault("PEPPER_FILE", c.PepperFile)
	c.RedisURL = getEnvOrDefault("REDIS_URL", c.RedisURL)

	c.SoundCloudClientID = getEnvOrDefault("SOUNDCLOUD_CLIENT_ID", c.SoundCloudClientID)
	c.YouTubeProxyURL = getEnvOrDefault("YOUTUBE_PROXY_URL", c.YouTubeProxyURL)
	c.YouTubeMaxDuration = getEnvSecondsOrDefault("YOUTUBE_MAX_DURATION", c.YouTubeMaxDuration)
	c.SpotifyClientID = getEnvOrDefault("SPOTIFY_CLIENT_ID", c.SpotifyClientID)
	c.SpotifyClientSecret = getEnvOrDefault("SPOTIFY_CLIENT_SECRET", c.SpotifyClientSecret)
	c.ProviderRateLimit = getEnvFloatOrDefault("PROVIDER_RATE_LIMIT", c.ProviderRateLimit)
	c.ProviderTimeout = getEnvDurationOrDefault("PROVIDER_TIMEOUT", c.ProviderTimeout)

	c.Env = getEnvOrDefault("ENV", c.Env)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)
	c.Port = getEnvIntOrDefault("PORT", c.Port)
	c.MetricsEnabled = getEnvBoolOrDefault("METRICS_ENABLED", c.MetricsEnabled)
	c.ShutdownGracePeriod = getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", c.ShutdownGracePeriod)
	c.HousekeepingInterval = getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", c.HousekeepingInterval)
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Issuer == "" {
		errs = append(errs, errors.New("issuer must not be empty"))
	}
	if c.AccessTokenTTL <= 0 {
		errs = append(errs, errors.New("access token TTL must be positive"))
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		errs = append(errs, fmt.Errorf("access token TTL (%s) must be shorter than refresh token TTL (%s)",
			c.AccessTokenTTL, c.RefreshTokenTTL))
	}
	switch c.KeyStorageMode {
	case KeyStorageEphemeral, KeyStorageFile:
	default:
		errs = append(errs, fmt.Errorf("unknown key storage mode %q", c.KeyStorageMode))
	}
	switch c.LogFormat {
	case "json", "text", "pretty":
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.ProviderRateLimit < 0 {
		errs = append(errs, errors.New("provider rate limit must not be negative"))
	}
	if (c.SpotifyClientID == "") != (c.SpotifyClientSecret == "") {
		errs = append(errs, errors.New("spotify needs both a client id and a client secret"))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvSecondsOrDefault is getEnvDurationOrDefault with bare integers read
// as seconds, matching how track lengths are expressed everywhere else.
func getEnvSecondsOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
