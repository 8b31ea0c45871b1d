package app

import (
	"fmt"
	"log/slog"

	"github.com/aussiebroadwan/kaleidoscope/pkg/jwtx"
)

// InitKeys creates the KeyManager for the configured storage mode.
//
// Storage modes:
//   - "ephemeral": keys are generated on startup and kept in memory only.
//     Access tokens issued before a restart stop verifying; refresh tokens
//     keep working since they are opaque.
//   - "file": a single Ed25519 key is loaded from KeyFile, or generated there
//     on first start. Replicas sharing the file verify each other's tokens.
func InitKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	opts := jwtx.KeyManagerOptions{
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		NumKeys:  cfg.NumKeys,
	}

	switch cfg.KeyStorageMode {
	case KeyStorageFile:
		km, err := jwtx.NewFileKeyManager(cfg.KeyFile, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to load signing key from %s: %w", cfg.KeyFile, err)
		}
		logger.Info("signing key loaded",
			"algorithm", km.Algorithm(),
			"path", cfg.KeyFile,
			"issuer", cfg.Issuer,
		)
		return km, nil

	default:
		km, err := jwtx.NewEphemeralKeyManager(opts)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize ephemeral key manager: %w", err)
		}
		logger.Info("generated ephemeral signing keys",
			"algorithm", km.Algorithm(),
			"num_keys", km.NumSigners(),
			"issuer", cfg.Issuer,
		)
		logger.Warn("access tokens issued before this start are no longer valid")
		return km, nil
	}
}
