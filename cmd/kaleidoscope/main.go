package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/aussiebroadwan/kaleidoscope/internal/kaleidoscope/app"
)

func main() {
	cmd := &cli.Command{
		Name:    "kaleidoscope",
		Usage:   "Accounts, token sessions and cross-platform music lookup",
		Version: app.BuildVersion,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars(app.ConfigFileEnv),
			},
		},
		Before: exportConfigPath,
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP server (default)",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply database migrations and exit",
				Action: migrate,
			},
			{
				Name:   "purge-sessions",
				Usage:  "Delete expired refresh sessions once and exit",
				Action: purgeSessions,
			},
			{
				Name:  "version",
				Usage: "Print the version",
				Action: func(_ context.Context, cmd *cli.Command) error {
					_, err := fmt.Fprintln(cmd.Root().Writer, app.BuildVersion)
					return err
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatalf("kaleidoscope: %v", err)
	}
}

// exportConfigPath hands --config to app.LoadConfig, which reads the path
// from the environment.
func exportConfigPath(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		if err := os.Setenv(app.ConfigFileEnv, path); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func serve(_ context.Context, _ *cli.Command) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run()
}

func migrate(_ context.Context, _ *cli.Command) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	return app.Migrate(cfg, app.NewLogger(cfg))
}

func purgeSessions(ctx context.Context, _ *cli.Command) error {
	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg)
	removed, err := app.PurgeSessions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("expired sessions purged", "removed", removed)
	return nil
}
