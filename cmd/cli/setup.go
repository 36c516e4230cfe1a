package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/dvloznov/ledger-core/internal/app"
	"github.com/dvloznov/ledger-core/internal/config"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
	"github.com/dvloznov/ledger-core/internal/logger"
)

// loadConfig reads the environment and applies the global flags on top.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.String("env"))
	if err != nil {
		return nil, err
	}

	override := func(flag string, dst *string) {
		if cmd.IsSet(flag) {
			*dst = cmd.String(flag)
		}
	}
	override("snapshot", &cfg.Snapshot)
	override("project", &cfg.BigQueryProject)
	override("dataset", &cfg.BigQueryDataset)
	override("templates", &cfg.Templates)
	override("profile", &cfg.Profile)
	override("log-level", &cfg.LogLevel)

	return cfg, nil
}

// newLogger logs to stderr so stdout stays clean for output.
func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.NewWithLevel(cfg.LogLevel)
}

// withService runs fn with a service over the configured provider.
func withService(ctx context.Context, cmd *cli.Command, fn func(ctx context.Context, cfg *config.Config, svc *ledgerview.Service) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx = logger.WithContext(ctx, log)

	svc, provider, err := app.NewService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer provider.Close()
	defer svc.Close(context.Background())

	return fn(ctx, cfg, svc)
}

// stdout is where command output goes; tests swap the root writer.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	return nil
}
