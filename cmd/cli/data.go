package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/dvloznov/ledger-core/internal/app"
	"github.com/dvloznov/ledger-core/internal/gcs"
	infraBQ "github.com/dvloznov/ledger-core/internal/infra/bigquery"
	"github.com/dvloznov/ledger-core/internal/infra/memory"
	"github.com/dvloznov/ledger-core/internal/logger"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Write profiles from the configured source to a JSON snapshot",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: "-", Usage: "local path, gs:// URI or - for stdout"},
			&cli.StringSliceFlag{Name: "profiles", Usage: "profiles to export (default: --profile)"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)

			provider, err := app.Open(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer provider.Close()

			profiles := cmd.StringSlice("profiles")
			if len(profiles) == 0 {
				profiles = []string{cfg.Profile}
			}

			store := memory.NewStore()
			for _, name := range profiles {
				accounts, err := provider.ListAccounts(ctx, name)
				if err != nil {
					return err
				}
				txs, err := provider.ListTransactions(ctx, name, nil)
				if err != nil {
					return err
				}
				templates, err := provider.ListTemplates(ctx, name)
				if err != nil {
					return err
				}
				store.Put(name, memory.Profile{Accounts: accounts, Transactions: txs, Templates: templates})
				log.Info().Str("profile", name).Int("accounts", len(accounts)).Int("transactions", len(txs)).Msg("Exported profile")
			}

			var buf bytes.Buffer
			if err := store.Save(&buf); err != nil {
				return err
			}

			out := cmd.String("out")
			if out == "-" {
				_, err := buf.WriteTo(stdout(cmd))
				return err
			}

			var storage gcs.Storage
			if gcs.IsURI(out) {
				c, err := gcs.NewClient(ctx)
				if err != nil {
					return err
				}
				defer c.Close()
				storage = c
			}
			if err := gcs.WriteDest(ctx, storage, out, &buf); err != nil {
				return err
			}
			log.Info().Str("out", out).Msg("Snapshot written")
			return nil
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Replace BigQuery profiles with the contents of a JSON snapshot",
		ArgsUsage: "<snapshot>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			src := cmd.Args().First()
			if src == "" {
				return errors.New("snapshot path or gs:// URI is required")
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			log := newLogger(cfg)
			ctx = logger.WithContext(ctx, log)

			var storage gcs.Storage
			if gcs.IsURI(src) {
				c, err := gcs.NewClient(ctx)
				if err != nil {
					return err
				}
				defer c.Close()
				storage = c
			}
			data, err := gcs.ReadSource(ctx, storage, src)
			if err != nil {
				return err
			}
			store, err := memory.Load(bytes.NewReader(data))
			if err != nil {
				return err
			}

			repo, err := openRepository(ctx, cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.EnsureTables(ctx); err != nil {
				return err
			}

			for _, name := range store.Profiles() {
				accounts, err := store.ListAccounts(ctx, name)
				if err != nil {
					return err
				}
				txs, err := store.ListTransactions(ctx, name, nil)
				if err != nil {
					return err
				}
				templates, err := store.ListTemplates(ctx, name)
				if err != nil {
					return err
				}
				if err := repo.ReplaceProfile(ctx, name, accounts, txs, templates); err != nil {
					return fmt.Errorf("importing profile %q: %w", name, err)
				}
				log.Info().Str("profile", name).Int("accounts", len(accounts)).Int("transactions", len(txs)).Int("templates", len(templates)).Msg("Imported profile")
			}
			return nil
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Create the BigQuery ledger tables if they do not exist",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			repo, err := openRepository(ctx, cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.EnsureTables(ctx); err != nil {
				return err
			}
			fmt.Fprintln(stdout(cmd), "Tables are up to date.")
			return nil
		},
	}
}

func openRepository(ctx context.Context, cmd *cli.Command) (*infraBQ.Repository, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if cfg.BigQueryProject == "" {
		return nil, errors.New("BigQuery project is required (--project or LEDGER_BQ_PROJECT)")
	}
	return infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
}
