// Package app builds the ledger provider and service from configuration.
// Both commands share it.
package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/ledger-core/internal/config"
	"github.com/dvloznov/ledger-core/internal/domain"
	"github.com/dvloznov/ledger-core/internal/gcs"
	infraBQ "github.com/dvloznov/ledger-core/internal/infra/bigquery"
	"github.com/dvloznov/ledger-core/internal/infra/memory"
	"github.com/dvloznov/ledger-core/internal/ledgerview"
)

// Provider is an open data source. Close releases its clients.
type Provider struct {
	ledgerview.Provider
	closers []func() error
}

// Close closes every client opened for the provider.
func (p *Provider) Close() error {
	var first error
	for _, c := range p.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open picks the data source from cfg: a JSON snapshot when set, BigQuery
// otherwise. A templates file replaces the source's templates.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("Open: %w", err)
	}

	p := &Provider{}

	var storage gcs.Storage
	if gcs.IsURI(cfg.Snapshot) || gcs.IsURI(cfg.Templates) {
		c, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("Open: %w", err)
		}
		p.closers = append(p.closers, c.Close)
		storage = c
	}

	if cfg.Snapshot != "" {
		data, err := gcs.ReadSource(ctx, storage, cfg.Snapshot)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("Open: reading snapshot: %w", err)
		}
		store, err := memory.Load(bytes.NewReader(data))
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("snapshot", gcs.Filename(cfg.Snapshot)).Strs("profiles", store.Profiles()).Msg("Loaded ledger snapshot")
		p.Provider = store
	} else {
		repo, err := infraBQ.NewRepository(ctx, cfg.BigQueryProject, cfg.BigQueryDataset)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Str("project", cfg.BigQueryProject).Str("dataset", cfg.BigQueryDataset).Msg("Using BigQuery ledger")
		p.closers = append(p.closers, repo.Close)
		p.Provider = repo
	}

	if cfg.Templates != "" {
		templates, err := readTemplates(ctx, storage, cfg.Templates)
		if err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("Open: %w", err)
		}
		log.Info().Int("templates", len(templates)).Msg("Using templates file")
		p.Provider = WithTemplates(p.Provider, templates)
	}

	return p, nil
}

func readTemplates(ctx context.Context, s gcs.Storage, src string) ([]domain.Template, error) {
	data, err := gcs.ReadSource(ctx, s, src)
	if err != nil {
		return nil, fmt.Errorf("reading templates: %w", err)
	}
	var templates []domain.Template
	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("decoding templates: %w", err)
	}
	return templates, nil
}

// templateOverride serves a fixed template list for every profile.
type templateOverride struct {
	ledgerview.Provider
	templates []domain.Template
}

// WithTemplates returns p with its templates replaced by templates.
func WithTemplates(p ledgerview.Provider, templates []domain.Template) ledgerview.Provider {
	return &templateOverride{Provider: p, templates: templates}
}

func (t *templateOverride) ListTemplates(ctx context.Context, profile string) ([]domain.Template, error) {
	out := make([]domain.Template, len(t.templates))
	copy(out, t.templates)
	return out, nil
}

// NewService opens the configured provider and wraps it in a service.
func NewService(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ledgerview.Service, *Provider, error) {
	p, err := Open(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return ledgerview.NewService(p, log), p, nil
}
