package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/ledger-core/internal/config"
)

const snapshot = `{"profiles": {"default": {
  "accounts": [{"id": 1, "name": "Assets:Cash", "balances": [{"currency": "EUR", "value": 5}]}],
  "transactions": [],
  "templates": [{"id": 1, "name": "stored", "pattern": "x"}]
}}}`

const templates = `[{"id": 9, "name": "from file", "pattern": "ATM (\\d+)", "year": {"value": 2026}}]`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestOpen_Snapshot(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot = writeFile(t, "ledger.json", snapshot)

	p, err := Open(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer p.Close()

	accounts, err := p.ListAccounts(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Assets", accounts[0].ParentName)

	tpls, err := p.ListTemplates(context.Background(), "default")
	require.NoError(t, err)
	require.Len(t, tpls, 1)
	assert.Equal(t, "stored", tpls[0].Name)
}

func TestOpen_TemplatesOverride(t *testing.T) {
	cfg := config.Default()
	cfg.Snapshot = writeFile(t, "ledger.json", snapshot)
	cfg.Templates = writeFile(t, "templates.json", templates)

	svc, p, err := NewService(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	defer p.Close()

	draft, used, err := svc.ApplyTemplates(context.Background(), "default", "ATM 20")
	require.NoError(t, err)
	require.NotNil(t, draft)
	assert.Equal(t, int64(9), used.ID)
}

func TestOpen_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := Open(ctx, config.Default(), zerolog.Nop())
	assert.ErrorContains(t, err, "no data source")

	cfg := config.Default()
	cfg.Snapshot = filepath.Join(t.TempDir(), "missing.json")
	_, err = Open(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "reading snapshot")

	cfg.Snapshot = writeFile(t, "bad.json", "{")
	_, err = Open(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "decoding snapshot")

	cfg.Snapshot = writeFile(t, "ledger.json", snapshot)
	cfg.Templates = writeFile(t, "templates.json", "not json")
	_, err = Open(ctx, cfg, zerolog.Nop())
	assert.ErrorContains(t, err, "decoding templates")
}
