package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromLookup(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults",
			env:  map[string]string{},
			want: Default(),
		},
		{
			name: "overrides",
			env: map[string]string{
				"LEDGER_BQ_PROJECT":         "acme-finance",
				"LEDGER_BQ_DATASET":         "books",
				"LEDGER_PROFILE":            "household",
				"LEDGER_SHOW_ZERO_BALANCES": "true",
				"LEDGER_SNAPSHOT":           "gs://acme/ledger.json",
				"LEDGER_TEMPLATES":          "templates.json",
				"PORT":                      "9090",
				"LOG_LEVEL":                 "debug",
			},
			want: &Config{
				BigQueryProject:  "acme-finance",
				BigQueryDataset:  "books",
				Profile:          "household",
				ShowZeroBalances: true,
				Snapshot:         "gs://acme/ledger.json",
				Templates:        "templates.json",
				Port:             "9090",
				LogLevel:         "debug",
			},
		},
		{
			name: "empty values keep defaults",
			env:  map[string]string{"PORT": "", "LEDGER_PROFILE": ""},
			want: Default(),
		},
		{
			name:    "bad bool",
			env:     map[string]string{"LEDGER_SHOW_ZERO_BALANCES": "sometimes"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromLookup(lookupFrom(tt.env))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEDGER_PROFILE=from-file\nLOG_LEVEL=warn\n"), 0o600))

	t.Setenv("LEDGER_PROFILE", "")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LEDGER_PROFILE")
	os.Unsetenv("LOG_LEVEL")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Profile)
	assert.Equal(t, "warn", cfg.LogLevel)

	t.Setenv("LEDGER_PROFILE", "from-env")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Profile)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	assert.NoError(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, Default().Validate())

	cfg := Default()
	cfg.Snapshot = "ledger.json"
	assert.NoError(t, cfg.Validate())
}
