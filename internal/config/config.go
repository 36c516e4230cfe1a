// Package config loads process configuration from the environment and an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds everything the commands need to build a ledger service.
type Config struct {
	// BigQueryProject selects the BigQuery provider when set.
	BigQueryProject string
	BigQueryDataset string

	// Profile is the ledger profile served by default.
	Profile          string
	ShowZeroBalances bool

	// Snapshot is a local path or gs:// URI of a JSON snapshot. It takes
	// precedence over BigQuery.
	Snapshot string
	// Templates optionally replaces the provider's templates with a JSON
	// list read from a local path or gs:// URI.
	Templates string

	Port     string
	LogLevel string
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		BigQueryDataset: "ledger",
		Profile:         "default",
		Port:            "8080",
		LogLevel:        "info",
	}
}

// Load reads files (".env" when none are given), then the process
// environment. Environment variables win over file values. Missing files
// are ignored.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}

	fileValues := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("Load: reading %s: %w", f, err)
		}
		for k, v := range values {
			fileValues[k] = v
		}
	}

	return FromLookup(func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileValues[key]
		return v, ok
	})
}

// FromLookup builds a Config from a variable lookup, starting from Default.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("LEDGER_BQ_PROJECT", &cfg.BigQueryProject)
	str("LEDGER_BQ_DATASET", &cfg.BigQueryDataset)
	str("LEDGER_PROFILE", &cfg.Profile)
	str("LEDGER_SNAPSHOT", &cfg.Snapshot)
	str("LEDGER_TEMPLATES", &cfg.Templates)
	str("PORT", &cfg.Port)
	str("LOG_LEVEL", &cfg.LogLevel)

	if v, ok := lookup("LEDGER_SHOW_ZERO_BALANCES"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("FromLookup: LEDGER_SHOW_ZERO_BALANCES: %w", err)
		}
		cfg.ShowZeroBalances = b
	}

	return cfg, nil
}

// Validate reports whether a data source is configured.
func (c *Config) Validate() error {
	if c.Snapshot == "" && c.BigQueryProject == "" {
		return errors.New("no data source: set LEDGER_SNAPSHOT or LEDGER_BQ_PROJECT")
	}
	return nil
}
