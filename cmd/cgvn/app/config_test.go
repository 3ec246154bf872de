package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/cgvn/pkg/errors"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cgvn.yaml")
	writeFile(t, path, `
base_dir: /data
governance:
  path: gov.csv
  header_row: 1
sentinels: ["n/a"]
output:
  path: out.csv
`)
	t.Setenv("CGVN_OUTPUT_POSTGRES_TABLE", "analytics.governance_equity")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.ConfigFile)
	assert.Equal(t, "debug", cfg.EnvLogLevel)
	assert.Empty(t, cfg.LogLevel)

	p := cfg.Pipeline
	assert.Equal(t, "/data", p.BaseDir)
	assert.Equal(t, "gov.csv", p.Governance.Path)
	assert.Equal(t, 1, p.Governance.HeaderRow)
	assert.Equal(t, []string{"n/a"}, p.Sentinels)
	assert.Equal(t, "out.csv", p.Output.Path)
	assert.Equal(t, "analytics.governance_equity", p.Output.Postgres.Table)
	assert.True(t, p.Equity.RawValues)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsConfigError(err))
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cgvn.yaml")
	writeFile(t, path, "registry:\n  header_row: -2\n")

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "header_row")
}

func TestUpdateFromFlags(t *testing.T) {
	cfg := &Config{Format: "table", LogLevel: "warn"}

	cfg.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, cfg.Verbose)
	assert.True(t, cfg.NoColor)
	assert.Equal(t, "table", cfg.Format)
	assert.Equal(t, "warn", cfg.LogLevel)

	cfg.UpdateFromFlags(false, true, false, "json", "error")
	assert.False(t, cfg.Verbose)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "error", cfg.LogLevel)
}
