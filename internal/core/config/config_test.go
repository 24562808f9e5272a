// # internal/core/config/config_test.go
package config

import (
	"ksymtypes/internal/core/errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ksymtypes.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
version = 1

[scan]
extension = ".symtypes"
exclude_dirs = [".git", "tools"]
exclude_files = ["*.mod.symtypes"]

[parser]
opaque_kinds = ["basic", "s"]

[workers]
jobs = 8

[consolidate]
output = "kernel.symtypes"
strict = true

[compare]
format = "tsv"
color = "never"

[history]
enabled = true
path = "runs.db"
project = "sle16"
busy_timeout = "5s"

[metrics]
textfile = "/var/lib/node_exporter/ksymtypes.prom"

[tracing]
endpoint = "localhost:4317"
insecure = true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".git", "tools"}, cfg.Scan.ExcludeDirs)
	assert.Equal(t, []string{"*.mod.symtypes"}, cfg.Scan.ExcludeFiles)
	assert.Equal(t, []string{"basic", "s"}, cfg.Parser.OpaqueKinds)
	assert.Equal(t, 8, cfg.Workers.Jobs)
	assert.Equal(t, "kernel.symtypes", cfg.Consolidate.Output)
	assert.True(t, cfg.Consolidate.Strict)
	assert.True(t, cfg.Consolidate.KeepGoing, "keep_going defaults to true")
	assert.Equal(t, "tsv", cfg.Compare.Format)
	assert.Equal(t, "never", cfg.Compare.Color)
	assert.Equal(t, 3, cfg.Compare.Context)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "runs.db", cfg.History.Path)
	assert.Equal(t, "sle16", cfg.History.Project)
	assert.Equal(t, 5*time.Second, cfg.History.BusyTimeout)
	assert.Equal(t, "/var/lib/node_exporter/ksymtypes.prom", cfg.Metrics.Textfile)
	assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
	assert.True(t, cfg.Tracing.Insecure)
	assert.Equal(t, "ksymtypes", cfg.Tracing.ServiceName)
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, ".symtypes", cfg.Scan.Extension)
	assert.Equal(t, []string{"basic"}, cfg.Parser.OpaqueKinds)
	assert.Equal(t, "text", cfg.Compare.Format)
	assert.Equal(t, "auto", cfg.Compare.Color)
	assert.True(t, cfg.Consolidate.KeepGoing)
	assert.False(t, cfg.History.Enabled)
	require.NoError(t, Validate(cfg))
}

func TestLoadInvalid(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "Version", content: "version = 3\n"},
		{name: "Extension", content: "[scan]\nextension = \"symtypes\"\n"},
		{name: "Glob", content: "[scan]\nexclude_dirs = [\"[abc\"]\n"},
		{name: "OpaqueKind", content: "[parser]\nopaque_kinds = [\"class\"]\n"},
		{name: "Jobs", content: "[workers]\njobs = -1\n"},
		{name: "Format", content: "[compare]\nformat = \"json\"\n"},
		{name: "Color", content: "[compare]\ncolor = \"sometimes\"\n"},
		{name: "UnknownKey", content: "[compare]\nstyle = \"text\"\n"},
		{name: "Syntax", content: "[compare\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.CodeValidationError), err.Error())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeIO))
}

func TestResolve(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Compare.Format)

	path := writeConfig(t, "[compare]\nformat = \"markdown\"\n")
	t.Setenv(EnvConfigPath, path)
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "markdown", cfg.Compare.Format)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("KSYMTYPES_WORKERS_JOBS", "3")
	t.Setenv("KSYMTYPES_SCAN_EXCLUDE_FILES", "a.symtypes, b.symtypes")
	t.Setenv("KSYMTYPES_HISTORY_ENABLED", "true")
	t.Setenv("KSYMTYPES_COMPARE_COLOR", "always")

	cfg, err := Load(writeConfig(t, "[workers]\njobs = 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Workers.Jobs)
	assert.Equal(t, []string{"a.symtypes", "b.symtypes"}, cfg.Scan.ExcludeFiles)
	assert.True(t, cfg.History.Enabled)
	assert.Equal(t, "always", cfg.Compare.Color)
}
