package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FLOWCHART_CONFIG_PATH", path)
}

func TestLoadConfigFromFile(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	writeConfig(t, "listen: \":8080\"\ndatabase_url: postgres://localhost/flowchart\nlog_level: debug\n")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", config.Listen)
	assert.Equal(t, "postgres://localhost/flowchart", config.DatabaseURL)
	assert.Equal(t, slog.LevelDebug, config.Level())
}

func TestLoadConfigEnvOverride(t *testing.T) {
	writeConfig(t, "database_url: postgres://file/db\n")
	t.Setenv("DATABASE_URL", "postgres://env/db")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", config.DatabaseURL)
	assert.Equal(t, ":3000", config.Listen)
	assert.Equal(t, slog.LevelInfo, config.Level())
}

func TestLoadConfigMissingFile(t *testing.T) {
	t.Setenv("FLOWCHART_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))
	t.Setenv("DATABASE_URL", "postgres://env/db")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/db", config.DatabaseURL)
}

func TestLoadConfigRequiresDatabase(t *testing.T) {
	t.Setenv("FLOWCHART_CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yml"))
	t.Setenv("DATABASE_URL", "")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestLoadConfigBadYAML(t *testing.T) {
	writeConfig(t, "listen: [\n")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "unable to parse configuration file")
}
