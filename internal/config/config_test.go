package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000/api/", cfg.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout())
	assert.Equal(t, "My group", cfg.DefaultGroupName)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
base_url: https://expenses.example.com/api/
timeout_seconds: 3
log_level: debug
metrics_addr: ":9188"
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://expenses.example.com/api/", cfg.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Timeout())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9188", cfg.MetricsAddr)
	// Unset keys keep their defaults.
	assert.Equal(t, "My group", cfg.DefaultGroupName)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: [broken"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPLITMATE_BASE_URL", "http://10.0.0.5:8000/api/")
	t.Setenv("SPLITMATE_TIMEOUT_SECONDS", "7")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:8000/api/", cfg.BaseURL)
	assert.Equal(t, 7*time.Second, cfg.Timeout())
}

func TestTimeoutFallback(t *testing.T) {
	cfg := Config{TimeoutSeconds: 0}
	assert.Equal(t, 10*time.Second, cfg.Timeout())
}
