package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err) // Explicit path must exist.

	cfg, err = LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDisplayThreshold, cfg.Display.Threshold)
	assert.Equal(t, DefaultLocale, cfg.Display.Locale)
	assert.Equal(t, DefaultServiceURL, cfg.Service.URL)
	assert.Equal(t, 30*time.Second, cfg.ServiceTimeout())
	assert.Equal(t, DefaultMetricsListen, cfg.Metrics.Listen)
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "math2visual.yaml")
	content := "display:\n  threshold: 12\n  locale: en-GB\nservice:\n  url: http://backend:9017\n  timeout: 5s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Display.Threshold)
	assert.Equal(t, "en-GB", cfg.Display.Locale)
	assert.Equal(t, "http://backend:9017", cfg.Service.URL)
	assert.Equal(t, 5*time.Second, cfg.ServiceTimeout())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("MATH2VISUAL_DISPLAY_THRESHOLD", "7")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Display.Threshold)
}

func TestValidate_Threshold(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.Display.Threshold = 0

	require.ErrorIs(t, cfg.Validate(), ErrInvalidThreshold)
}

func TestValidate_Locale(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.Display.Locale = ""

	require.ErrorIs(t, cfg.Validate(), ErrInvalidLocale)
}

func TestValidate_ServiceURL(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.Service.URL = "not a url"

	require.ErrorIs(t, cfg.Validate(), ErrInvalidServiceURL)

	cfg.Service.URL = "ftp://backend"

	require.ErrorIs(t, cfg.Validate(), ErrInvalidServiceURL)
}

func TestValidate_Timeout(t *testing.T) {
	t.Parallel()

	cfg := validTestConfig()
	cfg.Service.Timeout = "-1s"

	require.ErrorIs(t, cfg.Validate(), ErrInvalidTimeout)

	cfg.Service.Timeout = "soon"

	require.ErrorIs(t, cfg.Validate(), ErrInvalidTimeout)
}

func validTestConfig() *Config {
	return &Config{
		Display: DisplayConfig{Threshold: DefaultDisplayThreshold, Locale: DefaultLocale},
		Service: ServiceConfig{URL: DefaultServiceURL, Timeout: DefaultServiceTimeout},
		Metrics: MetricsConfig{Listen: DefaultMetricsListen},
	}
}