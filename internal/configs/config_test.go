package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromEnvFile(t *testing.T) {
	envFile := filepath.Join(t.TempDir(), "test.env")
	content := "BACKEND_URL=http://127.0.0.1:9000/\n" +
		"SEARCH_PAGE_LIMIT=10\n" +
		"HTTP_TIMEOUT=5s\n" +
		"ALLOWED_ORIGINS=http://a.test, http://b.test\n" +
		"STORE_PATH=/tmp/rf.db\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	for _, k := range []string{"BACKEND_URL", "SEARCH_PAGE_LIMIT", "HTTP_TIMEOUT", "ALLOWED_ORIGINS", "STORE_PATH"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://127.0.0.1:9000", cfg.BackendURL)
	assert.Equal(t, "127.0.0.1:9000", cfg.BackendHost())
	assert.Equal(t, 10, cfg.Search.PageLimit)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Web.AllowedOrigins)
	assert.Equal(t, "/tmp/rf.db", cfg.StorePath)
	assert.False(t, cfg.FluentBit.Enabled)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BACKEND_URL", "http://localhost:8000")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8000", cfg.BackendHost())
	assert.Equal(t, 20, cfg.Search.PageLimit)
	assert.Equal(t, "https://provinces.open-api.vn", cfg.GeographyURL)
}

func TestLoadConfigRejectsBadLimit(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SEARCH_PAGE_LIMIT", "500")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestFluentDisabledWithoutHost(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.False(t, cfg.FluentBit.Enabled)
}
