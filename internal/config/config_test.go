package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{
		"FORM_HTTP_HOST", "FORM_HTTP_PORT", "CORS_ORIGINS", "PREDICTOR_API_URL", "VITE_API_URL",
		"PREDICTOR_TIMEOUT_SEC", "PREDICTOR_RATE_PER_SEC", "CATALOG_PATH", "SESSION_MAX",
		"SESSION_TTL_MIN", "DISCORD_WEBHOOK_URL", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("HISTORY_DSN", "")
	os.Unsetenv("HISTORY_DSN")

	cfg := Load()
	assert.Equal(t, "0.0.0.0", cfg.HTTPHost)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "http://127.0.0.1:8000", cfg.PredictorURL)
	assert.Equal(t, 30*time.Second, cfg.PredictorTimeout)
	assert.InDelta(t, 5.0, cfg.PredictorRate, 1e-9)
	assert.Equal(t, 1024, cfg.SessionMax)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "data/predictions.db", cfg.HistoryDSN)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.CORSOrigins)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FORM_HTTP_PORT", "9090")
	t.Setenv("PREDICTOR_API_URL", "")
	t.Setenv("VITE_API_URL", "http://model:8000")
	t.Setenv("PREDICTOR_TIMEOUT_SEC", "5")
	t.Setenv("PREDICTOR_RATE_PER_SEC", "0.5")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("HISTORY_DSN", "")
	t.Setenv("SESSION_MAX", "not-a-number")

	cfg := Load()
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "http://model:8000", cfg.PredictorURL)
	assert.Equal(t, 5*time.Second, cfg.PredictorTimeout)
	assert.InDelta(t, 0.5, cfg.PredictorRate, 1e-9)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Empty(t, cfg.HistoryDSN, "set-but-empty disables history")
	assert.Equal(t, 1024, cfg.SessionMax, "unparsable values fall back")
}

func TestLoadCatalogFileDefault(t *testing.T) {
	cf, err := LoadCatalogFile("")
	require.NoError(t, err)
	assert.Len(t, cf.Teams, 10)
	assert.Len(t, cf.Venues, 10)
	assert.GreaterOrEqual(t, len(cf.Players), 22)
	assert.Equal(t, "Chennai Super Kings", cf.Teams[0])
}

func TestLoadCatalogFileFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("teams: [A, B]\nvenues: [V]\nplayers: [P1, P2]\n"), 0o644))

	cf, err := LoadCatalogFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, cf.Teams)
	assert.Equal(t, []string{"V"}, cf.Venues)
	assert.Equal(t, []string{"P1", "P2"}, cf.Players)

	_, err = LoadCatalogFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read catalog")
}

func TestParseCatalogRejectsIncompleteFiles(t *testing.T) {
	_, err := ParseCatalog([]byte("teams: [A]\nvenues: [V]\n"))
	assert.ErrorContains(t, err, "all required")

	_, err = ParseCatalog([]byte("teams: [A\n"))
	assert.ErrorContains(t, err, "parse catalog")
}
