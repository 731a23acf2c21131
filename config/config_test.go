package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "HOST", "LEDGER_PATH", "DATABASE_URL", "DB_HOST", "WORKERS", "URL_CHECK_TIMEOUT", "OUTPUT_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, "historial_estado_productos.json", cfg.LedgerPath)
	assert.Equal(t, "paginas", cfg.OutputDir)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 5*time.Second, cfg.URLCheckTimeout)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", ":9090")
	t.Setenv("WORKERS", "8")
	t.Setenv("URL_CHECK_TIMEOUT", "2s")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "catalogo")
	t.Setenv("DB_NAME", "armazones")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 2*time.Second, cfg.URLCheckTimeout)
	assert.Equal(t, "host=localhost port=5432 user=catalogo password=secret dbname=armazones sslmode=disable", cfg.DatabaseURL)
}

func TestLoadRejectsInvalidWorkers(t *testing.T) {
	t.Setenv("WORKERS", "cero")
	_, err := Load()
	assert.Error(t, err)
}
