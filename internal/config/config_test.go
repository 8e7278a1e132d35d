package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"weddingsite/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "mercadopago", cfg.PaymentProvider)
	require.Equal(t, 12*time.Hour, cfg.JWTTTL)
	require.Equal(t, uint(1600), cfg.ImageMaxWidth)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "wedding.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"9000\"\ndb_dsn: file.db\njwt_ttl: 2h\n"), 0o600))

	t.Setenv("DB_DSN", "env.db")
	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.Equal(t, "9000", cfg.Port)
	require.Equal(t, "env.db", cfg.DBDSN)
	require.Equal(t, 2*time.Hour, cfg.JWTTTL)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PAYMENT_PROVIDER", "paypal")
	_, err := config.Load("")
	require.Error(t, err)
}

func TestS3RequiresBucket(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "s3")
	_, err := config.Load("")
	require.Error(t, err)
}
