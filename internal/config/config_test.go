package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "s3cret",
		"public_base_url": "https://docs.example.com",
		"database": {"host": "localhost", "user": "docshare", "dbname": "docshare"},
		"file_store": {"type": "local", "data": {"dir": "/tmp/docshare"}}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 72, cfg.JWTTTLHours)
	require.Equal(t, "postgres", cfg.ShareStore.Type)
	require.Equal(t, 365, cfg.Share.MaxExpiresDays)
	require.Equal(t, 5, cfg.Share.LockoutThreshold)
	require.Equal(t, 900, cfg.Share.LockoutWindowSeconds)
	require.Equal(t, "memory", cfg.Throttle.Type)
	require.Equal(t, 90, cfg.AccessLog.KeepDays)
	require.Equal(t, "0 3 * * *", cfg.AccessLog.CleanupCron)
	require.Equal(t, "disable", cfg.Database.SSLMode)
	require.Equal(t, "/tmp/docshare", cfg.FileStore.Data["dir"])
}

func TestLoadKeepsExplicitZero(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "s3cret",
		"public_base_url": "https://docs.example.com",
		"database": {"host": "localhost"},
		"share": {"lockout_threshold": 0},
		"access_log": {"keep_days": 0}
	}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, cfg.Share.LockoutThreshold)
	require.Equal(t, 900, cfg.Share.LockoutWindowSeconds)
	require.Equal(t, 0, cfg.AccessLog.KeepDays)
	require.Equal(t, 365, cfg.Share.MaxExpiresDays)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `{
		"port": 8080,
		"jwt_secret": "from-file",
		"public_base_url": "https://docs.example.com",
		"database": {"dsn": "postgres://localhost/docshare"}
	}`)
	t.Setenv("DOCSHARE_JWT_SECRET", "from-env")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.JWTSecret)
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", `{"port": 1, "public_base_url": "https://x.io", "database": {"host": "db"}}`},
		{"missing database", `{"port": 1, "jwt_secret": "s", "public_base_url": "https://x.io"}`},
		{"bad store", `{"port": 1, "jwt_secret": "s", "public_base_url": "https://x.io", "database": {"host": "db"}, "share_store": {"type": "mysql"}}`},
		{"badger without dir", `{"port": 1, "jwt_secret": "s", "public_base_url": "https://x.io", "database": {"host": "db"}, "share_store": {"type": "badger"}}`},
		{"redis without addr", `{"port": 1, "jwt_secret": "s", "public_base_url": "https://x.io", "database": {"host": "db"}, "throttle": {"type": "redis"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
