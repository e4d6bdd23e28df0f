package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8008, cfg.Server.Port)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	require.Equal(t, ":8008", cfg.Addr())
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("server:\n  port: 9090\ndatabase:\n  driver: postgres\n  dsn: host=db\nscheduler:\n  enabled: false\n")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	t.Setenv("DELEGATION_SERVER_PORT", "9191")
	t.Setenv("DELEGATION_AUTH_TOKEN_TTL", "2h")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "host=db", cfg.Database.DSN)
	require.False(t, cfg.Scheduler.Enabled)
	require.Equal(t, 2*time.Hour, cfg.Auth.TokenTTL)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Database.Driver = "oracle"
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Server.Port = 0
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Auth.JWTSecret = ""
	require.Error(t, cfg.Validate())
}
