package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
server:
  port: 9090
auth:
  jwt_secret: "a-very-long-test-secret"
  token_ttl: 1h
catalog:
  path: "catalog.yaml"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "voucher-flow", cfg.Auth.Issuer)
	assert.Equal(t, "data/vouchers.db", cfg.Database.Path)
	assert.True(t, cfg.Seed.Users)

	cc := cfg.ToContainerConfig()
	assert.Equal(t, "catalog.yaml", cc.CatalogPath)
	assert.Equal(t, "a-very-long-test-secret", cc.Auth.Secret)
	assert.Equal(t, 9090, cc.Server.Port)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("VOUCHER_JWT_SECRET=secret-from-dotenv-file\n"), 0o600))
	t.Setenv("VOUCHER_PORT", "7070")
	t.Setenv("VOUCHER_SEED_USERS", "false")
	t.Cleanup(func() { _ = os.Unsetenv("VOUCHER_JWT_SECRET") })

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "secret-from-dotenv-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.False(t, cfg.Seed.Users)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Database: DatabaseConfig{Path: "x.db"},
			Logger:   LoggerConfig{Format: "json"},
			Auth:     AuthConfig{JWTSecret: "0123456789abcdef", TokenTTL: time.Hour},
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port", func(c *Config) { c.Server.Port = 0 }},
		{"database path", func(c *Config) { c.Database.Path = "" }},
		{"short secret", func(c *Config) { c.Auth.JWTSecret = "short" }},
		{"ttl", func(c *Config) { c.Auth.TokenTTL = 0 }},
		{"log format", func(c *Config) { c.Logger.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
