package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsAndEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVDESK_AUTH_JWT_SECRET", "0123456789abcdef0123")
	t.Setenv("DEVDESK_SERVER_PORT", "9090")
	t.Setenv("DEVDESK_SERVER_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, []string{"user:email", "repo"}, cfg.GitHub.Scopes)
	assert.Equal(t, 10*time.Minute, cfg.GitHub.StateTTL)
	assert.Equal(t, "devdesk", cfg.Auth.Issuer)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.Mail.Enabled())
	assert.False(t, cfg.GitHub.Enabled())
}

func TestLoad_ShortSecretRejected(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVDESK_AUTH_JWT_SECRET", "short")

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "devdesk.yaml")
	yaml := `
server:
  port: 7000
  frontend_url: https://app.example.com
auth:
  jwt_secret: file-secret-long-enough
  access_ttl: 30m
redis:
  addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "https://app.example.com", cfg.Server.FrontendURL)
	assert.Equal(t, 30*time.Minute, cfg.Auth.AccessTTL)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DEVDESK_AUTH_JWT_SECRET", "0123456789abcdef0123")

	_, err := Load("does-not-exist.yaml")
	assert.Error(t, err)
}

func TestValidate_MailNeedsFrom(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{Port: 80, FrontendURL: "http://x"},
		Auth:   AuthConfig{JWTSecret: "0123456789abcdef"},
		Mail:   MailConfig{Host: "smtp.example.com"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Mail.From = "noreply@example.com"
	assert.NoError(t, cfg.Validate())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores it when the test finishes.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
