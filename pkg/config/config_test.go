package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	cfg, err := LoadWithPath(writeEnv(t, "APP_NAME=storefront-test\n"))
	require.NoError(t, err)

	assert.Equal(t, "storefront-test", cfg.App.Name)
	assert.Equal(t, 4200, cfg.Server.Port)
	assert.Equal(t, "https://localhost:7022", cfg.API.BaseURL)
	assert.Equal(t, SessionBackendMemory, cfg.Session.Backend)
	assert.Equal(t, "sf_session", cfg.Session.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, time.Hour, cfg.MockAPI.TokenTTL)
	assert.Equal(t, []string{"http://localhost:4200"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithPath_FileValues(t *testing.T) {
	cfg, err := LoadWithPath(writeEnv(t, `
SERVER_PORT=8088
API_BASE_URL=http://api.internal:7022/
SERVER_ALLOWED_ORIGINS="http://a.example, http://b.example"
SESSION_BACKEND=REDIS
REDIS_ENABLED=true
REDIS_HOST=cache
`))
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "http://api.internal:7022", cfg.API.BaseURL)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, SessionBackendRedis, cfg.Session.Backend)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestLoadWithPath_EnvOverridesFile(t *testing.T) {
	t.Setenv("SERVER_PORT", "9099")
	cfg, err := LoadWithPath(writeEnv(t, "SERVER_PORT=8088\n"))
	require.NoError(t, err)
	assert.Equal(t, 9099, cfg.Server.Port)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "absent.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Name: "storefront", Environment: "development"},
			Server:  ServerConfig{Port: 4200},
			API:     APIConfig{BaseURL: "http://localhost:7022"},
			Session: SessionConfig{Backend: SessionBackendMemory, CookieName: "sf_session"},
			MockAPI: MockAPIConfig{JWTSecret: defaultMockJWTSecret},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"valid", func(c *Config) {}, false},
		{"no app name", func(c *Config) { c.App.Name = "" }, true},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, true},
		{"no api url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"unknown backend", func(c *Config) { c.Session.Backend = "memcached" }, true},
		{"redis backend without redis", func(c *Config) { c.Session.Backend = SessionBackendRedis }, true},
		{"redis backend with redis", func(c *Config) {
			c.Session.Backend = SessionBackendRedis
			c.Redis.Enabled = true
		}, false},
		{"no cookie name", func(c *Config) { c.Session.CookieName = "" }, true},
		{"embedded mock with default secret in production", func(c *Config) {
			c.App.Environment = "production"
			c.MockAPI.Embedded = true
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
