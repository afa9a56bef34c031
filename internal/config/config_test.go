package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-chatfront/internal/services/ai"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENV", "test")
	for _, k := range []string{"SERVER_PORT", "AUTH_PASSWORD", "JWT_SECRET_KEY", "AUTH_COOKIE_TTL", "DEFAULT_MODEL", "SYSTEM_PROMPT", "LOGIN_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.ServerPort, "explicitly empty values are kept")
	assert.Equal(t, 7*24*time.Hour, cfg.AuthCookieTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Len(t, cfg.JWTSecretKey, 64, "ephemeral key generated")
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("JWT_SECRET_KEY", "fixed")
	t.Setenv("AUTH_COOKIE_TTL", "1h")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("DEEPSEEK_API_KEY", "sk-ds")
	t.Setenv("DEFAULT_MODEL", "deepseek-chat")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, "fixed", cfg.JWTSecretKey)
	assert.Equal(t, time.Hour, cfg.AuthCookieTTL)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)

	aiCfg := cfg.AIConfig()
	assert.Equal(t, "sk-ds", aiCfg.Providers[ai.ProviderDeepSeek].APIKey)
	assert.Equal(t, "https://api.deepseek.com/", aiCfg.Providers[ai.ProviderDeepSeek].BaseURL)
	assert.Equal(t, "deepseek-chat", aiCfg.DefaultModel)
	assert.NoError(t, aiCfg.Validate())
}

func TestLoad_ProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("AUTH_PASSWORD", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH_PASSWORD")
	assert.Contains(t, err.Error(), "JWT_SECRET_KEY")
}

func TestLoadClient(t *testing.T) {
	t.Setenv("ENV", "test")
	t.Setenv("CHAT_SERVER_URL", "http://example.test:8080/")
	t.Setenv("CHAT_DB_PATH", "")
	t.Setenv("CHAT_WATCH", "false")

	cfg := LoadClient()
	assert.Equal(t, "http://example.test:8080", cfg.ServerURL)
	assert.Equal(t, "", cfg.DBPath)
	assert.False(t, cfg.Watch)
}
