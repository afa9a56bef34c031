// File: internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/iyunix/go-chatfront/internal/services/ai"
)

// Config is the server's configuration.
type Config struct {
	ServerPort       string
	AuthPassword     string
	JWTSecretKey     string
	AuthCookieTTL    time.Duration
	OpenAIAPIKey     string
	DeepSeekAPIKey   string
	GeminiAPIKey     string
	DefaultModel     string
	SystemPrompt     string
	LoginMaxAttempts int
	Environment      string
}

// loadDotEnv reads .env outside production.
func loadDotEnv() string {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}
	return env
}

// Load reads the server configuration from environment variables or .env.
func Load() (*Config, error) {
	env := loadDotEnv()

	cfg := &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		AuthPassword:     getEnv("AUTH_PASSWORD", ""),
		JWTSecretKey:     getEnv("JWT_SECRET_KEY", ""),
		AuthCookieTTL:    getEnvAsDuration("AUTH_COOKIE_TTL", 7*24*time.Hour),
		OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
		DeepSeekAPIKey:   getEnv("DEEPSEEK_API_KEY", ""),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		DefaultModel:     getEnv("DEFAULT_MODEL", ai.FallbackModel),
		SystemPrompt:     getEnv("SYSTEM_PROMPT", "You are a helpful assistant."),
		LoginMaxAttempts: getEnvAsInt("LOGIN_MAX_ATTEMPTS", 5),
		Environment:      env,
	}

	if cfg.IsProduction() {
		missing := []string{}
		if cfg.AuthPassword == "" {
			missing = append(missing, "AUTH_PASSWORD")
		}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required production environment variables: %v", missing)
		}
	}

	if cfg.JWTSecretKey == "" {
		// Sessions will not survive a restart, which is fine in development.
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate JWT secret: %w", err)
		}
		cfg.JWTSecretKey = hex.EncodeToString(buf)
		log.Println("JWT_SECRET_KEY not set; using an ephemeral key")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return strings.ToLower(c.Environment) == "production"
}

// AIConfig maps the provider keys onto the AI service configuration.
func (c *Config) AIConfig() *ai.Config {
	cfg := ai.DefaultConfig()
	set := func(name ai.ProviderName, key string) {
		p := cfg.Providers[name]
		p.APIKey = key
		cfg.Providers[name] = p
	}
	set(ai.ProviderOpenAI, c.OpenAIAPIKey)
	set(ai.ProviderDeepSeek, c.DeepSeekAPIKey)
	set(ai.ProviderGemini, c.GeminiAPIKey)
	cfg.DefaultModel = c.DefaultModel
	cfg.SystemPrompt = c.SystemPrompt
	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil || d <= 0 {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}

func getEnvAsBool(key string, defaultValue bool) bool {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as bool. Using default value.", key)
		return defaultValue
	}
	return b
}
