// File: internal/config/client.go
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// ClientConfig is the terminal client's configuration.
type ClientConfig struct {
	ServerURL string
	// DBPath is the session database. Empty disables history.
	DBPath     string
	Model      string
	CookieFile string
	Watch      bool
}

// DataDir is where the client keeps its files by default.
func DataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "chatfront")
	}
	return ".chatfront"
}

// LoadClient reads the client configuration. An explicitly empty
// CHAT_DB_PATH is kept empty.
func LoadClient() *ClientConfig {
	// A missing .env is normal for the client, so it is not reported.
	_ = godotenv.Load()
	dir := DataDir()

	return &ClientConfig{
		ServerURL:  strings.TrimRight(getEnv("CHAT_SERVER_URL", "http://localhost:8080"), "/"),
		DBPath:     getEnv("CHAT_DB_PATH", filepath.Join(dir, "chats.db")),
		Model:      getEnv("CHAT_MODEL", "deepseek-chat"),
		CookieFile: getEnv("CHAT_COOKIE_FILE", filepath.Join(dir, "cookies.json")),
		Watch:      getEnvAsBool("CHAT_WATCH", true),
	}
}
