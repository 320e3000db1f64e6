// Package config loads the runtime settings for the terminal client.
package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// DefaultAPIBaseURL is the local-development fallback for the quote API.
const DefaultAPIBaseURL = "http://localhost:3000/api"

// Config holds everything read once at startup.
type Config struct {
	// APIBaseURL is the quote API host, FREIGHT_API_URL.
	APIBaseURL string

	// DataDir holds the credential database, FREIGHT_DATA_DIR.
	DataDir string
}

// Load reads configuration from the environment, honoring a .env file in
// the working directory when present.
func Load() Config {
	// Missing .env is fine; the defaults below cover local development.
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL: os.Getenv("FREIGHT_API_URL"),
		DataDir:    os.Getenv("FREIGHT_DATA_DIR"),
	}
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = DefaultAPIBaseURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "data"
	}
	return cfg
}

// DBPath returns the path of the sqlite credential database.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, "freight-terminal.db")
}

// LogPath returns the path of the application log file. The terminal
// owns stdout, so diagnostics go to a file instead.
func (c Config) LogPath() string {
	return filepath.Join(c.DataDir, "freight-terminal.log")
}
