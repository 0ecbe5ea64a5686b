// Package config contains everything related to configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	DatabasePath string
	CatalogPath  string
	PromptDir    string
	LogPath      string
	LogLevel     string

	Program         string
	PersistThrottle time.Duration
	HistoryLimit    int

	CameraURL     string
	SimilarityURL string
	SnapshotDir   string
	HeartRateURL  string
	LCDURL        string

	CoachAPIURL string
	CoachAPIKey string
	CoachModel  string

	SimilarityInterval time.Duration
	HeartRateInterval  time.Duration
	YogaMET            float64
}

// Load reads configuration from .env files and environment variables.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	for _, path := range getEnvPaths() {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	cfg := &Config{
		DatabasePath: getEnvString(EnvDatabasePath, defaultPath("kiosk.db")),
		CatalogPath:  getEnvString(EnvCatalogPath, defaultPath("lessons.yaml")),
		PromptDir:    getEnvString(EnvPromptDir, defaultPath("")),
		LogPath:      getEnvString(EnvLogPath, defaultPath("ycoach.log")),
		LogLevel:     getEnvString(EnvLogLevel, "info"),

		Program:         getEnvString(EnvProgram, DefaultProgram),
		PersistThrottle: getEnvDuration(EnvPersistThrottle, defaultPersistThrottle),
		HistoryLimit:    getEnvInt(EnvHistoryLimit, defaultHistoryLimit),

		CameraURL:     getEnvString(EnvCameraURL, defaultCameraURL),
		SimilarityURL: getEnvString(EnvSimilarityURL, defaultSimilarityURL),
		SnapshotDir:   getEnvString(EnvSnapshotDir, filepath.Join(os.TempDir(), "ycoach-snaps")),
		HeartRateURL:  getEnvString(EnvHeartRateURL, defaultHeartRateURL),
		LCDURL:        getEnvString(EnvLCDURL, defaultLCDURL),

		CoachAPIURL: getEnvString(EnvCoachAPIURL, defaultCoachAPIURL),
		CoachAPIKey: getEnvString(EnvCoachAPIKey, ""),
		CoachModel:  getEnvString(EnvCoachModel, defaultCoachModel),

		SimilarityInterval: getEnvDuration(EnvSimilarityInterval, defaultSimilarityInterval),
		HeartRateInterval:  getEnvDuration(EnvHeartRateInterval, defaultHeartRateInterval),
		YogaMET:            getEnvFloat(EnvYogaMET, defaultYogaMET),
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = defaultHistoryLimit
	}

	for _, dir := range []string{
		filepath.Dir(cfg.DatabasePath),
		filepath.Dir(cfg.CatalogPath),
		filepath.Dir(cfg.LogPath),
	} {
		if err := ensureDir(dir); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDirName, ".env"))
	}

	// Parent directories (useful for development)
	if cwd, err := os.Getwd(); err == nil {
		parent := filepath.Dir(cwd)
		paths = append(paths, filepath.Join(parent, ".env"))
		grandparent := filepath.Dir(parent)
		paths = append(paths, filepath.Join(grandparent, ".env"))
	}

	return paths
}

// defaultPath returns name inside the application config directory.
func defaultPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		if name == "" {
			return "."
		}
		return name
	}
	return filepath.Join(home, ".config", appDirName, name)
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
