package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// ProjectDir confines analyzable root files; requests naming a root
	// outside it are rejected.
	ProjectDir string

	// CategoryFile optionally overrides the built-in category table.
	CategoryFile string

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Job state
	JobTTL time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("TEXGRAPH_API_KEY"),

		ProjectDir:   envOr("TEXGRAPH_PROJECT_DIR", "."),
		CategoryFile: os.Getenv("TEXGRAPH_CATEGORY_FILE"),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 50),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 50
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if abs, err := filepath.Abs(cfg.ProjectDir); err == nil {
		cfg.ProjectDir = abs
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TEXGRAPH_API_KEY is required")
	}
	if info, err := os.Stat(c.ProjectDir); err != nil || !info.IsDir() {
		return fmt.Errorf("TEXGRAPH_PROJECT_DIR is not a directory: %s", c.ProjectDir)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
