package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "TEXGRAPH_API_KEY", "TEXGRAPH_PROJECT_DIR",
		"TEXGRAPH_CATEGORY_FILE", "WORKER_COUNT", "MAX_QUEUE_SIZE", "JOB_TTL",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected default port 8091, got %s", cfg.Port)
	}
	if cfg.WorkerCount != 2 {
		t.Errorf("expected 2 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 50 {
		t.Errorf("expected queue size 50, got %d", cfg.MaxQueueSize)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("expected 1h TTL, got %s", cfg.JobTTL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "15m")
	t.Setenv("TEXGRAPH_PROJECT_DIR", ".")

	cfg := Load()
	if cfg.Port != "9000" || cfg.WorkerCount != 8 || cfg.JobTTL != 15*time.Minute {
		t.Errorf("overrides not applied: %+v", cfg)
	}
	if cfg.ProjectDir == "." {
		t.Error("project dir should be resolved to an absolute path")
	}
}

func TestLoad_IgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	t.Setenv("MAX_QUEUE_SIZE", "-3")
	t.Setenv("JOB_TTL", "soon")

	cfg := Load()
	if cfg.WorkerCount != 2 || cfg.MaxQueueSize != 50 || cfg.JobTTL != time.Hour {
		t.Errorf("invalid values should fall back to defaults: %+v", cfg)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{APIKey: "k", ProjectDir: t.TempDir()}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := (Config{ProjectDir: t.TempDir()}).Validate(); err == nil {
		t.Error("expected error for missing API key")
	}
	if err := (Config{APIKey: "k", ProjectDir: "/no/such/dir"}).Validate(); err == nil {
		t.Error("expected error for bad project dir")
	}
}
