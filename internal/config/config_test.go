package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()
	if cfg.Port != "8090" {
		t.Errorf("port = %q, want 8090", cfg.Port)
	}
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("worker pool = %d/%d", cfg.WorkerCount, cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 52428800 {
		t.Errorf("max upload = %d", cfg.MaxUploadBytes)
	}
	if cfg.JobTTL != time.Hour || cfg.DownloadTimeout != 60*time.Second {
		t.Errorf("durations = %v/%v", cfg.JobTTL, cfg.DownloadTimeout)
	}
	if !cfg.PDFFallbackPdftotext {
		t.Error("pdftotext fallback should default to enabled")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("JOB_TTL", "30m")
	t.Setenv("PDF_FALLBACK_PDFTOTEXT", "false")

	cfg := Load()
	if cfg.Port != "9999" || cfg.WorkerCount != 8 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.JobTTL != 30*time.Minute {
		t.Errorf("ttl = %v", cfg.JobTTL)
	}
	if cfg.PDFFallbackPdftotext {
		t.Error("pdftotext fallback should be disabled")
	}
}

func TestLoad_InvalidValuesClamped(t *testing.T) {
	t.Setenv("WORKER_COUNT", "-3")
	t.Setenv("MAX_QUEUE_SIZE", "0")
	t.Setenv("JOB_TTL", "garbage")

	cfg := Load()
	if cfg.WorkerCount != 4 || cfg.MaxQueueSize != 100 {
		t.Errorf("clamps not applied: %+v", cfg)
	}
	if cfg.JobTTL != time.Hour {
		t.Errorf("ttl = %v, want default", cfg.JobTTL)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{}
	if err := cfg.Validate(); err == nil {
		t.Error("expected error without API key")
	}
	cfg.TabgestAPIKey = "k"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
