package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.GeminiModel == "" {
		t.Fatalf("expected a default model")
	}
	if cfg.ScrapeMaxRows != 100 {
		t.Fatalf("expected default row cap 100, got %d", cfg.ScrapeMaxRows)
	}
	if cfg.ScrapeTimeout != 10*time.Second {
		t.Fatalf("expected default scrape timeout 10s, got %v", cfg.ScrapeTimeout)
	}
	if cfg.RawExcerptLimit != 800 {
		t.Fatalf("expected default excerpt limit 800, got %d", cfg.RawExcerptLimit)
	}
	if cfg.Temperature != 0 {
		t.Fatalf("expected near-zero default temperature, got %v", cfg.Temperature)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SCRAPE_MAX_ROWS", "50")
	t.Setenv("SCRAPE_TIMEOUT_SECONDS", "3")
	t.Setenv("LLM_MAX_OUTPUT_TOKENS", "2048")
	t.Setenv("RAW_EXCERPT_LIMIT", "500")

	cfg := Load()

	if cfg.Port != "9000" {
		t.Fatalf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.ScrapeMaxRows != 50 {
		t.Fatalf("expected row cap 50, got %d", cfg.ScrapeMaxRows)
	}
	if cfg.ScrapeTimeout != 3*time.Second {
		t.Fatalf("expected 3s timeout, got %v", cfg.ScrapeTimeout)
	}
	if cfg.MaxOutputTokens != 2048 {
		t.Fatalf("expected 2048 max output tokens, got %d", cfg.MaxOutputTokens)
	}
	if cfg.RawExcerptLimit != 500 {
		t.Fatalf("expected excerpt limit 500, got %d", cfg.RawExcerptLimit)
	}
}

func TestLoadRejectsBadNumbers(t *testing.T) {
	t.Setenv("SCRAPE_MAX_ROWS", "not-a-number")
	t.Setenv("LLM_TEMPERATURE", "-2")

	cfg := Load()

	if cfg.ScrapeMaxRows != 100 {
		t.Fatalf("expected fallback row cap, got %d", cfg.ScrapeMaxRows)
	}
	if cfg.Temperature != 0 {
		t.Fatalf("expected fallback temperature, got %v", cfg.Temperature)
	}
}
