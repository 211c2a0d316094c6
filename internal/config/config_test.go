package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"SCRIBE_PORT", "LOG_LEVEL", "EMBED_BASE_URL", "EMBED_MODEL",
		"EMBED_API_KEY", "EMBED_FLAVOR", "EMBED_CHUNK_SIZE", "TURN_GAP",
		"SEARCH_ALPHA", "SEARCH_BETA", "SEARCH_TOP_K",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != 8760 {
		t.Errorf("expected default port 8760, got %d", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.EmbedBaseURL != "http://localhost:11434/api/embeddings" {
		t.Errorf("expected default embed url, got %s", cfg.EmbedBaseURL)
	}
	if cfg.EmbedFlavor != "ollama" {
		t.Errorf("expected default flavor ollama, got %s", cfg.EmbedFlavor)
	}
	if cfg.EmbedChunkSize != 10 {
		t.Errorf("expected default chunk size 10, got %d", cfg.EmbedChunkSize)
	}
	if cfg.TurnGap != 7*time.Minute {
		t.Errorf("expected default turn gap 7m, got %v", cfg.TurnGap)
	}
	if cfg.SearchAlpha != 0.5 || cfg.SearchBeta != 0.5 {
		t.Errorf("expected default weights 0.5/0.5, got %v/%v", cfg.SearchAlpha, cfg.SearchBeta)
	}
	if cfg.SearchTopK != 10 {
		t.Errorf("expected default top-k 10, got %d", cfg.SearchTopK)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("SCRIBE_PORT", "9999")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EMBED_BASE_URL", "https://api.openai.com/v1/embeddings")
	t.Setenv("EMBED_MODEL", "text-embedding-3-small")
	t.Setenv("EMBED_API_KEY", "sk-test")
	t.Setenv("EMBED_FLAVOR", "openai")
	t.Setenv("EMBED_CHUNK_SIZE", "25")
	t.Setenv("TURN_GAP", "10m")
	t.Setenv("SEARCH_ALPHA", "0.7")
	t.Setenv("SEARCH_BETA", "0.3")
	t.Setenv("SEARCH_TOP_K", "50")

	cfg := Load()

	if cfg.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.EmbedBaseURL != "https://api.openai.com/v1/embeddings" {
		t.Errorf("expected custom embed url, got %s", cfg.EmbedBaseURL)
	}
	if cfg.EmbedModel != "text-embedding-3-small" {
		t.Errorf("expected custom model, got %s", cfg.EmbedModel)
	}
	if cfg.EmbedAPIKey != "sk-test" {
		t.Errorf("expected custom api key, got %s", cfg.EmbedAPIKey)
	}
	if cfg.EmbedFlavor != "openai" {
		t.Errorf("expected openai flavor, got %s", cfg.EmbedFlavor)
	}
	if cfg.EmbedChunkSize != 25 {
		t.Errorf("expected chunk size 25, got %d", cfg.EmbedChunkSize)
	}
	if cfg.TurnGap != 10*time.Minute {
		t.Errorf("expected 10m turn gap, got %v", cfg.TurnGap)
	}
	if cfg.SearchAlpha != 0.7 || cfg.SearchBeta != 0.3 {
		t.Errorf("expected custom weights, got %v/%v", cfg.SearchAlpha, cfg.SearchBeta)
	}
	if cfg.SearchTopK != 50 {
		t.Errorf("expected top-k 50, got %d", cfg.SearchTopK)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("SCRIBE_PORT", "notanumber")
	t.Setenv("TURN_GAP", "sometime")
	t.Setenv("SEARCH_ALPHA", "lots")

	cfg := Load()

	if cfg.Port != 8760 {
		t.Errorf("expected default port on invalid value, got %d", cfg.Port)
	}
	if cfg.TurnGap != 7*time.Minute {
		t.Errorf("expected default turn gap on invalid value, got %v", cfg.TurnGap)
	}
	if cfg.SearchAlpha != 0.5 {
		t.Errorf("expected default alpha on invalid value, got %v", cfg.SearchAlpha)
	}
}
