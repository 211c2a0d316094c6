package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port           int
	LogLevel       string
	EmbedBaseURL   string
	EmbedModel     string
	EmbedAPIKey    string
	EmbedFlavor    string
	EmbedChunkSize int
	TurnGap        time.Duration
	SearchAlpha    float64
	SearchBeta     float64
	SearchTopK     int
}

func Load() Config {
	return Config{
		Port:           envInt("SCRIBE_PORT", 8760),
		LogLevel:       envStr("LOG_LEVEL", "info"),
		EmbedBaseURL:   envStr("EMBED_BASE_URL", "http://localhost:11434/api/embeddings"),
		EmbedModel:     envStr("EMBED_MODEL", "nomic-embed-text"),
		EmbedAPIKey:    envStr("EMBED_API_KEY", ""),
		EmbedFlavor:    envStr("EMBED_FLAVOR", "ollama"),
		EmbedChunkSize: envInt("EMBED_CHUNK_SIZE", 10),
		TurnGap:        envDuration("TURN_GAP", 7*time.Minute),
		SearchAlpha:    envFloat("SEARCH_ALPHA", 0.5),
		SearchBeta:     envFloat("SEARCH_BETA", 0.5),
		SearchTopK:     envInt("SEARCH_TOP_K", 10),
	}
}

func envStr(key, fallback string) string {
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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
