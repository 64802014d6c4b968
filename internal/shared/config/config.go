package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. It is built once at startup and
// passed down by parameter; nothing reads the environment mid-request.
type Config struct {
	Port            string
	CORSAllowOrigin []string
	Env             string

	GeminiAPIKey string
	GeminiModel  string

	Temperature     float32
	TopP            float32
	TopK            float32
	MaxOutputTokens int32

	ScrapeMaxRows int
	ScrapeTimeout time.Duration

	RawExcerptLimit int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	_ = godotenv.Load(".env", "cmd/.env")

	return Config{
		Port:            getEnv("PORT", "8080"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		Env:             normalizeEnv(getEnv("ENV", "dev")),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.0-flash-lite"),

		Temperature:     getEnvFloat32("LLM_TEMPERATURE", 0),
		TopP:            getEnvFloat32("LLM_TOP_P", 0.95),
		TopK:            getEnvFloat32("LLM_TOP_K", 40),
		MaxOutputTokens: int32(getEnvInt("LLM_MAX_OUTPUT_TOKENS", 8192)),

		ScrapeMaxRows: getEnvInt("SCRAPE_MAX_ROWS", 100),
		ScrapeTimeout: time.Duration(getEnvInt("SCRAPE_TIMEOUT_SECONDS", 10)) * time.Second,

		RawExcerptLimit: getEnvInt("RAW_EXCERPT_LIMIT", 800),
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func getEnvInt(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getEnvFloat32(key string, def float32) float32 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(raw, 32)
	if err != nil || parsed < 0 {
		return def
	}
	return float32(parsed)
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}
