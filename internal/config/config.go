// Package config provides environment-driven configuration and the
// brand/platform catalog.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider identifies an LLM or embedding backend.
type Provider string

// Supported providers.
const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderBedrock   Provider = "bedrock"
	ProviderVoyage    Provider = "voyage"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string
	SurrealDBNamespace string
	SurrealDBDatabase  string
	SurrealDBUser      string
	SurrealDBPass      string
	SurrealDBAuthLevel string

	// LLM
	LLMProvider     Provider
	LLMModel        string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	OllamaHost      string

	// Embeddings
	EmbedProvider  Provider
	EmbedModel     string
	EmbedDimension int
	VoyageAPIKey   string

	// Session driver
	MaxToolIterations int

	// Request timeout for outbound LLM/search calls
	RequestTimeout time.Duration

	// Brand/platform catalog override file (optional)
	CatalogFile string

	// Logging
	LogFile  string
	LogLevel slog.Level
}

// Load reads configuration from environment variables.
func Load() Config {
	return Config{
		SurrealDBURL:       getEnv("SURREALDB_URL", "ws://localhost:8000/rpc"),
		SurrealDBNamespace: getEnv("SURREALDB_NAMESPACE", "echolens"),
		SurrealDBDatabase:  getEnv("SURREALDB_DATABASE", "feedback"),
		SurrealDBUser:      getEnv("SURREALDB_USER", "root"),
		SurrealDBPass:      getEnv("SURREALDB_PASS", "root"),
		SurrealDBAuthLevel: getEnv("SURREALDB_AUTH_LEVEL", "root"),

		LLMProvider:     Provider(getEnv("ECHOLENS_LLM_PROVIDER", "openai")),
		LLMModel:        getEnv("ECHOLENS_LLM_MODEL", "gpt-4o-mini"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		OllamaHost:      getEnv("OLLAMA_HOST", "http://localhost:11434"),

		EmbedProvider:  Provider(getEnv("ECHOLENS_EMBED_PROVIDER", "ollama")),
		EmbedModel:     getEnv("ECHOLENS_EMBED_MODEL", "all-minilm:l6-v2"),
		EmbedDimension: getEnvInt("ECHOLENS_EMBED_DIMENSION", 384),
		VoyageAPIKey:   os.Getenv("VOYAGE_API_KEY"),

		MaxToolIterations: getEnvInt("ECHOLENS_MAX_TOOL_ITERATIONS", 5),
		RequestTimeout:    time.Duration(getEnvInt("ECHOLENS_REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,

		CatalogFile: os.Getenv("ECHOLENS_CATALOG_FILE"),

		LogFile:  getEnv("ECHOLENS_LOG_FILE", "/tmp/echolens.log"),
		LogLevel: parseLogLevel(getEnv("ECHOLENS_LOG_LEVEL", "INFO")),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
