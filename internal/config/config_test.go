package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "ws://localhost:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, "echolens", cfg.SurrealDBNamespace)
	assert.Equal(t, ProviderOpenAI, cfg.LLMProvider)
	assert.Equal(t, ProviderOllama, cfg.EmbedProvider)
	assert.Equal(t, 384, cfg.EmbedDimension)
	assert.Equal(t, 5, cfg.MaxToolIterations)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SURREALDB_URL", "ws://db.internal:8000/rpc")
	t.Setenv("ECHOLENS_LLM_PROVIDER", "anthropic")
	t.Setenv("ECHOLENS_EMBED_DIMENSION", "1024")
	t.Setenv("ECHOLENS_MAX_TOOL_ITERATIONS", "8")
	t.Setenv("ECHOLENS_LOG_LEVEL", "debug")

	cfg := Load()

	assert.Equal(t, "ws://db.internal:8000/rpc", cfg.SurrealDBURL)
	assert.Equal(t, ProviderAnthropic, cfg.LLMProvider)
	assert.Equal(t, 1024, cfg.EmbedDimension)
	assert.Equal(t, 8, cfg.MaxToolIterations)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoadIgnoresMalformedInts(t *testing.T) {
	t.Setenv("ECHOLENS_EMBED_DIMENSION", "not-a-number")

	cfg := Load()
	assert.Equal(t, 384, cfg.EmbedDimension)
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.in), tt.in)
	}
}
