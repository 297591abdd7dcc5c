package config

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var keys = []string{
	"HTTP_ADDR", "LOG_LEVEL", "LOG_FORMAT", "OTEL_EXPORTER_OTLP_ENDPOINT", "SERVICE_NAME",
	"ENGINE_MOVE_DELAY", "RESET_DELAY", "ROOM_IDLE_TIMEOUT", "FIRST_PLAYER", "REDIS_CONNSTRING",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, FormatText, cfg.LogFormat)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.Equal(t, "tic-tac-toe-engine", cfg.ServiceName)
	assert.Equal(t, 500*time.Millisecond, cfg.EngineMoveDelay)
	assert.Equal(t, 2*time.Second, cfg.ResetDelay)
	assert.Equal(t, 10*time.Minute, cfg.RoomIdleTimeout)
	assert.Equal(t, session.FirstHuman, cfg.FirstPlayer)
	assert.Empty(t, cfg.RedisConnString)
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "otel-collector:4317")
	t.Setenv("ENGINE_MOVE_DELAY", "0s")
	t.Setenv("RESET_DELAY", "5s")
	t.Setenv("FIRST_PLAYER", "random")
	t.Setenv("REDIS_CONNSTRING", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, FormatJSON, cfg.LogFormat)
	assert.Equal(t, "otel-collector:4317", cfg.OTLPEndpoint)
	assert.Zero(t, cfg.EngineMoveDelay)
	assert.Equal(t, 5*time.Second, cfg.ResetDelay)
	assert.Equal(t, session.FirstRandom, cfg.FirstPlayer)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisConnString)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"LOG_LEVEL", "loud"},
		{"LOG_FORMAT", "xml"},
		{"ENGINE_MOVE_DELAY", "soon"},
		{"RESET_DELAY", "-1s"},
		{"ROOM_IDLE_TIMEOUT", "10"},
		{"FIRST_PLAYER", "nobody"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}
