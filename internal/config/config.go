// Package config reads the server configuration from the environment.
package config

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr     string
	LogLevel     slog.Level
	LogFormat    string
	OTLPEndpoint string
	ServiceName  string

	EngineMoveDelay time.Duration
	ResetDelay      time.Duration
	RoomIdleTimeout time.Duration
	FirstPlayer     session.FirstPlayer

	RedisConnString string
}

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Load reads the configuration, applying defaults for unset variables.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		OTLPEndpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:     getEnv("SERVICE_NAME", "tic-tac-toe-engine"),
		RedisConnString: os.Getenv("REDIS_CONNSTRING"),
	}

	var errs []error

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "debug"))); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}

	cfg.LogFormat = strings.ToLower(getEnv("LOG_FORMAT", FormatText))
	if cfg.LogFormat != FormatText && cfg.LogFormat != FormatJSON {
		errs = append(errs, fmt.Errorf("LOG_FORMAT: unknown format %q", cfg.LogFormat))
	}

	var err error
	if cfg.EngineMoveDelay, err = getDuration("ENGINE_MOVE_DELAY", 500*time.Millisecond); err != nil {
		errs = append(errs, err)
	}
	if cfg.ResetDelay, err = getDuration("RESET_DELAY", 2*time.Second); err != nil {
		errs = append(errs, err)
	}
	if cfg.RoomIdleTimeout, err = getDuration("ROOM_IDLE_TIMEOUT", 10*time.Minute); err != nil {
		errs = append(errs, err)
	}
	if cfg.FirstPlayer, err = session.ParseFirstPlayer(getEnv("FIRST_PLAYER", string(session.FirstHuman))); err != nil {
		errs = append(errs, fmt.Errorf("FIRST_PLAYER: %w", err))
	}

	if err := errors.Join(errs...); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %s", key, v)
	}
	return d, nil
}
