package main

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-Engine/internal/bot"
	"ctchen222/Tic-Tac-Toe-Engine/internal/config"
	"ctchen222/Tic-Tac-Toe-Engine/internal/db"
	"ctchen222/Tic-Tac-Toe-Engine/internal/events"
	"ctchen222/Tic-Tac-Toe-Engine/internal/hub"
	"ctchen222/Tic-Tac-Toe-Engine/internal/logger"
	"ctchen222/Tic-Tac-Toe-Engine/internal/room"
	"ctchen222/Tic-Tac-Toe-Engine/internal/server"
	"ctchen222/Tic-Tac-Toe-Engine/internal/telemetry"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel, cfg.LogFormat)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	// Events go to Redis only when it is configured.
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RedisConnString != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.RedisConnString)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
		slog.Info("Publishing game events", "channel", events.EventsChannel)
	}

	engine, err := bot.NewEngine()
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}

	h := hub.NewHub(engine, publisher, hub.Config{
		Room: room.Config{
			EngineMoveDelay: cfg.EngineMoveDelay,
			ResetDelay:      cfg.ResetDelay,
		},
		IdleTimeout: cfg.RoomIdleTimeout,
	})
	defer h.Close()
	go h.Run(ctx)

	srv := server.NewServer(controller.NewGameController(h, cfg.FirstPlayer))

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Engine(),
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("ListenAndServe: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server exiting")
	return nil
}
