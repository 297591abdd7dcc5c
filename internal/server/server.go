package server

import (
	"context"
	"ctchen222/Tic-Tac-Toe-Engine/internal/api/controller"
	"ctchen222/Tic-Tac-Toe-Engine/internal/player"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	games    *controller.GameController
	upgrader websocket.Upgrader
}

func NewServer(games *controller.GameController) *Server {
	return &Server{
		games: games,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine builds the HTTP router.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), traceRequests())

	r.GET("/healthz", s.games.Health)

	api := r.Group("/api")
	{
		api.POST("/games", s.games.Create)
		api.GET("/games/:id", s.games.Get)
		api.POST("/games/:id/moves", s.games.Move)
		api.POST("/games/:id/reset", s.games.Reset)
		api.POST("/analyze", s.games.Analyze)
	}

	r.GET("/ws/:id", s.handleWebSocket)
	return r
}

// traceRequests starts a span per request and logs its result.
func traceRequests() gin.HandlerFunc {
	propagator := otel.GetTextMapPropagator()
	return func(c *gin.Context) {
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))
		ctx, span := tracer.Start(ctx, c.Request.Method+" "+c.FullPath(), trace.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.url", c.Request.URL.String()),
		), trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		c.Request = c.Request.WithContext(ctx)
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= http.StatusInternalServerError {
			span.SetStatus(codes.Error, http.StatusText(status))
		}
		slog.DebugContext(ctx, "Handled request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", status, "duration", time.Since(start))
	}
}

// handleWebSocket upgrades the connection and subscribes it to the room until the client leaves.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket")

	rm, ok := s.games.Room(c)
	if !ok {
		span.SetStatus(codes.Error, "Unknown room")
		span.End()
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "room.id", rm.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		span.End()
		return
	}

	p := player.NewPlayer(uuid.New().String(), conn)
	span.SetAttributes(attribute.String("player.id", p.ID()), attribute.String("room.id", rm.ID))
	span.End()

	rm.Subscribe(p)
	defer rm.Unsubscribe(p.ID())
	slog.InfoContext(ctx, "Player connected", "room.id", rm.ID, "player.id", p.ID())

	// Reads end with the connection, not with the request context.
	readCtx := context.WithoutCancel(ctx)
	err = p.ReadPump(readCtx, func(ctx context.Context, raw []byte) {
		rm.HandleMessage(ctx, p, raw)
	})
	if err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !errors.Is(err, context.Canceled) {
		slog.WarnContext(ctx, "Player connection closed", "room.id", rm.ID, "player.id", p.ID(), "error", err)
	}
	_ = p.Close()
	slog.InfoContext(ctx, "Player disconnected", "room.id", rm.ID, "player.id", p.ID())
}
