package controller

import (
	"ctchen222/Tic-Tac-Toe-Engine/internal/api/response"
	"ctchen222/Tic-Tac-Toe-Engine/internal/bot"
	"ctchen222/Tic-Tac-Toe-Engine/internal/game"
	"ctchen222/Tic-Tac-Toe-Engine/internal/hub"
	"ctchen222/Tic-Tac-Toe-Engine/internal/room"
	"ctchen222/Tic-Tac-Toe-Engine/internal/session"
	"ctchen222/Tic-Tac-Toe-Engine/internal/validator"
	"ctchen222/Tic-Tac-Toe-Engine/pkg/proto"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("controller")

// ErrGameNotFound is returned for an unknown game id.
var ErrGameNotFound = errors.New("game not found")

// GameController handles game-related HTTP requests.
type GameController struct {
	hub *hub.Hub
	// defaultFirst applies when a create request does not name the first player.
	defaultFirst session.FirstPlayer
}

// NewGameController creates a new GameController.
func NewGameController(h *hub.Hub, defaultFirst session.FirstPlayer) *GameController {
	return &GameController{
		hub:          h,
		defaultFirst: defaultFirst,
	}
}

// Create starts a new game against the engine.
func (gc *GameController) Create(c *gin.Context) {
	var req proto.CreateGameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	first := gc.defaultFirst
	if req.First != "" {
		first = session.FirstPlayer(req.First)
	}

	r := gc.hub.CreateRoom(c.Request.Context(), session.Options{
		HumanMark:   req.Mark,
		FirstPlayer: first,
	})
	response.CreatedResponse(c, stateMessage(r.State()))
}

// Get returns the current state of a game.
func (gc *GameController) Get(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, stateMessage(r.State()))
}

// Move applies the human's move. The engine's reply follows after the room's delay.
func (gc *GameController) Move(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}

	var req proto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	st, err := r.HandleMove(c.Request.Context(), game.Move(*req.Index))
	if err != nil {
		response.AbortWithError(c, toError(err))
		return
	}
	response.SuccessResponse(c, stateMessage(st))
}

// Reset clears the board of a game.
func (gc *GameController) Reset(c *gin.Context) {
	r, ok := gc.room(c)
	if !ok {
		return
	}
	response.SuccessResponse(c, stateMessage(r.Reset(c.Request.Context())))
}

// Analyze evaluates an arbitrary board without creating a game.
func (gc *GameController) Analyze(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "controller.Analyze")
	defer span.End()

	var req proto.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := validator.GetValidator().Struct(req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	span.SetAttributes(
		attribute.String("board", board.String()),
		attribute.String("player.mark", string(req.Player)),
	)

	resp := proto.AnalyzeResponse{
		Board:    board.String(),
		Player:   req.Player,
		Outcome:  board.EvaluateTerminal(),
		BestMove: int(game.NoMove),
		Moves:    []proto.MoveScore{},
	}
	if !resp.Outcome.IsTerminal() {
		result := bot.Search(&board, req.Player)
		resp.BestMove = int(result.Move)
		resp.Found = result.Found
		resp.Score = result.Score
		for _, ms := range bot.Analyze(&board, req.Player) {
			resp.Moves = append(resp.Moves, proto.MoveScore{Move: int(ms.Move), Score: ms.Score})
		}
		span.SetAttributes(
			attribute.Int("move.index", resp.BestMove),
			attribute.Int("move.score", resp.Score),
			attribute.Int("search.nodes", result.Nodes),
		)
	}

	slog.DebugContext(ctx, "Analyzed board", "board", resp.Board, "player", req.Player, "move", resp.BestMove, "score", resp.Score)
	response.SuccessResponse(c, resp)
}

// Health reports that the server is up.
func (gc *GameController) Health(c *gin.Context) {
	response.SuccessResponse(c, gin.H{"status": "ok", "rooms": gc.hub.Len()})
}

// Room resolves the :id path parameter, writing a 404 when the game does not exist.
func (gc *GameController) Room(c *gin.Context) (*room.Room, bool) {
	return gc.room(c)
}

func (gc *GameController) room(c *gin.Context) (*room.Room, bool) {
	id := c.Param("id")
	trace.SpanFromContext(c.Request.Context()).SetAttributes(attribute.String("room.id", id))

	r, ok := gc.hub.Room(id)
	if !ok {
		response.AbortWithError(c, toError(ErrGameNotFound))
		return nil, false
	}
	return r, true
}

// toError maps domain errors to HTTP status codes.
func toError(err error) response.Error {
	switch {
	case errors.Is(err, ErrGameNotFound):
		return response.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrOutOfBounds), errors.Is(err, game.ErrNotAPlayer):
		return response.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, game.ErrOccupied), errors.Is(err, game.ErrNotYourTurn), errors.Is(err, game.ErrGameOver):
		return response.NewError(http.StatusConflict, err.Error())
	}
	return response.NewError(http.StatusInternalServerError, err.Error())
}

func stateMessage(st session.State) *proto.ServerToClientMessage {
	if st.Outcome.IsTerminal() {
		return room.NewStateMessage(proto.TypeGameOver, st)
	}
	return room.NewStateMessage(proto.TypeUpdate, st)
}
