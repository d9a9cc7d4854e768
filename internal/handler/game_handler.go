package handler

import (
	"context"
	"log/slog"

	"sudooom.quiz.logic/internal/game"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// GameHandler 对局请求处理器
type GameHandler struct {
	rooms       *room.Manager
	gameService *game.Service
	publisher   game.EventPublisher
	logger      *slog.Logger
}

// NewGameHandler 创建对局请求处理器
func NewGameHandler(rooms *room.Manager, gameService *game.Service, publisher game.EventPublisher) *GameHandler {
	return &GameHandler{
		rooms:       rooms,
		gameService: gameService,
		publisher:   publisher,
		logger:      slog.Default(),
	}
}

// Handle 处理对局请求
func (h *GameHandler) Handle(ctx context.Context, playerID string, req *proto.GameRequest) {
	switch req.Action {
	case proto.GameActionStart:
		h.handleStart(playerID, req)

	case proto.GameActionSubmitAnswer:
		// 缺失载荷的提交按网络噪声处理，静默丢弃
		if req.Answer == nil {
			return
		}
		h.gameService.SubmitAnswer(req.RoomCode, playerID, req.Answer)

	case proto.GameActionNextResult:
		h.hostGated(playerID, req, func() error {
			return h.gameService.ShowNextPlayerResult(req.RoomCode)
		})

	case proto.GameActionSkipQuestion:
		h.hostGated(playerID, req, func() error {
			return h.gameService.SkipToNextQuestion(req.RoomCode)
		})

	case proto.GameActionReturnLobby:
		if err := h.gameService.PlayerReturnToLobby(req.RoomCode, playerID); err != nil {
			sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), "")
		}

	case proto.GameActionResetLobby:
		h.hostGated(playerID, req, func() error {
			return h.gameService.ResetToLobby(req.RoomCode)
		})

	default:
		h.logger.Warn("Unknown game action", "action", req.Action, "playerId", playerID)
	}
}

// handleStart 开局请求
func (h *GameHandler) handleStart(playerID string, req *proto.GameRequest) {
	if err := hostOnly(h.rooms, req.RoomCode, playerID); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), "")
		return
	}

	if len(req.Countries) == 0 {
		sendError(h.publisher, h.logger, playerID, game.ErrNoCountries.Error(), reasonFor(game.ErrNoCountries), "")
		return
	}

	if err := h.gameService.StartGame(req.RoomCode, req.Countries); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), "")
	}
}

// hostGated 主持人专属操作的公共门控
func (h *GameHandler) hostGated(playerID string, req *proto.GameRequest, fn func() error) {
	if err := hostOnly(h.rooms, req.RoomCode, playerID); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), "")
		return
	}
	if err := fn(); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), "")
	}
}
