package handler

import (
	"context"
	"log/slog"
	"strings"

	"sudooom.quiz.logic/internal/game"
	"sudooom.quiz.logic/internal/model"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// RoomActionHandler 房间操作处理器接口
type RoomActionHandler interface {
	Handle(ctx context.Context, playerID string, req *proto.RoomRequest)
}

// RoomHandler 房间请求处理器
type RoomHandler struct {
	actionHandlers map[string]RoomActionHandler
	rooms          *room.Manager
	logger         *slog.Logger
}

// NewRoomHandler 创建房间请求处理器
func NewRoomHandler(rooms *room.Manager, gameService *game.Service, publisher game.EventPublisher) *RoomHandler {
	h := &RoomHandler{
		actionHandlers: make(map[string]RoomActionHandler),
		rooms:          rooms,
		logger:         slog.Default(),
	}

	// 注册各种房间操作处理器
	h.actionHandlers[proto.RoomActionCreate] = &CreateRoomHandler{
		rooms:     rooms,
		publisher: publisher,
		logger:    h.logger,
	}
	h.actionHandlers[proto.RoomActionJoin] = &JoinRoomHandler{
		rooms:     rooms,
		publisher: publisher,
		logger:    h.logger,
	}
	h.actionHandlers[proto.RoomActionLeave] = &LeaveRoomHandler{
		gameService: gameService,
		logger:      h.logger,
	}
	h.actionHandlers[proto.RoomActionUpdateSettings] = &UpdateSettingsHandler{
		rooms:     rooms,
		publisher: publisher,
		logger:    h.logger,
	}

	return h
}

// Handle 处理房间请求
func (h *RoomHandler) Handle(ctx context.Context, playerID string, req *proto.RoomRequest) {
	handler, ok := h.actionHandlers[req.Action]
	if !ok {
		h.logger.Warn("Unknown room action", "action", req.Action, "playerId", playerID)
		return
	}

	handler.Handle(ctx, playerID, req)
}

// ============================================================================
// 各种房间操作实现
// ============================================================================

// CreateRoomHandler 创建房间
type CreateRoomHandler struct {
	rooms     *room.Manager
	publisher game.EventPublisher
	logger    *slog.Logger
}

func (h *CreateRoomHandler) Handle(ctx context.Context, playerID string, req *proto.RoomRequest) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		sendError(h.publisher, h.logger, playerID, "INVALID_USERNAME", "昵称不能为空", req.ReqID)
		return
	}

	gameMode := req.GameMode
	if gameMode != model.GameModeLocation && gameMode != model.GameModeFlag {
		gameMode = model.GameModeLocation
	}
	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = "medium"
	}

	r := h.rooms.CreateRoom(playerID, username, difficulty, gameMode)

	if err := h.publisher.SendToPlayer(playerID, proto.EventRoomCreated, proto.RoomPayload{Room: r.Snapshot()}); err != nil {
		h.logger.Warn("Failed to send roomCreated", "playerId", playerID, "error", err)
	}
}

// JoinRoomHandler 加入房间
type JoinRoomHandler struct {
	rooms     *room.Manager
	publisher game.EventPublisher
	logger    *slog.Logger
}

func (h *JoinRoomHandler) Handle(ctx context.Context, playerID string, req *proto.RoomRequest) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		sendError(h.publisher, h.logger, playerID, "INVALID_USERNAME", "昵称不能为空", req.ReqID)
		return
	}

	r, err := h.rooms.JoinRoom(req.RoomCode, playerID, username)
	if err != nil {
		// 加入失败只通知请求方，携带可读原因
		if sendErr := h.publisher.SendToPlayer(playerID, proto.EventJoinError, proto.ErrorPayload{
			Code:    err.Error(),
			Message: reasonFor(err),
			ReqID:   req.ReqID,
		}); sendErr != nil {
			h.logger.Warn("Failed to send joinError", "playerId", playerID, "error", sendErr)
		}
		return
	}

	snap := r.Snapshot()
	if err := h.publisher.SendToPlayer(playerID, proto.EventRoomJoined, proto.RoomPayload{Room: snap}); err != nil {
		h.logger.Warn("Failed to send roomJoined", "playerId", playerID, "error", err)
	}

	var joined model.Player
	for _, p := range snap.Players {
		if p.ID == playerID {
			joined = p
			break
		}
	}
	if err := h.publisher.BroadcastToRoom(r.Code(), proto.EventPlayerJoined, proto.PlayerJoinedPayload{
		Player: joined,
		Room:   snap,
	}); err != nil {
		h.logger.Warn("Failed to broadcast playerJoined", "roomCode", r.Code(), "error", err)
	}
}

// LeaveRoomHandler 离开房间
// 离开与断线同路径：可能触发房主交接、回合提前收盘或房间删除
type LeaveRoomHandler struct {
	gameService *game.Service
	logger      *slog.Logger
}

func (h *LeaveRoomHandler) Handle(ctx context.Context, playerID string, req *proto.RoomRequest) {
	h.gameService.HandleDisconnect(req.RoomCode, playerID)
}

// UpdateSettingsHandler 更新房间设置
type UpdateSettingsHandler struct {
	rooms     *room.Manager
	publisher game.EventPublisher
	logger    *slog.Logger
}

func (h *UpdateSettingsHandler) Handle(ctx context.Context, playerID string, req *proto.RoomRequest) {
	if req.Settings == nil {
		return
	}

	if err := hostOnly(h.rooms, req.RoomCode, playerID); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), req.ReqID)
		return
	}

	r, err := h.rooms.Get(req.RoomCode)
	if err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), req.ReqID)
		return
	}

	// 对局开始后拒绝变更，不发任何广播
	if err := r.UpdateSettings(req.Settings); err != nil {
		sendError(h.publisher, h.logger, playerID, err.Error(), reasonFor(err), req.ReqID)
		return
	}

	if err := h.publisher.BroadcastToRoom(r.Code(), proto.EventSettingsUpdated, proto.SettingsUpdatedPayload{
		Room: r.Snapshot(),
	}); err != nil {
		h.logger.Warn("Failed to broadcast settingsUpdated", "roomCode", r.Code(), "error", err)
	}
}
