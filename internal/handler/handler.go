package handler

import (
	"context"
	"log/slog"

	"sudooom.quiz.logic/internal/game"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// Handler 上行消息处理器
// 边界层职责：载荷校验、主持人权限门控、错误转为下行通知
// 状态变更一律经由注册表/编排器方法，这里不直接读改房间状态
type Handler struct {
	roomHandler *RoomHandler
	gameHandler *GameHandler
	logger      *slog.Logger
}

// NewHandler 创建处理器
func NewHandler(rooms *room.Manager, gameService *game.Service, publisher game.EventPublisher) *Handler {
	return &Handler{
		roomHandler: NewRoomHandler(rooms, gameService, publisher),
		gameHandler: NewGameHandler(rooms, gameService, publisher),
		logger:      slog.Default(),
	}
}

// HandleRoomRequest 处理房间请求
func (h *Handler) HandleRoomRequest(ctx context.Context, playerID string, req *proto.RoomRequest) {
	h.roomHandler.Handle(ctx, playerID, req)
}

// HandleGameRequest 处理对局请求
func (h *Handler) HandleGameRequest(ctx context.Context, playerID string, req *proto.GameRequest) {
	h.gameHandler.Handle(ctx, playerID, req)
}

// sendError 将拒绝原因作为个人通知推回请求方，绝不影响房间其他人
func sendError(publisher game.EventPublisher, logger *slog.Logger, playerID, code, message, reqID string) {
	err := publisher.SendToPlayer(playerID, proto.EventError, proto.ErrorPayload{
		Code:    code,
		Message: message,
		ReqID:   reqID,
	})
	if err != nil {
		logger.Warn("Failed to send error notification", "playerId", playerID, "code", code, "error", err)
	}
}

// hostOnly 主持人权限门控
// 核心只暴露 hostId，权限检查是边界层的责任
func hostOnly(rooms *room.Manager, roomCode, playerID string) error {
	r, err := rooms.Get(roomCode)
	if err != nil {
		return err
	}
	if r.HostID() != playerID {
		return room.ErrNotRoomHost
	}
	return nil
}

// reasonFor 错误码对应的用户可读文案
func reasonFor(err error) string {
	switch err {
	case room.ErrRoomNotFound:
		return "房间不存在"
	case room.ErrInvalidCode:
		return "房间码格式不正确"
	case room.ErrRoomFull:
		return "房间已满"
	case room.ErrGameStarted:
		return "游戏已经开始"
	case room.ErrUsernameTaken:
		return "该昵称已被使用"
	case room.ErrNotRoomHost:
		return "只有房主可以执行该操作"
	case room.ErrNotInRoom:
		return "你不在该房间中"
	case game.ErrNoCountries:
		return "筛选条件下没有可用题目"
	case game.ErrInvalidStatus, game.ErrGameNotFound:
		return "当前阶段不允许该操作"
	default:
		return "操作失败"
	}
}
