package nats

import (
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"

	"sudooom.quiz.logic/pkg/proto"
)

// EventPublisher 下行事件发布器
// 实现对局层的发布接口：房间广播与玩家单发
type EventPublisher struct {
	nc     *nats.Conn
	logger *slog.Logger
}

// NewEventPublisher 创建事件发布器
func NewEventPublisher(nc *nats.Conn) *EventPublisher {
	return &EventPublisher{
		nc:     nc,
		logger: slog.Default(),
	}
}

// BroadcastToRoom 向房间所有成员广播事件
func (p *EventPublisher) BroadcastToRoom(roomCode, event string, data any) error {
	return p.publish(RoomSubject(roomCode), event, data)
}

// SendToPlayer 向单个玩家发送事件
func (p *EventPublisher) SendToPlayer(playerID, event string, data any) error {
	return p.publish(PlayerSubject(playerID), event, data)
}

// publish 封装并发布下行消息
func (p *EventPublisher) publish(subject, event string, data any) error {
	payload, err := json.Marshal(proto.Envelope{Event: event, Data: data})
	if err != nil {
		p.logger.Error("Failed to marshal event", "event", event, "error", err)
		return err
	}

	if err := p.nc.Publish(subject, payload); err != nil {
		p.logger.Error("Failed to publish event", "subject", subject, "event", event, "error", err)
		return err
	}

	p.logger.Debug("Published event", "subject", subject, "event", event)
	return nil
}
