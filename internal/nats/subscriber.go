package nats

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"

	"sudooom.quiz.logic/pkg/proto"
)

// MessageHandler 上行消息处理器接口
type MessageHandler interface {
	HandleRoomRequest(ctx context.Context, playerID string, req *proto.RoomRequest)
	HandleGameRequest(ctx context.Context, playerID string, req *proto.GameRequest)
}

// SubscriberConfig Worker Pool 配置
type SubscriberConfig struct {
	WorkerCount int // Worker 数量
	BufferSize  int // 消息缓冲区大小
}

// MessageSubscriber 上行消息订阅器
type MessageSubscriber struct {
	nc           *nats.Conn
	handler      MessageHandler
	logger       *slog.Logger
	subscription *nats.Subscription
	config       SubscriberConfig
	msgChan      chan *nats.Msg
	wg           sync.WaitGroup
	cancelFunc   context.CancelFunc
}

// NewMessageSubscriber 创建消息订阅器
func NewMessageSubscriber(nc *nats.Conn, handler MessageHandler, config SubscriberConfig) *MessageSubscriber {
	// 设置默认值
	if config.WorkerCount <= 0 {
		config.WorkerCount = 100
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 10000
	}

	return &MessageSubscriber{
		nc:      nc,
		handler: handler,
		logger:  slog.Default(),
		config:  config,
	}
}

// Start 启动订阅
func (s *MessageSubscriber) Start(ctx context.Context) error {
	// 创建带缓冲的消息通道
	s.msgChan = make(chan *nats.Msg, s.config.BufferSize)

	// 创建可取消的上下文
	workerCtx, cancel := context.WithCancel(ctx)
	s.cancelFunc = cancel

	// 启动 Worker Pool
	for i := 0; i < s.config.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(workerCtx)
	}

	// 订阅上行消息 - 使用队列组实现负载均衡
	sub, err := s.nc.QueueSubscribe(SubjectUpstream, QueueGroup, func(msg *nats.Msg) {
		select {
		case s.msgChan <- msg:
			// 消息入队成功
		default:
			// 缓冲区满，记录警告
			s.logger.Warn("Message buffer full, dropping message", "bufferSize", s.config.BufferSize)
		}
	})
	if err != nil {
		cancel()
		return err
	}

	s.subscription = sub
	s.logger.Info("NATS subscriber started",
		"subject", SubjectUpstream,
		"workerCount", s.config.WorkerCount,
		"bufferSize", s.config.BufferSize,
	)
	return nil
}

// worker 工作协程
func (s *MessageSubscriber) worker(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-s.msgChan:
			if !ok {
				return
			}
			s.handleUpstreamMessage(ctx, msg.Data)
		}
	}
}

// handleUpstreamMessage 处理上行消息
func (s *MessageSubscriber) handleUpstreamMessage(ctx context.Context, data []byte) {
	var message proto.UpstreamMessage
	if err := json.Unmarshal(data, &message); err != nil {
		s.logger.Error("Failed to unmarshal upstream message", "error", err)
		return
	}

	if message.PlayerID == "" {
		s.logger.Warn("Upstream message missing playerId")
		return
	}

	switch {
	case message.Room != nil:
		s.handler.HandleRoomRequest(ctx, message.PlayerID, message.Room)
	case message.Game != nil:
		s.handler.HandleGameRequest(ctx, message.PlayerID, message.Game)
	default:
		s.logger.Warn("Upstream message carries no request", "playerId", message.PlayerID)
	}
}

// Stop 停止订阅
func (s *MessageSubscriber) Stop() {
	if s.subscription != nil {
		if err := s.subscription.Unsubscribe(); err != nil {
			s.logger.Warn("Failed to unsubscribe", "error", err)
		}
	}

	if s.cancelFunc != nil {
		s.cancelFunc()
	}

	s.wg.Wait()
	s.logger.Info("NATS subscriber stopped")
}
