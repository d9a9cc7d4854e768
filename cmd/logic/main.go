package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sudooom.quiz.logic/internal/config"
	"sudooom.quiz.logic/internal/country"
	"sudooom.quiz.logic/internal/game"
	"sudooom.quiz.logic/internal/handler"
	"sudooom.quiz.logic/internal/health"
	quizNats "sudooom.quiz.logic/internal/nats"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/internal/task"
)

func main() {
	// 加载配置
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.App.LogLevel),
	}))
	slog.SetDefault(logger)

	// 创建上下文
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接 NATS
	natsClient, err := quizNats.NewClient(cfg.NATS)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	logger.Info("Connected to NATS", "url", cfg.NATS.URL)

	// 启动任务调度器（回合计时、揭示延迟等全部延迟回调）
	scheduler := task.NewScheduler(0)
	if err := scheduler.Start(); err != nil {
		logger.Error("Failed to start scheduler", "error", err)
		os.Exit(1)
	}

	// 初始化服务
	publisher := quizNats.NewEventPublisher(natsClient.Conn())
	roomManager := room.NewManager(
		cfg.Room.MaxPlayers,
		cfg.Room.CodeLength,
		cfg.Room.EvictTimeout,
		cfg.Room.EvictCheckInterval,
	)
	gameManager := game.NewManager()
	gameService := game.NewService(
		roomManager,
		gameManager,
		game.SchedulerTimers{Scheduler: scheduler},
		publisher,
		country.NewRandomSelector(nil),
		country.NewDefaultScoring(),
		cfg.Game,
	)
	roomManager.SetNotifier(gameService)

	// 创建消息处理器并启动订阅者
	msgHandler := handler.NewHandler(roomManager, gameService, publisher)
	subscriber := quizNats.NewMessageSubscriber(natsClient.Conn(), msgHandler, quizNats.SubscriberConfig{
		WorkerCount: cfg.NATS.WorkerCount,
		BufferSize:  cfg.NATS.BufferSize,
	})
	if err := subscriber.Start(ctx); err != nil {
		logger.Error("Failed to start subscriber", "error", err)
		os.Exit(1)
	}

	// 启动健康检查 HTTP 服务
	healthChecker := health.NewChecker(natsClient.Conn())
	go startHealthServer(cfg.Health.Addr, healthChecker, logger)

	logger.Info("Quiz logic service started", "name", cfg.App.Name)

	// 优雅退出
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")
	cancel()
	subscriber.Stop()
	gameManager.Shutdown()
	roomManager.Shutdown()
	scheduler.Stop()
	logger.Info("Quiz logic service stopped")
}

// startHealthServer 启动健康检查 HTTP 服务
func startHealthServer(addr string, healthChecker *health.Checker, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/health", healthChecker)
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if healthChecker.IsHealthy(r.Context()) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("Not Ready"))
		}
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("Health server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Health server error", "error", err)
	}
}

// logLevel 解析日志级别
func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
