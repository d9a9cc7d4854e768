package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Handle 已调度任务的引用，持有方可按引用取消
type Handle struct {
	task  *Task
	wheel *TimeWheel
}

// ID 任务ID
func (h *Handle) ID() string {
	return h.task.ID
}

// Cancel 取消任务
// 返回 false 表示任务已出槽（可能已执行或正在执行）
func (h *Handle) Cancel() bool {
	h.task.Cancel()
	return h.wheel.RemoveTask(h.task)
}

// Scheduler 任务调度器
type Scheduler struct {
	wheel      *TimeWheel  // 时间轮
	workerPool *WorkerPool // 工作协程池
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	logger     *slog.Logger
	running    bool
	runningMu  sync.RWMutex
}

// NewScheduler 创建任务调度器
func NewScheduler(workerCount int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		wheel:      NewTimeWheel(),
		workerPool: NewWorkerPool(workerCount),
		ctx:        ctx,
		cancel:     cancel,
		logger:     slog.Default(),
		running:    false,
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	s.runningMu.Lock()
	if s.running {
		s.runningMu.Unlock()
		return fmt.Errorf("调度器已经在运行中")
	}
	s.running = true
	s.runningMu.Unlock()

	// 启动工作协程池
	s.workerPool.Start()

	// 启动时钟协程
	s.wg.Add(1)
	go s.tickLoop()

	s.logger.Info("任务调度器已启动")

	return nil
}

// tickLoop 时钟循环协程
func (s *Scheduler) tickLoop() {
	defer s.wg.Done()

	ticker := s.wheel.GetTicker()

	for {
		select {
		case <-s.ctx.Done():
			s.logger.Info("时钟协程退出")
			return

		case <-ticker.C:
			s.onTick()
		}
	}
}

// onTick 时钟触发处理
func (s *Scheduler) onTick() {
	// 推进时间轮,获取到期任务
	tasks := s.wheel.Tick()

	if len(tasks) == 0 {
		return
	}

	s.logger.Debug("时钟触发",
		"currentSlot", s.wheel.GetCurrentSlot(),
		"taskCount", len(tasks))

	// 批量提交任务到工作池
	s.workerPool.SubmitBatch(tasks)
}

// Schedule 调度延迟任务，返回可取消的引用
// 延迟不足 1 秒按 1 秒处理（时间轮最小粒度）
func (s *Scheduler) Schedule(target string, delay time.Duration, fn TaskFunc) (*Handle, error) {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	if !s.running {
		return nil, fmt.Errorf("调度器未运行")
	}

	seconds := int(delay / time.Second)
	if delay%time.Second > 0 {
		seconds++
	}

	t := NewTask(uuid.NewString(), target, seconds, fn)
	s.wheel.AddTask(t)

	s.logger.Debug("添加任务",
		"taskID", t.ID,
		"target", t.Target,
		"delay", t.Delay)

	return &Handle{task: t, wheel: s.wheel}, nil
}

// Stop 停止调度器
func (s *Scheduler) Stop() {
	s.runningMu.Lock()
	if !s.running {
		s.runningMu.Unlock()
		return
	}
	s.running = false
	s.runningMu.Unlock()

	s.logger.Info("停止任务调度器")

	// 发送取消信号
	s.cancel()

	// 等待时钟协程退出
	s.wg.Wait()

	// 停止时间轮
	s.wheel.Stop()

	// 停止工作协程池
	s.workerPool.Stop()

	s.logger.Info("任务调度器已停止")
}

// IsRunning 检查调度器是否运行中
func (s *Scheduler) IsRunning() bool {
	s.runningMu.RLock()
	defer s.runningMu.RUnlock()

	return s.running
}

// GetStats 获取调度器统计信息
func (s *Scheduler) GetStats() map[string]any {
	return map[string]any{
		"running":        s.IsRunning(),
		"currentSlot":    s.wheel.GetCurrentSlot(),
		"totalTaskCount": s.wheel.GetTotalTaskCount(),
		"workerCount":    s.workerPool.workerCount,
	}
}
