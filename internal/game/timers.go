package game

import (
	"context"
	"log/slog"
	"time"

	"sudooom.quiz.logic/internal/task"
)

// Timer 已调度回调的引用，取消后不再执行
type Timer interface {
	Cancel() bool
}

// Timers 延迟回调调度接口
// 生产环境由时间轮调度器实现；测试注入手动触发的假实现
type Timers interface {
	Schedule(target string, delay time.Duration, fn func()) Timer
}

// SchedulerTimers 基于 task.Scheduler 的 Timers 实现
type SchedulerTimers struct {
	Scheduler *task.Scheduler
}

// Schedule 实现 Timers
func (t SchedulerTimers) Schedule(target string, delay time.Duration, fn func()) Timer {
	h, err := t.Scheduler.Schedule(target, delay, func(ctx context.Context, target string) error {
		fn()
		return nil
	})
	if err != nil {
		slog.Error("Failed to schedule task", "target", target, "error", err)
		return noopTimer{}
	}
	return h
}

type noopTimer struct{}

func (noopTimer) Cancel() bool { return false }
