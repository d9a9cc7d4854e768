package task

import (
	"context"
	"sync/atomic"
	"time"
)

// TaskFunc 任务执行函数类型
type TaskFunc func(ctx context.Context, target string) error

// Task 任务定义
// Delay 为秒数；超过一圈槽位的延迟通过 circle 圈数表示
type Task struct {
	ID        string    // 任务唯一ID
	Target    string    // 操作对象标识（房间码等）
	Delay     int       // 延迟秒数
	Fn        TaskFunc  // 执行函数
	CreatedAt time.Time // 创建时间

	circle    int         // 剩余圈数
	slot      int         // 所在槽位索引
	cancelled atomic.Bool // 取消标记
}

// NewTask 创建新任务
func NewTask(id, target string, delay int, fn TaskFunc) *Task {
	if delay < 1 {
		delay = 1
	}
	return &Task{
		ID:        id,
		Target:    target,
		Delay:     delay,
		Fn:        fn,
		CreatedAt: time.Now(),
	}
}

// Cancel 标记任务取消
// 已进入执行队列的任务在执行前会再次检查该标记
func (t *Task) Cancel() {
	t.cancelled.Store(true)
}

// Cancelled 任务是否已取消
func (t *Task) Cancelled() bool {
	return t.cancelled.Load()
}

// Execute 执行任务
func (t *Task) Execute(ctx context.Context) error {
	if t.Fn == nil || t.Cancelled() {
		return nil
	}
	return t.Fn(ctx, t.Target)
}
