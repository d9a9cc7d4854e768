package task

import (
	"sync"
	"time"
)

const (
	// SlotCount 时间轮槽位数量 (一圈 60 秒)
	SlotCount = 60
)

// TimeWheel 时间轮
// 超过一圈的延迟通过任务圈数表示，到期槽位每圈减一
type TimeWheel struct {
	slots       [SlotCount]*Slot // 60个槽位
	currentSlot int              // 当前槽位索引
	slotMu      sync.RWMutex     // 当前槽位索引锁
	ticker      *time.Ticker     // 1秒定时器
}

// NewTimeWheel 创建时间轮
func NewTimeWheel() *TimeWheel {
	tw := &TimeWheel{
		currentSlot: 0,
		ticker:      time.NewTicker(time.Second),
	}

	// 初始化所有槽位
	for i := 0; i < SlotCount; i++ {
		tw.slots[i] = NewSlot()
	}

	return tw
}

// AddTask 添加任务到时间轮
func (tw *TimeWheel) AddTask(task *Task) {
	if task.Delay < 1 {
		task.Delay = 1
	}

	// 计算目标槽位和圈数
	// 槽位本身承载 1..SlotCount 秒，整圈延迟不额外加圈
	tw.slotMu.RLock()
	task.slot = (tw.currentSlot + task.Delay) % SlotCount
	task.circle = (task.Delay - 1) / SlotCount
	tw.slotMu.RUnlock()

	tw.slots[task.slot].AddTask(task)
}

// RemoveTask 从时间轮删除任务
// 槽位索引在添加时记录在任务上，调用方无需知道剩余延迟
func (tw *TimeWheel) RemoveTask(task *Task) bool {
	return tw.slots[task.slot].RemoveTask(task.ID)
}

// Tick 推进时间轮 (由调度器调用)，返回到期任务
func (tw *TimeWheel) Tick() []*Task {
	// 推进到下一个槽位
	tw.slotMu.Lock()
	tw.currentSlot = (tw.currentSlot + 1) % SlotCount
	currentSlot := tw.currentSlot
	tw.slotMu.Unlock()

	return tw.slots[currentSlot].CollectDue()
}

// GetCurrentSlot 获取当前槽位索引
func (tw *TimeWheel) GetCurrentSlot() int {
	tw.slotMu.RLock()
	defer tw.slotMu.RUnlock()

	return tw.currentSlot
}

// Stop 停止时间轮
func (tw *TimeWheel) Stop() {
	tw.ticker.Stop()
}

// GetTicker 获取定时器
func (tw *TimeWheel) GetTicker() *time.Ticker {
	return tw.ticker
}

// GetTotalTaskCount 获取所有槽位的任务总数
func (tw *TimeWheel) GetTotalTaskCount() int {
	total := 0
	for i := 0; i < SlotCount; i++ {
		total += tw.slots[i].Count()
	}
	return total
}
