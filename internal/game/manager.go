package game

import (
	"log/slog"
	"sync"
)

// Manager 对局管理器
// 每个房间至多一局，key 为房间码；生命周期跟随房间
type Manager struct {
	games sync.Map // roomCode -> *Game

	logger *slog.Logger
}

// NewManager 创建对局管理器
func NewManager() *Manager {
	return &Manager{
		logger: slog.Default().With("component", "GameManager"),
	}
}

// GetOrCreate 获取或创建对局
func (m *Manager) GetOrCreate(roomCode string) *Game {
	if val, ok := m.games.Load(roomCode); ok {
		return val.(*Game)
	}

	g := NewGame(roomCode)
	actual, _ := m.games.LoadOrStore(roomCode, g)
	return actual.(*Game)
}

// Get 获取对局
func (m *Manager) Get(roomCode string) (*Game, bool) {
	val, ok := m.games.Load(roomCode)
	if !ok {
		return nil, false
	}
	return val.(*Game), true
}

// Remove 移除对局并取消其全部定时器
func (m *Manager) Remove(roomCode string) {
	val, ok := m.games.LoadAndDelete(roomCode)
	if !ok {
		return
	}

	g := val.(*Game)
	g.mu.Lock()
	g.cancelTimers()
	g.mu.Unlock()

	m.logger.Info("Removed game", "roomCode", roomCode)
}

// Count 返回当前对局数
func (m *Manager) Count() int {
	count := 0
	m.games.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// Shutdown 关闭管理器，取消所有在途定时器
func (m *Manager) Shutdown() {
	m.games.Range(func(key, value any) bool {
		g := value.(*Game)
		g.mu.Lock()
		g.cancelTimers()
		g.mu.Unlock()
		return true
	})
	m.logger.Info("GameManager shutdown complete")
}
