package room

import (
	"crypto/rand"
	"log/slog"
	"strings"
	"sync"
	"time"

	"sudooom.quiz.logic/internal/model"
)

// codeAlphabet 房间码字符集，排除易混淆字形 (0/O/1/I)
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// EvictNotifier 空闲房间清理前的通知回调
// 由对局服务实现：广播过期事件并取消该房间的全部定时任务
type EvictNotifier interface {
	RoomExpired(roomCode string)
}

// Manager 房间注册表
// 管理所有 RoomInstance 的生命周期：创建（房间码防碰撞）、查找、
// 成员进出、末人离开即删除、赛后空闲到期淘汰
type Manager struct {
	rooms sync.Map // CODE -> *RoomInstance

	maxPlayers int
	codeLength int

	evictTimeout time.Duration
	evictTicker  *time.Ticker
	stopChan     chan struct{}

	// notifier 在淘汰循环启动后注入，读写必须持锁
	notifierMu sync.RWMutex
	notifier   EvictNotifier

	logger *slog.Logger
}

// NewManager 创建房间注册表
func NewManager(maxPlayers, codeLength int, evictTimeout, evictCheckInterval time.Duration) *Manager {
	m := &Manager{
		maxPlayers:   maxPlayers,
		codeLength:   codeLength,
		evictTimeout: evictTimeout,
		evictTicker:  time.NewTicker(evictCheckInterval),
		stopChan:     make(chan struct{}),
		logger:       slog.Default().With("component", "RoomManager"),
	}

	go m.evictLoop()

	return m
}

// SetNotifier 设置清理通知回调
// 对局服务依赖注册表，反向引用通过接口注入，避免循环依赖
func (m *Manager) SetNotifier(n EvictNotifier) {
	m.notifierMu.Lock()
	defer m.notifierMu.Unlock()
	m.notifier = n
}

// CreateRoom 创建房间，请求者为唯一成员兼房主
// 房间码碰撞在内部重试，对调用方永不失败
func (m *Manager) CreateRoom(hostID, username, difficulty, gameMode string) *RoomInstance {
	for {
		code := m.generateCode()
		r := NewRoom(code, hostID, username, difficulty, gameMode, m.maxPlayers)
		if _, loaded := m.rooms.LoadOrStore(code, r); !loaded {
			m.logger.Info("Created room", "roomCode", code, "hostId", hostID)
			return r
		}
		// 撞码重新生成
	}
}

// Get 查找房间，房间码大小写不敏感
func (m *Manager) Get(code string) (*RoomInstance, error) {
	normalized, err := m.NormalizeCode(code)
	if err != nil {
		return nil, err
	}

	val, ok := m.rooms.Load(normalized)
	if !ok {
		return nil, ErrRoomNotFound
	}
	return val.(*RoomInstance), nil
}

// JoinRoom 加入房间
func (m *Manager) JoinRoom(code, playerID, username string) (*RoomInstance, error) {
	r, err := m.Get(code)
	if err != nil {
		return nil, err
	}

	if err := r.Join(playerID, username); err != nil {
		return nil, err
	}

	m.logger.Info("Player joined room", "roomCode", r.Code(), "playerId", playerID)
	return r, nil
}

// LeaveRoom 离开房间
// 移除后房间为空则从注册表删除；返回被移除玩家、新房主和是否已删除
func (m *Manager) LeaveRoom(code, playerID string) (model.Player, string, bool, error) {
	r, err := m.Get(code)
	if err != nil {
		return model.Player{}, "", false, err
	}

	removed, newHostID, remaining, err := r.Leave(playerID)
	if err != nil {
		return model.Player{}, "", false, err
	}

	deleted := false
	if remaining == 0 {
		m.Remove(r.Code())
		deleted = true
	}

	m.logger.Info("Player left room",
		"roomCode", r.Code(),
		"playerId", playerID,
		"newHostId", newHostID,
		"roomDeleted", deleted)

	return removed, newHostID, deleted, nil
}

// Remove 移除房间
func (m *Manager) Remove(code string) {
	m.rooms.Delete(strings.ToUpper(code))
	m.logger.Info("Removed room", "roomCode", code)
}

// Count 返回当前房间数
func (m *Manager) Count() int {
	count := 0
	m.rooms.Range(func(key, value any) bool {
		count++
		return true
	})
	return count
}

// NormalizeCode 校验并规范化房间码：长度和字符集匹配才进入查找
func (m *Manager) NormalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if len(normalized) != m.codeLength {
		return "", ErrInvalidCode
	}
	for _, ch := range normalized {
		if !strings.ContainsRune(codeAlphabet, ch) {
			return "", ErrInvalidCode
		}
	}
	return normalized, nil
}

// generateCode 生成房间码
func (m *Manager) generateCode() string {
	buf := make([]byte, m.codeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand 不可用属于环境级故障
		panic(err)
	}

	code := make([]byte, m.codeLength)
	for i, b := range buf {
		code[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(code)
}

// evictLoop 淘汰循环
func (m *Manager) evictLoop() {
	for {
		select {
		case <-m.evictTicker.C:
			m.evictInactive()
		case <-m.stopChan:
			m.logger.Info("Evict loop stopped")
			return
		}
	}
}

// evictInactive 淘汰赛后空闲超时的房间（有限保留，约束内存）
func (m *Manager) evictInactive() {
	now := time.Now()
	var toEvict []string

	m.rooms.Range(func(key, value any) bool {
		r := value.(*RoomInstance)
		if r.Status() == StatusFinished && now.Sub(r.LastActiveTime()) > m.evictTimeout {
			toEvict = append(toEvict, key.(string))
		}
		return true
	})

	m.notifierMu.RLock()
	notifier := m.notifier
	m.notifierMu.RUnlock()

	for _, code := range toEvict {
		if notifier != nil {
			notifier.RoomExpired(code)
		}
		m.Remove(code)
		m.logger.Info("Evicted idle room", "roomCode", code)
	}
}

// Shutdown 关闭注册表
func (m *Manager) Shutdown() {
	close(m.stopChan)
	m.evictTicker.Stop()
	m.logger.Info("RoomManager shutdown complete")
}
