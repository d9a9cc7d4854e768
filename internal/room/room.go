package room

import (
	"strings"
	"sync"
	"time"

	"sudooom.quiz.logic/internal/model"
)

// 房间生命周期状态
const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusReviewing = "reviewing"
	StatusFinished  = "finished"
)

// RoomInstance 房间实例对象
// 在内存中管理房间状态，使用 RWMutex 保证并发安全
// 与 model.Room（数据传输对象）区分，RoomInstance 负责并发控制和生命周期管理
// 房间内所有成员变更都经由本类型的方法，传输层不得直接读改状态
type RoomInstance struct {
	mu         sync.RWMutex
	roomInfo   *model.Room
	locations  map[string]model.SessionLocation // playerId -> 所在界面（仅赛后流程使用）
	maxPlayers int
	lastActive time.Time
}

// NewRoom 创建房间实例，请求者成为唯一成员兼房主
func NewRoom(code, hostID, username, difficulty, gameMode string, maxPlayers int) *RoomInstance {
	now := time.Now()
	host := model.Player{
		ID:       hostID,
		Username: username,
		IsHost:   true,
	}
	return &RoomInstance{
		roomInfo: &model.Room{
			Code:       code,
			HostID:     hostID,
			Difficulty: difficulty,
			GameMode:   gameMode,
			Settings: model.RoomSettings{
				TotalRounds:  10,
				TimerSeconds: 30,
				Continent:    "all",
			},
			Status:    StatusWaiting,
			Players:   []model.Player{host},
			CreatedAt: now,
		},
		locations:  map[string]model.SessionLocation{hostID: model.LocationLobby},
		maxPlayers: maxPlayers,
		lastActive: now,
	}
}

// Snapshot 获取房间快照（只读深拷贝）
func (r *RoomInstance) Snapshot() *model.Room {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := *r.roomInfo
	snapshot.Players = append([]model.Player{}, r.roomInfo.Players...)
	return &snapshot
}

// Code 房间码
func (r *RoomInstance) Code() string {
	return r.roomInfo.Code
}

// HostID 当前房主
func (r *RoomInstance) HostID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roomInfo.HostID
}

// Status 当前状态
func (r *RoomInstance) Status() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.roomInfo.Status
}

// SetStatus 状态转移由编排器驱动
func (r *RoomInstance) SetStatus(status string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomInfo.Status = status
	r.lastActive = time.Now()
}

// Join 加入房间
func (r *RoomInstance) Join(playerID, username string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomInfo.Status != StatusWaiting {
		return ErrGameStarted
	}

	if len(r.roomInfo.Players) >= r.maxPlayers {
		return ErrRoomFull
	}

	// 用户名大小写不敏感唯一
	for _, p := range r.roomInfo.Players {
		if strings.EqualFold(p.Username, username) {
			return ErrUsernameTaken
		}
	}

	r.roomInfo.Players = append(r.roomInfo.Players, model.Player{
		ID:       playerID,
		Username: username,
	})
	r.locations[playerID] = model.LocationLobby
	r.lastActive = time.Now()

	return nil
}

// Leave 离开房间
// 房主离开且有剩余成员时，最早加入者接任房主
// 返回被移除的玩家、新房主ID（无变更为空）和剩余人数
func (r *RoomInstance) Leave(playerID string) (model.Player, string, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	index := -1
	for i, p := range r.roomInfo.Players {
		if p.ID == playerID {
			index = i
			break
		}
	}
	if index == -1 {
		return model.Player{}, "", len(r.roomInfo.Players), ErrNotInRoom
	}

	removed := r.roomInfo.Players[index]
	r.roomInfo.Players = append(r.roomInfo.Players[:index], r.roomInfo.Players[index+1:]...)
	delete(r.locations, playerID)
	r.lastActive = time.Now()

	newHostID := ""
	if removed.IsHost && len(r.roomInfo.Players) > 0 {
		r.roomInfo.Players[0].IsHost = true
		newHostID = r.roomInfo.Players[0].ID
		r.roomInfo.HostID = newHostID
	}

	return removed, newHostID, len(r.roomInfo.Players), nil
}

// UpdateSettings 合并部分设置，仅 waiting 状态允许
func (r *RoomInstance) UpdateSettings(patch *model.SettingsPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roomInfo.Status != StatusWaiting {
		return ErrGameStarted
	}

	if patch.TotalRounds != nil && *patch.TotalRounds >= 1 {
		r.roomInfo.Settings.TotalRounds = *patch.TotalRounds
	}
	if patch.TimerSeconds != nil && *patch.TimerSeconds >= 0 {
		r.roomInfo.Settings.TimerSeconds = *patch.TimerSeconds
	}
	if patch.Continent != nil {
		r.roomInfo.Settings.Continent = *patch.Continent
	}
	if patch.Difficulty != nil {
		r.roomInfo.Difficulty = *patch.Difficulty
	}
	if patch.GameMode != nil {
		r.roomInfo.GameMode = *patch.GameMode
	}
	r.lastActive = time.Now()

	return nil
}

// SetTotalRounds 题库不足时回合数收紧
// 设置与对局状态必须同步收紧，调用方负责另一侧
func (r *RoomInstance) SetTotalRounds(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roomInfo.Settings.TotalRounds = n
}

// ResetRoundFlags 清除全员单回合作答状态
func (r *RoomInstance) ResetRoundFlags() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.roomInfo.Players {
		r.roomInfo.Players[i].ResetRound()
	}
}

// ApplyAnswer 记录玩家作答：未知玩家或重复作答返回 false
// 判重与置位在同一临界区内完成，保证每回合至多一条记录
func (r *RoomInstance) ApplyAnswer(playerID string, rec model.AnswerRecord) (model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.roomInfo.Players {
		p := &r.roomInfo.Players[i]
		if p.ID != playerID {
			continue
		}
		if p.HasAnswered {
			return model.Player{}, false
		}
		rec.PlayerID = p.ID
		rec.Username = p.Username
		p.HasAnswered = true
		p.CurrentAnswer = &rec
		p.Score += rec.Points
		r.lastActive = time.Now()
		return *p, true
	}

	return model.Player{}, false
}

// ForceAnswerRest 超时强制收卷：未作答者记为零分占位
// 返回新生成的占位记录供台账追加，保证回合必然向前推进
func (r *RoomInstance) ForceAnswerRest(round int) []model.AnswerRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	var forced []model.AnswerRecord
	for i := range r.roomInfo.Players {
		p := &r.roomInfo.Players[i]
		if p.HasAnswered {
			continue
		}
		rec := model.NoAnswer(p.ID, p.Username, round)
		p.HasAnswered = true
		p.CurrentAnswer = &rec
		forced = append(forced, rec)
	}
	r.lastActive = time.Now()

	return forced
}

// AnsweredCount 已作答人数和总人数
func (r *RoomInstance) AnsweredCount() (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	answered := 0
	for _, p := range r.roomInfo.Players {
		if p.HasAnswered {
			answered++
		}
	}
	return answered, len(r.roomInfo.Players)
}

// AllAnswered 当前全部成员是否都已作答
func (r *RoomInstance) AllAnswered() bool {
	answered, total := r.AnsweredCount()
	return total > 0 && answered == total
}

// SetAllLocations 全员界面位置置位
func (r *RoomInstance) SetAllLocations(loc model.SessionLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.roomInfo.Players {
		r.locations[p.ID] = loc
	}
}

// SetLocation 单人界面位置置位
func (r *RoomInstance) SetLocation(playerID string, loc model.SessionLocation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[playerID] = loc
}

// Partition 按界面位置划分成员（用户名），用于赛后返回大厅流程
func (r *RoomInstance) Partition() (inLobby, onLeaderboard []string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.roomInfo.Players {
		if r.locations[p.ID] == model.LocationLeaderboard {
			onLeaderboard = append(onLeaderboard, p.Username)
		} else {
			inLobby = append(inLobby, p.Username)
		}
	}
	return inLobby, onLeaderboard
}

// ResetPlayer 单人回大厅：清零得分和作答状态
func (r *RoomInstance) ResetPlayer(playerID string) (model.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.roomInfo.Players {
		p := &r.roomInfo.Players[i]
		if p.ID != playerID {
			continue
		}
		p.Score = 0
		p.ResetRound()
		r.locations[playerID] = model.LocationLobby
		r.lastActive = time.Now()
		return *p, true
	}
	return model.Player{}, false
}

// ResetAllPlayers 整房重置：全员清零并回大厅
func (r *RoomInstance) ResetAllPlayers() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.roomInfo.Players {
		p := &r.roomInfo.Players[i]
		p.Score = 0
		p.ResetRound()
		r.locations[p.ID] = model.LocationLobby
	}
	r.lastActive = time.Now()
}

// AllInLobby 是否全员都已回到大厅
func (r *RoomInstance) AllInLobby() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.roomInfo.Players {
		if r.locations[p.ID] != model.LocationLobby {
			return false
		}
	}
	return len(r.roomInfo.Players) > 0
}

// Touch 刷新活跃时间
func (r *RoomInstance) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
}

// LastActiveTime 获取最后活跃时间
func (r *RoomInstance) LastActiveTime() time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastActive
}
