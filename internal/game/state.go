package game

import (
	"sync"
	"time"

	"sudooom.quiz.logic/internal/model"
)

// 对局状态机
const (
	StatusWaiting   = "waiting"
	StatusPlaying   = "playing"
	StatusReviewing = "reviewing"
	StatusFinished  = "finished"
)

// ReviewCursor 回顾阶段游标
// 按回合优先、玩家次之的顺序走完每条作答记录
type ReviewCursor struct {
	Round       int `json:"currentRound"`
	PlayerIndex int `json:"currentPlayerIndex"`
}

// State 对局状态数据
// 由 Game 独占持有，所有读写都在 Game 的锁内
type State struct {
	Status       string
	Mode         string
	TimerSeconds int
	TotalRounds  int
	CurrentRound int

	Pool           []model.Country // 本局候选池（选择模式的干扰项来源）
	Countries      []model.Country // 本局题目序列
	CurrentCountry *model.Country
	RoundStartTime time.Time

	// RoundResults 回合台账：每回合一条，只追加
	RoundResults []*model.RoundResult

	Review ReviewCursor
}

// NewState 创建等待开局的初始状态
func NewState() *State {
	return &State{Status: StatusWaiting}
}

// CurrentResult 当前回合的台账条目
func (st *State) CurrentResult() *model.RoundResult {
	return st.ResultForRound(st.CurrentRound)
}

// ResultForRound 指定回合的台账条目，不存在返回 nil
func (st *State) ResultForRound(round int) *model.RoundResult {
	if round < 1 || round > len(st.RoundResults) {
		return nil
	}
	return st.RoundResults[round-1]
}

// Game 一个房间的对局实例
// 互斥锁将该房间的全部对局变更串行化（每房一锁，绝不共享进程级锁）
// 定时器句柄至多各持有一个，被新状态取代时先取消
type Game struct {
	mu       sync.Mutex
	roomCode string
	st       *State

	// epoch 在定时器被整体取代时递增
	// 已调度回调捕获调度时的 epoch，过期回调自行失效
	epoch int64

	// closing 收盘已发起标记
	// 防止末人作答与超时并发触发双重收盘
	closing bool

	roundTimeout Timer // 回合超时
	nextRound    Timer // 下一回合/收盘延迟
}

// NewGame 创建对局实例
func NewGame(roomCode string) *Game {
	return &Game{
		roomCode: roomCode,
		st:       NewState(),
	}
}

// cancelTimers 取消全部在途定时器并使已出队的回调过期
// 必须持锁调用
func (g *Game) cancelTimers() {
	g.epoch++
	if g.roundTimeout != nil {
		g.roundTimeout.Cancel()
		g.roundTimeout = nil
	}
	if g.nextRound != nil {
		g.nextRound.Cancel()
		g.nextRound = nil
	}
}
