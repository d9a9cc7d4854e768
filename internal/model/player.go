package model

// SessionLocation 玩家当前所处的界面阶段
// 仅用于对局结束后的逐人返回大厅流程
type SessionLocation string

const (
	LocationLobby       SessionLocation = "lobby"
	LocationPlaying     SessionLocation = "playing"
	LocationLeaderboard SessionLocation = "leaderboard"
)

// Player 房间内的玩家
// ID 由接入层分配，进程内唯一；Username 在房间内大小写不敏感唯一
type Player struct {
	ID            string        `json:"id"`
	Username      string        `json:"username"`
	Score         int           `json:"score"`
	IsHost        bool          `json:"isHost"`
	HasAnswered   bool          `json:"hasAnswered"`
	CurrentAnswer *AnswerRecord `json:"currentAnswer,omitempty"`
}

// ResetRound 清除单回合作答状态
func (p *Player) ResetRound() {
	p.HasAnswered = false
	p.CurrentAnswer = nil
}

// LeaderboardEntry 排行榜条目，Rank 从 1 开始
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Username string `json:"username"`
	Score    int    `json:"score"`
}
