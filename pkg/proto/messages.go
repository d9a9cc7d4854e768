package proto

import (
	"sudooom.quiz.logic/internal/model"
)

// ============== 上行消息 (Access -> Logic) ==============

// UpstreamMessage 上行消息封装
// Room 和 Game 至多一个非空
type UpstreamMessage struct {
	PlayerID string       `json:"playerId"`
	Room     *RoomRequest `json:"room,omitempty"`
	Game     *GameRequest `json:"game,omitempty"`
}

// 房间操作
const (
	RoomActionCreate         = "CREATE"
	RoomActionJoin           = "JOIN"
	RoomActionLeave          = "LEAVE"
	RoomActionUpdateSettings = "UPDATE_SETTINGS"
)

// RoomRequest 房间请求
type RoomRequest struct {
	Action     string               `json:"action"`
	ReqID      string               `json:"reqId,omitempty"`
	RoomCode   string               `json:"roomCode,omitempty"`
	Username   string               `json:"username,omitempty"`
	Difficulty string               `json:"difficulty,omitempty"`
	GameMode   string               `json:"gameMode,omitempty"`
	Settings   *model.SettingsPatch `json:"settings,omitempty"`
}

// 对局操作
const (
	GameActionStart        = "START_GAME"
	GameActionSubmitAnswer = "SUBMIT_ANSWER"
	GameActionNextResult   = "NEXT_RESULT"
	GameActionSkipQuestion = "SKIP_QUESTION"
	GameActionReturnLobby  = "RETURN_LOBBY"
	GameActionResetLobby   = "RESET_LOBBY"
)

// GameRequest 对局请求
type GameRequest struct {
	Action    string          `json:"action"`
	RoomCode  string          `json:"roomCode"`
	Countries []model.Country `json:"countries,omitempty"` // START_GAME 的候选题库
	Answer    *AnswerPayload  `json:"answer,omitempty"`
}

// AnswerPayload 作答载荷，按游戏模式区分字段
// 地图模式：Lat/Lng/DistanceKm/Correct（距离与命中由外部几何模块计算）
// 选择模式：CountryCode
type AnswerPayload struct {
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
	DistanceKm  *float64 `json:"distanceKm,omitempty"`
	Correct     *bool    `json:"correct,omitempty"`
	CountryCode string   `json:"countryCode,omitempty"`
}

// ============== 下行消息 (Logic -> Access) ==============

// 下行事件名
const (
	EventRoomCreated        = "roomCreated"
	EventRoomJoined         = "roomJoined"
	EventJoinError          = "joinError"
	EventPlayerJoined       = "playerJoined"
	EventPlayerLeft         = "playerLeft"
	EventSettingsUpdated    = "settingsUpdated"
	EventGameStarted        = "gameStarted"
	EventNewRound           = "newRound"
	EventPlayerAnswered     = "playerAnswered"
	EventAllPlayersAnswered = "allPlayersAnswered"
	EventRoundComplete      = "roundComplete"
	EventReviewPhaseStarted = "reviewPhaseStarted"
	EventShowPlayerResult   = "showPlayerResult"
	EventGameComplete       = "gameComplete"
	EventYouReturnedToLobby = "youReturnedToLobby"
	EventPlayerArrived      = "playerArrivedInLobby"
	EventReturnedToLobby    = "returnedToLobby"
	EventRoomExpired        = "roomExpired"
	EventError              = "error"
)

// Envelope 下行消息封装，按事件名携带对应载荷
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// RoomPayload 房间快照载荷
type RoomPayload struct {
	Room *model.Room `json:"room"`
}

// ErrorPayload 错误通知载荷
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ReqID   string `json:"reqId,omitempty"`
}

// PlayerJoinedPayload 新成员加入
type PlayerJoinedPayload struct {
	Player model.Player `json:"player"`
	Room   *model.Room  `json:"room"`
}

// PlayerLeftPayload 成员离开，含可能的房主变更
type PlayerLeftPayload struct {
	Player    model.Player `json:"player"`
	NewHostID string       `json:"newHostId,omitempty"`
	Room      *model.Room  `json:"room"`
}

// SettingsUpdatedPayload 设置变更
type SettingsUpdatedPayload struct {
	Room *model.Room `json:"room"`
}

// GameStartedPayload 对局开始
type GameStartedPayload struct {
	Settings     model.RoomSettings `json:"settings"`
	TotalRounds  int                `json:"totalRounds"`
	TimerSeconds int                `json:"timerSeconds"`
}

// QuestionPayload 回合题目，绝不携带答案
// 地图模式只下发 code/continent/hint；选择模式附带乱序候选项
type QuestionPayload struct {
	Code      string               `json:"code"`
	Continent string               `json:"continent"`
	Hint      string               `json:"hint,omitempty"`
	Options   []model.ChoiceOption `json:"options,omitempty"`
}

// NewRoundPayload 回合开始
type NewRoundPayload struct {
	RoundNumber  int             `json:"roundNumber"`
	TotalRounds  int             `json:"totalRounds"`
	TimerSeconds int             `json:"timerSeconds"`
	Question     QuestionPayload `json:"question"`
}

// PlayerAnsweredPayload 有玩家作答的增量通知
type PlayerAnsweredPayload struct {
	PlayerID      string                   `json:"playerId"`
	Username      string                   `json:"username"`
	Leaderboard   []model.LeaderboardEntry `json:"leaderboard"`
	AnsweredCount int                      `json:"answeredCount"`
	TotalPlayers  int                      `json:"totalPlayers"`
}

// AllPlayersAnsweredPayload 全员作答，计时压缩
type AllPlayersAnsweredPayload struct {
	CompressedTimeRemaining float64 `json:"compressedTimeRemaining"`
}

// RoundCompletePayload 回合结束，公布答案
type RoundCompletePayload struct {
	RoundNumber   int                      `json:"roundNumber"`
	CorrectAnswer model.Country            `json:"correctAnswer"`
	Leaderboard   []model.LeaderboardEntry `json:"leaderboard"`
}

// ReviewPhaseStartedPayload 回顾阶段开始
// 客户端据 HostID 做主持人控件门控
type ReviewPhaseStartedPayload struct {
	HostID       string `json:"hostId"`
	TotalRounds  int    `json:"totalRounds"`
	TotalPlayers int    `json:"totalPlayers"`
}

// ShowPlayerResultPayload 回顾单条展示
type ShowPlayerResultPayload struct {
	Round                int                `json:"round"`
	TotalRounds          int                `json:"totalRounds"`
	Player               model.Player       `json:"player"`
	AnswerRecord         model.AnswerRecord `json:"answerRecord"`
	Question             model.Country      `json:"question"`
	IsLastPlayerForRound bool               `json:"isLastPlayerForRound"`
	IsLastRound          bool               `json:"isLastRound"`
}

// GameCompletePayload 对局结束
type GameCompletePayload struct {
	FinalLeaderboard  []model.LeaderboardEntry `json:"finalLeaderboard"`
	Winner            *model.LeaderboardEntry  `json:"winner,omitempty"`
	PerRoundBreakdown []*model.RoundResult     `json:"perRoundBreakdown"`
}

// LobbyPartition 大厅/榜单人员划分
type LobbyPartition struct {
	InLobby       []string `json:"inLobby"`
	OnLeaderboard []string `json:"onLeaderboard"`
}

// YouReturnedToLobbyPayload 个人返回大厅（发给请求者）
type YouReturnedToLobbyPayload struct {
	Room      *model.Room    `json:"room"`
	Partition LobbyPartition `json:"partition"`
}

// PlayerArrivedPayload 有玩家返回大厅（广播）
type PlayerArrivedPayload struct {
	PlayerID  string         `json:"playerId"`
	Username  string         `json:"username"`
	Partition LobbyPartition `json:"partition"`
}

// ReturnedToLobbyPayload 整房重置回大厅
type ReturnedToLobbyPayload struct {
	Room *model.Room `json:"room"`
}

// RoomExpiredPayload 空闲房间过期清理
type RoomExpiredPayload struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}
