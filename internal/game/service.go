package game

import (
	"log/slog"
	"strings"
	"time"

	"sudooom.quiz.logic/internal/config"
	"sudooom.quiz.logic/internal/country"
	"sudooom.quiz.logic/internal/model"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// EventPublisher 下行事件发布接口
// 按房间广播 / 按玩家单发的发布订阅层由接入侧提供，这里只消费
type EventPublisher interface {
	BroadcastToRoom(roomCode, event string, data any) error
	SendToPlayer(playerID, event string, data any) error
}

// Service 对局编排器
// 驱动回合状态机：开局、收题、计时、收盘、回顾、返厅
// 同一房间的全部变更经由该房间 Game 实例的锁串行化
type Service struct {
	rooms     *room.Manager
	games     *Manager
	timers    Timers
	publisher EventPublisher
	selector  country.Selector
	scoring   country.Scoring
	cfg       config.GameConfig
	logger    *slog.Logger
}

// NewService 创建对局编排器
func NewService(
	rooms *room.Manager,
	games *Manager,
	timers Timers,
	publisher EventPublisher,
	selector country.Selector,
	scoring country.Scoring,
	cfg config.GameConfig,
) *Service {
	return &Service{
		rooms:     rooms,
		games:     games,
		timers:    timers,
		publisher: publisher,
		selector:  selector,
		scoring:   scoring,
		cfg:       cfg,
		logger:    slog.Default().With("component", "GameService"),
	}
}

// broadcast 发布房间广播，失败仅告警（单房故障不扩散）
func (s *Service) broadcast(roomCode, event string, data any) {
	if err := s.publisher.BroadcastToRoom(roomCode, event, data); err != nil {
		s.logger.Warn("Failed to broadcast", "roomCode", roomCode, "event", event, "error", err)
	}
}

// sendTo 发布玩家单发
func (s *Service) sendTo(playerID, event string, data any) {
	if err := s.publisher.SendToPlayer(playerID, event, data); err != nil {
		s.logger.Warn("Failed to send to player", "playerId", playerID, "event", event, "error", err)
	}
}

// StartGame 开局
// 从候选池按难度/大洲筛选乱序选题；题量不足时回合数收紧，
// 房间设置与对局状态同步更新（硬不变量：两者不允许分叉）
func (s *Service) StartGame(roomCode string, pool []model.Country) error {
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return err
	}

	g := s.games.GetOrCreate(r.Code())
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != StatusWaiting {
		return ErrInvalidStatus
	}

	snap := r.Snapshot()
	selected := s.selector.Select(pool, country.Filter{
		Difficulty: snap.Difficulty,
		Continent:  snap.Settings.Continent,
	}, snap.Settings.TotalRounds)
	if len(selected) == 0 {
		return ErrNoCountries
	}

	total := snap.Settings.TotalRounds
	if len(selected) < total {
		total = len(selected)
		r.SetTotalRounds(total)
	}

	g.st.Mode = snap.GameMode
	g.st.TimerSeconds = snap.Settings.TimerSeconds
	g.st.TotalRounds = total
	g.st.CurrentRound = 0
	g.st.Pool = pool
	g.st.Countries = selected
	g.st.RoundResults = nil
	g.st.Status = StatusPlaying

	r.ResetRoundFlags()
	r.SetStatus(room.StatusPlaying)
	r.SetAllLocations(model.LocationPlaying)

	settings := snap.Settings
	settings.TotalRounds = total
	s.broadcast(r.Code(), proto.EventGameStarted, proto.GameStartedPayload{
		Settings:     settings,
		TotalRounds:  total,
		TimerSeconds: settings.TimerSeconds,
	})

	s.logger.Info("Game started",
		"roomCode", r.Code(),
		"mode", g.st.Mode,
		"totalRounds", total,
		"timerSeconds", g.st.TimerSeconds)

	// 留出客户端过场时间后进入第一回合
	g.cancelTimers()
	epoch := g.epoch
	g.nextRound = s.timers.Schedule(r.Code(), s.cfg.StartGraceDelay, func() {
		s.onNextRound(r.Code(), epoch)
	})

	return nil
}

// onNextRound 定时回调：推进到下一回合
// epoch 不匹配说明该定时器已被新状态取代
func (s *Service) onNextRound(roomCode string, epoch int64) {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.epoch != epoch || g.st.Status != StatusPlaying {
		return
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return
	}

	s.startNextRoundLocked(g, r)
}

// startNextRoundLocked 回合推进内循环
// 必须持有 g.mu 调用
func (s *Service) startNextRoundLocked(g *Game, r *room.RoomInstance) {
	g.cancelTimers()
	g.closing = false
	r.ResetRoundFlags()

	g.st.CurrentRound++
	if g.st.CurrentRound > g.st.TotalRounds {
		s.beginReviewLocked(g, r)
		return
	}

	c := g.st.Countries[g.st.CurrentRound-1]
	g.st.CurrentCountry = &c
	g.st.RoundStartTime = time.Now()
	g.st.RoundResults = append(g.st.RoundResults, &model.RoundResult{
		Round:   g.st.CurrentRound,
		Country: c,
	})

	// 题目载荷绝不携带答案：地图模式不下发国名，
	// 选择模式附带乱序候选且不标记正确项
	question := proto.QuestionPayload{
		Code:      c.Code,
		Continent: c.Continent,
		Hint:      c.Capital,
	}
	if g.st.Mode == model.GameModeFlag {
		question.Options = s.selector.Choices(c, g.st.Pool, s.cfg.ChoiceCount)
	}

	s.broadcast(g.roomCode, proto.EventNewRound, proto.NewRoundPayload{
		RoundNumber:  g.st.CurrentRound,
		TotalRounds:  g.st.TotalRounds,
		TimerSeconds: g.st.TimerSeconds,
		Question:     question,
	})

	if g.st.TimerSeconds > 0 {
		epoch := g.epoch
		round := g.st.CurrentRound
		delay := time.Duration(g.st.TimerSeconds)*time.Second + s.cfg.TimerSafetyMargin
		g.roundTimeout = s.timers.Schedule(g.roomCode, delay, func() {
			s.onRoundTimeout(g.roomCode, epoch, round)
		})
	}
}

// SubmitAnswer 处理作答
// 未知玩家和重复作答静默忽略：网络抖动下的迟到/重发消息不得干扰他人
func (s *Service) SubmitAnswer(roomCode, playerID string, ans *proto.AnswerPayload) {
	g, ok := s.games.Get(roomCode)
	if !ok || ans == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != StatusPlaying || g.st.CurrentCountry == nil || g.closing {
		return
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return
	}

	rec := s.buildRecord(g, ans)

	// 判重置位与计分在房间锁内原子完成
	p, applied := r.ApplyAnswer(playerID, rec)
	if !applied {
		return
	}

	cur := g.st.CurrentResult()
	cur.Answers = append(cur.Answers, *p.CurrentAnswer)

	snap := r.Snapshot()
	answered, total := r.AnsweredCount()
	s.broadcast(roomCode, proto.EventPlayerAnswered, proto.PlayerAnsweredPayload{
		PlayerID:      p.ID,
		Username:      p.Username,
		Leaderboard:   Leaderboard(snap.Players),
		AnsweredCount: answered,
		TotalPlayers:  total,
	})

	if answered == total {
		s.finishEarlyLocked(g, r)
	}
}

// buildRecord 按游戏模式构造作答记录并计分
func (s *Service) buildRecord(g *Game, ans *proto.AnswerPayload) model.AnswerRecord {
	rec := model.AnswerRecord{
		Round:      g.st.CurrentRound,
		Answered:   true,
		AnsweredAt: time.Now(),
	}

	switch g.st.Mode {
	case model.GameModeFlag:
		rec.CountryCode = ans.CountryCode
		rec.Correct = strings.EqualFold(ans.CountryCode, g.st.CurrentCountry.Code)
		elapsed := time.Since(g.st.RoundStartTime)
		allotted := time.Duration(g.st.TimerSeconds) * time.Second
		rec.Points = s.scoring.ChoicePoints(rec.Correct, elapsed, allotted)

	default: // 地图点击：距离与命中由外部几何模块随载荷给出
		rec.Lat = ans.Lat
		rec.Lng = ans.Lng
		rec.DistanceKm = ans.DistanceKm
		rec.Correct = ans.Correct != nil && *ans.Correct
		distance := -1.0
		if ans.DistanceKm != nil {
			distance = *ans.DistanceKm
		}
		rec.Points = s.scoring.LocationPoints(distance, rec.Correct)
	}

	return rec
}

// finishEarlyLocked 全员作答提前收盘
// 取消全长计时，广播压缩窗口，留一小段共同缓冲再收盘
func (s *Service) finishEarlyLocked(g *Game, r *room.RoomInstance) {
	if g.closing {
		return
	}
	g.closing = true

	if g.roundTimeout != nil {
		g.roundTimeout.Cancel()
		g.roundTimeout = nil
	}

	if g.st.TimerSeconds > 0 {
		s.broadcast(g.roomCode, proto.EventAllPlayersAnswered, proto.AllPlayersAnsweredPayload{
			CompressedTimeRemaining: s.cfg.AllAnsweredDelay.Seconds(),
		})
	}

	epoch := g.epoch
	round := g.st.CurrentRound
	g.nextRound = s.timers.Schedule(g.roomCode, s.cfg.AllAnsweredDelay, func() {
		s.onEndRound(g.roomCode, epoch, round)
	})
}

// onRoundTimeout 定时回调：回合超时
// 未作答者强制记零分占位，保证回合必然向前推进
func (s *Service) onRoundTimeout(roomCode string, epoch int64, round int) {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.epoch != epoch || g.closing || g.st.Status != StatusPlaying || g.st.CurrentRound != round {
		return
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return
	}

	g.closing = true

	forced := r.ForceAnswerRest(round)
	if cur := g.st.CurrentResult(); cur != nil {
		cur.Answers = append(cur.Answers, forced...)
	}

	s.logger.Info("Round timed out", "roomCode", roomCode, "round", round, "forcedAnswers", len(forced))

	s.endRoundLocked(g, r)
}

// onEndRound 定时回调：压缩窗口结束后的收盘
func (s *Service) onEndRound(roomCode string, epoch int64, round int) {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.epoch != epoch || g.st.Status != StatusPlaying || g.st.CurrentRound != round {
		return
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return
	}

	s.endRoundLocked(g, r)
}

// endRoundLocked 收盘：公布答案和榜单，排程下一回合
// 台账在此处按当前成员补全未作答占位，形成该回合的成员快照
func (s *Service) endRoundLocked(g *Game, r *room.RoomInstance) {
	if g.roundTimeout != nil {
		g.roundTimeout.Cancel()
		g.roundTimeout = nil
	}

	cur := g.st.CurrentResult()
	if cur == nil {
		return
	}

	snap := r.Snapshot()
	for _, p := range snap.Players {
		if cur.FindAnswer(p.ID) == nil {
			cur.Answers = append(cur.Answers, model.NoAnswer(p.ID, p.Username, cur.Round))
		}
	}

	s.broadcast(g.roomCode, proto.EventRoundComplete, proto.RoundCompletePayload{
		RoundNumber:   cur.Round,
		CorrectAnswer: cur.Country,
		Leaderboard:   Leaderboard(snap.Players),
	})

	epoch := g.epoch
	g.nextRound = s.timers.Schedule(g.roomCode, s.cfg.RevealDelay, func() {
		s.onNextRound(g.roomCode, epoch)
	})
}

// HandleDisconnect 成员断线/离开
// 中途离线不是错误：若因此剩余成员全部已作答，按全员作答路径收盘
// 末人离开即删除房间，在途定时器随对局移除一并取消
func (s *Service) HandleDisconnect(roomCode, playerID string) {
	removed, newHostID, deleted, err := s.rooms.LeaveRoom(roomCode, playerID)
	if err != nil {
		return
	}

	if deleted {
		s.games.Remove(roomCode)
		return
	}

	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return
	}

	s.broadcast(roomCode, proto.EventPlayerLeft, proto.PlayerLeftPayload{
		Player:    removed,
		NewHostID: newHostID,
		Room:      r.Snapshot(),
	})

	g, ok := s.games.Get(roomCode)
	if !ok {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status == StatusPlaying && !g.closing && r.AllAnswered() {
		s.finishEarlyLocked(g, r)
	}
}

// RoomExpired 实现 room.EvictNotifier
// 注册表淘汰赛后空闲房间前回调：广播过期并释放对局
func (s *Service) RoomExpired(roomCode string) {
	s.broadcast(roomCode, proto.EventRoomExpired, proto.RoomExpiredPayload{
		RoomCode: roomCode,
		Reason:   "房间长时间无活动，已被清理",
	})
	s.games.Remove(roomCode)
}
