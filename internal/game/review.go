package game

import (
	"sudooom.quiz.logic/internal/model"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// 回顾阶段：赛后由主持人节奏控制，逐条展示每个(回合,玩家)的作答。
// 游标走的是回合台账里的成员快照，不是实时成员列表：
// 中途离开的玩家仍出现在其作答过的回合里，回顾期间的人员变动不会移位。

// beginReviewLocked 全部回合耗尽，进入回顾阶段
// 必须持有 g.mu 调用
func (s *Service) beginReviewLocked(g *Game, r *room.RoomInstance) {
	g.cancelTimers()
	g.st.Status = StatusReviewing
	g.st.CurrentCountry = nil
	g.st.Review = ReviewCursor{Round: 1, PlayerIndex: 0}
	r.SetStatus(room.StatusReviewing)

	snap := r.Snapshot()
	s.broadcast(g.roomCode, proto.EventReviewPhaseStarted, proto.ReviewPhaseStartedPayload{
		HostID:       snap.HostID,
		TotalRounds:  g.st.TotalRounds,
		TotalPlayers: len(snap.Players),
	})

	s.sendReviewDataLocked(g, r)
}

// sendReviewDataLocked 发出当前游标指向的一条展示
// 游标指向的回合没有台账条目时（从未进行过的回合）直接收官，不得卡死
func (s *Service) sendReviewDataLocked(g *Game, r *room.RoomInstance) {
	entry := g.st.ResultForRound(g.st.Review.Round)
	if entry == nil || len(entry.Answers) == 0 {
		s.finishGameLocked(g, r)
		return
	}

	if g.st.Review.PlayerIndex >= len(entry.Answers) {
		g.st.Review.PlayerIndex = len(entry.Answers) - 1
	}
	rec := entry.Answers[g.st.Review.PlayerIndex]

	// 仍在房间的成员取实时数据，已离开的由记录还原
	player := model.Player{ID: rec.PlayerID, Username: rec.Username}
	for _, p := range r.Snapshot().Players {
		if p.ID == rec.PlayerID {
			player = p
			break
		}
	}

	isLastPlayer := g.st.Review.PlayerIndex == len(entry.Answers)-1
	isLastRound := isLastPlayer && g.st.Review.Round >= len(g.st.RoundResults)

	s.broadcast(g.roomCode, proto.EventShowPlayerResult, proto.ShowPlayerResultPayload{
		Round:                g.st.Review.Round,
		TotalRounds:          g.st.TotalRounds,
		Player:               player,
		AnswerRecord:         rec,
		Question:             entry.Country,
		IsLastPlayerForRound: isLastPlayer,
		IsLastRound:          isLastRound,
	})
}

// ShowNextPlayerResult 推进回顾游标并发出下一条展示
// 主持人专属操作，门控在边界层完成
func (s *Service) ShowNextPlayerResult(roomCode string) error {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return ErrGameNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != StatusReviewing {
		return ErrInvalidStatus
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return err
	}

	entry := g.st.ResultForRound(g.st.Review.Round)
	if entry == nil {
		s.finishGameLocked(g, r)
		return nil
	}

	g.st.Review.PlayerIndex++
	if g.st.Review.PlayerIndex >= len(entry.Answers) {
		// 本回合走完，换到下一回合第一人
		g.st.Review.Round++
		g.st.Review.PlayerIndex = 0
		if g.st.Review.Round > g.st.TotalRounds || g.st.ResultForRound(g.st.Review.Round) == nil {
			s.finishGameLocked(g, r)
			return nil
		}
	}

	s.sendReviewDataLocked(g, r)
	return nil
}

// SkipToNextQuestion 跳过本回合剩余玩家，直达下一回合第一人
// 主持人专属操作
func (s *Service) SkipToNextQuestion(roomCode string) error {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return ErrGameNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != StatusReviewing {
		return ErrInvalidStatus
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return err
	}

	g.st.Review.Round++
	g.st.Review.PlayerIndex = 0
	if g.st.Review.Round > g.st.TotalRounds || g.st.ResultForRound(g.st.Review.Round) == nil {
		s.finishGameLocked(g, r)
		return nil
	}

	s.sendReviewDataLocked(g, r)
	return nil
}

// finishGameLocked 收官：终榜 + 逐回合明细
// 核心不自动重置房间，各玩家自行发起返回大厅
func (s *Service) finishGameLocked(g *Game, r *room.RoomInstance) {
	g.cancelTimers()
	g.st.Status = StatusFinished
	r.SetStatus(room.StatusFinished)
	r.SetAllLocations(model.LocationLeaderboard)
	r.Touch()

	snap := r.Snapshot()
	lb := Leaderboard(snap.Players)
	var winner *model.LeaderboardEntry
	if len(lb) > 0 {
		w := lb[0]
		winner = &w
	}

	s.broadcast(g.roomCode, proto.EventGameComplete, proto.GameCompletePayload{
		FinalLeaderboard:  lb,
		Winner:            winner,
		PerRoundBreakdown: g.st.RoundResults,
	})

	s.logger.Info("Game complete", "roomCode", g.roomCode, "rounds", len(g.st.RoundResults))
}

// PlayerReturnToLobby 单人返回大厅
// 请求者收到个人回执，其余成员收到广播；两者都携带最新的位置划分，
// 让房间可以异步地一人一人回到大厅，不强迫还在看榜的人离开
func (s *Service) PlayerReturnToLobby(roomCode, playerID string) error {
	g, ok := s.games.Get(roomCode)
	if !ok {
		return ErrGameNotFound
	}
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.st.Status != StatusFinished {
		return ErrInvalidStatus
	}
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return err
	}

	p, ok := r.ResetPlayer(playerID)
	if !ok {
		return room.ErrNotInRoom
	}

	inLobby, onLeaderboard := r.Partition()
	partition := proto.LobbyPartition{
		InLobby:       inLobby,
		OnLeaderboard: onLeaderboard,
	}

	s.sendTo(playerID, proto.EventYouReturnedToLobby, proto.YouReturnedToLobbyPayload{
		Room:      r.Snapshot(),
		Partition: partition,
	})
	s.broadcast(roomCode, proto.EventPlayerArrived, proto.PlayerArrivedPayload{
		PlayerID:  playerID,
		Username:  p.Username,
		Partition: partition,
	})

	// 末人归位后整房回到等待态，可直接开下一局
	if r.AllInLobby() {
		g.cancelTimers()
		g.st = NewState()
		g.closing = false
		r.SetStatus(room.StatusWaiting)
	}

	return nil
}

// ResetToLobby 主持人整房重置
// 全员清零，对局状态整体替换为绑定当前设置的全新实例
func (s *Service) ResetToLobby(roomCode string) error {
	r, err := s.rooms.Get(roomCode)
	if err != nil {
		return err
	}

	g := s.games.GetOrCreate(r.Code())
	g.mu.Lock()
	defer g.mu.Unlock()

	g.cancelTimers()
	g.st = NewState()
	g.closing = false

	r.ResetAllPlayers()
	r.SetStatus(room.StatusWaiting)

	s.broadcast(r.Code(), proto.EventReturnedToLobby, proto.ReturnedToLobbyPayload{
		Room: r.Snapshot(),
	})

	return nil
}
