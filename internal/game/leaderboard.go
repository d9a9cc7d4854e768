package game

import (
	"sort"

	"sudooom.quiz.logic/internal/model"
)

// Leaderboard 计算排行榜：按得分降序，平分保持原有相对顺序
// 名次为排序后下标 + 1；实时榜和终榜走同一条路径
func Leaderboard(players []model.Player) []model.LeaderboardEntry {
	entries := make([]model.LeaderboardEntry, 0, len(players))
	for _, p := range players {
		entries = append(entries, model.LeaderboardEntry{
			PlayerID: p.ID,
			Username: p.Username,
			Score:    p.Score,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	return entries
}
