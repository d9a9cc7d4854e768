package model

import "time"

// AnswerRecord 单个玩家在某一回合的作答记录
// 写入台账后不可变；Answered=false 表示超时/离线的占位记录
type AnswerRecord struct {
	PlayerID    string    `json:"playerId"`
	Username    string    `json:"username"`
	Round       int       `json:"round"`
	Answered    bool      `json:"answered"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	DistanceKm  *float64  `json:"distanceKm,omitempty"`
	CountryCode string    `json:"countryCode,omitempty"`
	Correct     bool      `json:"correct"`
	Points      int       `json:"points"`
	AnsweredAt  time.Time `json:"answeredAt,omitempty"`
}

// NoAnswer 构造标准的未作答占位记录
func NoAnswer(playerID, username string, round int) AnswerRecord {
	return AnswerRecord{
		PlayerID: playerID,
		Username: username,
		Round:    round,
		Answered: false,
		Correct:  false,
		Points:   0,
	}
}

// RoundResult 单回合台账条目：题目 + 该回合全部作答记录
// 每回合开始时追加，此后只追加记录，不回写历史回合
type RoundResult struct {
	Round   int            `json:"round"`
	Country Country        `json:"country"`
	Answers []AnswerRecord `json:"answers"`
}

// FindAnswer 按玩家查找该回合的作答记录
func (r *RoundResult) FindAnswer(playerID string) *AnswerRecord {
	for i := range r.Answers {
		if r.Answers[i].PlayerID == playerID {
			return &r.Answers[i]
		}
	}
	return nil
}
