package model

import "time"

// 游戏模式：题目呈现方式的封闭集合
const (
	GameModeLocation = "location" // 地图点击
	GameModeFlag     = "flag"     // 多选项（看旗识国）
)

// RoomSettings 房间设置
// TimerSeconds 为 0 表示不限时
type RoomSettings struct {
	TotalRounds  int    `json:"totalRounds"`
	TimerSeconds int    `json:"timerSeconds"`
	Continent    string `json:"continent"`
}

// SettingsPatch 部分更新，只合并非 nil 字段
type SettingsPatch struct {
	TotalRounds  *int    `json:"totalRounds,omitempty"`
	TimerSeconds *int    `json:"timerSeconds,omitempty"`
	Continent    *string `json:"continent,omitempty"`
	Difficulty   *string `json:"difficulty,omitempty"`
	GameMode     *string `json:"gameMode,omitempty"`
}

// Room 房间数据（传输对象）
// 并发控制和生命周期管理在 room.RoomInstance，与本类型区分
type Room struct {
	Code       string       `json:"code"`
	HostID     string       `json:"hostId"`
	Difficulty string       `json:"difficulty"`
	GameMode   string       `json:"gameMode"`
	Settings   RoomSettings `json:"settings"`
	Status     string       `json:"status"`
	Players    []Player     `json:"players"`
	CreatedAt  time.Time    `json:"createdAt"`
}
