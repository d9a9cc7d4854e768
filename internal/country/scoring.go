package country

import "time"

// Scoring 计分规则接口
// 具体曲线常量由外部协作方拥有，这里的默认实现仅保证核心可独立运行
type Scoring interface {
	// LocationPoints 地图点击模式：按距离计分
	LocationPoints(distanceKm float64, correct bool) int

	// ChoicePoints 选择模式：按正确性和作答耗时计分
	// allotted 为 0 表示不限时，正确即得满分
	ChoicePoints(correct bool, elapsed, allotted time.Duration) int
}

const (
	maxRoundPoints = 1000

	// 距离超过该值不再得分
	maxScoredDistanceKm = 5000.0
)

// DefaultScoring 默认计分实现
type DefaultScoring struct{}

// NewDefaultScoring 创建默认计分规则
func NewDefaultScoring() *DefaultScoring {
	return &DefaultScoring{}
}

// LocationPoints 实现 Scoring
// 命中得满分，否则按距离线性衰减到 0
func (DefaultScoring) LocationPoints(distanceKm float64, correct bool) int {
	if correct {
		return maxRoundPoints
	}
	if distanceKm < 0 || distanceKm >= maxScoredDistanceKm {
		return 0
	}
	return int(maxRoundPoints * (1 - distanceKm/maxScoredDistanceKm))
}

// ChoicePoints 实现 Scoring
// 答错得 0 分；答对按剩余时间比例计分，保底一半
func (DefaultScoring) ChoicePoints(correct bool, elapsed, allotted time.Duration) int {
	if !correct {
		return 0
	}
	if allotted <= 0 {
		return maxRoundPoints
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > allotted {
		elapsed = allotted
	}

	remaining := float64(allotted-elapsed) / float64(allotted)
	points := float64(maxRoundPoints) * (0.5 + 0.5*remaining)
	return int(points)
}
