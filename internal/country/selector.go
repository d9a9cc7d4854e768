package country

import (
	"math/rand/v2"
	"strings"
	"sync"

	"sudooom.quiz.logic/internal/model"
)

// Filter 题目筛选条件，空字符串或 "all" 表示不过滤
type Filter struct {
	Difficulty string
	Continent  string
}

// Selector 题目选取接口
// 随机性隔离在实现内部，测试可注入固定种子
type Selector interface {
	// Select 从候选池中按条件筛选并乱序返回至多 n 个题目
	Select(pool []model.Country, filter Filter, n int) []model.Country

	// Choices 返回乱序的候选项列表：1 个正确 + 至多 n-1 个干扰项
	// 返回值不携带任何正确性标记
	Choices(correct model.Country, pool []model.Country, n int) []model.ChoiceOption
}

// RandomSelector 基于可注入随机源的默认实现
type RandomSelector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSelector 创建题目选取器
// rng 为 nil 时使用进程级默认随机源
func NewRandomSelector(rng *rand.Rand) *RandomSelector {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandomSelector{rng: rng}
}

// Select 实现 Selector
func (s *RandomSelector) Select(pool []model.Country, filter Filter, n int) []model.Country {
	filtered := make([]model.Country, 0, len(pool))
	for _, c := range pool {
		if !matches(filter.Difficulty, c.Difficulty) {
			continue
		}
		if !matches(filter.Continent, c.Continent) {
			continue
		}
		filtered = append(filtered, c)
	}

	s.mu.Lock()
	s.rng.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})
	s.mu.Unlock()

	if n > len(filtered) {
		n = len(filtered)
	}
	return filtered[:n]
}

// Choices 实现 Selector
func (s *RandomSelector) Choices(correct model.Country, pool []model.Country, n int) []model.ChoiceOption {
	distractors := make([]model.Country, 0, len(pool))
	for _, c := range pool {
		if c.Code != correct.Code {
			distractors = append(distractors, c)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rng.Shuffle(len(distractors), func(i, j int) {
		distractors[i], distractors[j] = distractors[j], distractors[i]
	})

	count := n - 1
	if count > len(distractors) {
		count = len(distractors)
	}

	options := make([]model.ChoiceOption, 0, count+1)
	options = append(options, model.ChoiceOption{Name: correct.Name, Code: correct.Code})
	for _, c := range distractors[:count] {
		options = append(options, model.ChoiceOption{Name: c.Name, Code: c.Code})
	}

	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return options
}

// matches 筛选值匹配，"all"/空值视为通配
func matches(want, got string) bool {
	if want == "" || strings.EqualFold(want, "all") {
		return true
	}
	return strings.EqualFold(want, got)
}
