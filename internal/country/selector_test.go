package country

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.quiz.logic/internal/model"
)

var testPool = []model.Country{
	{Code: "FR", Name: "France", Continent: "Europe", Capital: "Paris", Difficulty: "easy"},
	{Code: "DE", Name: "Germany", Continent: "Europe", Capital: "Berlin", Difficulty: "easy"},
	{Code: "IT", Name: "Italy", Continent: "Europe", Capital: "Rome", Difficulty: "easy"},
	{Code: "JP", Name: "Japan", Continent: "Asia", Capital: "Tokyo", Difficulty: "easy"},
	{Code: "MN", Name: "Mongolia", Continent: "Asia", Capital: "Ulaanbaatar", Difficulty: "hard"},
	{Code: "BR", Name: "Brazil", Continent: "South America", Capital: "Brasília", Difficulty: "medium"},
	{Code: "TD", Name: "Chad", Continent: "Africa", Capital: "N'Djamena", Difficulty: "hard"},
}

func seededSelector(seed uint64) *RandomSelector {
	return NewRandomSelector(rand.New(rand.NewPCG(seed, seed)))
}

func TestSelect_FilterByContinent(t *testing.T) {
	s := seededSelector(1)

	got := s.Select(testPool, Filter{Continent: "Europe"}, 10)
	require.Len(t, got, 3)
	for _, c := range got {
		assert.Equal(t, "Europe", c.Continent)
	}
}

func TestSelect_FilterByDifficulty(t *testing.T) {
	s := seededSelector(1)

	got := s.Select(testPool, Filter{Difficulty: "hard"}, 10)
	require.Len(t, got, 2)
	for _, c := range got {
		assert.Equal(t, "hard", c.Difficulty)
	}
}

func TestSelect_AllIsWildcard(t *testing.T) {
	s := seededSelector(1)

	got := s.Select(testPool, Filter{Difficulty: "all", Continent: "ALL"}, len(testPool))
	assert.Len(t, got, len(testPool))
}

func TestSelect_ClampsToAvailable(t *testing.T) {
	s := seededSelector(1)

	// 请求数超过筛选结果时收紧
	got := s.Select(testPool, Filter{Continent: "Asia"}, 10)
	assert.Len(t, got, 2)

	got = s.Select(testPool, Filter{Continent: "Antarctica"}, 10)
	assert.Empty(t, got)
}

func TestSelect_SeededDeterminism(t *testing.T) {
	a := seededSelector(42).Select(testPool, Filter{}, 5)
	b := seededSelector(42).Select(testPool, Filter{}, 5)

	assert.Equal(t, a, b)
}

func TestSelect_NoDuplicates(t *testing.T) {
	s := seededSelector(7)

	got := s.Select(testPool, Filter{}, len(testPool))
	seen := make(map[string]bool)
	for _, c := range got {
		assert.False(t, seen[c.Code], "重复题目: %s", c.Code)
		seen[c.Code] = true
	}
}

func TestChoices_ExactlyOneCorrect(t *testing.T) {
	s := seededSelector(3)
	correct := testPool[0]

	options := s.Choices(correct, testPool, 4)
	require.Len(t, options, 4)

	count := 0
	for _, o := range options {
		if o.Code == correct.Code {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestChoices_ClampsToPool(t *testing.T) {
	s := seededSelector(3)
	small := testPool[:2]

	// 候选不足时返回全部可用项
	options := s.Choices(small[0], small, 4)
	assert.Len(t, options, 2)
}

func TestScoring_LocationPoints(t *testing.T) {
	scoring := NewDefaultScoring()

	// 命中满分
	assert.Equal(t, maxRoundPoints, scoring.LocationPoints(123.0, true))

	// 零距离未命中仍拿满分 (线性衰减起点)
	assert.Equal(t, maxRoundPoints, scoring.LocationPoints(0, false))

	// 半程半分
	assert.Equal(t, maxRoundPoints/2, scoring.LocationPoints(maxScoredDistanceKm/2, false))

	// 超出有效距离为零
	assert.Zero(t, scoring.LocationPoints(maxScoredDistanceKm, false))
	assert.Zero(t, scoring.LocationPoints(99999, false))

	// 距离缺失 (-1 哨兵) 为零
	assert.Zero(t, scoring.LocationPoints(-1, false))
}

func TestScoring_ChoicePoints(t *testing.T) {
	scoring := NewDefaultScoring()
	allotted := 30 * time.Second

	// 答错零分，再快也一样
	assert.Zero(t, scoring.ChoicePoints(false, 0, allotted))

	// 不限时正确拿满分
	assert.Equal(t, maxRoundPoints, scoring.ChoicePoints(true, 5*time.Second, 0))

	// 即答满分
	assert.Equal(t, maxRoundPoints, scoring.ChoicePoints(true, 0, allotted))

	// 压哨保底一半
	assert.Equal(t, maxRoundPoints/2, scoring.ChoicePoints(true, allotted, allotted))

	// 超时作答按压哨处理
	assert.Equal(t, maxRoundPoints/2, scoring.ChoicePoints(true, 2*allotted, allotted))

	// 中途作答介于两者之间
	mid := scoring.ChoicePoints(true, 15*time.Second, allotted)
	assert.Greater(t, mid, maxRoundPoints/2)
	assert.Less(t, mid, maxRoundPoints)
}
