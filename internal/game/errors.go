package game

import "errors"

// 对局相关错误定义

var (
	// ErrGameNotFound 对局不存在
	ErrGameNotFound = errors.New("GAME_NOT_FOUND")

	// ErrInvalidStatus 当前状态不允许该操作
	ErrInvalidStatus = errors.New("INVALID_GAME_STATUS")

	// ErrNoCountries 筛选后题库为空，无法开局
	ErrNoCountries = errors.New("NO_COUNTRIES_AVAILABLE")
)
