package room

import "errors"

// 房间错误定义

var (
	ErrRoomNotFound  = errors.New("ROOM_NOT_FOUND")
	ErrInvalidCode   = errors.New("INVALID_ROOM_CODE")
	ErrRoomFull      = errors.New("ROOM_FULL")
	ErrGameStarted   = errors.New("GAME_ALREADY_STARTED")
	ErrUsernameTaken = errors.New("USERNAME_TAKEN")
	ErrNotInRoom     = errors.New("NOT_IN_ROOM")
	ErrNotRoomHost   = errors.New("NOT_ROOM_HOST")
)
