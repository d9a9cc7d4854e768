package nats

// NATS Subject 常量定义
const (
	// SubjectUpstream Access -> Logic 上行消息
	SubjectUpstream = "quiz.logic.upstream"

	// QueueGroup Logic 服务队列组名称
	QueueGroup = "quiz-logic"

	// 下行 Subject 前缀
	// 房间广播: quiz.room.{CODE}，接入层按房间订阅后向各连接扇出
	// 玩家单发: quiz.player.{playerId}
	subjectRoomPrefix   = "quiz.room."
	subjectPlayerPrefix = "quiz.player."
)

// RoomSubject 构建房间广播 Subject
func RoomSubject(roomCode string) string {
	return subjectRoomPrefix + roomCode
}

// PlayerSubject 构建玩家单发 Subject
func PlayerSubject(playerID string) string {
	return subjectPlayerPrefix + playerID
}
