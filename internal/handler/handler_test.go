package handler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.quiz.logic/internal/config"
	"sudooom.quiz.logic/internal/country"
	"sudooom.quiz.logic/internal/game"
	"sudooom.quiz.logic/internal/model"
	"sudooom.quiz.logic/internal/room"
	"sudooom.quiz.logic/pkg/proto"
)

// noopTimer 测试用空定时器
type noopTimer struct{}

func (noopTimer) Cancel() bool { return false }

// noopTimers 测试用调度器：不触发任何回调
type noopTimers struct{}

func (noopTimers) Schedule(target string, delay time.Duration, fn func()) game.Timer {
	return noopTimer{}
}

// capturedEvent 记录一次发布
type capturedEvent struct {
	Target string
	Event  string
	Data   any
}

// capturingPublisher 收集全部下行事件
type capturingPublisher struct {
	mu         sync.Mutex
	broadcasts []capturedEvent
	directs    []capturedEvent
}

func (p *capturingPublisher) BroadcastToRoom(roomCode, event string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.broadcasts = append(p.broadcasts, capturedEvent{Target: roomCode, Event: event, Data: data})
	return nil
}

func (p *capturingPublisher) SendToPlayer(playerID, event string, data any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.directs = append(p.directs, capturedEvent{Target: playerID, Event: event, Data: data})
	return nil
}

func (p *capturingPublisher) lastDirect(event string) (capturedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.directs) - 1; i >= 0; i-- {
		if p.directs[i].Event == event {
			return p.directs[i], true
		}
	}
	return capturedEvent{}, false
}

func (p *capturingPublisher) lastBroadcast(event string) (capturedEvent, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(p.broadcasts) - 1; i >= 0; i-- {
		if p.broadcasts[i].Event == event {
			return p.broadcasts[i], true
		}
	}
	return capturedEvent{}, false
}

func newTestHandler(t *testing.T) (*Handler, *room.Manager, *capturingPublisher) {
	t.Helper()

	rooms := room.NewManager(8, 6, time.Hour, time.Hour)
	t.Cleanup(rooms.Shutdown)

	publisher := &capturingPublisher{}
	svc := game.NewService(
		rooms,
		game.NewManager(),
		noopTimers{},
		publisher,
		country.NewRandomSelector(nil),
		country.NewDefaultScoring(),
		config.GameConfig{ChoiceCount: 4},
	)
	rooms.SetNotifier(svc)

	return NewHandler(rooms, svc, publisher), rooms, publisher
}

var testCountries = []model.Country{
	{Code: "FR", Name: "France", Continent: "Europe", Capital: "Paris", Difficulty: "easy"},
	{Code: "DE", Name: "Germany", Continent: "Europe", Capital: "Berlin", Difficulty: "easy"},
	{Code: "JP", Name: "Japan", Continent: "Asia", Capital: "Tokyo", Difficulty: "easy"},
}

func TestCreateRoom_SendsSnapshotToCreator(t *testing.T) {
	h, _, publisher := newTestHandler(t)

	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{
		Action:   proto.RoomActionCreate,
		Username: "Alice",
		GameMode: model.GameModeFlag,
	})

	evt, ok := publisher.lastDirect(proto.EventRoomCreated)
	require.True(t, ok)
	assert.Equal(t, "p-1", evt.Target)

	payload := evt.Data.(proto.RoomPayload)
	assert.Equal(t, "p-1", payload.Room.HostID)
	assert.Equal(t, model.GameModeFlag, payload.Room.GameMode)
	assert.Len(t, payload.Room.Players, 1)
}

func TestCreateRoom_EmptyUsernameRejected(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{
		Action:   proto.RoomActionCreate,
		Username: "   ",
	})

	evt, ok := publisher.lastDirect(proto.EventError)
	require.True(t, ok)
	payload := evt.Data.(proto.ErrorPayload)
	assert.Equal(t, "INVALID_USERNAME", payload.Code)
	assert.Zero(t, rooms.Count())
}

func TestCreateRoom_InvalidModeFallsBack(t *testing.T) {
	h, _, publisher := newTestHandler(t)

	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{
		Action:   proto.RoomActionCreate,
		Username: "Alice",
		GameMode: "bogus",
	})

	evt, _ := publisher.lastDirect(proto.EventRoomCreated)
	payload := evt.Data.(proto.RoomPayload)
	assert.Equal(t, model.GameModeLocation, payload.Room.GameMode)
	assert.Equal(t, "medium", payload.Room.Difficulty)
}

func TestJoinRoom_SuccessNotifiesBoth(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)

	h.HandleRoomRequest(context.Background(), "p-2", &proto.RoomRequest{
		Action:   proto.RoomActionJoin,
		RoomCode: r.Code(),
		Username: "Bob",
	})

	// 请求者收到房间快照
	direct, ok := publisher.lastDirect(proto.EventRoomJoined)
	require.True(t, ok)
	assert.Equal(t, "p-2", direct.Target)

	// 全房收到新成员广播
	bcast, ok := publisher.lastBroadcast(proto.EventPlayerJoined)
	require.True(t, ok)
	joined := bcast.Data.(proto.PlayerJoinedPayload)
	assert.Equal(t, "Bob", joined.Player.Username)
	assert.Len(t, joined.Room.Players, 2)
}

func TestJoinRoom_FailureOnlyNotifiesRequester(t *testing.T) {
	h, _, publisher := newTestHandler(t)

	h.HandleRoomRequest(context.Background(), "p-2", &proto.RoomRequest{
		Action:   proto.RoomActionJoin,
		RoomCode: "ZZZZZZ",
		Username: "Bob",
	})

	evt, ok := publisher.lastDirect(proto.EventJoinError)
	require.True(t, ok)
	payload := evt.Data.(proto.ErrorPayload)
	assert.Equal(t, room.ErrRoomNotFound.Error(), payload.Code)
	assert.NotEmpty(t, payload.Message)
	assert.Empty(t, publisher.broadcasts)
}

func TestUpdateSettings_HostGated(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)
	require.NoError(t, r.Join("p-2", "Bob"))

	rounds := 5
	h.HandleRoomRequest(context.Background(), "p-2", &proto.RoomRequest{
		Action:   proto.RoomActionUpdateSettings,
		RoomCode: r.Code(),
		Settings: &model.SettingsPatch{TotalRounds: &rounds},
	})

	// 非房主被拒，设置不变
	evt, ok := publisher.lastDirect(proto.EventError)
	require.True(t, ok)
	assert.Equal(t, room.ErrNotRoomHost.Error(), evt.Data.(proto.ErrorPayload).Code)
	assert.Equal(t, 10, r.Snapshot().Settings.TotalRounds)

	// 房主变更成功并广播
	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{
		Action:   proto.RoomActionUpdateSettings,
		RoomCode: r.Code(),
		Settings: &model.SettingsPatch{TotalRounds: &rounds},
	})

	bcast, ok := publisher.lastBroadcast(proto.EventSettingsUpdated)
	require.True(t, ok)
	updated := bcast.Data.(proto.SettingsUpdatedPayload)
	assert.Equal(t, 5, updated.Room.Settings.TotalRounds)
}

func TestStartGame_HostGated(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)
	require.NoError(t, r.Join("p-2", "Bob"))

	h.HandleGameRequest(context.Background(), "p-2", &proto.GameRequest{
		Action:    proto.GameActionStart,
		RoomCode:  r.Code(),
		Countries: testCountries,
	})

	evt, ok := publisher.lastDirect(proto.EventError)
	require.True(t, ok)
	assert.Equal(t, room.ErrNotRoomHost.Error(), evt.Data.(proto.ErrorPayload).Code)
	assert.Equal(t, room.StatusWaiting, r.Status())

	h.HandleGameRequest(context.Background(), "p-1", &proto.GameRequest{
		Action:    proto.GameActionStart,
		RoomCode:  r.Code(),
		Countries: testCountries,
	})

	_, ok = publisher.lastBroadcast(proto.EventGameStarted)
	assert.True(t, ok)
	assert.Equal(t, room.StatusPlaying, r.Status())
}

func TestStartGame_EmptyPoolRejected(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)

	h.HandleGameRequest(context.Background(), "p-1", &proto.GameRequest{
		Action:   proto.GameActionStart,
		RoomCode: r.Code(),
	})

	evt, ok := publisher.lastDirect(proto.EventError)
	require.True(t, ok)
	assert.Equal(t, game.ErrNoCountries.Error(), evt.Data.(proto.ErrorPayload).Code)
}

func TestSubmitAnswer_NilPayloadDropped(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)

	h.HandleGameRequest(context.Background(), "p-1", &proto.GameRequest{
		Action:   proto.GameActionSubmitAnswer,
		RoomCode: r.Code(),
	})

	assert.Empty(t, publisher.directs)
	assert.Empty(t, publisher.broadcasts)
}

func TestLeaveRoom_DelegatesToDisconnect(t *testing.T) {
	h, rooms, _ := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)

	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{
		Action:   proto.RoomActionLeave,
		RoomCode: r.Code(),
	})

	assert.Zero(t, rooms.Count())
}

func TestReturnLobby_ErrorPushedToRequester(t *testing.T) {
	h, rooms, publisher := newTestHandler(t)

	r := rooms.CreateRoom("p-1", "Alice", "easy", model.GameModeLocation)

	// 对局未结束时返回大厅被拒
	h.HandleGameRequest(context.Background(), "p-1", &proto.GameRequest{
		Action:   proto.GameActionReturnLobby,
		RoomCode: r.Code(),
	})

	evt, ok := publisher.lastDirect(proto.EventError)
	require.True(t, ok)
	assert.Equal(t, "p-1", evt.Target)
}

func TestUnknownActions_Ignored(t *testing.T) {
	h, _, publisher := newTestHandler(t)

	h.HandleRoomRequest(context.Background(), "p-1", &proto.RoomRequest{Action: "NOPE"})
	h.HandleGameRequest(context.Background(), "p-1", &proto.GameRequest{Action: "NOPE"})

	assert.Empty(t, publisher.directs)
	assert.Empty(t, publisher.broadcasts)
}
