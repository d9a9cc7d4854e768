package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sudooom.quiz.logic/internal/model"
)

func newTestRoom() *RoomInstance {
	return NewRoom("ABC234", "host-1", "Alice", "easy", model.GameModeLocation, 8)
}

func TestNewRoom_HostIsSoleMember(t *testing.T) {
	r := newTestRoom()

	snap := r.Snapshot()
	require.Len(t, snap.Players, 1)
	assert.Equal(t, "host-1", snap.HostID)
	assert.True(t, snap.Players[0].IsHost)
	assert.Equal(t, StatusWaiting, snap.Status)

	// 默认设置
	assert.Equal(t, 10, snap.Settings.TotalRounds)
	assert.Equal(t, 30, snap.Settings.TimerSeconds)
	assert.Equal(t, "all", snap.Settings.Continent)
}

func TestJoin_CapacityLimit(t *testing.T) {
	r := NewRoom("ABC234", "host-1", "Alice", "easy", model.GameModeLocation, 3)

	require.NoError(t, r.Join("p-2", "Bob"))
	require.NoError(t, r.Join("p-3", "Carol"))

	err := r.Join("p-4", "Dave")
	assert.ErrorIs(t, err, ErrRoomFull)
}

func TestJoin_UsernameCaseInsensitive(t *testing.T) {
	r := newTestRoom()

	err := r.Join("p-2", "ALICE")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	require.NoError(t, r.Join("p-2", "Bob"))
	err = r.Join("p-3", "bob")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestJoin_RejectedAfterStart(t *testing.T) {
	r := newTestRoom()
	r.SetStatus(StatusPlaying)

	err := r.Join("p-2", "Bob")
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestLeave_HostPromotion(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))
	require.NoError(t, r.Join("p-3", "Carol"))

	// 房主离开，最早加入者接任
	removed, newHostID, remaining, err := r.Leave("host-1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", removed.Username)
	assert.Equal(t, "p-2", newHostID)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, "p-2", r.HostID())

	snap := r.Snapshot()
	assert.True(t, snap.Players[0].IsHost)
}

func TestLeave_NonHostNoPromotion(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))

	_, newHostID, _, err := r.Leave("p-2")
	require.NoError(t, err)
	assert.Empty(t, newHostID)
	assert.Equal(t, "host-1", r.HostID())
}

func TestLeave_NotInRoom(t *testing.T) {
	r := newTestRoom()

	_, _, _, err := r.Leave("p-unknown")
	assert.ErrorIs(t, err, ErrNotInRoom)
}

func TestUpdateSettings_PartialMerge(t *testing.T) {
	r := newTestRoom()

	rounds := 5
	continent := "Europe"
	err := r.UpdateSettings(&model.SettingsPatch{
		TotalRounds: &rounds,
		Continent:   &continent,
	})
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, 5, snap.Settings.TotalRounds)
	assert.Equal(t, "Europe", snap.Settings.Continent)
	// 未指定的字段保持原值
	assert.Equal(t, 30, snap.Settings.TimerSeconds)
}

func TestUpdateSettings_RejectedAfterStart(t *testing.T) {
	r := newTestRoom()
	r.SetStatus(StatusPlaying)

	rounds := 5
	err := r.UpdateSettings(&model.SettingsPatch{TotalRounds: &rounds})
	assert.ErrorIs(t, err, ErrGameStarted)

	snap := r.Snapshot()
	assert.Equal(t, 10, snap.Settings.TotalRounds)
}

func TestUpdateSettings_InvalidValuesIgnored(t *testing.T) {
	r := newTestRoom()

	badRounds := 0
	badTimer := -1
	err := r.UpdateSettings(&model.SettingsPatch{
		TotalRounds:  &badRounds,
		TimerSeconds: &badTimer,
	})
	require.NoError(t, err)

	snap := r.Snapshot()
	assert.Equal(t, 10, snap.Settings.TotalRounds)
	assert.Equal(t, 30, snap.Settings.TimerSeconds)
}

func TestApplyAnswer_AtMostOnce(t *testing.T) {
	r := newTestRoom()

	rec := model.AnswerRecord{Round: 1, Answered: true, Points: 800}
	p, applied := r.ApplyAnswer("host-1", rec)
	require.True(t, applied)
	assert.Equal(t, 800, p.Score)
	assert.Equal(t, "host-1", p.CurrentAnswer.PlayerID)
	assert.Equal(t, "Alice", p.CurrentAnswer.Username)

	// 重复作答被拒，得分不变
	_, applied = r.ApplyAnswer("host-1", model.AnswerRecord{Round: 1, Points: 500})
	assert.False(t, applied)

	snap := r.Snapshot()
	assert.Equal(t, 800, snap.Players[0].Score)
}

func TestApplyAnswer_UnknownPlayer(t *testing.T) {
	r := newTestRoom()

	_, applied := r.ApplyAnswer("p-unknown", model.AnswerRecord{Round: 1})
	assert.False(t, applied)
}

func TestForceAnswerRest_FillsMissing(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))
	require.NoError(t, r.Join("p-3", "Carol"))

	_, applied := r.ApplyAnswer("host-1", model.AnswerRecord{Round: 2, Answered: true, Points: 600})
	require.True(t, applied)

	forced := r.ForceAnswerRest(2)
	require.Len(t, forced, 2)
	for _, rec := range forced {
		assert.False(t, rec.Answered)
		assert.Zero(t, rec.Points)
		assert.Equal(t, 2, rec.Round)
	}

	assert.True(t, r.AllAnswered())

	// 占位不影响得分
	snap := r.Snapshot()
	for _, p := range snap.Players {
		if p.ID != "host-1" {
			assert.Zero(t, p.Score)
		}
	}
}

func TestResetRoundFlags(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))

	r.ApplyAnswer("host-1", model.AnswerRecord{Round: 1, Answered: true, Points: 100})
	r.ApplyAnswer("p-2", model.AnswerRecord{Round: 1, Answered: true, Points: 200})
	require.True(t, r.AllAnswered())

	r.ResetRoundFlags()

	answered, total := r.AnsweredCount()
	assert.Zero(t, answered)
	assert.Equal(t, 2, total)

	// 累计得分保留
	snap := r.Snapshot()
	assert.Equal(t, 100, snap.Players[0].Score)
	assert.Nil(t, snap.Players[0].CurrentAnswer)
}

func TestPartitionAndReturnToLobby(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))

	r.SetAllLocations(model.LocationLeaderboard)
	inLobby, onLeaderboard := r.Partition()
	assert.Empty(t, inLobby)
	assert.Len(t, onLeaderboard, 2)
	assert.False(t, r.AllInLobby())

	// 单人回大厅清零
	r.ApplyAnswer("host-1", model.AnswerRecord{Round: 1, Answered: true, Points: 900})
	p, ok := r.ResetPlayer("host-1")
	require.True(t, ok)
	assert.Zero(t, p.Score)
	assert.False(t, p.HasAnswered)

	inLobby, onLeaderboard = r.Partition()
	assert.Equal(t, []string{"Alice"}, inLobby)
	assert.Equal(t, []string{"Bob"}, onLeaderboard)
	assert.False(t, r.AllInLobby())

	_, ok = r.ResetPlayer("p-2")
	require.True(t, ok)
	assert.True(t, r.AllInLobby())
}

func TestResetAllPlayers(t *testing.T) {
	r := newTestRoom()
	require.NoError(t, r.Join("p-2", "Bob"))

	r.ApplyAnswer("host-1", model.AnswerRecord{Round: 1, Answered: true, Points: 700})
	r.SetAllLocations(model.LocationLeaderboard)

	r.ResetAllPlayers()

	snap := r.Snapshot()
	for _, p := range snap.Players {
		assert.Zero(t, p.Score)
		assert.False(t, p.HasAnswered)
	}
	assert.True(t, r.AllInLobby())
}

func TestSnapshot_IsDeepCopy(t *testing.T) {
	r := newTestRoom()

	snap := r.Snapshot()
	snap.Players[0].Score = 9999
	snap.Status = StatusFinished

	fresh := r.Snapshot()
	assert.Zero(t, fresh.Players[0].Score)
	assert.Equal(t, StatusWaiting, fresh.Status)
}
