package room

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seednode/tandem/internal/tasks"
)

func TestAdminLogin(t *testing.T) {
	h := newHarness(t)

	c := newFakeConn("admin")
	h.send(c, Command{Type: CmdAdminLogin, Password: "wrong"})
	assert.False(t, c.lastOf(t, EvtAdminAuthenticated).(AdminAuthenticated).Success)

	h.send(c, Command{Type: CmdAdminLogin, Password: "secret"})
	assert.True(t, c.lastOf(t, EvtAdminAuthenticated).(AdminAuthenticated).Success)

	// A failed login revokes an earlier success.
	h.send(c, Command{Type: CmdAdminLogin, Password: "wrong"})
	c.reset()
	h.send(c, Command{Type: CmdAdminGetGames})
	assert.Empty(t, c.messages())
}

func TestAdminDisabledWithoutPassword(t *testing.T) {
	b := NewBroker(newStubRepo(), Options{Logger: zerolog.Nop(), Ticks: &manualTicks{}})
	t.Cleanup(b.Shutdown)

	c := newFakeConn("admin")
	b.Handle(context.Background(), c, Command{Type: CmdAdminLogin, Password: ""})
	assert.False(t, c.lastOf(t, EvtAdminAuthenticated).(AdminAuthenticated).Success)
}

func TestUnauthenticatedAdminCommandsAreSilent(t *testing.T) {
	h := newHarness(t)
	code, a, b := h.playing(t, "tabu")
	h.send(a, Command{Type: CmdUpdateScore, Points: 3})
	a.reset()
	b.reset()

	c := newFakeConn("c")
	for _, typ := range []string{
		CmdAdminGetGames, CmdGetActiveGames, CmdAdminWatchGame, CmdAdminAddScore,
		CmdAdminNextTask, CmdAdminSwitchTurn, CmdAdminResetTimer, CmdAdminPauseTimer,
		CmdAdminFinishGame, CmdGetTasks, CmdAddTask, CmdDeleteTask, CmdUpdateTask,
	} {
		h.send(c, Command{Type: typ, RoomCode: code, Role: First, Points: -3, Category: tasks.CategoryTaboo})
	}

	assert.Empty(t, c.messages())
	assert.Empty(t, a.messages())
	assert.Empty(t, b.messages())
	assert.Equal(t, 3, h.session(t, code).summary().Scores[First])
}

func TestAdminScoreFloorsAtZero(t *testing.T) {
	h := newHarness(t)
	code, a, b := h.playing(t, "tabu")
	adm := admin(t, h)

	h.send(a, Command{Type: CmdUpdateScore, Points: 3})
	h.send(adm, Command{Type: CmdAdminAddScore, RoomCode: code, Role: First, Points: -1000})

	assert.Equal(t, 0, h.session(t, code).summary().Scores[First])
	assert.Equal(t, 0, b.lastOf(t, EvtScoresUpdated).(ScoresUpdated).Scores[First])

	h.send(adm, Command{Type: CmdAdminAddScore, RoomCode: code, Role: Second, Points: 5})
	h.send(adm, Command{Type: CmdAdminAddScore, RoomCode: code, Role: Second, Points: -2})
	assert.Equal(t, 3, h.session(t, code).summary().Scores[Second])

	game := adm.lastOf(t, EvtAdminGameData).(AdminGameData).Game
	assert.Equal(t, 3, game.Scores[Second])
}

func TestAdminGamesList(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)

	code, _, _ := h.playing(t, "tabu")
	lonely, err := h.broker.CreateRoom(newFakeConn("x"))
	require.NoError(t, err)

	h.send(adm, Command{Type: CmdGetActiveGames})
	games := adm.lastOf(t, EvtAdminGamesList).(AdminGamesList).Games
	require.Len(t, games, 2)

	byCode := map[string]Summary{}
	for _, g := range games {
		byCode[g.RoomCode] = g
	}

	assert.Equal(t, "tabu", byCode[code].GameKind)
	assert.Equal(t, Playing, byCode[code].State)
	assert.Equal(t, 2, byCode[code].PlayerCount)
	assert.Equal(t, 10, byCode[code].TaskCount)
	assert.False(t, byCode[code].Timer.Running)

	assert.Equal(t, Waiting, byCode[lonely].State)
	assert.Equal(t, 1, byCode[lonely].PlayerCount)
}

func TestAdminWatchReceivesRoomEvents(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)
	a, b := newFakeConn("a"), newFakeConn("b")
	code := h.room(t, a, b)

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: code})
	game := adm.lastOf(t, EvtAdminGameData).(AdminGameData).Game
	assert.Equal(t, code, game.RoomCode)
	assert.Len(t, game.Players, 2)
	assert.Equal(t, 1, game.Observers)

	h.send(a, Command{Type: CmdSelectGame, GameKind: "tabu"})
	h.send(a, Command{Type: CmdStartGame})
	h.send(b, Command{Type: CmdSubmitAnswer, Action: "pista", Value: json.RawMessage(`"rojo"`)})

	assert.Equal(t, 1, adm.count(EvtGameSelected))
	assert.Equal(t, 1, adm.count(EvtGameStarted))
	assert.Equal(t, 1, adm.count(EvtAnswerSubmitted))

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: code})
	assert.Len(t, adm.lastOf(t, EvtAdminGameData).(AdminGameData).Game.Log, 1)

	h.send(adm, Command{Type: CmdAdminUnwatch})
	h.send(a, Command{Type: CmdUpdateScore, Points: 1})
	assert.Zero(t, adm.count(EvtScoresUpdated))
}

func TestAdminWatchesOneRoomAtATime(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)

	first, a, _ := h.playing(t, "tabu")
	second, c, _ := h.playing(t, "tabu")

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: first})
	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: strings.ToLower(second)})

	h.send(a, Command{Type: CmdUpdateScore, Points: 1})
	h.send(c, Command{Type: CmdUpdateScore, Points: 2})

	require.Equal(t, 1, adm.count(EvtScoresUpdated))
	assert.Equal(t, 2, adm.lastOf(t, EvtScoresUpdated).(ScoresUpdated).Scores[First])

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: "ZZZZZZ"})
	assert.Equal(t, ErrRoomNotFound.Error(), adm.lastOf(t, EvtError).(ErrorMessage).Message)
}

func TestFailedLoginStopsWatching(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)
	code, a, _ := h.playing(t, "tabu")

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: code})
	require.Equal(t, 1, h.session(t, code).snapshot().Observers)

	h.send(adm, Command{Type: CmdAdminLogin, Password: "wrong"})
	assert.False(t, adm.lastOf(t, EvtAdminAuthenticated).(AdminAuthenticated).Success)

	h.send(a, Command{Type: CmdUpdateScore, Points: 1})
	assert.Zero(t, adm.count(EvtScoresUpdated))
	assert.Zero(t, h.session(t, code).snapshot().Observers)

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: code})
	assert.Zero(t, h.session(t, code).snapshot().Observers)
}

func TestObserverThatIsAlsoPlayerGetsOneCopy(t *testing.T) {
	h := newHarness(t)
	a, b := newFakeConn("a"), newFakeConn("b")
	code := h.room(t, a, b)

	h.send(a, Command{Type: CmdAdminLogin, Password: "secret"})
	h.send(a, Command{Type: CmdAdminWatchGame, RoomCode: code})

	h.send(b, Command{Type: CmdSelectGame, GameKind: "charadas"})
	assert.Equal(t, 1, a.count(EvtGameSelected))
}

func TestEvictionNotifiesObservers(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)
	a, b := newFakeConn("a"), newFakeConn("b")
	code := h.room(t, a, b)

	h.send(adm, Command{Type: CmdAdminWatchGame, RoomCode: code})

	h.broker.Disconnect(a)
	assert.Equal(t, 1, adm.count(EvtPartnerDisconnected))

	h.broker.Disconnect(b)
	closed := adm.lastOf(t, EvtRoomClosed).(RoomMessage)
	assert.Equal(t, code, closed.RoomCode)

	h.broker.mu.Lock()
	_, watching := h.broker.watching[adm.ID()]
	h.broker.mu.Unlock()
	assert.False(t, watching)
}

func TestAdminOverridesUseSessionRules(t *testing.T) {
	h := newHarness(t)
	h.repo.setPool(tasks.CategoryConjugation, records(2))
	code, a, _ := h.playing(t, "conjugacion")
	adm := admin(t, h)

	h.send(adm, Command{Type: CmdAdminSwitchTurn, RoomCode: code})
	assert.Equal(t, Second, a.lastOf(t, EvtTurnChanged).(TurnChanged).TurnRole)

	h.send(adm, Command{Type: CmdAdminNextTask, RoomCode: code})
	next := a.lastOf(t, EvtNextTask).(NextTask)
	assert.Equal(t, 1, next.Index)
	assert.Equal(t, First, next.TurnRole)

	h.send(adm, Command{Type: CmdAdminNextTask, RoomCode: code})
	h.send(adm, Command{Type: CmdAdminNextTask, RoomCode: code})
	h.send(adm, Command{Type: CmdAdminFinishGame, RoomCode: code})
	assert.Equal(t, 1, a.count(EvtGameFinished))
	assert.Equal(t, 1, a.count(EvtNextTask))

	// Overrides on a finished game change nothing.
	h.send(adm, Command{Type: CmdAdminAddScore, RoomCode: code, Role: First, Points: 4})
	assert.Equal(t, 0, h.session(t, code).summary().Scores[First])

	h.send(adm, Command{Type: CmdAdminFinishGame, RoomCode: "ZZZZZZ"})
	assert.Equal(t, ErrRoomNotFound.Error(), adm.lastOf(t, EvtError).(ErrorMessage).Message)
}

func TestAdminTaskCRUD(t *testing.T) {
	h := newHarness(t)
	adm := admin(t, h)

	h.send(adm, Command{Type: CmdAddTask, Category: tasks.CategoryCharade, Record: json.RawMessage(`{"palabra":"volar"}`)})
	added := adm.lastOf(t, EvtTaskAdded).(TaskChanged)
	require.NotEmpty(t, added.Task.ID)
	assert.Equal(t, "volar", added.Task.Fields["palabra"])

	h.send(adm, Command{Type: CmdGetTasks, Category: tasks.CategoryCharade})
	list := adm.lastOf(t, EvtTasksList).(TasksList)
	require.Len(t, list.Tasks, 1)

	h.send(adm, Command{Type: CmdUpdateTask, Category: tasks.CategoryCharade, TaskID: added.Task.ID, Patch: json.RawMessage(`{"nivel":"B2"}`)})
	updated := adm.lastOf(t, EvtTaskUpdated).(TaskChanged)
	assert.Equal(t, "B2", updated.Task.Level)

	h.send(adm, Command{Type: CmdDeleteTask, Category: tasks.CategoryCharade, TaskID: added.Task.ID})
	assert.Equal(t, added.Task.ID, adm.lastOf(t, EvtTaskDeleted).(TaskDeleted).TaskID)

	adm.reset()
	h.send(adm, Command{Type: CmdAddTask, Category: tasks.CategoryCharade, Record: json.RawMessage(`{}`)})
	h.send(adm, Command{Type: CmdDeleteTask, Category: tasks.CategoryCharade, TaskID: added.Task.ID})
	h.send(adm, Command{Type: CmdGetTasks, Category: "poesia"})
	assert.Equal(t, []string{EvtError, EvtError, EvtError}, adm.types())
}
