package model

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/apiclient"
	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestAPI(t *testing.T) *apiclient.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	authn, err := auth.New("secret", time.Hour)
	require.NoError(t, err)
	srv := server.New(config.Default(), server.Deps{Redis: rdb, Auth: authn})
	t.Cleanup(srv.Rooms().Wait)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	token, err := authn.IssueToken("u1")
	require.NoError(t, err)
	return apiclient.New(ts.URL, token)
}

// drain 执行命令并把远程结果交回模型，忽略光标闪烁与提示计时
func drain(t *testing.T, a *App, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		return
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		for _, c := range msg {
			drain(t, a, c)
		}
	case SyncedMsg, SyncFailedMsg, RemoteDoneMsg, RulesLoadedMsg, HistoryLoadedMsg, LeaderboardLoadedMsg:
		_, next := a.Update(msg)
		drain(t, a, next)
	}
}

// startOffline 离线开局后再接入服务器，便于单独驱动同步命令
func startOffline(t *testing.T, api *apiclient.Client, names ...string) *App {
	t.Helper()
	a, _ := newTestApp(t, nil)
	startGame(t, a, names...)
	a.api = api
	return a
}

func TestSync_CreatesThenUpdates(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")
	ctx := context.Background()

	drain(t, a, a.syncCmd())
	require.NotEmpty(t, a.RemoteID())
	assert.False(t, a.Syncing())

	_, err := a.session.SubmitRound(map[string]int{"player-1": 70})
	require.NoError(t, err)
	drain(t, a, a.syncCmd())

	g, err := api.GetGame(ctx, a.RemoteID())
	require.NoError(t, err)
	assert.Equal(t, a.GameName(), g.Name)
	assert.Equal(t, "Bob", g.Winner)
	assert.True(t, g.Ended())

	board, err := api.Leaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 1)
	assert.Equal(t, "Bob", board[0].Player)
}

func TestSync_CoalescesWhileInFlight(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")

	first := a.syncCmd()
	require.NotNil(t, first)
	assert.True(t, a.Syncing())

	_, err := a.session.SubmitRound(map[string]int{"player-0": 5})
	require.NoError(t, err)
	assert.Nil(t, a.syncCmd(), "second sync waits for the first")

	drain(t, a, first)
	assert.False(t, a.Syncing())

	g, err := api.GetGame(context.Background(), a.RemoteID())
	require.NoError(t, err)
	assert.Len(t, g.State.Rounds, 1, "latest state uploaded after the first sync")

	games, err := api.ListGames(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, games, 1)
}

func TestSync_RecreatesDeletedGame(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")

	drain(t, a, a.syncCmd())
	oldID := a.RemoteID()
	require.NoError(t, api.DeleteGame(context.Background(), oldID))

	drain(t, a, a.syncCmd())
	assert.NotEmpty(t, a.RemoteID())
	assert.NotEqual(t, oldID, a.RemoteID())
}

func TestSync_IgnoresDiscardedGame(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")

	cmd := a.syncCmd()
	a.RequestReset()
	a.Confirm()

	drain(t, a, cmd)
	assert.Empty(t, a.RemoteID())
	assert.False(t, a.Syncing())
}

func TestSync_FailureKeepsLocalState(t *testing.T) {
	t.Parallel()
	a := startOffline(t, apiclient.New("http://127.0.0.1:1", "token"), "Alice", "Bob")

	_, err := a.session.SubmitRound(map[string]int{"player-0": 5})
	require.NoError(t, err)
	drain(t, a, a.syncCmd())

	assert.Empty(t, a.RemoteID())
	assert.False(t, a.Syncing())
	assert.Len(t, a.Session().Rounds(), 1)
	assert.Equal(t, ToastError, lastToast(t, a).Kind)
}

func TestHistory_OpenAndDelete(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")
	drain(t, a, a.syncCmd())
	remoteID := a.RemoteID()

	drain(t, a, a.OpenHistory())
	assert.Equal(t, PhaseHistory, a.Phase())
	require.Len(t, a.History(), 1)

	a.RequestDeleteSelectedGame()
	require.NotNil(t, a.Confirmation())
	drain(t, a, a.Confirm())

	assert.Empty(t, a.History())
	assert.Empty(t, a.RemoteID(), "current game is no longer linked")
	assert.Equal(t, "Game deleted", lastToast(t, a).Message)

	_, err := api.GetGame(context.Background(), remoteID)
	assert.Error(t, err)

	a.Back()
	assert.Equal(t, PhaseGame, a.Phase())
}

func TestHistory_ContinueSavedGame(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")
	_, err := a.session.SubmitRound(map[string]int{"player-0": 12})
	require.NoError(t, err)
	drain(t, a, a.syncCmd())
	remoteID := a.RemoteID()

	other, _ := newTestApp(t, api)
	drain(t, other, other.OpenHistory())
	require.Len(t, other.History(), 1)
	other.OpenSelectedGame()

	assert.Equal(t, PhaseGame, other.Phase())
	assert.Equal(t, remoteID, other.RemoteID())
	assert.Equal(t, 12, other.Session().Players()[0].TotalScore)
	assert.Equal(t, 2, other.Session().CurrentRound())
}

func TestRules_LoadAndDelete(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	ctx := context.Background()
	stored, err := api.CreateRule(ctx, "Server rule", racePreset.Config)
	require.NoError(t, err)

	a, _ := newTestApp(t, api)
	drain(t, a, a.loadRulesCmd())
	require.Len(t, a.Presets(), 3)
	assert.True(t, a.Presets()[2].Remote)

	a.MovePreset(-1)
	a.RequestDeleteRule()
	require.NotNil(t, a.Confirmation())
	drain(t, a, a.Confirm())

	assert.Len(t, a.Presets(), 2)
	rules, err := api.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.NotEqual(t, stored.ID, a.Presets()[a.PresetIdx()].ID)
}

func TestLeaderboard_Open(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a, _ := newTestApp(t, api)

	drain(t, a, a.OpenLeaderboard())
	assert.Equal(t, PhaseLeaderboard, a.Phase())
	assert.Empty(t, a.Leaderboard())

	a.Back()
	assert.Equal(t, PhaseSetup, a.Phase())
}

func TestConfirm_LogoutGoesOffline(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a, _ := newTestApp(t, api)
	a.setRemoteRules(nil)

	a.RequestLogout()
	require.NotNil(t, a.Confirmation())
	a.Confirm()

	assert.False(t, a.Online())
	assert.Len(t, a.Presets(), 2)
}

func TestConfirm_ClearAllDataOnline(t *testing.T) {
	t.Parallel()
	api := newTestAPI(t)
	a := startOffline(t, api, "Alice", "Bob")
	drain(t, a, a.syncCmd())

	a.RequestClearAll()
	drain(t, a, a.Confirm())

	assert.Equal(t, PhaseSetup, a.Phase())
	games, err := api.ListGames(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Equal(t, "All data cleared", lastToast(t, a).Message)
}
