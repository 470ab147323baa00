package model

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/action"
	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/client"
	"github.com/palemoky/point-calculator/internal/game/session"
)

const (
	remoteTimeout = 10 * time.Second
	historyLimit  = 50
	boardLimit    = 10
)

// commit 变更后写入本地缓存并在后台同步
func (a *App) commit() tea.Cmd {
	var cmds []tea.Cmd
	if err := a.saveLocal(); err != nil {
		cmds = append(cmds, a.notify(ToastError, "Could not save locally: "+err.Error()))
	}
	// 实时对局由服务器保存
	if a.api != nil && a.live == nil {
		cmds = append(cmds, a.syncCmd())
	}
	return tea.Batch(cmds...)
}

func (a *App) saveLocal() error {
	if a.cache == nil || !a.session.Started() {
		return nil
	}
	err := a.cache.Save(&client.CachedGame{
		LocalID:  a.localID,
		RemoteID: a.remoteID,
		Name:     a.gameName,
		State:    a.session.Snapshot(),
		SavedAt:  a.now(),
	})
	if err != nil {
		a.log.Warn("写入本地缓存失败", zap.Error(err))
	}
	return err
}

// syncCmd 上传当前快照。已有请求在途时只标记 dirty，完成后再传最新状态。
func (a *App) syncCmd() tea.Cmd {
	if a.syncing {
		a.dirty = true
		return nil
	}
	a.syncing = true

	api := a.api
	localID, remoteID, name := a.localID, a.remoteID, a.gameName
	snap := a.session.Snapshot()
	snap.ID = remoteID

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()

		if remoteID != "" {
			g, err := api.UpdateGame(ctx, remoteID, snap)
			if err == nil {
				return SyncedMsg{LocalID: localID, Game: g}
			}
			// 服务器上已被删除则重新创建
			if !errors.Is(err, apperrors.ErrGameNotFound) {
				return SyncFailedMsg{LocalID: localID, Err: err}
			}
			snap.ID = ""
		}

		g, err := api.CreateGame(ctx, name, snap)
		if err != nil {
			return SyncFailedMsg{LocalID: localID, Err: err}
		}
		return SyncedMsg{LocalID: localID, Game: g}
	}
}

func (a *App) handleSynced(msg SyncedMsg) tea.Cmd {
	// 已放弃的对局
	if msg.LocalID != a.localID || a.localID == "" {
		return nil
	}
	a.syncing = false
	if a.remoteID != msg.Game.ID {
		a.remoteID = msg.Game.ID
		_ = a.saveLocal()
	}
	a.log.Debug("对局已同步", zap.String("game", a.remoteID))

	if a.dirty && a.api != nil {
		a.dirty = false
		return a.syncCmd()
	}
	return nil
}

func (a *App) handleSyncFailed(msg SyncFailedMsg) tea.Cmd {
	if msg.LocalID != a.localID || a.localID == "" {
		return nil
	}
	a.syncing = false
	a.log.Warn("同步失败", zap.String("local", a.localID), zap.Error(msg.Err))

	cmds := []tea.Cmd{a.notify(ToastError, "Sync failed: "+msg.Err.Error())}
	if a.dirty && a.api != nil {
		a.dirty = false
		cmds = append(cmds, a.syncCmd())
	}
	return tea.Batch(cmds...)
}

// remoteCmd 在后台执行远程操作
func remoteCmd(success string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			return RemoteDoneMsg{Err: err}
		}
		return RemoteDoneMsg{Success: success}
	}
}

func (a *App) loadRulesCmd() tea.Cmd {
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		rules, err := api.ListRules(ctx)
		if err != nil {
			return RemoteDoneMsg{Err: err}
		}
		return RulesLoadedMsg{Rules: rules}
	}
}

// --- 历史与排行榜 ---

// OpenHistory 打开历史对局
func (a *App) OpenHistory() tea.Cmd {
	if a.api == nil {
		return a.notify(ToastInfo, "History needs a server connection")
	}
	a.openOverlay(PhaseHistory)
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		games, err := api.ListGames(ctx, historyLimit)
		if err != nil {
			return RemoteDoneMsg{Err: err}
		}
		return HistoryLoadedMsg{Games: games}
	}
}

// OpenLeaderboard 打开排行榜
func (a *App) OpenLeaderboard() tea.Cmd {
	if a.api == nil {
		return a.notify(ToastInfo, "The leaderboard needs a server connection")
	}
	a.openOverlay(PhaseLeaderboard)
	api := a.api
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), remoteTimeout)
		defer cancel()
		entries, err := api.Leaderboard(ctx, boardLimit)
		if err != nil {
			return RemoteDoneMsg{Err: err}
		}
		return LeaderboardLoadedMsg{Entries: entries}
	}
}

func (a *App) openOverlay(p Phase) {
	if a.phase == PhaseSetup || a.phase == PhaseGame {
		a.prevPhase = a.phase
	}
	a.phase = p
}

// Back 从历史或排行榜返回
func (a *App) Back() {
	a.phase = a.prevPhase
	if a.phase == PhaseGame && !a.session.Started() {
		a.phase = PhaseSetup
	}
}

// MoveHistory 移动历史列表的选中项
func (a *App) MoveHistory(delta int) {
	if len(a.history) == 0 {
		return
	}
	a.historyIdx = min(max(a.historyIdx+delta, 0), len(a.history)-1)
}

// OpenSelectedGame 继续选中的历史对局
func (a *App) OpenSelectedGame() tea.Cmd {
	if a.historyIdx >= len(a.history) {
		return nil
	}
	g := a.history[a.historyIdx]
	s, err := session.FromSnapshot(g.State)
	if err != nil {
		return a.notify(ToastError, err.Error())
	}

	a.dropLive()
	a.session = s
	a.localID = a.newID()
	a.remoteID = g.ID
	a.gameName = g.Name
	a.syncing, a.dirty = false, false
	a.enterGame()
	if err := a.saveLocal(); err != nil {
		return a.notify(ToastError, "Could not save locally: "+err.Error())
	}
	return a.notify(ToastInfo, "Loaded "+g.Name)
}

// RequestDeleteSelectedGame 删除选中的历史对局，需确认
func (a *App) RequestDeleteSelectedGame() {
	if a.historyIdx >= len(a.history) {
		return
	}
	g := a.history[a.historyIdx]
	c := action.ConfirmDeleteGame(g.ID, g.Name)
	a.confirm = &c
}
