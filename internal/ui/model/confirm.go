package model

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/protocol"
)

var errOffline = errors.New("not connected to a server")

// Confirm 执行确认框中的操作。处理函数只修改本地状态，
// 远程请求放入 pending，随后作为后台命令执行。
func (a *App) Confirm() tea.Cmd {
	if a.confirm == nil {
		return nil
	}
	c := *a.confirm
	a.confirm = nil
	a.pending = nil

	err := a.dispatcher.Run(context.Background(), c)
	cmds := a.pending
	a.pending = nil
	if err != nil {
		a.log.Warn("操作失败", zap.String("title", c.Title), zap.Error(err))
		cmds = append(cmds, a.notify(ToastError, err.Error()))
	}
	return tea.Batch(cmds...)
}

// Cancel 关闭确认框
func (a *App) Cancel() {
	a.confirm = nil
}

func (a *App) logout(context.Context) error {
	a.dropLive()
	a.api = nil
	a.syncing, a.dirty = false, false
	a.setRemoteRules(nil)
	a.history, a.leaderboard = nil, nil
	if a.phase == PhaseHistory || a.phase == PhaseLeaderboard {
		a.Back()
	}
	a.pending = append(a.pending, a.notify(ToastInfo, "Logged out. Scores stay on this device."))
	return nil
}

// resetGame 放弃当前对局，保留玩家名单回到开局界面
func (a *App) resetGame(context.Context) error {
	// 实时对局由服务器以相同玩家重新开始
	if a.live != nil {
		if cmd := a.sendLive(protocol.MsgResetGame, nil); cmd != nil {
			a.pending = append(a.pending, cmd)
		}
		return nil
	}
	var names []string
	for _, p := range a.session.Players() {
		names = append(names, p.Name)
	}
	a.discardLocal()
	a.resetSetup(names)
	return nil
}

func (a *App) deleteGame(_ context.Context, gameID string) error {
	if a.api == nil {
		return errOffline
	}
	for i, g := range a.history {
		if g.ID == gameID {
			a.history = append(a.history[:i], a.history[i+1:]...)
			break
		}
	}
	a.historyIdx = min(a.historyIdx, max(len(a.history)-1, 0))
	// 本地对局继续，下次变更时重新创建
	if gameID == a.remoteID {
		a.remoteID = ""
		_ = a.saveLocal()
	}

	api := a.api
	a.pending = append(a.pending, remoteCmd("Game deleted", func(ctx context.Context) error {
		return api.DeleteGame(ctx, gameID)
	}))
	return nil
}

func (a *App) deleteRule(_ context.Context, ruleID string) error {
	if a.api == nil {
		return errOffline
	}
	for i, p := range a.presets {
		if p.Remote && p.ID == ruleID {
			a.presets = append(a.presets[:i], a.presets[i+1:]...)
			break
		}
	}
	if a.presetIdx >= len(a.presets) {
		a.presetIdx = max(len(a.presets)-1, 0)
	}

	api := a.api
	a.pending = append(a.pending, remoteCmd("Rule deleted", func(ctx context.Context) error {
		return api.DeleteRule(ctx, ruleID)
	}))
	return nil
}

// clearAllData 清除本地缓存，在线时一并清除服务器数据
func (a *App) clearAllData(context.Context) error {
	a.dropLive()
	a.discardLocal()
	a.history, a.leaderboard = nil, nil
	a.setRemoteRules(nil)
	a.resetSetup(nil)

	if a.api == nil {
		a.pending = append(a.pending, a.notify(ToastSuccess, "Local data cleared"))
		return nil
	}
	api := a.api
	a.pending = append(a.pending, remoteCmd("All data cleared", api.ClearData))
	return nil
}

// discardLocal 丢弃当前对局与缓存
func (a *App) discardLocal() {
	a.session.Reset()
	a.localID, a.remoteID, a.gameName = "", "", ""
	a.syncing, a.dirty = false, false
	a.editing = false
	a.scoreInputs = nil
	if a.cache != nil {
		if err := a.cache.Clear(); err != nil {
			a.log.Warn("清除本地缓存失败", zap.Error(err))
		}
	}
}
