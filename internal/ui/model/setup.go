package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/action"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

// resetSetup 回到开局界面，names 用于预填玩家
func (a *App) resetSetup(names []string) {
	count := max(len(names), MinPlayers)
	a.nameInputs = make([]textinput.Model, count)
	for i := range a.nameInputs {
		a.nameInputs[i] = newInput("Player name", 20)
		if i < len(names) {
			a.nameInputs[i].SetValue(names[i])
		}
	}
	a.gameNameInput.Reset()
	a.setupFocus = 1
	a.nameInputs[0].Focus()
	a.phase = PhaseSetup
}

// MoveSetupFocus 在对局名、玩家与规则之间移动焦点
func (a *App) MoveSetupFocus(delta int) tea.Cmd {
	slots := len(a.nameInputs) + 2
	a.setupFocus = ((a.setupFocus+delta)%slots + slots) % slots
	return a.refocusSetup()
}

func (a *App) refocusSetup() tea.Cmd {
	a.gameNameInput.Blur()
	for i := range a.nameInputs {
		a.nameInputs[i].Blur()
	}
	if ti := a.focusedInput(); ti != nil {
		return ti.Focus()
	}
	return nil
}

// AddPlayer 增加一个玩家输入框并聚焦
func (a *App) AddPlayer() tea.Cmd {
	if len(a.nameInputs) >= MaxPlayers {
		return a.notify(ToastInfo, "At most 10 players")
	}
	a.nameInputs = append(a.nameInputs, newInput("Player name", 20))
	a.setupFocus = len(a.nameInputs)
	return a.refocusSetup()
}

// RemovePlayer 移除当前聚焦的玩家输入框
func (a *App) RemovePlayer() tea.Cmd {
	idx := a.setupFocus - 1
	if idx < 0 || idx >= len(a.nameInputs) {
		return nil
	}
	if len(a.nameInputs) <= MinPlayers {
		return a.notify(ToastInfo, "At least 2 players are required")
	}
	a.nameInputs = append(a.nameInputs[:idx], a.nameInputs[idx+1:]...)
	a.setupFocus = min(a.setupFocus, len(a.nameInputs))
	return a.refocusSetup()
}

// MovePreset 切换规则
func (a *App) MovePreset(delta int) {
	if n := len(a.presets); n > 0 {
		a.presetIdx = ((a.presetIdx+delta)%n + n) % n
	}
}

// SelectedPreset 当前选中的规则
func (a *App) SelectedPreset() (PresetOption, bool) {
	if a.presetIdx < 0 || a.presetIdx >= len(a.presets) {
		return PresetOption{}, false
	}
	return a.presets[a.presetIdx], true
}

// RequestDeleteRule 删除选中的服务器规则，需确认
func (a *App) RequestDeleteRule() tea.Cmd {
	p, ok := a.SelectedPreset()
	if !ok || !p.Remote {
		return a.notify(ToastInfo, "Only rules saved on the server can be deleted")
	}
	c := action.ConfirmDeleteRule(p.ID, p.Name)
	a.confirm = &c
	return nil
}

// StartGame 用输入的玩家与选中的规则开局
func (a *App) StartGame() tea.Cmd {
	if a.live != nil {
		return a.notify(ToastInfo, "Waiting for the live game from the server")
	}
	p, ok := a.SelectedPreset()
	if !ok {
		return a.notify(ToastError, "No rule preset available")
	}

	names := make([]string, len(a.nameInputs))
	for i, ti := range a.nameInputs {
		names[i] = ti.Value()
	}
	cfg := p.Config
	if err := a.session.Start(names, &cfg); err != nil {
		return a.notify(ToastError, err.Error())
	}

	a.localID = a.newID()
	a.remoteID = ""
	a.syncing, a.dirty = false, false
	a.gameName = strings.TrimSpace(a.gameNameInput.Value())
	if a.gameName == "" {
		a.gameName = "Game " + a.now().Format("2006-01-02 15:04")
	}
	a.enterGame()

	a.log.Info("开局", zap.String("local", a.localID), zap.Int("players", len(a.session.Players())), zap.String("rule", p.Name))
	return a.commit()
}

// setRemoteRules 合并服务器规则，本地预设排在前面
func (a *App) setRemoteRules(rules []storage.StoredRule) {
	local := a.presets[:0:0]
	for _, p := range a.presets {
		if !p.Remote {
			local = append(local, p)
		}
	}
	for _, r := range rules {
		local = append(local, PresetOption{Preset: r.Preset, Remote: true})
	}
	a.presets = local
	if a.presetIdx >= len(a.presets) {
		a.presetIdx = 0
	}
}
