// Package input handles keyboard input processing.
package input

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/point-calculator/internal/ui/model"
)

// HandleKeyPress handles keyboard input and returns whether it was handled.
// 未处理的按键交给当前输入框。
func HandleKeyPress(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	// 确认框打开时只响应确认与取消
	if m.Confirmation() != nil {
		switch msg.String() {
		case "y", "Y", "enter":
			return true, m.Confirm()
		case "n", "N", "esc":
			m.Cancel()
			return true, nil
		}
		return true, nil
	}

	if handled, cmd := handleGlobalKeys(m, msg); handled {
		return true, cmd
	}

	switch m.Phase() {
	case model.PhaseSetup:
		return handleSetupKeys(m, msg)
	case model.PhaseGame:
		if m.Editing() {
			return handleEditKeys(m, msg)
		}
		return handleGameKeys(m, msg)
	case model.PhaseHistory:
		return handleHistoryKeys(m, msg)
	case model.PhaseLeaderboard:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			m.Back()
		}
		return true, nil
	}
	return false, nil
}

func handleGlobalKeys(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "ctrl+t":
		return true, m.OpenHistory()
	case "ctrl+l":
		return true, m.OpenLeaderboard()
	case "ctrl+k":
		m.RequestClearAll()
		return true, nil
	case "ctrl+q":
		return true, m.RequestLogout()
	}
	return false, nil
}

func handleSetupKeys(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "down":
		return true, m.MoveSetupFocus(1)
	case "shift+tab", "up":
		return true, m.MoveSetupFocus(-1)
	case "enter":
		return true, m.StartGame()
	case "ctrl+n":
		return true, m.AddPlayer()
	case "ctrl+w":
		return true, m.RemovePlayer()
	}

	if m.PresetFocused() {
		switch msg.String() {
		case "left", "h":
			m.MovePreset(-1)
		case "right", "l", " ":
			m.MovePreset(1)
		case "ctrl+x", "delete":
			return true, m.RequestDeleteRule()
		}
		return true, nil
	}
	return false, nil
}

func handleGameKeys(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "tab", "right":
		return true, m.MoveScoreFocus(1)
	case "shift+tab", "left":
		return true, m.MoveScoreFocus(-1)
	case "enter":
		return true, m.SubmitRound()
	case "ctrl+e":
		return true, m.ToggleEdit()
	case "ctrl+r":
		m.RequestReset()
		return true, nil
	}
	return false, nil
}

func handleEditKeys(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+e":
		return true, m.ToggleEdit()
	case "up":
		m.MoveCursor(-1, 0)
	case "down":
		m.MoveCursor(1, 0)
	case "left":
		m.MoveCursor(0, -1)
	case "right":
		m.MoveCursor(0, 1)
	case "enter":
		return true, m.ApplyCorrection()
	case "ctrl+x", "delete":
		return true, m.DeleteSelectedScore()
	default:
		return false, nil
	}
	return true, nil
}

func handleHistoryKeys(m *model.App, msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.Back()
	case "up", "k":
		m.MoveHistory(-1)
	case "down", "j":
		m.MoveHistory(1)
	case "enter":
		return true, m.OpenSelectedGame()
	case "d", "delete":
		m.RequestDeleteSelectedGame()
	}
	return true, nil
}
