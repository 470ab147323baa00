package view

import (
	"fmt"
	"strings"

	"github.com/palemoky/point-calculator/internal/ui/common"
	"github.com/palemoky/point-calculator/internal/ui/model"
)

// SetupView 开局界面：对局名、玩家名单与规则选择
func SetupView(m *model.App) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("🎲 Point Calculator"))
	sb.WriteString("\n")
	status := "offline"
	if m.Online() {
		status = "synced to server"
	}
	sb.WriteString(common.SubtitleStyle("New game · " + status))
	sb.WriteString("\n\n")

	name := m.GameNameInput()
	sb.WriteString(focusMark(m.SetupFocus() == 0) + name.View() + "\n\n")

	sb.WriteString("Players\n")
	for i, ti := range m.NameInputs() {
		fmt.Fprintf(&sb, "%s%2d. %s\n", focusMark(m.SetupFocus() == i+1), i+1, ti.View())
	}
	sb.WriteString("\n")
	sb.WriteString(renderPresetPicker(m))
	sb.WriteString("\n\n")

	sb.WriteString(helpLine(
		"tab", "next", "enter", "start",
		"ctrl+n", "add player", "ctrl+w", "remove player",
	))
	sb.WriteString("\n")
	sb.WriteString(helpLine(
		"ctrl+t", "history", "ctrl+l", "leaderboard",
		"ctrl+k", "clear data", "ctrl+c", "quit",
	))
	return sb.String()
}

func renderPresetPicker(m *model.App) string {
	focused := m.PresetFocused()
	p, ok := m.SelectedPreset()
	if !ok {
		return focusMark(focused) + "Rule: " + common.ErrorStyle.Render("no presets configured")
	}

	label := fmt.Sprintf("◀ %s ▶", p.Name)
	if focused {
		label = common.FocusedStyle.Render(label)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%sRule: %s  %s", focusMark(focused), label,
		common.SubtitleStyle(fmt.Sprintf("(%d/%d)", m.PresetIdx()+1, len(m.Presets()))))
	if p.Remote {
		sb.WriteString(common.SubtitleStyle("  ☁ ctrl+x delete"))
	}
	sb.WriteString("\n   ")
	sb.WriteString(common.SubtitleStyle(p.Config.String()))
	return sb.String()
}

func focusMark(focused bool) string {
	if focused {
		return common.FocusedStyle.Render(common.CursorIcon) + " "
	}
	return "  "
}
