// Package view provides UI rendering functions.
package view

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/point-calculator/internal/ui/common"
	"github.com/palemoky/point-calculator/internal/ui/model"
)

// CreateViewRenderer creates a view renderer function that can be injected into the App.
func CreateViewRenderer() model.ViewRenderer {
	return Render
}

// Render 渲染当前界面，确认框与提示叠加在最上层
func Render(m *model.App) string {
	var content string
	switch m.Phase() {
	case model.PhaseSetup:
		content = SetupView(m)
	case model.PhaseGame:
		content = GameView(m)
	case model.PhaseHistory:
		content = HistoryView(m)
	case model.PhaseLeaderboard:
		content = LeaderboardView(m)
	default:
		content = "Unknown phase"
	}

	if c := m.Confirmation(); c != nil {
		content = ConfirmView(c)
	}

	var sb strings.Builder
	if toasts := RenderToasts(m.Toasts()); toasts != "" {
		sb.WriteString(toasts)
		sb.WriteString("\n")
	}
	sb.WriteString(content)

	out := common.DocStyle.Render(sb.String())
	if m.Width() > 0 && m.Height() > 0 {
		return lipgloss.Place(m.Width(), m.Height(), lipgloss.Center, lipgloss.Top, out)
	}
	return out
}

// RenderToasts 渲染提示列表
func RenderToasts(toasts []model.Toast) string {
	if len(toasts) == 0 {
		return ""
	}
	lines := make([]string, 0, len(toasts))
	for _, t := range toasts {
		lines = append(lines, toastStyle(t.Kind).Render(toastIcon(t.Kind)+" "+t.Message))
	}
	return strings.Join(lines, "\n")
}

func toastStyle(kind model.ToastKind) lipgloss.Style {
	switch kind {
	case model.ToastError:
		return common.ErrorStyle
	case model.ToastSuccess:
		return common.SuccessStyle
	default:
		return common.InfoStyle
	}
}

func toastIcon(kind model.ToastKind) string {
	switch kind {
	case model.ToastError:
		return "⚠️"
	case model.ToastSuccess:
		return "✅"
	default:
		return "ℹ️"
	}
}

// helpLine 渲染快捷键说明
func helpLine(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, pairs[i]+" "+pairs[i+1])
	}
	return common.HelpStyle.Render(strings.Join(parts, " · "))
}
