package view

import (
	"fmt"
	"strings"

	"github.com/palemoky/point-calculator/internal/server/storage"
	"github.com/palemoky/point-calculator/internal/ui/common"
	"github.com/palemoky/point-calculator/internal/ui/model"
)

// HistoryView 历史对局列表
func HistoryView(m *model.App) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("📋 Saved games"))
	sb.WriteString("\n\n")

	games := m.History()
	if len(games) == 0 {
		sb.WriteString(common.SubtitleStyle("No saved games yet"))
	} else {
		sb.WriteString(renderHistoryList(games, m.HistoryIdx()))
	}
	sb.WriteString("\n\n")
	sb.WriteString(helpLine("↑↓", "select", "enter", "continue", "d", "delete", "esc", "back"))
	return sb.String()
}

func renderHistoryList(games []storage.SavedGame, selected int) string {
	var sb strings.Builder
	for i, g := range games {
		prefix := "  "
		if i == selected {
			prefix = common.CursorIcon + " "
		}
		status := fmt.Sprintf("round %d", g.State.CurrentRound)
		if g.Winner != "" {
			status = common.WinnerIcon + " " + g.Winner
		}
		line := fmt.Sprintf("%s%-24s %s  %s  %s", prefix,
			common.TruncateName(g.Name, 24),
			g.Date.Format("2006-01-02"),
			common.TruncateName(strings.Join(g.Players, ", "), 30),
			status,
		)
		if i == selected {
			line = common.FocusedStyle.Render(line)
		}
		sb.WriteString(line + "\n")
	}
	return common.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

// LeaderboardView 胜场排行榜
func LeaderboardView(m *model.App) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle("🏆 Leaderboard"))
	sb.WriteString("\n\n")

	entries := m.Leaderboard()
	if len(entries) == 0 {
		sb.WriteString(common.SubtitleStyle("No finished games yet"))
	} else {
		sb.WriteString(renderLeaderboardTable(entries))
	}
	sb.WriteString("\n\n")
	sb.WriteString(helpLine("esc", "back"))
	return sb.String()
}

func renderLeaderboardTable(entries []storage.LeaderboardEntry) string {
	var sb strings.Builder
	sb.WriteString("Rank  Player          Wins\n")
	sb.WriteString(strings.Repeat("─", 26) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&sb, "%3d.  %-14s %5d\n", e.Rank, common.TruncateName(e.Player, 14), e.Wins)
	}
	return common.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}
