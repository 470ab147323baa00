package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/palemoky/point-calculator/internal/game/ledger"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/ui/common"
	"github.com/palemoky/point-calculator/internal/ui/model"
)

// 表格最多显示的轮次列，超出时只显示最近几轮
const maxRoundColumns = 8

const nameWidth = 12

// GameView 对局界面
func GameView(m *model.App) string {
	s := m.Session()
	var sb strings.Builder

	sb.WriteString(common.TitleStyle("🎲 " + m.GameName()))
	sb.WriteString("\n")
	sb.WriteString(common.SubtitleStyle(gameSubtitle(m)))
	sb.WriteString("\n\n")

	cursorPlayer, cursorRound := "", -1
	if m.Editing() {
		cursorPlayer, cursorRound = m.Cursor()
	}
	sb.WriteString(RenderScoreTable(s, cursorPlayer, cursorRound))
	sb.WriteString("\n\n")

	switch {
	case m.Editing():
		sb.WriteString(renderEditPrompt(m))
		sb.WriteString("\n\n")
		sb.WriteString(helpLine(
			"←↑↓→", "select", "enter", "set score",
			"ctrl+x", "clear score", "esc", "done",
		))
	case s.IsEnded():
		sb.WriteString(renderResult(s))
		sb.WriteString("\n\n")
		sb.WriteString(helpLine("ctrl+e", "correct scores", "ctrl+r", "new game", "ctrl+c", "quit"))
	default:
		sb.WriteString(renderRoundEntry(m))
		sb.WriteString("\n\n")
		sb.WriteString(helpLine(
			"tab", "next player", "enter", "submit round",
			"ctrl+e", "correct scores", "ctrl+r", "new game",
		))
	}
	sb.WriteString("\n")
	sb.WriteString(helpLine("ctrl+t", "history", "ctrl+l", "leaderboard", "ctrl+q", "log out", "ctrl+c", "quit"))
	return sb.String()
}

func gameSubtitle(m *model.App) string {
	s := m.Session()
	parts := []string{}
	if cfg, ok := s.Config(); ok {
		parts = append(parts, cfg.String())
	}
	if !s.IsEnded() {
		parts = append(parts, fmt.Sprintf("round %d", s.CurrentRound()))
	}
	switch {
	case m.Live():
		parts = append(parts, "live")
	case !m.Online():
		parts = append(parts, "offline")
	case m.Syncing():
		parts = append(parts, "syncing…")
	case m.RemoteID() != "":
		parts = append(parts, "synced")
	}
	return strings.Join(parts, " · ")
}

// RenderScoreTable 按排名渲染计分表。cursorRound 为 -1 时不高亮。
func RenderScoreTable(s *session.Session, cursorPlayer string, cursorRound int) string {
	ranked := s.RankedPlayers()
	eliminated := s.EliminatedIDs()
	winner, hasWinner := s.Winner()

	start, end := common.VisibleRange(len(s.Rounds()), maxRoundColumns)
	if cursorRound >= 0 && cursorRound < start {
		start, end = cursorRound, min(cursorRound+maxRoundColumns, len(s.Rounds()))
	}

	header := []string{"#", "Player"}
	for r := start; r < end; r++ {
		header = append(header, "R"+strconv.Itoa(r+1))
	}
	header = append(header, "Total")

	rows := make([][]string, len(ranked))
	for i, p := range ranked {
		row := []string{strconv.Itoa(i+1) + ".", playerLabel(p, eliminated[p.ID], hasWinner && winner.ID == p.ID)}
		for r := start; r < end; r++ {
			row = append(row, scoreAt(p, r))
		}
		rows[i] = append(row, strconv.Itoa(p.TotalScore))
	}

	widths := columnWidths(header, rows)
	var sb strings.Builder
	sb.WriteString(renderRow(header, widths, func(int) lipgloss.Style { return common.HeaderCellStyle }))
	sb.WriteString("\n")
	for i, p := range ranked {
		rowStyle := common.CellStyle
		switch {
		case hasWinner && winner.ID == p.ID:
			rowStyle = common.WinnerStyle.Padding(0, 1)
		case eliminated[p.ID]:
			rowStyle = common.EliminatedStyle.Padding(0, 1)
		}
		sb.WriteString(renderRow(rows[i], widths, func(col int) lipgloss.Style {
			if p.ID == cursorPlayer && col-2 == cursorRound-start {
				return common.SelectedCellStyle
			}
			return rowStyle
		}))
		sb.WriteString("\n")
	}
	return common.BoxStyle.Render(strings.TrimRight(sb.String(), "\n"))
}

func playerLabel(p ledger.Player, eliminated, winner bool) string {
	name := common.TruncateName(p.Name, nameWidth)
	switch {
	case winner:
		return common.WinnerIcon + " " + name
	case eliminated:
		return common.EliminatedIcon + " " + name
	}
	return name
}

func scoreAt(p ledger.Player, round int) string {
	if round < len(p.Scores) {
		return common.FormatScore(p.Scores[round])
	}
	return ""
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}
	return widths
}

func renderRow(cells []string, widths []int, style func(col int) lipgloss.Style) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		align := lipgloss.Right
		if i == 1 {
			align = lipgloss.Left
		}
		parts[i] = style(i).Width(widths[i] + 2).Align(align).Render(cell)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderRoundEntry(m *model.App) string {
	s := m.Session()
	eliminated := s.EliminatedIDs()
	inputs := m.ScoreInputs()

	var sb strings.Builder
	fmt.Fprintf(&sb, "Round %d scores\n", s.CurrentRound())
	for i, p := range s.Players() {
		label := fmt.Sprintf("%-*s ", nameWidth, common.TruncateName(p.Name, nameWidth))
		if eliminated[p.ID] {
			sb.WriteString("  " + common.EliminatedStyle.Render(label) + common.SubtitleStyle("eliminated") + "\n")
			continue
		}
		sb.WriteString(focusMark(i == m.ScoreFocus()) + label + inputs[i].View() + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func renderEditPrompt(m *model.App) string {
	playerID, round := m.Cursor()
	name := playerID
	for _, p := range m.Session().Players() {
		if p.ID == playerID {
			name = p.Name
			break
		}
	}
	edit := m.EditInput()
	return fmt.Sprintf("✏️  %s, round %d: %s", name, round+1, edit.View())
}

func renderResult(s *session.Session) string {
	if w, ok := s.Winner(); ok {
		return common.WinnerStyle.Render(fmt.Sprintf("🏆 %s wins with %d points!", w.Name, w.TotalScore))
	}
	return common.TitleStyle("Game over")
}
