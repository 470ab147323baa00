// Package common provides shared styles and utilities for the UI.
package common

import "github.com/charmbracelet/lipgloss"

// Icon constants
const (
	WinnerIcon     = "👑"
	LeaderIcon     = "⭐"
	EliminatedIcon = "💀"
	CursorIcon     = "▶"
)

// Lipgloss Styles
var (
	DocStyle       = lipgloss.NewStyle().Margin(1, 2)
	TitleStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("228")).Bold(true).Render
	SubtitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render
	BoxStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	DangerBoxStyle = BoxStyle.BorderForeground(lipgloss.Color("9"))
	PromptStyle    = lipgloss.NewStyle().MarginTop(1)
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	InfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))

	HeaderCellStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	CellStyle         = lipgloss.NewStyle().Padding(0, 1)
	SelectedCellStyle = CellStyle.Reverse(true)
	EliminatedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Strikethrough(true)
	WinnerStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Bold(true)
	NegativeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	FocusedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
)
