package view

import (
	"strings"

	"github.com/palemoky/point-calculator/internal/action"
	"github.com/palemoky/point-calculator/internal/ui/common"
)

// ConfirmView 渲染确认框
func ConfirmView(c *action.Confirmation) string {
	var sb strings.Builder
	sb.WriteString(common.TitleStyle(c.Title))
	sb.WriteString("\n\n")
	sb.WriteString(c.Message)
	sb.WriteString("\n\n")

	confirm := "[y] " + c.ConfirmLabel
	if c.Danger {
		confirm = common.ErrorStyle.Render(confirm)
	}
	sb.WriteString(confirm + "    [n] " + c.CancelLabel)

	box := common.BoxStyle
	if c.Danger {
		box = common.DangerBoxStyle
	}
	return box.Render(sb.String())
}
