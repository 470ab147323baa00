package action

import "fmt"

// Confirmation 确认框内容
type Confirmation struct {
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Danger       bool
	Actions      []Action
}

// ConfirmLogout 退出登录
func ConfirmLogout() Confirmation {
	return Confirmation{
		Title:        "Log out",
		Message:      "Local scores stay on this device. Continue?",
		ConfirmLabel: "Log out",
		CancelLabel:  "Cancel",
		Actions:      []Action{Logout{}},
	}
}

// ConfirmResetGame 放弃当前对局
func ConfirmResetGame() Confirmation {
	return Confirmation{
		Title:        "New game",
		Message:      "The current game will be discarded.",
		ConfirmLabel: "Discard",
		CancelLabel:  "Keep playing",
		Danger:       true,
		Actions:      []Action{ResetGame{}},
	}
}

// ConfirmDeleteGame 删除历史对局
func ConfirmDeleteGame(gameID, name string) Confirmation {
	return Confirmation{
		Title:        "Delete game",
		Message:      fmt.Sprintf("Delete %q? This cannot be undone.", name),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		Danger:       true,
		Actions:      []Action{DeleteGame{GameID: gameID}},
	}
}

// ConfirmDeleteRule 删除规则预设
func ConfirmDeleteRule(ruleID, name string) Confirmation {
	return Confirmation{
		Title:        "Delete rule",
		Message:      fmt.Sprintf("Delete rule %q?", name),
		ConfirmLabel: "Delete",
		CancelLabel:  "Cancel",
		Danger:       true,
		Actions:      []Action{DeleteRule{RuleID: ruleID}},
	}
}

// ConfirmClearAllData 清除全部数据
func ConfirmClearAllData() Confirmation {
	return Confirmation{
		Title:        "Clear all data",
		Message:      "All saved games and rule presets will be deleted.",
		ConfirmLabel: "Clear everything",
		CancelLabel:  "Cancel",
		Danger:       true,
		Actions:      []Action{ClearAllData{}},
	}
}
