// Package model defines the terminal scorekeeper state and its tea messages.
package model

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

// Phase 当前界面
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseGame
	PhaseHistory
	PhaseLeaderboard
)

// ToastKind 提示类型
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
)

// Toast 临时提示，数秒后自动消失
type Toast struct {
	ID      string
	Kind    ToastKind
	Message string
}

// PresetOption 开局时可选的规则
type PresetOption struct {
	rule.Preset
	Remote bool // 来自服务器，可删除
}

// LiveConn 实时对局连接
type LiveConn interface {
	SendMessage(msg *protocol.Message) error
	Receive() (*protocol.Message, error)
	Close()
}

// SoundPlayer 提示音
type SoundPlayer interface {
	Play(name string)
}

// 提示音名称
const (
	CueRound = "round"
	CueWin   = "win"
	CueError = "error"
)

// --- Tea Messages ---

// ClearToastMsg 移除指定提示
type ClearToastMsg struct {
	ID string
}

// SyncedMsg 对局已同步到服务器
type SyncedMsg struct {
	LocalID string
	Game    *storage.SavedGame
}

// SyncFailedMsg 同步失败，本地状态不回滚
type SyncFailedMsg struct {
	LocalID string
	Err     error
}

// RulesLoadedMsg 服务器上的规则预设
type RulesLoadedMsg struct {
	Rules []storage.StoredRule
}

// HistoryLoadedMsg 历史对局
type HistoryLoadedMsg struct {
	Games []storage.SavedGame
}

// LeaderboardLoadedMsg 排行榜
type LeaderboardLoadedMsg struct {
	Entries []storage.LeaderboardEntry
}

// RemoteDoneMsg 后台远程操作完成
type RemoteDoneMsg struct {
	Success string // 成功提示，可为空
	Err     error
}

// LiveMsg 服务器推送的实时消息
type LiveMsg struct {
	Msg *protocol.Message
}

// LiveClosedMsg 实时连接已断开
type LiveClosedMsg struct {
	Err error
}

// ViewRenderer 渲染当前界面
type ViewRenderer func(*App) string

// KeyHandler 处理按键，返回是否已处理
type KeyHandler func(*App, tea.KeyMsg) (bool, tea.Cmd)
