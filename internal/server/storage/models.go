package storage

import (
	"time"

	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
)

// SavedGame 历史对局（用于 Redis 序列化）。
// Players 与 Winner 是冗余的摘要字段，每次 Apply 时由会话重新推导。
type SavedGame struct {
	ID        string           `json:"id"`
	Owner     string           `json:"owner"`
	Name      string           `json:"name"`
	Date      time.Time        `json:"date"`
	UpdatedAt time.Time        `json:"updated_at"`
	Players   []string         `json:"players"`
	Winner    string           `json:"winner,omitempty"`
	Config    rule.Config      `json:"config"`
	State     session.Snapshot `json:"gameState"`
}

// Apply 用快照更新对局：先经由会话重新推导派生状态，再刷新摘要字段
func (g *SavedGame) Apply(snap session.Snapshot) error {
	snap.ID = g.ID
	s, err := session.FromSnapshot(snap)
	if err != nil {
		return err
	}
	g.ApplySession(s)
	return nil
}

// ApplySession 从正在进行的会话刷新对局
func (g *SavedGame) ApplySession(s *session.Session) {
	g.State = s.Snapshot()
	g.State.ID = g.ID
	if cfg, ok := s.Config(); ok {
		g.Config = cfg
	}

	g.Players = make([]string, 0, len(g.State.Players))
	for _, p := range g.State.Players {
		g.Players = append(g.Players, p.Name)
	}

	g.Winner = ""
	if w, ok := s.Winner(); ok {
		g.Winner = w.Name
	}
	g.UpdatedAt = time.Now()
}

// Ended 对局是否已结束
func (g *SavedGame) Ended() bool {
	return g.State.GameEnded
}

// StoredRule 带归属的规则预设
type StoredRule struct {
	rule.Preset
	Owner     string    `json:"owner"`
	UpdatedAt time.Time `json:"updated_at"`
}
