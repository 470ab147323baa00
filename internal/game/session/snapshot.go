package session

import (
	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/ledger"
	"github.com/palemoky/point-calculator/internal/game/rule"
)

// Snapshot 可持久化的会话状态。
// GameEnded 与 Winner 仅供读取方使用，Load 时会被忽略并重新推导。
type Snapshot struct {
	ID           string          `json:"id,omitempty"`
	Players      []ledger.Player `json:"players"`
	Rounds       []ledger.Round  `json:"rounds"`
	Config       *rule.Config    `json:"config"`
	CurrentRound int             `json:"currentRound"`
	GameEnded    bool            `json:"gameEnded"`
	Winner       *ledger.Player  `json:"winner,omitempty"`
}

// Snapshot 导出当前状态的深拷贝
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		Players:      s.ledger.Players(),
		Rounds:       s.ledger.Rounds(),
		CurrentRound: s.CurrentRound(),
		GameEnded:    s.standing.Ended,
	}
	if s.config != nil {
		c := *s.config
		snap.Config = &c
	}
	if w, ok := s.Winner(); ok {
		snap.Winner = &w
	}
	return snap
}

// Load 用快照替换当前状态。总分、当前轮次、出局与结束状态全部重新推导，
// 不信任快照中保存的派生字段。失败时保持原状态。
func (s *Session) Load(snap Snapshot) error {
	if snap.Config == nil {
		return apperrors.ErrValidation.WithDetail("snapshot has no rule config")
	}
	if err := snap.Config.Validate(); err != nil {
		return err
	}
	if len(snap.Players) == 0 {
		return apperrors.ErrValidation.WithDetail("snapshot has no players")
	}

	l, err := ledger.Restore(snap.Players, snap.Rounds)
	if err != nil {
		return err
	}

	c := *snap.Config
	s.id = snap.ID
	s.config = &c
	s.ledger = l
	s.refresh()
	return nil
}

// FromSnapshot 从快照创建会话
func FromSnapshot(snap Snapshot) (*Session, error) {
	s := New()
	if err := s.Load(snap); err != nil {
		return nil, err
	}
	return s, nil
}
