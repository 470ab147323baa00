// Package session is the aggregate root of one scored game: it owns the
// players, the round history and the rule config, and re-derives
// eliminations, ranking and the end state after every mutation.
//
// A Session is not safe for concurrent use; callers that share one across
// goroutines must guard it with a single lock (see the room package).
package session

import (
	"strings"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/ledger"
	"github.com/palemoky/point-calculator/internal/game/rule"
)

// Session 一局游戏
type Session struct {
	id       string
	config   *rule.Config // nil 表示尚未开局
	ledger   *ledger.Ledger
	standing rule.Standing
}

// New 创建处于未开局状态的会话
func New() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Start 开局：去掉空白名字后至少需要两名互不重复的玩家，且规则有效。
// 校验失败时不修改任何状态。
func (s *Session) Start(names []string, cfg *rule.Config) error {
	if cfg == nil {
		return apperrors.ErrValidation.WithDetail("rule config is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	cleaned := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if seen[name] {
			return apperrors.ErrValidation.WithDetail("duplicate player name " + name)
		}
		seen[name] = true
		cleaned = append(cleaned, name)
	}
	if len(cleaned) < 2 {
		return apperrors.ErrValidation.WithDetail("at least 2 players are required")
	}

	c := *cfg
	s.id = ""
	s.config = &c
	s.ledger = ledger.New(cleaned)
	s.refresh()
	return nil
}

// SubmitRound 提交一轮得分。游戏已结束时不做任何修改并返回 false。
// 已出局玩家本轮记 0 分；未出现在 scores 中的玩家记 0 分。
func (s *Session) SubmitRound(scores map[string]int) (bool, error) {
	if s.config == nil {
		return false, apperrors.ErrGameNotStarted
	}
	if s.standing.Ended {
		return false, nil
	}

	eliminated := s.standing.Eliminated
	s.ledger.AppendRound(scores, func(id string) bool { return eliminated[id] })
	s.refresh()
	return true, nil
}

// CorrectScore 修正历史得分，游戏结束后仍然允许。
// 修正可能让游戏从结束变回未结束，反之亦然。
func (s *Session) CorrectScore(playerID string, roundIndex, newScore int) error {
	if s.config == nil {
		return apperrors.ErrGameNotStarted
	}
	if err := s.ledger.SetScore(playerID, roundIndex, newScore); err != nil {
		return err
	}
	s.refresh()
	return nil
}

// DeleteScore 将某轮得分清零
func (s *Session) DeleteScore(playerID string, roundIndex int) error {
	return s.CorrectScore(playerID, roundIndex, 0)
}

// Reset 回到未开局状态
func (s *Session) Reset() {
	s.id = ""
	s.config = nil
	s.ledger = ledger.New(nil)
	s.standing = rule.Standing{Eliminated: map[string]bool{}}
}

// refresh 从账本重新推导全部派生状态
func (s *Session) refresh() {
	s.standing = rule.Evaluate(s.ledger.RoundCount(), s.ledger.Players(), *s.config)
}

// --- 查询 ---

// ID 持久化后分配的游戏 ID，可能为空
func (s *Session) ID() string { return s.id }

// SetID 设置游戏 ID
func (s *Session) SetID(id string) { s.id = id }

// Started 是否已开局
func (s *Session) Started() bool { return s.config != nil }

// Config 当前规则
func (s *Session) Config() (rule.Config, bool) {
	if s.config == nil {
		return rule.Config{}, false
	}
	return *s.config, true
}

// CurrentRound 下一轮的轮次编号（从 1 开始）
func (s *Session) CurrentRound() int { return s.ledger.RoundCount() + 1 }

// Players 按开局顺序返回玩家
func (s *Session) Players() []ledger.Player { return s.ledger.Players() }

// Rounds 返回轮次历史
func (s *Session) Rounds() []ledger.Round { return s.ledger.Rounds() }

// EliminatedIDs 当前出局的玩家 ID 集合
func (s *Session) EliminatedIDs() map[string]bool {
	out := make(map[string]bool, len(s.standing.Eliminated))
	for id := range s.standing.Eliminated {
		out[id] = true
	}
	return out
}

// RankedPlayers 当前排名
func (s *Session) RankedPlayers() []ledger.Player {
	if s.config == nil {
		return s.ledger.Players()
	}
	out := make([]ledger.Player, len(s.standing.Ranked))
	for i, p := range s.standing.Ranked {
		out[i] = clonePlayer(p)
	}
	return out
}

// IsEnded 游戏是否已结束
func (s *Session) IsEnded() bool { return s.standing.Ended }

// Winner 游戏结束时的胜者
func (s *Session) Winner() (ledger.Player, bool) {
	if s.standing.Winner == nil {
		return ledger.Player{}, false
	}
	return clonePlayer(*s.standing.Winner), true
}

// Leader 当前领先者，与是否结束无关
func (s *Session) Leader() (ledger.Player, bool) {
	if s.config == nil {
		return ledger.Player{}, false
	}
	p, ok := s.standing.Leader()
	return clonePlayer(p), ok
}

func clonePlayer(p ledger.Player) ledger.Player {
	p.Scores = append([]int{}, p.Scores...)
	return p
}
