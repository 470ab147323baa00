// Package ledger records per-round scores for every player of a game and
// keeps each player's total in sync with their score history.
package ledger

import (
	"fmt"

	"github.com/palemoky/point-calculator/internal/apperrors"
)

// Player 玩家及其逐轮得分
type Player struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Scores     []int  `json:"scores"`     // 下标即轮次下标（从 0 开始）
	TotalScore int    `json:"totalScore"` // 恒等于 Scores 之和
}

// Round 一轮的原始录入
type Round struct {
	RoundNumber int            `json:"roundNumber"` // 从 1 开始
	Scores      map[string]int `json:"scores"`      // 玩家 ID -> 本轮得分，原样保存
}

// Ledger 计分账本
type Ledger struct {
	players []Player
	rounds  []Round
	index   map[string]int // 玩家 ID -> players 下标
}

// PlayerID 按座位顺序生成玩家 ID
func PlayerID(seat int) string {
	return fmt.Sprintf("player-%d", seat)
}

// New 创建只有玩家、尚无轮次的账本
func New(names []string) *Ledger {
	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{ID: PlayerID(i), Name: name, Scores: []int{}}
	}
	l, _ := Restore(players, nil)
	return l
}

// Restore 从已持久化的数据重建账本，总分一律按得分重新计算
func Restore(players []Player, rounds []Round) (*Ledger, error) {
	l := &Ledger{
		players: make([]Player, len(players)),
		rounds:  make([]Round, len(rounds)),
		index:   make(map[string]int, len(players)),
	}

	for i, r := range rounds {
		l.rounds[i] = Round{RoundNumber: i + 1, Scores: copyScores(r.Scores)}
	}

	for i, p := range players {
		if _, dup := l.index[p.ID]; dup {
			return nil, apperrors.ErrValidation.WithDetail("duplicate player id " + p.ID)
		}
		if len(p.Scores) != len(rounds) {
			return nil, apperrors.ErrValidation.WithDetail(fmt.Sprintf(
				"player %s has %d scores but %d rounds were recorded", p.ID, len(p.Scores), len(rounds)))
		}
		scores := append([]int{}, p.Scores...)
		l.players[i] = Player{ID: p.ID, Name: p.Name, Scores: scores, TotalScore: Sum(scores)}
		l.index[p.ID] = i
	}

	return l, nil
}

// Sum 计算得分总和
func Sum(scores []int) int {
	total := 0
	for _, s := range scores {
		total += s
	}
	return total
}

// RoundCount 已记录的轮数
func (l *Ledger) RoundCount() int {
	return len(l.rounds)
}

// Players 返回玩家副本（保持开局顺序）
func (l *Ledger) Players() []Player {
	out := make([]Player, len(l.players))
	for i, p := range l.players {
		out[i] = p
		out[i].Scores = append([]int{}, p.Scores...)
	}
	return out
}

// Rounds 返回轮次副本
func (l *Ledger) Rounds() []Round {
	out := make([]Round, len(l.rounds))
	for i, r := range l.rounds {
		out[i] = Round{RoundNumber: r.RoundNumber, Scores: copyScores(r.Scores)}
	}
	return out
}

// Player 按 ID 查找玩家
func (l *Ledger) Player(id string) (Player, bool) {
	i, ok := l.index[id]
	if !ok {
		return Player{}, false
	}
	p := l.players[i]
	p.Scores = append([]int{}, p.Scores...)
	return p, true
}

// AppendRound 追加一轮。frozen 返回 true 的玩家本轮记 0 分且总分不变；
// 其余玩家记 raw[id]，缺省为 0。raw 原样存入轮次记录。
func (l *Ledger) AppendRound(raw map[string]int, frozen func(id string) bool) Round {
	for i := range l.players {
		p := &l.players[i]
		if frozen != nil && frozen(p.ID) {
			p.Scores = append(p.Scores, 0)
			continue
		}
		score := raw[p.ID]
		p.Scores = append(p.Scores, score)
		p.TotalScore += score
	}

	round := Round{RoundNumber: len(l.rounds) + 1, Scores: copyScores(raw)}
	l.rounds = append(l.rounds, round)
	return Round{RoundNumber: round.RoundNumber, Scores: copyScores(round.Scores)}
}

// SetScore 覆盖某玩家某一轮的得分，并重新计算其总分
func (l *Ledger) SetScore(playerID string, roundIndex, score int) error {
	i, ok := l.index[playerID]
	if !ok {
		return apperrors.ErrPlayerNotFound.WithDetail(playerID)
	}
	if roundIndex < 0 || roundIndex >= len(l.rounds) {
		return apperrors.ErrOutOfRange.WithDetail(fmt.Sprintf("round index %d, %d rounds recorded", roundIndex, len(l.rounds)))
	}

	if l.rounds[roundIndex].Scores == nil {
		l.rounds[roundIndex].Scores = make(map[string]int)
	}
	l.rounds[roundIndex].Scores[playerID] = score

	p := &l.players[i]
	p.Scores[roundIndex] = score
	p.TotalScore = Sum(p.Scores)
	return nil
}

func copyScores(src map[string]int) map[string]int {
	dst := make(map[string]int, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
