package rule

import "github.com/palemoky/point-calculator/internal/game/ledger"

// IsEnded 判断游戏是否结束，各适用条件之间为“或”关系
func IsEnded(roundCount int, players []ledger.Player, cfg Config) bool {
	return isEnded(roundCount, players, cfg, Eliminated(players, cfg))
}

func isEnded(roundCount int, players []ledger.Player, cfg Config, eliminated map[string]bool) bool {
	if cfg.UsesRounds() && roundCount >= cfg.TargetRounds {
		return true
	}
	if !cfg.UsesPoints() {
		return false
	}

	switch cfg.GameMode {
	case SuddenDeath:
		for _, p := range players {
			if p.TotalScore >= cfg.TargetPoints {
				return true
			}
		}
	case Elimination:
		// 单人开局时不触发，避免一开局就结束
		if len(players) > 1 && ActiveCount(players, eliminated) <= 1 {
			return true
		}
	}
	return false
}

// Standing 某一时刻由账本推导出的全部状态
type Standing struct {
	Eliminated map[string]bool
	Ranked     []ledger.Player
	Ended      bool
	Winner     *ledger.Player // 未结束时为 nil
}

// Leader 当前排名第一的玩家
func (s Standing) Leader() (ledger.Player, bool) {
	if len(s.Ranked) == 0 {
		return ledger.Player{}, false
	}
	return s.Ranked[0], true
}

// Evaluate 一次性计算出局、排名、结束与胜者。
// 结束时胜者即排名第一者，即使其在极端情况下也已出局。
func Evaluate(roundCount int, players []ledger.Player, cfg Config) Standing {
	eliminated := Eliminated(players, cfg)
	st := Standing{
		Eliminated: eliminated,
		Ranked:     rankWith(players, cfg, eliminated),
		Ended:      isEnded(roundCount, players, cfg, eliminated),
	}
	if st.Ended && len(st.Ranked) > 0 {
		winner := st.Ranked[0]
		st.Winner = &winner
	}
	return st
}
