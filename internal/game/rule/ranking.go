package rule

import (
	"cmp"
	"slices"

	"github.com/palemoky/point-calculator/internal/game/ledger"
)

// Rank 返回排序后的玩家副本：未出局者在前，组内按胜负方向排序，
// 同分保持传入顺序（稳定排序）。
func Rank(players []ledger.Player, cfg Config) []ledger.Player {
	return rankWith(players, cfg, Eliminated(players, cfg))
}

func rankWith(players []ledger.Player, cfg Config, eliminated map[string]bool) []ledger.Player {
	ranked := make([]ledger.Player, len(players))
	copy(ranked, players)

	slices.SortStableFunc(ranked, func(a, b ledger.Player) int {
		aOut, bOut := eliminated[a.ID], eliminated[b.ID]
		if aOut != bOut {
			if aOut {
				return 1
			}
			return -1
		}
		if cfg.WinCondition == Highest {
			return cmp.Compare(b.TotalScore, a.TotalScore)
		}
		return cmp.Compare(a.TotalScore, b.TotalScore)
	})
	return ranked
}
