package rule

import "github.com/palemoky/point-calculator/internal/game/ledger"

// Eliminated 返回当前已出局的玩家 ID 集合。
// 仅淘汰模式生效：总分达到或超过目标分即出局，与排名方向无关。
func Eliminated(players []ledger.Player, cfg Config) map[string]bool {
	out := make(map[string]bool)
	if cfg.GameMode != Elimination {
		return out
	}
	for _, p := range players {
		if p.TotalScore >= cfg.TargetPoints {
			out[p.ID] = true
		}
	}
	return out
}

// ActiveCount 未出局的玩家数量
func ActiveCount(players []ledger.Player, eliminated map[string]bool) int {
	n := 0
	for _, p := range players {
		if !eliminated[p.ID] {
			n++
		}
	}
	return n
}
