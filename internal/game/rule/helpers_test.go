package rule

import "github.com/palemoky/point-calculator/internal/game/ledger"

// players 按传入顺序构造玩家，仅设置总分
func players(totals ...int) []ledger.Player {
	out := make([]ledger.Player, len(totals))
	for i, total := range totals {
		out[i] = ledger.Player{ID: ledger.PlayerID(i), Name: ledger.PlayerID(i), Scores: []int{total}, TotalScore: total}
	}
	return out
}

func ids(ps []ledger.Player) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}
