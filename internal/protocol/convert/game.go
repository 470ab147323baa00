// Package convert 将对局领域对象转换为协议 payload
package convert

import (
	"github.com/palemoky/point-calculator/internal/game/ledger"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
)

// RuleToInfo 规则 → RuleInfo
func RuleToInfo(cfg rule.Config) protocol.RuleInfo {
	return protocol.RuleInfo{
		WinMetric:    string(cfg.WinMetric),
		TargetRounds: cfg.TargetRounds,
		TargetPoints: cfg.TargetPoints,
		WinCondition: string(cfg.WinCondition),
		GameMode:     string(cfg.GameMode),
		Summary:      cfg.String(),
	}
}

// PlayerToInfo 玩家 → PlayerInfo
func PlayerToInfo(p ledger.Player, eliminated bool) protocol.PlayerInfo {
	scores := make([]int, len(p.Scores))
	copy(scores, p.Scores)
	return protocol.PlayerInfo{
		ID:         p.ID,
		Name:       p.Name,
		Scores:     scores,
		TotalScore: p.TotalScore,
		Eliminated: eliminated,
	}
}

// PlayersToInfos 批量转换玩家
func PlayersToInfos(players []ledger.Player, eliminated map[string]bool) []protocol.PlayerInfo {
	result := make([]protocol.PlayerInfo, len(players))
	for i, p := range players {
		result[i] = PlayerToInfo(p, eliminated[p.ID])
	}
	return result
}

// RoundsToInfos 批量转换轮次
func RoundsToInfos(rounds []ledger.Round) []protocol.RoundInfo {
	result := make([]protocol.RoundInfo, len(rounds))
	for i, r := range rounds {
		result[i] = protocol.RoundInfo{RoundNumber: r.RoundNumber, Scores: r.Scores}
	}
	return result
}

// GameState 会话 → GameStatePayload
func GameState(gameID, name string, s *session.Session) protocol.GameStatePayload {
	eliminated := s.EliminatedIDs()
	payload := protocol.GameStatePayload{
		GameID:       gameID,
		Name:         name,
		Players:      PlayersToInfos(s.Players(), eliminated),
		Ranked:       PlayersToInfos(s.RankedPlayers(), eliminated),
		Rounds:       RoundsToInfos(s.Rounds()),
		Eliminated:   make([]string, 0, len(eliminated)),
		CurrentRound: s.CurrentRound(),
		GameEnded:    s.IsEnded(),
	}
	if cfg, ok := s.Config(); ok {
		payload.Rule = RuleToInfo(cfg)
	}
	// 按开局顺序输出，保证结果稳定
	for _, p := range payload.Players {
		if p.Eliminated {
			payload.Eliminated = append(payload.Eliminated, p.ID)
		}
	}
	if w, ok := s.Winner(); ok {
		info := PlayerToInfo(w, eliminated[w.ID])
		payload.Winner = &info
	}
	return payload
}

// RuleFromInfo RuleInfo → 规则，Summary 仅用于展示，忽略
func RuleFromInfo(info protocol.RuleInfo) rule.Config {
	return rule.Config{
		WinMetric:    rule.WinMetric(info.WinMetric),
		TargetRounds: info.TargetRounds,
		TargetPoints: info.TargetPoints,
		WinCondition: rule.WinCondition(info.WinCondition),
		GameMode:     rule.GameMode(info.GameMode),
	}
}

// SnapshotFromState GameStatePayload → 快照，供客户端用 session.FromSnapshot 重建会话
func SnapshotFromState(state protocol.GameStatePayload) session.Snapshot {
	snap := session.Snapshot{
		ID:           state.GameID,
		Players:      make([]ledger.Player, len(state.Players)),
		Rounds:       make([]ledger.Round, len(state.Rounds)),
		CurrentRound: state.CurrentRound,
		GameEnded:    state.GameEnded,
	}
	for i, p := range state.Players {
		scores := make([]int, len(p.Scores))
		copy(scores, p.Scores)
		snap.Players[i] = ledger.Player{ID: p.ID, Name: p.Name, Scores: scores, TotalScore: p.TotalScore}
	}
	for i, r := range state.Rounds {
		scores := make(map[string]int, len(r.Scores))
		for id, v := range r.Scores {
			scores[id] = v
		}
		snap.Rounds[i] = ledger.Round{RoundNumber: r.RoundNumber, Scores: scores}
	}
	if state.Rule.GameMode != "" {
		cfg := RuleFromInfo(state.Rule)
		snap.Config = &cfg
	}
	return snap
}
