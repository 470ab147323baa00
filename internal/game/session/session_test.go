package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/ledger"
	"github.com/palemoky/point-calculator/internal/game/rule"
)

func newStarted(t *testing.T, cfg rule.Config, names ...string) *Session {
	t.Helper()
	s := New()
	require.NoError(t, s.Start(names, &cfg))
	return s
}

// assertInvariants 总分恒等于得分之和，轮数恒等于当前轮次减一
func assertInvariants(t *testing.T, s *Session) {
	t.Helper()
	assert.Equal(t, len(s.Rounds()), s.CurrentRound()-1)
	for _, p := range s.Players() {
		assert.Equal(t, ledger.Sum(p.Scores), p.TotalScore, "total of %s", p.ID)
		assert.Len(t, p.Scores, len(s.Rounds()))
	}
}

func rankedIDs(s *Session) []string {
	var out []string
	for _, p := range s.RankedPlayers() {
		out = append(out, p.ID)
	}
	return out
}

func TestStart(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 3, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, " Alice ", "", "Bob", "   ", "Carol")

	assert.True(t, s.Started())
	assert.Equal(t, 1, s.CurrentRound())
	assert.False(t, s.IsEnded())

	players := s.Players()
	require.Len(t, players, 3)
	assert.Equal(t, []string{"player-0", "player-1", "player-2"}, []string{players[0].ID, players[1].ID, players[2].ID})
	assert.Equal(t, "Alice", players[0].Name)
	for _, p := range players {
		assert.Zero(t, p.TotalScore)
		assert.Empty(t, p.Scores)
	}
	assertInvariants(t, s)
}

func TestStart_ValidationErrors(t *testing.T) {
	t.Parallel()

	valid := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 3, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	invalid := rule.Config{WinMetric: rule.MetricPoints, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}

	tests := []struct {
		name  string
		names []string
		cfg   *rule.Config
	}{
		{name: "one player", names: []string{"Alice"}, cfg: &valid},
		{name: "blank names do not count", names: []string{"Alice", " ", ""}, cfg: &valid},
		{name: "duplicate names", names: []string{"Alice", "Bob", "Alice"}, cfg: &valid},
		{name: "duplicate after trim", names: []string{"Alice", "Alice "}, cfg: &valid},
		{name: "missing config", names: []string{"Alice", "Bob"}, cfg: nil},
		{name: "invalid config", names: []string{"Alice", "Bob"}, cfg: &invalid},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := New()
			err := s.Start(tt.names, tt.cfg)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.False(t, s.Started(), "no partial state is committed")
		})
	}
}

func TestStart_FailureKeepsRunningGame(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 3, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "Alice", "Bob")
	_, err := s.SubmitRound(map[string]int{"player-0": 4})
	require.NoError(t, err)
	before := s.Snapshot()

	assert.Error(t, s.Start([]string{"Solo"}, &cfg))
	assert.Equal(t, before, s.Snapshot())
}

func TestNotStarted(t *testing.T) {
	t.Parallel()

	s := New()
	_, err := s.SubmitRound(map[string]int{})
	assert.ErrorIs(t, err, apperrors.ErrGameNotStarted)
	assert.ErrorIs(t, s.CorrectScore("player-0", 0, 1), apperrors.ErrGameNotStarted)
	assert.Empty(t, s.EliminatedIDs())
	assert.Empty(t, s.RankedPlayers())
	assert.False(t, s.IsEnded())
	_, ok := s.Winner()
	assert.False(t, ok)
	_, ok = s.Leader()
	assert.False(t, ok)
	_, ok = s.Config()
	assert.False(t, ok)
}

func TestSubmitRound_RecordsRawScores(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricPoints, TargetPoints: 20, WinCondition: rule.Highest, GameMode: rule.Elimination}
	s := newStarted(t, cfg, "Alice", "Bob", "Carol")

	_, err := s.SubmitRound(map[string]int{"player-0": 25, "player-1": 3, "player-2": 4})
	require.NoError(t, err)
	require.True(t, s.EliminatedIDs()["player-0"])

	// 已出局玩家提交的分数被忽略，但原始录入保留在轮次中
	applied, err := s.SubmitRound(map[string]int{"player-0": 7, "player-1": 1})
	require.NoError(t, err)
	assert.True(t, applied)

	alice, _ := s.ledger.Player("player-0")
	assert.Equal(t, []int{25, 0}, alice.Scores)
	assert.Equal(t, 25, alice.TotalScore)

	carol, _ := s.ledger.Player("player-2")
	assert.Equal(t, []int{4, 0}, carol.Scores)

	rounds := s.Rounds()
	assert.Equal(t, 2, rounds[1].RoundNumber)
	assert.Equal(t, map[string]int{"player-0": 7, "player-1": 1}, rounds[1].Scores)
	assertInvariants(t, s)
}

func TestScenario_RoundLimitWithTie(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 3, TargetPoints: 100, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "First", "Second")

	for _, round := range [][2]int{{5, 20}, {10, 5}, {15, 5}} {
		applied, err := s.SubmitRound(map[string]int{"player-0": round[0], "player-1": round[1]})
		require.NoError(t, err)
		require.True(t, applied)
	}

	players := s.Players()
	assert.Equal(t, 30, players[0].TotalScore)
	assert.Equal(t, 30, players[1].TotalScore)
	assert.True(t, s.IsEnded())
	assert.Equal(t, []string{"player-0", "player-1"}, rankedIDs(s))

	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, "First", winner.Name)
	assertInvariants(t, s)
}

func TestScenario_SuddenDeath(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricPoints, TargetPoints: 50, TargetRounds: 999, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")

	_, err := s.SubmitRound(map[string]int{"player-0": 30, "player-1": 10})
	require.NoError(t, err)
	assert.False(t, s.IsEnded())

	_, err = s.SubmitRound(map[string]int{"player-0": 25, "player-1": 10})
	require.NoError(t, err)
	assert.True(t, s.IsEnded())

	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, "A", winner.Name)
	assert.Equal(t, 55, winner.TotalScore)
}

func TestScenario_EliminationSoleSurvivor(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricPoints, TargetPoints: 50, WinCondition: rule.Highest, GameMode: rule.Elimination}
	s := newStarted(t, cfg, "A", "B", "C")

	_, err := s.SubmitRound(map[string]int{"player-0": 45, "player-1": 60, "player-2": 2})
	require.NoError(t, err)
	assert.False(t, s.IsEnded())

	_, err = s.SubmitRound(map[string]int{"player-0": 10, "player-2": 3})
	require.NoError(t, err)

	assert.Len(t, s.EliminatedIDs(), 2)
	assert.True(t, s.IsEnded())
	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, "C", winner.Name)
	assert.Equal(t, 5, winner.TotalScore)
	assertInvariants(t, s)
}

func TestScenario_SubmitAfterEndIsNoop(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 1, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, err := s.SubmitRound(map[string]int{"player-0": 1})
	require.NoError(t, err)
	require.True(t, s.IsEnded())

	before := s.Snapshot()
	applied, err := s.SubmitRound(map[string]int{"player-0": 10, "player-1": 10})
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, before, s.Snapshot())
}

func TestScenario_CorrectionReopensGame(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricPoints, TargetPoints: 50, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")

	_, err := s.SubmitRound(map[string]int{"player-0": 10, "player-1": 5})
	require.NoError(t, err)
	_, err = s.SubmitRound(map[string]int{"player-0": 45, "player-1": 5})
	require.NoError(t, err)
	require.True(t, s.IsEnded())

	require.NoError(t, s.CorrectScore("player-0", 0, 0))
	a, _ := s.ledger.Player("player-0")
	assert.Equal(t, 45, a.TotalScore)
	assert.False(t, s.IsEnded())
	_, ok := s.Winner()
	assert.False(t, ok)

	// 结束前重新开放后可以继续提交
	applied, err := s.SubmitRound(map[string]int{"player-0": 5})
	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, s.IsEnded())
	assertInvariants(t, s)
}

func TestCorrectScore_AllowedAfterEnd(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 1, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, err := s.SubmitRound(map[string]int{"player-0": 3, "player-1": 1})
	require.NoError(t, err)
	require.True(t, s.IsEnded())

	require.NoError(t, s.CorrectScore("player-1", 0, 9))
	winner, ok := s.Winner()
	require.True(t, ok)
	assert.Equal(t, "B", winner.Name, "winner is recomputed after correction")
}

func TestCorrectScore_Idempotent(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 5, WinCondition: rule.Lowest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, _ = s.SubmitRound(map[string]int{"player-0": 3, "player-1": 1})
	_, _ = s.SubmitRound(map[string]int{"player-0": 2, "player-1": 8})

	require.NoError(t, s.CorrectScore("player-1", 1, 4))
	once := s.Snapshot()
	require.NoError(t, s.CorrectScore("player-1", 1, 4))
	assert.Equal(t, once, s.Snapshot())
}

func TestCorrectScore_Errors(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 5, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, _ = s.SubmitRound(map[string]int{"player-0": 3})
	before := s.Snapshot()

	assert.ErrorIs(t, s.CorrectScore("player-0", 1, 5), apperrors.ErrOutOfRange)
	assert.ErrorIs(t, s.DeleteScore("player-0", 4), apperrors.ErrOutOfRange)
	assert.ErrorIs(t, s.CorrectScore("ghost", 0, 5), apperrors.ErrPlayerNotFound)
	assert.Equal(t, before, s.Snapshot())
}

func TestDeleteScore(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 5, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, _ = s.SubmitRound(map[string]int{"player-0": 10, "player-1": 2})
	_, _ = s.SubmitRound(map[string]int{"player-0": 4, "player-1": 2})

	require.NoError(t, s.DeleteScore("player-0", 0))
	a, _ := s.ledger.Player("player-0")
	assert.Equal(t, []int{0, 4}, a.Scores)
	assert.Equal(t, 4, a.TotalScore)
	assert.Equal(t, 0, s.Rounds()[0].Scores["player-0"])
	assertInvariants(t, s)
}

func TestElimination_MonotonicUntilCorrected(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricPoints, TargetPoints: 30, WinCondition: rule.Highest, GameMode: rule.Elimination}
	s := newStarted(t, cfg, "A", "B", "C")

	_, _ = s.SubmitRound(map[string]int{"player-0": 30, "player-1": 5, "player-2": 5})
	require.True(t, s.EliminatedIDs()["player-0"])

	for i := 0; i < 3; i++ {
		_, err := s.SubmitRound(map[string]int{"player-0": -50, "player-1": 1, "player-2": 1})
		require.NoError(t, err)
		assert.True(t, s.EliminatedIDs()["player-0"], "stays eliminated after round %d", i+2)
	}

	// 修正把总分降到淘汰线以下后重新回到场上
	require.NoError(t, s.CorrectScore("player-0", 0, 29))
	assert.False(t, s.EliminatedIDs()["player-0"])
	assert.Equal(t, []string{"player-0", "player-1", "player-2"}, rankedIDs(s))
	assertInvariants(t, s)
}

func TestRanking_StableForTies(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 10, WinCondition: rule.Lowest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B", "C", "D")
	_, _ = s.SubmitRound(map[string]int{"player-0": 5, "player-1": 3, "player-2": 5, "player-3": 3})

	assert.Equal(t, []string{"player-1", "player-3", "player-0", "player-2"}, rankedIDs(s))
	leader, ok := s.Leader()
	require.True(t, ok)
	assert.Equal(t, "B", leader.Name)
}

func TestReset(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 1, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	s.SetID("game-1")
	_, _ = s.SubmitRound(map[string]int{"player-0": 1})

	s.Reset()
	assert.False(t, s.Started())
	assert.False(t, s.IsEnded())
	assert.Empty(t, s.ID())
	assert.Empty(t, s.Players())
	assert.Equal(t, 1, s.CurrentRound())
	assert.Equal(t, New().Snapshot(), s.Snapshot())
}

func TestQueries_ReturnCopies(t *testing.T) {
	t.Parallel()

	cfg := rule.Config{WinMetric: rule.MetricRounds, TargetRounds: 5, WinCondition: rule.Highest, GameMode: rule.SuddenDeath}
	s := newStarted(t, cfg, "A", "B")
	_, _ = s.SubmitRound(map[string]int{"player-0": 1})

	s.Players()[0].Scores[0] = 100
	s.RankedPlayers()[0].TotalScore = 100
	s.Rounds()[0].Scores["player-0"] = 100
	s.EliminatedIDs()["player-0"] = true

	a, _ := s.ledger.Player("player-0")
	assert.Equal(t, []int{1}, a.Scores)
	assert.Equal(t, 1, s.RankedPlayers()[0].TotalScore)
	assert.Equal(t, 1, s.Rounds()[0].Scores["player-0"])
	assert.Empty(t, s.EliminatedIDs())
}
