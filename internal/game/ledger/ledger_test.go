package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/apperrors"
)

func assertTotals(t *testing.T, l *Ledger) {
	t.Helper()
	for _, p := range l.Players() {
		assert.Equal(t, Sum(p.Scores), p.TotalScore, "total of %s", p.ID)
		assert.Len(t, p.Scores, l.RoundCount(), "scores of %s", p.ID)
	}
}

func TestNew_AssignsIDsInInputOrder(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob", "Carol"})
	players := l.Players()

	require.Len(t, players, 3)
	assert.Equal(t, "player-0", players[0].ID)
	assert.Equal(t, "Alice", players[0].Name)
	assert.Equal(t, "player-2", players[2].ID)
	assert.Equal(t, 0, l.RoundCount())
	assertTotals(t, l)
}

func TestAppendRound(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob", "Carol"})

	round := l.AppendRound(map[string]int{"player-0": 5, "player-1": 7}, nil)
	assert.Equal(t, 1, round.RoundNumber)
	assert.Equal(t, map[string]int{"player-0": 5, "player-1": 7}, round.Scores)

	// player-1 被冻结：本轮记 0，总分不变，但原始录入仍保留
	frozen := func(id string) bool { return id == "player-1" }
	round = l.AppendRound(map[string]int{"player-0": 1, "player-1": 9, "player-2": 3}, frozen)
	assert.Equal(t, 2, round.RoundNumber)
	assert.Equal(t, 9, round.Scores["player-1"])

	bob, ok := l.Player("player-1")
	require.True(t, ok)
	assert.Equal(t, []int{7, 0}, bob.Scores)
	assert.Equal(t, 7, bob.TotalScore)

	carol, _ := l.Player("player-2")
	assert.Equal(t, []int{0, 3}, carol.Scores)
	assertTotals(t, l)
}

func TestAppendRound_DoesNotAliasInput(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob"})
	raw := map[string]int{"player-0": 4}
	l.AppendRound(raw, nil)
	raw["player-0"] = 100

	assert.Equal(t, 4, l.Rounds()[0].Scores["player-0"])
}

func TestSetScore(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob"})
	l.AppendRound(map[string]int{"player-0": 10, "player-1": 3}, nil)
	l.AppendRound(map[string]int{"player-0": 5, "player-1": 3}, nil)

	require.NoError(t, l.SetScore("player-0", 0, 2))
	alice, _ := l.Player("player-0")
	assert.Equal(t, []int{2, 5}, alice.Scores)
	assert.Equal(t, 7, alice.TotalScore)
	assert.Equal(t, 2, l.Rounds()[0].Scores["player-0"])

	// 再次写入相同的值不改变状态
	before := l.Players()
	require.NoError(t, l.SetScore("player-0", 0, 2))
	assert.Equal(t, before, l.Players())
	assertTotals(t, l)
}

func TestSetScore_AddsMissingRoundEntry(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob"})
	l.AppendRound(map[string]int{"player-0": 10}, nil)

	require.NoError(t, l.SetScore("player-1", 0, 4))
	assert.Equal(t, map[string]int{"player-0": 10, "player-1": 4}, l.Rounds()[0].Scores)
}

func TestSetScore_Errors(t *testing.T) {
	t.Parallel()

	l := New([]string{"Alice", "Bob"})
	l.AppendRound(map[string]int{"player-0": 10}, nil)

	err := l.SetScore("player-0", 1, 5)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	err = l.SetScore("player-0", -1, 5)
	assert.ErrorIs(t, err, apperrors.ErrOutOfRange)
	err = l.SetScore("nobody", 0, 5)
	assert.ErrorIs(t, err, apperrors.ErrPlayerNotFound)

	// 失败的修正不会扩展账本
	assert.Equal(t, 1, l.RoundCount())
	assertTotals(t, l)
}

func TestRestore(t *testing.T) {
	t.Parallel()

	players := []Player{
		{ID: "player-0", Name: "Alice", Scores: []int{1, 2}, TotalScore: 999},
		{ID: "player-1", Name: "Bob", Scores: []int{3, 4}},
	}
	rounds := []Round{
		{RoundNumber: 7, Scores: map[string]int{"player-0": 1, "player-1": 3}},
		{RoundNumber: 8, Scores: map[string]int{"player-0": 2, "player-1": 4}},
	}

	l, err := Restore(players, rounds)
	require.NoError(t, err)

	alice, _ := l.Player("player-0")
	assert.Equal(t, 3, alice.TotalScore, "stored totals are recomputed")
	assert.Equal(t, 1, l.Rounds()[0].RoundNumber, "round numbers follow position")
	assert.Equal(t, 2, l.Rounds()[1].RoundNumber)
}

func TestRestore_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		players []Player
		rounds  []Round
	}{
		{
			name:    "duplicate ids",
			players: []Player{{ID: "p"}, {ID: "p"}},
		},
		{
			name:    "score length mismatch",
			players: []Player{{ID: "p", Scores: []int{1}}},
			rounds:  nil,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Restore(tt.players, tt.rounds)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}
