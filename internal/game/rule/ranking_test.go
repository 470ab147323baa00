package rule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRank(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		ps   []int
		want []string
	}{
		{
			name: "highest wins",
			cfg:  Config{WinMetric: MetricRounds, TargetRounds: 5, WinCondition: Highest, GameMode: SuddenDeath},
			ps:   []int{10, 30, 20},
			want: []string{"player-1", "player-2", "player-0"},
		},
		{
			name: "lowest wins",
			cfg:  Config{WinMetric: MetricRounds, TargetRounds: 5, WinCondition: Lowest, GameMode: SuddenDeath},
			ps:   []int{10, 30, 20},
			want: []string{"player-0", "player-2", "player-1"},
		},
		{
			name: "ties keep starting order",
			cfg:  Config{WinMetric: MetricRounds, TargetRounds: 5, WinCondition: Highest, GameMode: SuddenDeath},
			ps:   []int{5, 9, 5, 9, 5},
			want: []string{"player-1", "player-3", "player-0", "player-2", "player-4"},
		},
		{
			name: "eliminated sort last regardless of score",
			cfg:  Config{WinMetric: MetricPoints, TargetPoints: 50, WinCondition: Highest, GameMode: Elimination},
			ps:   []int{60, 10, 55, 20},
			want: []string{"player-3", "player-1", "player-0", "player-2"},
		},
		{
			name: "eliminated partition is ordered too",
			cfg:  Config{WinMetric: MetricPoints, TargetPoints: 50, WinCondition: Lowest, GameMode: Elimination},
			ps:   []int{70, 10, 55},
			want: []string{"player-1", "player-2", "player-0"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(Rank(players(tt.ps...), tt.cfg)))
		})
	}
}

func TestRank_DoesNotReorderInput(t *testing.T) {
	t.Parallel()

	ps := players(1, 3, 2)
	_ = Rank(ps, Config{WinMetric: MetricRounds, TargetRounds: 1, WinCondition: Highest, GameMode: SuddenDeath})
	assert.Equal(t, []string{"player-0", "player-1", "player-2"}, ids(ps))
}
