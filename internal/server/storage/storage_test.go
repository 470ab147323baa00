package storage

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
)

func newTestClient(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func newTestRedisStore(t *testing.T) (*RedisStore, *Leaderboard, *miniredis.Miniredis) {
	t.Helper()
	client, mr := newTestClient(t)
	return NewRedisStore(client), NewLeaderboard(client), mr
}

var testRule = rule.Config{
	WinMetric:    rule.MetricPoints,
	TargetPoints: 100,
	WinCondition: rule.Highest,
	GameMode:     rule.SuddenDeath,
}

// newTestGame 构造一局对局，按顺序提交 rounds
func newTestGame(t *testing.T, id, owner string, names []string, rounds ...map[string]int) *SavedGame {
	t.Helper()
	s := session.New()
	require.NoError(t, s.Start(names, &testRule))
	for _, r := range rounds {
		_, err := s.SubmitRound(r)
		require.NoError(t, err)
	}

	g := &SavedGame{ID: id, Owner: owner, Name: id, Date: time.Now()}
	g.ApplySession(s)
	return g
}
