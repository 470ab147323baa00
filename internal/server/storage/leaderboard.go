package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Player string `json:"player"`
	Wins   int    `json:"wins"`
}

// MaxTopLimit 单次查询排行榜的最大条数
const MaxTopLimit = 100

// Leaderboard 按胜场数排序的玩家排行榜（以玩家名字统计，跨用户共享）
type Leaderboard struct {
	redis *redis.Client
}

// NewLeaderboard 创建排行榜
func NewLeaderboard(client *redis.Client) *Leaderboard {
	return &Leaderboard{redis: client}
}

// Top 获取前 limit 名，limit 不超过 MaxTopLimit
func (lb *Leaderboard) Top(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	limit = min(limit, MaxTopLimit)
	results, err := lb.redis.ZRevRangeWithScores(ctx, winsKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(results))
	for i, z := range results {
		name, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, LeaderboardEntry{
			Rank:   i + 1,
			Player: name,
			Wins:   int(z.Score),
		})
	}
	return entries, nil
}

// Rank 获取玩家排名，未上榜返回 -1
func (lb *Leaderboard) Rank(ctx context.Context, player string) (int64, error) {
	rank, err := lb.redis.ZRevRank(ctx, winsKey, player).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return -1, nil
		}
		return -1, err
	}
	return rank + 1, nil // Redis 排名从 0 开始
}
