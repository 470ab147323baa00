package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key 前缀
	gameKeyPrefix = "game:"
	ruleKeyPrefix = "rule:"
	userKeyPrefix = "user:"

	// 胜场排行榜及每局对应的胜者，用于修正后撤销旧胜者的胜场
	winsKey    = "leaderboard:wins"
	winnersKey = "leaderboard:winners"

	maxTxRetries = 20
)

// ErrTxConflict 事务多次冲突仍未提交
var ErrTxConflict = errors.New("storage: transaction conflict, retries exhausted")

func gameKey(id string) string       { return gameKeyPrefix + id }
func ruleKey(id string) string       { return ruleKeyPrefix + id }
func userGamesKey(uid string) string { return userKeyPrefix + uid + ":games" }
func userRulesKey(uid string) string { return userKeyPrefix + uid + ":rules" }

// RedisStore Redis 存储
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// --- 对局存储 ---

// SaveGame 保存对局，同时更新所属用户的索引与胜场排行榜
func (rs *RedisStore) SaveGame(ctx context.Context, game *SavedGame) error {
	if game == nil {
		return nil
	}

	data, err := json.Marshal(game)
	if err != nil {
		return fmt.Errorf("序列化对局数据失败: %w", err)
	}

	return rs.withWinner(ctx, game.ID, func(pipe redis.Pipeliner, prevWinner string) {
		pipe.Set(ctx, gameKey(game.ID), data, 0)
		pipe.ZAdd(ctx, userGamesKey(game.Owner), redis.Z{
			Score:  float64(game.UpdatedAt.UnixMilli()),
			Member: game.ID,
		})
		moveWin(ctx, pipe, game.ID, prevWinner, game.Winner)
	})
}

// withWinner 在 WATCH 胜者表的事务中执行写入，读到的旧胜者与写入原子生效；
// 冲突时重读重试
func (rs *RedisStore) withWinner(ctx context.Context, gameID string, fn func(pipe redis.Pipeliner, prevWinner string)) error {
	txf := func(tx *redis.Tx) error {
		prevWinner, err := tx.HGet(ctx, winnersKey, gameID).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			fn(pipe, prevWinner)
			return nil
		})
		return err
	}

	for _i := 0; _i < maxTxRetries; _i++ {
		err := rs.client.Watch(ctx, txf, winnersKey)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrTxConflict
}

// moveWin 把一局的胜场从旧胜者转给新胜者（任一方可为空）
func moveWin(ctx context.Context, pipe redis.Pipeliner, gameID, from, to string) {
	if from == to {
		return
	}
	if from != "" {
		pipe.ZIncrBy(ctx, winsKey, -1, from)
		pipe.ZRemRangeByScore(ctx, winsKey, "-inf", "0")
	}
	if to != "" {
		pipe.ZIncrBy(ctx, winsKey, 1, to)
		pipe.HSet(ctx, winnersKey, gameID, to)
	} else {
		pipe.HDel(ctx, winnersKey, gameID)
	}
}

// LoadGame 加载对局，不存在时返回 nil, nil
func (rs *RedisStore) LoadGame(ctx context.Context, id string) (*SavedGame, error) {
	data, err := rs.client.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var game SavedGame
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, fmt.Errorf("反序列化对局数据失败: %w", err)
	}
	return &game, nil
}

// ListGames 按更新时间倒序列出用户的对局，limit <= 0 表示全部
func (rs *RedisStore) ListGames(ctx context.Context, owner string, limit int) ([]*SavedGame, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	ids, err := rs.client.ZRevRange(ctx, userGamesKey(owner), 0, stop).Result()
	if err != nil {
		return nil, err
	}

	games := make([]*SavedGame, 0, len(ids))
	for _, id := range ids {
		game, err := rs.LoadGame(ctx, id)
		if err != nil {
			return nil, err
		}
		if game == nil {
			continue // 索引残留
		}
		games = append(games, game)
	}
	return games, nil
}

// DeleteGame 删除对局并撤销其胜场
func (rs *RedisStore) DeleteGame(ctx context.Context, owner, id string) error {
	return rs.withWinner(ctx, id, func(pipe redis.Pipeliner, prevWinner string) {
		pipe.Del(ctx, gameKey(id))
		pipe.ZRem(ctx, userGamesKey(owner), id)
		moveWin(ctx, pipe, id, prevWinner, "")
	})
}

// --- 规则预设 ---

// SaveRule 保存规则预设
func (rs *RedisStore) SaveRule(ctx context.Context, r *StoredRule) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("序列化规则失败: %w", err)
	}

	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, ruleKey(r.ID), data, 0)
		pipe.ZAdd(ctx, userRulesKey(r.Owner), redis.Z{
			Score:  float64(r.UpdatedAt.UnixMilli()),
			Member: r.ID,
		})
		return nil
	})
	return err
}

// LoadRule 加载规则预设，不存在时返回 nil, nil
func (rs *RedisStore) LoadRule(ctx context.Context, id string) (*StoredRule, error) {
	data, err := rs.client.Get(ctx, ruleKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var r StoredRule
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("反序列化规则失败: %w", err)
	}
	return &r, nil
}

// ListRules 按更新时间倒序列出用户的规则预设
func (rs *RedisStore) ListRules(ctx context.Context, owner string) ([]*StoredRule, error) {
	ids, err := rs.client.ZRevRange(ctx, userRulesKey(owner), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	rules := make([]*StoredRule, 0, len(ids))
	for _, id := range ids {
		r, err := rs.LoadRule(ctx, id)
		if err != nil {
			return nil, err
		}
		if r != nil {
			rules = append(rules, r)
		}
	}
	return rules, nil
}

// DeleteRule 删除规则预设
func (rs *RedisStore) DeleteRule(ctx context.Context, owner, id string) error {
	_, err := rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, ruleKey(id))
		pipe.ZRem(ctx, userRulesKey(owner), id)
		return nil
	})
	return err
}

// --- 辅助方法 ---

// ClearUser 删除用户的全部对局与规则预设
func (rs *RedisStore) ClearUser(ctx context.Context, owner string) error {
	gameIDs, err := rs.client.ZRange(ctx, userGamesKey(owner), 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range gameIDs {
		if err := rs.DeleteGame(ctx, owner, id); err != nil {
			return err
		}
	}

	ruleIDs, err := rs.client.ZRange(ctx, userRulesKey(owner), 0, -1).Result()
	if err != nil {
		return err
	}
	for _, id := range ruleIDs {
		if err := rs.DeleteRule(ctx, owner, id); err != nil {
			return err
		}
	}
	return nil
}

// Ping 检查 Redis 连接
func (rs *RedisStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return rs.client.Ping(ctx).Err()
}
