package types

import (
	"context"

	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

// ClientInterface 定义 WebSocket 客户端接口（用于打破循环依赖）
type ClientInterface interface {
	GetID() string
	GetUserID() string
	GetGame() string
	SetGame(gameID string)
	SendMessage(msg *protocol.Message)
	Close()
}

// GameStore 对局存储接口
type GameStore interface {
	SaveGame(ctx context.Context, game *storage.SavedGame) error
	LoadGame(ctx context.Context, id string) (*storage.SavedGame, error)
	ListGames(ctx context.Context, owner string, limit int) ([]*storage.SavedGame, error)
	DeleteGame(ctx context.Context, owner, id string) error
}

// RuleStore 规则预设存储接口
type RuleStore interface {
	SaveRule(ctx context.Context, r *storage.StoredRule) error
	LoadRule(ctx context.Context, id string) (*storage.StoredRule, error)
	ListRules(ctx context.Context, owner string) ([]*storage.StoredRule, error)
	DeleteRule(ctx context.Context, owner, id string) error
}

// Archiver 已结束对局的归档接口
type Archiver interface {
	Record(ctx context.Context, game *storage.SavedGame) error
	Forget(ctx context.Context, gameID string) error
	ListByOwner(ctx context.Context, owner string, limit int) ([]storage.ArchivedGame, error)
}

// Leaderboard 排行榜接口
type Leaderboard interface {
	Top(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error)
	Rank(ctx context.Context, player string) (int64, error)
}
