//go:build !production

package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/point-calculator/internal/server/storage"
)

// MockGameStore 对局存储 mock
type MockGameStore struct {
	mock.Mock
}

func (m *MockGameStore) SaveGame(ctx context.Context, game *storage.SavedGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameStore) LoadGame(ctx context.Context, id string) (*storage.SavedGame, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.SavedGame), args.Error(1)
}

func (m *MockGameStore) ListGames(ctx context.Context, owner string, limit int) ([]*storage.SavedGame, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*storage.SavedGame), args.Error(1)
}

func (m *MockGameStore) DeleteGame(ctx context.Context, owner, id string) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

// MockArchiver 归档 mock
type MockArchiver struct {
	mock.Mock
}

func (m *MockArchiver) Record(ctx context.Context, game *storage.SavedGame) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockArchiver) Forget(ctx context.Context, gameID string) error {
	args := m.Called(ctx, gameID)
	return args.Error(0)
}

func (m *MockArchiver) ListByOwner(ctx context.Context, owner string, limit int) ([]storage.ArchivedGame, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.ArchivedGame), args.Error(1)
}

// MockLeaderboard 排行榜 mock
type MockLeaderboard struct {
	mock.Mock
}

func (m *MockLeaderboard) Top(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]storage.LeaderboardEntry), args.Error(1)
}

func (m *MockLeaderboard) Rank(ctx context.Context, player string) (int64, error) {
	args := m.Called(ctx, player)
	return args.Get(0).(int64), args.Error(1)
}
