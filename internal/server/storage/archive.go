package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ArchivedGame 已结束对局的归档记录
type ArchivedGame struct {
	gorm.Model `json:"-"`
	GameID     string    `gorm:"uniqueIndex;not null" json:"game_id"`
	Owner      string    `gorm:"index;not null" json:"owner"`
	Name       string    `json:"name"`
	Players    string    `gorm:"not null" json:"players"` // 逗号分隔的玩家名
	Winner     string    `gorm:"index" json:"winner"`
	Rounds     int       `gorm:"not null" json:"rounds"`
	Rule       string    `json:"rule"`                        // 规则的可读描述
	Snapshot   string    `gorm:"type:text;not null" json:"-"` // 结束时的完整快照 JSON
	FinishedAt time.Time `json:"finished_at"`
}

// Archive 基于 gorm 的对局归档
type Archive struct {
	db *gorm.DB
}

const (
	archiveMaxRetries    = 3
	archiveRetryInterval = 2 * time.Second
)

// OpenArchive 连接 PostgreSQL 并迁移表结构，连接失败时重试
func OpenArchive(dsn string, log *zap.Logger) (*Archive, error) {
	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i <= archiveMaxRetries; i++ {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if err == nil {
			break
		}
		log.Warn("连接归档数据库失败，重试中", zap.Int("retry", i), zap.Error(err))
		time.Sleep(archiveRetryInterval)
	}
	if err != nil {
		return nil, fmt.Errorf("连接归档数据库失败: %w", err)
	}

	return NewArchive(db)
}

// NewArchive 使用已有连接创建归档并迁移表结构
func NewArchive(db *gorm.DB) (*Archive, error) {
	if err := db.AutoMigrate(&ArchivedGame{}); err != nil {
		return nil, fmt.Errorf("迁移归档表失败: %w", err)
	}
	return &Archive{db: db}, nil
}

// Record 写入或覆盖一局的归档（按 GameID upsert）
func (a *Archive) Record(ctx context.Context, game *SavedGame) error {
	row, err := newArchivedGame(game)
	if err != nil {
		return err
	}

	var existing ArchivedGame
	err = a.db.WithContext(ctx).Where("game_id = ?", row.GameID).First(&existing).Error
	switch {
	case err == nil:
		row.ID = existing.ID
		row.CreatedAt = existing.CreatedAt
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}
	return a.db.WithContext(ctx).Save(row).Error
}

// Forget 删除一局的归档（修正后对局不再结束时调用）
func (a *Archive) Forget(ctx context.Context, gameID string) error {
	return a.db.WithContext(ctx).Unscoped().Where("game_id = ?", gameID).Delete(&ArchivedGame{}).Error
}

// ListByOwner 按结束时间倒序列出用户的归档
func (a *Archive) ListByOwner(ctx context.Context, owner string, limit int) ([]ArchivedGame, error) {
	var rows []ArchivedGame
	q := a.db.WithContext(ctx).Where("owner = ?", owner).Order("finished_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func newArchivedGame(game *SavedGame) (*ArchivedGame, error) {
	data, err := json.Marshal(game.State)
	if err != nil {
		return nil, fmt.Errorf("序列化快照失败: %w", err)
	}
	return &ArchivedGame{
		GameID:     game.ID,
		Owner:      game.Owner,
		Name:       game.Name,
		Players:    strings.Join(game.Players, ","),
		Winner:     game.Winner,
		Rounds:     len(game.State.Rounds),
		Rule:       game.Config.String(),
		Snapshot:   string(data),
		FinishedAt: game.UpdatedAt,
	}, nil
}
