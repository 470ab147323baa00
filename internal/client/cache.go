// Package client 终端客户端的本地状态：当前对局缓存在用户目录下，
// 重启后通过 session.Load 恢复。
package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/palemoky/point-calculator/internal/game/session"
)

// AppDir 客户端数据目录名（位于用户主目录下）
const AppDir = ".point-calculator"

const cacheFile = "current.json"

// CachedGame 缓存的当前对局
type CachedGame struct {
	LocalID  string           `json:"localId"`            // 本机生成的对局标识
	RemoteID string           `json:"remoteId,omitempty"` // 同步到服务器后的 ID
	Name     string           `json:"name"`
	State    session.Snapshot `json:"gameState"`
	SavedAt  time.Time        `json:"savedAt"`
}

// Cache 当前对局的文件缓存
type Cache struct {
	path string
}

// NewCache 使用指定文件路径创建缓存
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// DefaultDir 返回 ~/.point-calculator
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, AppDir), nil
}

// DefaultCache 返回默认位置的缓存
func DefaultCache() (*Cache, error) {
	dir, err := DefaultDir()
	if err != nil {
		return nil, err
	}
	return NewCache(filepath.Join(dir, cacheFile)), nil
}

// Path 缓存文件路径
func (c *Cache) Path() string { return c.path }

// Load 读取缓存并恢复会话。没有缓存时返回 nil, nil, nil。
// 快照中的派生字段不可信，一律由 session.Load 重新推导。
func (c *Cache) Load() (*CachedGame, *session.Session, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var cached CachedGame
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil, nil, fmt.Errorf("解析缓存失败: %w", err)
	}
	s, err := session.FromSnapshot(cached.State)
	if err != nil {
		return nil, nil, fmt.Errorf("恢复对局失败: %w", err)
	}
	return &cached, s, nil
}

// Save 写入缓存，先写临时文件再改名
func (c *Cache) Save(game *CachedGame) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(game, "", "  ")
	if err != nil {
		return err
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, c.path)
}

// Clear 删除缓存，文件不存在不算错误
func (c *Cache) Clear() error {
	if err := os.Remove(c.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
