// Package room 托管正在进行的对局。每个 Room 持有一个会话，
// 所有读改写都经过 Room 的互斥锁；变更提交后先广播，再异步保存。
package room

import (
	"sync"
	"time"

	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/protocol/convert"
	"github.com/palemoky/point-calculator/internal/server/storage"
	"github.com/palemoky/point-calculator/internal/types"
)

// Room 一局托管中的对局
type Room struct {
	manager *Manager

	game       storage.SavedGame // 元数据（ID、归属、名字、日期），State 只在保存时刷新
	session    *session.Session
	watchers   map[string]types.ClientInterface
	lastActive time.Time
	archived   bool // 归档中存在该对局
	evicted    bool // 已移除，不再保存

	mu     sync.Mutex
	saveMu sync.Mutex // 串行化保存，保证后写入的总是更新的状态
}

// ID 对局 ID
func (r *Room) ID() string {
	return r.game.ID
}

// Owner 对局所属用户
func (r *Room) Owner() string {
	return r.game.Owner
}

// State 当前对局状态
func (r *Room) State() protocol.GameStatePayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stateLocked()
}

// Saved 当前状态的可保存副本
func (r *Room) Saved() *storage.SavedGame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.savedLocked()
}

// WatcherCount 观察者数量
func (r *Room) WatcherCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.watchers)
}

func (r *Room) stateLocked() protocol.GameStatePayload {
	return convert.GameState(r.game.ID, r.game.Name, r.session)
}

func (r *Room) savedLocked() *storage.SavedGame {
	g := r.game
	g.ApplySession(r.session)
	return &g
}

// Broadcast 广播消息给所有观察者
func (r *Room) Broadcast(msg *protocol.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(msg)
}

func (r *Room) broadcastLocked(msg *protocol.Message) {
	for _, w := range r.watchers {
		w.SendMessage(msg)
	}
}
