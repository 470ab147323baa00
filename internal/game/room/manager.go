package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/types"
)

// Manager 房间管理器
type Manager struct {
	store       types.GameStore
	archive     types.Archiver // 可为 nil
	log         *zap.Logger
	saveTimeout time.Duration
	idleTimeout time.Duration
	sweepEvery  time.Duration

	rooms map[string]*Room
	mu    sync.RWMutex

	cron    *cron.Cron
	pending sync.WaitGroup // 进行中的保存
	now     func() time.Time
}

// NewManager 创建房间管理器
func NewManager(store types.GameStore, archive types.Archiver, log *zap.Logger, cfg config.GameConfig) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		store:       store,
		archive:     archive,
		log:         log,
		saveTimeout: cfg.SaveTimeoutDuration(),
		idleTimeout: cfg.RoomIdleTimeoutDuration(),
		sweepEvery:  cfg.SweepIntervalDuration(),
		rooms:       make(map[string]*Room),
		now:         time.Now,
	}
}

// Start 启动空闲房间清理任务
func (m *Manager) Start() error {
	m.cron = cron.New()
	spec := fmt.Sprintf("@every %s", m.sweepEvery)
	if _, err := m.cron.AddFunc(spec, func() { m.SweepIdle() }); err != nil {
		return fmt.Errorf("注册房间清理任务失败: %w", err)
	}
	m.cron.Start()
	return nil
}

// Stop 停止清理任务并等待进行中的保存完成
func (m *Manager) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	m.Wait()
}

// Wait 等待进行中的保存完成
func (m *Manager) Wait() {
	m.pending.Wait()
}

// Open 获取房间，不在内存中时从存储加载。非本人的对局按不存在处理。
func (m *Manager) Open(ctx context.Context, gameID, owner string) (*Room, error) {
	if r := m.Get(gameID); r != nil {
		if r.Owner() != owner {
			return nil, apperrors.ErrGameNotFound
		}
		return r, nil
	}

	saved, err := m.store.LoadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if saved == nil || saved.Owner != owner {
		return nil, apperrors.ErrGameNotFound
	}

	snap := saved.State
	snap.ID = saved.ID
	s, err := session.FromSnapshot(snap)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// 并发加载时以先放入的为准
	if r, ok := m.rooms[gameID]; ok {
		return r, nil
	}

	meta := *saved
	r := &Room{
		manager:    m,
		game:       meta,
		session:    s,
		watchers:   make(map[string]types.ClientInterface),
		lastActive: m.now(),
		archived:   s.IsEnded(),
	}
	m.rooms[gameID] = r
	m.log.Info("房间已加载", zap.String("game", gameID), zap.String("owner", owner))
	return r, nil
}

// Get 获取内存中的房间
func (m *Manager) Get(gameID string) *Room {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[gameID]
}

// Count 内存中的房间数量
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rooms)
}

// Evict 移除房间（对局被删除时调用），通知并断开所有观察者。
// 返回前等待该房间进行中的保存结束，之后的保存全部跳过。
func (m *Manager) Evict(gameID string) {
	m.mu.Lock()
	r, ok := m.rooms[gameID]
	delete(m.rooms, gameID)
	m.mu.Unlock()
	if !ok {
		return
	}

	r.mu.Lock()
	r.evicted = true
	r.broadcastLocked(protocol.NewErrorMessage(protocol.ErrCodeGameNotFound))
	for id, w := range r.watchers {
		w.SetGame("")
		delete(r.watchers, id)
	}
	r.mu.Unlock()

	// 等待进行中的保存
	r.saveMu.Lock()
	r.saveMu.Unlock()
	m.log.Info("房间已移除", zap.String("game", gameID))
}

// Attach 观察者进入房间，并立即收到当前状态
func (m *Manager) Attach(r *Room, client types.ClientInterface) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.watchers[client.GetID()] = client
	r.lastActive = m.now()
	client.SetGame(r.game.ID)
	client.SendMessage(protocol.MustNewMessage(protocol.MsgGameState, r.stateLocked()))
}

// Detach 观察者离开房间
func (m *Manager) Detach(client types.ClientInterface) {
	gameID := client.GetGame()
	if gameID == "" {
		return
	}
	r := m.Get(gameID)
	client.SetGame("")
	if r == nil {
		return
	}

	r.mu.Lock()
	delete(r.watchers, client.GetID())
	r.lastActive = m.now()
	r.mu.Unlock()
}

// SweepIdle 清理无人观看且超过空闲时长的房间，返回清理数量
func (m *Manager) SweepIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, r := range m.rooms {
		r.mu.Lock()
		idle := len(r.watchers) == 0 && now.Sub(r.lastActive) > m.idleTimeout
		r.mu.Unlock()
		if idle {
			delete(m.rooms, id)
			removed++
		}
	}
	if removed > 0 {
		m.log.Info("已清理空闲房间", zap.Int("count", removed))
	}
	return removed
}
