package room

import (
	"context"

	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/protocol"
)

// persistAsync 异步保存房间的最新状态
func (m *Manager) persistAsync(r *Room) {
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		m.persist(r)
	}()
}

// persist 保存并同步归档。保存时读取最新状态，因此乱序调度也不会写入旧状态。
func (m *Manager) persist(r *Room) {
	r.saveMu.Lock()
	defer r.saveMu.Unlock()

	r.mu.Lock()
	if r.evicted {
		r.mu.Unlock()
		return
	}
	saved := r.savedLocked()
	wasArchived := r.archived
	r.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), m.saveTimeout)
	defer cancel()

	if err := m.store.SaveGame(ctx, saved); err != nil {
		m.log.Error("保存对局失败", zap.String("game", saved.ID), zap.Error(err))
		r.Broadcast(protocol.NewErrorMessageWithText(protocol.ErrCodePersistFailed,
			apperrors.ErrPersistFailed.WithDetail(err.Error()).Error()))
		return
	}

	if m.archive == nil {
		return
	}
	archived := wasArchived
	switch {
	case saved.Ended():
		if err := m.archive.Record(ctx, saved); err != nil {
			m.log.Warn("归档对局失败", zap.String("game", saved.ID), zap.Error(err))
			break
		}
		archived = true
	case wasArchived:
		// 修正后对局不再结束
		if err := m.archive.Forget(ctx, saved.ID); err != nil {
			m.log.Warn("撤销归档失败", zap.String("game", saved.ID), zap.Error(err))
			break
		}
		archived = false
	}

	r.mu.Lock()
	r.archived = archived
	r.mu.Unlock()
}
