package room

import (
	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
)

// SubmitRound 提交一轮得分。对局已结束时返回 false 且不广播、不保存。
func (r *Room) SubmitRound(scores map[string]int) (bool, error) {
	var accepted bool
	err := r.apply(func(s *session.Session) (bool, error) {
		ok, err := s.SubmitRound(scores)
		accepted = ok
		return ok, err
	})
	return accepted, err
}

// CorrectScore 修正历史得分
func (r *Room) CorrectScore(playerID string, roundIndex, score int) error {
	return r.apply(func(s *session.Session) (bool, error) {
		return true, s.CorrectScore(playerID, roundIndex, score)
	})
}

// DeleteScore 清零历史得分
func (r *Room) DeleteScore(playerID string, roundIndex int) error {
	return r.apply(func(s *session.Session) (bool, error) {
		return true, s.DeleteScore(playerID, roundIndex)
	})
}

// Restart 以相同的玩家和规则重新开始，对局 ID 不变
func (r *Room) Restart() error {
	return r.apply(func(s *session.Session) (bool, error) {
		cfg, ok := s.Config()
		if !ok {
			return false, apperrors.ErrGameNotStarted
		}
		players := s.Players()
		names := make([]string, len(players))
		for i, p := range players {
			names[i] = p.Name
		}

		id := s.ID()
		fresh := session.New()
		if err := fresh.Start(names, &cfg); err != nil {
			return false, err
		}
		if err := s.Load(fresh.Snapshot()); err != nil {
			return false, err
		}
		s.SetID(id)
		return true, nil
	})
}

// Replace 用外部提交的快照替换对局（REST 更新），派生状态重新推导
func (r *Room) Replace(snap session.Snapshot) error {
	return r.apply(func(s *session.Session) (bool, error) {
		snap.ID = s.ID()
		return true, s.Load(snap)
	})
}

// apply 在房间锁内执行变更。op 返回 false 表示未产生变更。
// 变更成功后广播新状态并异步保存，保存失败不回滚。
func (r *Room) apply(op func(s *session.Session) (bool, error)) error {
	r.mu.Lock()
	changed, err := op(r.session)
	if err != nil || !changed {
		r.mu.Unlock()
		return err
	}
	r.lastActive = r.manager.now()
	r.broadcastLocked(protocol.MustNewMessage(protocol.MsgGameState, r.stateLocked()))
	r.mu.Unlock()

	r.manager.persistAsync(r)
	return nil
}
