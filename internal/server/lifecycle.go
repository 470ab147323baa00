package server

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown 优雅关闭：停止接收请求，断开观察者，等待进行中的保存完成
func (s *Server) Shutdown(timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			s.log.Warn("HTTP 服务关闭超时", zap.Error(err))
		}
	}

	// 关闭所有客户端连接
	s.clientsMu.Lock()
	for _, client := range s.clients {
		client.Close()
	}
	s.clientsMu.Unlock()

	done := make(chan struct{})
	go func() {
		s.rooms.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn("等待对局保存超时")
	}

	if s.redis != nil {
		_ = s.redis.Close()
	}
	s.log.Info("服务器已关闭")
}
