package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/auth"
)

// handleWebSocket 处理 /ws?game=<id>：先确认对局存在且属于当前用户，再升级连接
func (s *Server) handleWebSocket(c *gin.Context) {
	userID := auth.UserID(c)
	gameID := c.Query("game")
	if gameID == "" {
		s.api.WriteError(c, apperrors.ErrValidation.WithDetail("game is required"))
		return
	}

	r, err := s.rooms.Open(c.Request.Context(), gameID, userID)
	if err != nil {
		s.api.WriteError(c, err)
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("WebSocket 升级失败", zap.Error(err))
		return
	}

	client := NewClient(s, conn, userID)
	s.registerClient(client)
	s.rooms.Attach(r, client)

	s.log.Info("观察者已连接",
		zap.String("client", client.ID),
		zap.String("user", userID),
		zap.String("game", gameID))

	go client.ReadPump()
	go client.WritePump()
}

// registerClient 注册客户端
func (s *Server) registerClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[client.ID] = client
}

// unregisterClient 注销客户端
func (s *Server) unregisterClient(client *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()

	if _, ok := s.clients[client.ID]; ok {
		delete(s.clients, client.ID)
		s.log.Info("观察者已断开", zap.String("client", client.ID))
	}
}

// OnlineCount 当前连接数
func (s *Server) OnlineCount() int {
	s.clientsMu.RLock()
	defer s.clientsMu.RUnlock()
	return len(s.clients)
}
