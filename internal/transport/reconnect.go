package transport

import (
	"time"

	"go.uber.org/zap"
)

// tryReconnect 断线后按指数退避重连，服务器会在重新加入房间后推送完整状态。
// 全部失败则关闭客户端，Receive 随之返回 ErrClosed。
func (c *Client) tryReconnect() {
	if !c.reconnecting.CompareAndSwap(false, true) {
		return
	}
	defer c.reconnecting.Store(false)

	backoff := c.backoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if c.OnReconnecting != nil {
			c.OnReconnecting(attempt, c.maxAttempts)
		}

		select {
		case <-time.After(backoff):
		case <-c.done:
			return
		}
		backoff = min(backoff*2, maxBackoff)

		conn, err := c.dial()
		if err != nil {
			c.log.Debug("重连失败", zap.Int("attempt", attempt), zap.Error(err))
			continue
		}
		if !c.start(conn) {
			return
		}
		c.log.Info("已重连", zap.Int("attempt", attempt))
		if c.OnReconnect != nil {
			c.OnReconnect()
		}
		return
	}

	c.log.Warn("重连失败，放弃", zap.Int("attempts", c.maxAttempts))
	c.Close()
}
