package transport

import (
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/protocol/codec"
)

// readPump 从服务器读取消息
func (c *Client) readPump(conn *websocket.Conn) {
	defer c.handleReadExit(conn)

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("连接异常断开", zap.Error(err))
			}
			return
		}

		msg, err := codec.Decode(data)
		if err != nil {
			c.log.Warn("消息解析错误", zap.Error(err))
			continue
		}
		c.handleInternalMessage(msg)

		select {
		case c.receive <- msg:
		case <-c.done:
			return
		}
	}
}

func (c *Client) handleReadExit(conn *websocket.Conn) {
	_ = conn.Close()
	if c.IsClosed() {
		return
	}
	// 只有当前连接断开才重连，已被替换的旧连接直接退出
	c.mu.RLock()
	current := c.conn == conn
	c.mu.RUnlock()
	if current {
		go c.tryReconnect()
	}
}

func (c *Client) handleInternalMessage(msg *protocol.Message) {
	if msg.Type != protocol.MsgPong {
		return
	}
	payload, err := protocol.ParsePayload[protocol.PongPayload](msg)
	if err != nil {
		return
	}
	c.latency.Store(time.Now().UnixMilli() - payload.ClientTimestamp)
}

// writePump 向服务器写入消息
func (c *Client) writePump(conn *websocket.Conn, send <-chan []byte) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = conn.Close()
	}()

	for {
		select {
		case message, ok := <-send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
