// Package transport 终端客户端的 WebSocket 连接：实时对局的收发、心跳与断线重连
package transport

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/protocol/codec"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// 最大重连次数
	maxReconnectAttempts = 5
	// 首次重连间隔，之后指数退避
	reconnectInterval = 2 * time.Second
	maxBackoff        = 30 * time.Second
)

var (
	ErrClosed     = errors.New("connection closed")
	ErrBufferFull = errors.New("send buffer full")
)

// Client WebSocket 客户端
type Client struct {
	ServerURL string
	header    http.Header
	log       *zap.Logger

	receive chan *protocol.Message // 跨重连保持不变
	done    chan struct{}

	mu     sync.RWMutex
	conn   *websocket.Conn
	send   chan []byte // 每个连接一个
	closed bool

	reconnecting atomic.Bool
	latency      atomic.Int64

	// 回调
	OnReconnecting func(attempt, maxTries int)
	OnReconnect    func()

	maxAttempts int
	backoff     time.Duration
}

// NewClient 创建客户端，token 以 Bearer 头发送
func NewClient(serverURL, token string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &Client{
		ServerURL:   serverURL,
		header:      header,
		log:         log,
		receive:     make(chan *protocol.Message, 256),
		done:        make(chan struct{}),
		maxAttempts: maxReconnectAttempts,
		backoff:     reconnectInterval,
	}
}

// GameURL 拼接对局的 WebSocket 地址，addr 可以带 http(s):// 前缀
func GameURL(addr, gameID string) string {
	switch {
	case strings.HasPrefix(addr, "https://"):
		addr = "wss://" + strings.TrimPrefix(addr, "https://")
	case strings.HasPrefix(addr, "http://"):
		addr = "ws://" + strings.TrimPrefix(addr, "http://")
	case !strings.HasPrefix(addr, "ws://") && !strings.HasPrefix(addr, "wss://"):
		addr = "ws://" + addr
	}
	return strings.TrimRight(addr, "/") + "/ws?game=" + url.QueryEscape(gameID)
}

// Connect 连接服务器
func (c *Client) Connect() error {
	conn, err := c.dial()
	if err != nil {
		return err
	}
	if !c.start(conn) {
		return ErrClosed
	}
	return nil
}

func (c *Client) dial() (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, resp, err := dialer.Dial(c.ServerURL, c.header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// start 替换当前连接并启动读写协程，客户端已关闭时返回 false
func (c *Client) start(conn *websocket.Conn) bool {
	send := make(chan []byte, 256)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		_ = conn.Close()
		return false
	}
	if c.send != nil {
		close(c.send)
	}
	c.conn = conn
	c.send = send
	c.mu.Unlock()

	go c.readPump(conn)
	go c.writePump(conn, send)
	return true
}

// SendMessage 发送消息
func (c *Client) SendMessage(msg *protocol.Message) error {
	data, err := codec.Encode(msg)
	if err != nil {
		return err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed || c.send == nil {
		return ErrClosed
	}

	select {
	case c.send <- data:
		return nil
	default:
		return ErrBufferFull
	}
}

// Ping 发送心跳，收到 pong 后更新延迟
func (c *Client) Ping() error {
	return c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, protocol.PingPayload{
		Timestamp: time.Now().UnixMilli(),
	}))
}

// Receive 接收消息（阻塞），连接关闭后返回 ErrClosed
func (c *Client) Receive() (*protocol.Message, error) {
	select {
	case msg := <-c.receive:
		return msg, nil
	case <-c.done:
		return nil, ErrClosed
	}
}

// Close 关闭连接，不再重连
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.send != nil {
		close(c.send)
		c.send = nil
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// IsClosed 是否已关闭
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Latency 最近一次心跳的往返延迟（毫秒）
func (c *Client) Latency() int64 {
	return c.latency.Load()
}

// IsReconnecting 是否正在重连
func (c *Client) IsReconnecting() bool {
	return c.reconnecting.Load()
}
