//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/palemoky/point-calculator/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetUserID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetGame() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetGame(gameID string) {
	m.Called(gameID)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言调用的测试）。
// 保存是异步的，广播可能来自其他 goroutine，因此加锁。
type SimpleClient struct {
	ID     string
	UserID string

	mu       sync.Mutex
	gameID   string
	messages []*protocol.Message
	closed   bool
}

func (c *SimpleClient) GetID() string     { return c.ID }
func (c *SimpleClient) GetUserID() string { return c.UserID }

func (c *SimpleClient) GetGame() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gameID
}

func (c *SimpleClient) SetGame(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gameID = gameID
}

func (c *SimpleClient) SendMessage(msg *protocol.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, msg)
}

func (c *SimpleClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Messages 已收到消息的副本
func (c *SimpleClient) Messages() []*protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*protocol.Message(nil), c.messages...)
}

// LastOfType 最后一条指定类型的消息
func (c *SimpleClient) LastOfType(t protocol.MessageType) *protocol.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Type == t {
			return c.messages[i]
		}
	}
	return nil
}

// CountOfType 指定类型的消息数量
func (c *SimpleClient) CountOfType(t protocol.MessageType) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, msg := range c.messages {
		if msg.Type == t {
			n++
		}
	}
	return n
}

// Closed 是否已被关闭
func (c *SimpleClient) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
