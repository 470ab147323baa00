package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/palemoky/point-calculator/internal/apiclient"
	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/protocol/codec"
	"github.com/palemoky/point-calculator/internal/server"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestGameURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		addr     string
		expected string
	}{
		{"localhost:1780", "ws://localhost:1780/ws?game=g1"},
		{"http://127.0.0.1:8080/", "ws://127.0.0.1:8080/ws?game=g1"},
		{"https://scores.example.com", "wss://scores.example.com/ws?game=g1"},
		{"ws://host", "ws://host/ws?game=g1"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.addr, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, GameURL(tt.addr, "g1"))
		})
	}
}

// receiveType 读取消息直到出现指定类型
func receiveType(t *testing.T, c *Client, msgType protocol.MessageType) *protocol.Message {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		got := make(chan *protocol.Message, 1)
		go func() {
			msg, err := c.Receive()
			if err == nil {
				got <- msg
			}
			close(got)
		}()
		select {
		case msg, ok := <-got:
			require.True(t, ok, "connection closed while waiting for %s", msgType)
			if msg.Type == msgType {
				return msg
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", msgType)
		}
	}
}

func TestClient_LiveGame(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	authn, err := auth.New("secret", time.Hour)
	require.NoError(t, err)
	srv := server.New(config.Default(), server.Deps{Redis: rdb, Auth: authn})
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	t.Cleanup(srv.Rooms().Wait)

	token, err := authn.IssueToken("u1")
	require.NoError(t, err)

	s := session.New()
	require.NoError(t, s.Start([]string{"Alice", "Bob"}, &rule.Config{
		WinMetric:    rule.MetricPoints,
		TargetPoints: 50,
		WinCondition: rule.Highest,
		GameMode:     rule.SuddenDeath,
	}))
	g, err := apiclient.New(ts.URL, token).CreateGame(context.Background(), "Live", s.Snapshot())
	require.NoError(t, err)

	c := NewClient(GameURL(ts.URL, g.ID), token, nil)
	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)

	state, err := protocol.ParsePayload[protocol.GameStatePayload](receiveType(t, c, protocol.MsgGameState))
	require.NoError(t, err)
	assert.Equal(t, g.ID, state.GameID)
	assert.Empty(t, state.Rounds)

	require.NoError(t, c.SendMessage(protocol.MustNewMessage(protocol.MsgSubmitRound,
		protocol.SubmitRoundPayload{Scores: map[string]int{"player-0": 7}})))
	state, err = protocol.ParsePayload[protocol.GameStatePayload](receiveType(t, c, protocol.MsgGameState))
	require.NoError(t, err)
	require.Len(t, state.Rounds, 1)
	assert.Equal(t, 7, state.Players[0].TotalScore)

	require.NoError(t, c.Ping())
	receiveType(t, c, protocol.MsgPong)
	assert.GreaterOrEqual(t, c.Latency(), int64(0))
}

func TestClient_RejectedWithoutToken(t *testing.T) {
	t.Parallel()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	authn, err := auth.New("secret", time.Hour)
	require.NoError(t, err)

	ts := httptest.NewServer(server.New(config.Default(), server.Deps{Redis: rdb, Auth: authn}).Handler())
	t.Cleanup(ts.Close)

	c := NewClient(GameURL(ts.URL, "g1"), "", nil)
	assert.Error(t, c.Connect())
}

// flakyServer 前 drops 个连接发送一条消息后立即断开，之后的连接保持打开。
// accept 为 false 时拒绝后续握手。
type flakyServer struct {
	conns  atomic.Int32
	drops  int32
	accept bool
}

func (f *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	n := f.conns.Add(1)
	if n > f.drops && !f.accept {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	data, _ := codec.Encode(protocol.MustNewMessage(protocol.MsgGameState,
		protocol.GameStatePayload{CurrentRound: int(n)}))
	_ = conn.WriteMessage(websocket.TextMessage, data)
	if n <= f.drops {
		return
	}
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func newFlakyClient(t *testing.T, f *flakyServer) *Client {
	t.Helper()
	ts := httptest.NewServer(f)
	t.Cleanup(ts.Close)

	c := NewClient(GameURL(ts.URL, "g1"), "token", nil)
	c.backoff = 10 * time.Millisecond
	c.maxAttempts = 3
	return c
}

func TestClient_Reconnects(t *testing.T) {
	t.Parallel()
	c := newFlakyClient(t, &flakyServer{drops: 1, accept: true})
	var reconnected atomic.Bool
	c.OnReconnect = func() { reconnected.Store(true) }

	require.NoError(t, c.Connect())
	t.Cleanup(c.Close)

	first, err := protocol.ParsePayload[protocol.GameStatePayload](receiveType(t, c, protocol.MsgGameState))
	require.NoError(t, err)
	assert.Equal(t, 1, first.CurrentRound)

	second, err := protocol.ParsePayload[protocol.GameStatePayload](receiveType(t, c, protocol.MsgGameState))
	require.NoError(t, err)
	assert.Equal(t, 2, second.CurrentRound)
	assert.True(t, reconnected.Load())
	assert.False(t, c.IsClosed())
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	t.Parallel()
	c := newFlakyClient(t, &flakyServer{drops: 1})
	var attempts atomic.Int32
	c.OnReconnecting = func(int, int) { attempts.Add(1) }

	require.NoError(t, c.Connect())
	receiveType(t, c, protocol.MsgGameState)

	require.Eventually(t, c.IsClosed, 5*time.Second, 10*time.Millisecond)
	_, err := c.Receive()
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, int32(3), attempts.Load())
	assert.ErrorIs(t, c.SendMessage(protocol.MustNewMessage(protocol.MsgPing, nil)), ErrClosed)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	t.Parallel()
	c := newFlakyClient(t, &flakyServer{accept: true})
	require.NoError(t, c.Connect())

	c.Close()
	c.Close()
	assert.True(t, c.IsClosed())
	assert.ErrorIs(t, c.Ping(), ErrClosed)
}
