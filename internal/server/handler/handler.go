package handler

import (
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/room"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/types"
)

// Handler WebSocket 消息处理器
type Handler struct {
	rooms    *room.Manager
	log      *zap.Logger
	handlers map[protocol.MessageType]handlerFunc
}

// handlerFunc 统一的处理器函数签名
type handlerFunc func(client types.ClientInterface, msg *protocol.Message)

// NewHandler 创建处理器
func NewHandler(rooms *room.Manager, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	h := &Handler{rooms: rooms, log: log}
	h.initHandlers()
	return h
}

// initHandlers 初始化消息处理器映射
func (h *Handler) initHandlers() {
	h.handlers = map[protocol.MessageType]handlerFunc{
		protocol.MsgPing: h.handlePing,

		// 计分操作
		protocol.MsgSubmitRound:  h.handleSubmitRound,
		protocol.MsgCorrectScore: h.handleCorrectScore,
		protocol.MsgDeleteScore:  h.handleDeleteScore,
		protocol.MsgResetGame:    func(c types.ClientInterface, _ *protocol.Message) { h.handleResetGame(c) },
	}
}

// Handle 处理消息
func (h *Handler) Handle(client types.ClientInterface, msg *protocol.Message) {
	if handler, ok := h.handlers[msg.Type]; ok {
		handler(client, msg)
		return
	}

	h.log.Warn("未知消息类型",
		zap.String("type", string(msg.Type)),
		zap.String("client", client.GetID()),
		zap.Int("payload_bytes", len(msg.Payload)))
	client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
}

func (h *Handler) handlePing(client types.ClientInterface, msg *protocol.Message) {
	var clientTS int64
	if payload, err := protocol.ParsePayload[protocol.PingPayload](msg); err == nil {
		clientTS = payload.Timestamp
	}
	client.SendMessage(protocol.MustNewMessage(protocol.MsgPong, protocol.PongPayload{
		ClientTimestamp: clientTS,
		ServerTimestamp: time.Now().UnixMilli(),
	}))
}

// currentRoom 客户端正在观看的房间
func (h *Handler) currentRoom(client types.ClientInterface) (*room.Room, bool) {
	r := h.rooms.Get(client.GetGame())
	if r == nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeGameNotFound))
		return nil, false
	}
	return r, true
}

// sendError 以错误码和详情回复客户端
func sendError(client types.ClientInterface, err error) {
	client.SendMessage(protocol.NewErrorMessageWithText(apperrors.CodeOf(err), err.Error()))
}
