package handler

import (
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/types"
)

func (h *Handler) handleSubmitRound(client types.ClientInterface, msg *protocol.Message) {
	r, ok := h.currentRoom(client)
	if !ok {
		return
	}
	payload, err := protocol.ParsePayload[protocol.SubmitRoundPayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	accepted, err := r.SubmitRound(payload.Scores)
	if err != nil {
		sendError(client, err)
		return
	}
	if !accepted {
		client.SendMessage(protocol.MustNewMessage(protocol.MsgRoundRejected, protocol.RoundRejectedPayload{
			GameID: r.ID(),
			Reason: apperrors.ErrGameEnded.Error(),
		}))
		return
	}
	h.log.Debug("已提交一轮", zap.String("game", r.ID()), zap.String("client", client.GetID()))
}

func (h *Handler) handleCorrectScore(client types.ClientInterface, msg *protocol.Message) {
	r, ok := h.currentRoom(client)
	if !ok {
		return
	}
	payload, err := protocol.ParsePayload[protocol.CorrectScorePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := r.CorrectScore(payload.PlayerID, payload.RoundIndex, payload.Score); err != nil {
		sendError(client, err)
	}
}

func (h *Handler) handleDeleteScore(client types.ClientInterface, msg *protocol.Message) {
	r, ok := h.currentRoom(client)
	if !ok {
		return
	}
	payload, err := protocol.ParsePayload[protocol.DeleteScorePayload](msg)
	if err != nil {
		client.SendMessage(protocol.NewErrorMessage(protocol.ErrCodeInvalidMsg))
		return
	}

	if err := r.DeleteScore(payload.PlayerID, payload.RoundIndex); err != nil {
		sendError(client, err)
	}
}

func (h *Handler) handleResetGame(client types.ClientInterface) {
	r, ok := h.currentRoom(client)
	if !ok {
		return
	}
	if err := r.Restart(); err != nil {
		sendError(client, err)
		return
	}
	h.log.Info("对局已重新开始", zap.String("game", r.ID()), zap.String("user", client.GetUserID()))
}
