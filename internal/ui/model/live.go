package model

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/protocol"
	"github.com/palemoky/point-calculator/internal/protocol/convert"
)

// 实时模式下服务器是唯一的状态来源：本地操作只发送消息，
// 收到 game_state 后整体替换会话。

// listenLive 等待下一条服务器消息
func listenLive(conn LiveConn) tea.Cmd {
	return func() tea.Msg {
		msg, err := conn.Receive()
		if err != nil {
			return LiveClosedMsg{Err: err}
		}
		return LiveMsg{Msg: msg}
	}
}

// sendLive 发送消息，失败时提示
func (a *App) sendLive(msgType protocol.MessageType, payload any) tea.Cmd {
	msg, err := protocol.NewMessage(msgType, payload)
	if err == nil {
		err = a.live.SendMessage(msg)
	}
	if err != nil {
		a.log.Warn("发送实时消息失败", zap.String("type", string(msgType)), zap.Error(err))
		return a.notify(ToastError, "Could not reach the live game: "+err.Error())
	}
	return nil
}

func (a *App) handleLive(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.MsgGameState:
		state, err := protocol.ParsePayload[protocol.GameStatePayload](msg)
		if err != nil {
			return a.notify(ToastError, err.Error())
		}
		return a.applyLiveState(state)

	case protocol.MsgRoundRejected:
		p, err := protocol.ParsePayload[protocol.RoundRejectedPayload](msg)
		if err != nil || p.Reason == "" {
			return a.notify(ToastInfo, "The game has ended")
		}
		return a.notify(ToastInfo, p.Reason)

	case protocol.MsgError:
		p, err := protocol.ParsePayload[protocol.ErrorPayload](msg)
		if err != nil {
			return a.notify(ToastError, err.Error())
		}
		return a.notify(ToastError, p.Message)
	}
	return nil
}

// applyLiveState 用服务器推送的状态替换当前会话
func (a *App) applyLiveState(state *protocol.GameStatePayload) tea.Cmd {
	s, err := session.FromSnapshot(convert.SnapshotFromState(*state))
	if err != nil {
		a.log.Warn("无法还原实时状态", zap.String("game", state.GameID), zap.Error(err))
		return a.notify(ToastError, "Invalid game state from server: "+err.Error())
	}

	wasEnded := a.session.Started() && a.session.IsEnded()
	prevRounds := len(a.session.Rounds())
	if a.remoteID != state.GameID || a.localID == "" {
		a.localID = a.newID()
	}
	a.session = s
	a.remoteID = state.GameID
	a.gameName = state.Name

	switch {
	case a.phase == PhaseSetup, len(a.scoreInputs) != len(s.Players()):
		a.enterGame()
	case a.phase == PhaseHistory, a.phase == PhaseLeaderboard:
		a.prevPhase = PhaseGame
	}
	rounds := len(s.Rounds())
	if a.editing && a.cursorRound >= rounds {
		a.editing = false
		a.editInput.Blur()
	}
	if eliminated := s.EliminatedIDs(); a.scoreFocus >= 0 && a.scoreFocus < len(a.scoreInputs) &&
		eliminated[s.Players()[a.scoreFocus].ID] {
		a.MoveScoreFocus(1)
	}

	var cmds []tea.Cmd
	if err := a.saveLocal(); err != nil {
		cmds = append(cmds, a.notify(ToastError, "Could not save locally: "+err.Error()))
	}
	switch {
	case !wasEnded && s.IsEnded():
		a.play(CueWin)
	case len(s.Rounds()) > prevRounds:
		a.play(CueRound)
	}
	if !wasEnded && s.IsEnded() {
		if w, ok := s.Winner(); ok {
			cmds = append(cmds, a.notify(ToastSuccess, w.Name+" wins!"))
		} else {
			cmds = append(cmds, a.notify(ToastInfo, "Game over"))
		}
	}
	return tea.Batch(cmds...)
}

func (a *App) handleLiveClosed(msg LiveClosedMsg) tea.Cmd {
	// 主动断开
	if a.live == nil {
		return nil
	}
	a.live = nil
	a.log.Warn("实时连接已断开", zap.Error(msg.Err))
	return a.notify(ToastError, "Live connection lost. Scores now stay on this device.")
}

// dropLive 主动断开实时连接
func (a *App) dropLive() {
	if a.live == nil {
		return
	}
	live := a.live
	a.live = nil
	live.Close()
}
