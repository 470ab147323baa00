package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/palemoky/point-calculator/internal/action"
	"github.com/palemoky/point-calculator/internal/protocol"
)

// enterGame 进入对局界面并按座位建立得分输入框
func (a *App) enterGame() {
	players := a.session.Players()
	a.scoreInputs = make([]textinput.Model, len(players))
	for i := range players {
		a.scoreInputs[i] = newInput("0", 6)
	}
	a.editing = false
	a.scoreFocus = -1
	a.phase = PhaseGame
	a.MoveScoreFocus(1)
}

// MoveScoreFocus 在未出局玩家的输入框之间移动焦点
func (a *App) MoveScoreFocus(delta int) tea.Cmd {
	n := len(a.scoreInputs)
	if n == 0 {
		return nil
	}
	eliminated := a.session.EliminatedIDs()
	players := a.session.Players()

	idx := a.scoreFocus
	for _i := 0; _i < n; _i++ {
		idx = ((idx+delta)%n + n) % n
		if !eliminated[players[idx].ID] {
			break
		}
	}
	for i := range a.scoreInputs {
		a.scoreInputs[i].Blur()
	}
	a.scoreFocus = idx
	return a.scoreInputs[idx].Focus()
}

// SubmitRound 提交输入框中的本轮得分，空白按 0 处理
func (a *App) SubmitRound() tea.Cmd {
	if a.session.IsEnded() {
		return a.notify(ToastInfo, "The game has ended. Correct a score or start a new game.")
	}

	players := a.session.Players()
	eliminated := a.session.EliminatedIDs()
	scores := make(map[string]int, len(players))
	for i, p := range players {
		if eliminated[p.ID] {
			continue
		}
		raw := strings.TrimSpace(a.scoreInputs[i].Value())
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return a.notify(ToastError, fmt.Sprintf("%s: %q is not a whole number", p.Name, raw))
		}
		scores[p.ID] = v
	}

	if a.live != nil {
		for i := range a.scoreInputs {
			a.scoreInputs[i].Reset()
		}
		return a.sendLive(protocol.MsgSubmitRound, protocol.SubmitRoundPayload{Scores: scores})
	}

	accepted, err := a.session.SubmitRound(scores)
	if err != nil {
		return a.notify(ToastError, err.Error())
	}
	if !accepted {
		return a.notify(ToastInfo, "The game has ended")
	}

	for i := range a.scoreInputs {
		a.scoreInputs[i].Reset()
	}
	cmds := []tea.Cmd{a.commit()}
	if a.session.IsEnded() {
		a.play(CueWin)
		if w, ok := a.session.Winner(); ok {
			cmds = append(cmds, a.notify(ToastSuccess, w.Name+" wins!"))
		} else {
			cmds = append(cmds, a.notify(ToastInfo, "Game over"))
		}
	} else {
		a.play(CueRound)
		a.scoreFocus = -1
		cmds = append(cmds, a.MoveScoreFocus(1))
	}
	return tea.Batch(cmds...)
}

// --- 修正模式 ---

// ToggleEdit 进入或退出修正模式，光标落在领先者的最后一轮
func (a *App) ToggleEdit() tea.Cmd {
	if a.editing {
		a.editing = false
		a.editInput.Blur()
		return a.MoveScoreFocus(0)
	}

	rounds := len(a.session.Rounds())
	if rounds == 0 {
		return a.notify(ToastInfo, "No rounds recorded yet")
	}
	ranked := a.session.RankedPlayers()
	a.cursorPlayer = ranked[0].ID
	a.cursorRound = rounds - 1
	a.editing = true
	for i := range a.scoreInputs {
		a.scoreInputs[i].Blur()
	}
	a.editInput.Reset()
	return a.editInput.Focus()
}

// MoveCursor 按排名上下移动玩家，左右移动轮次
func (a *App) MoveCursor(dRow, dRound int) {
	ranked := a.session.RankedPlayers()
	row := 0
	for i, p := range ranked {
		if p.ID == a.cursorPlayer {
			row = i
			break
		}
	}
	row = min(max(row+dRow, 0), len(ranked)-1)
	a.cursorPlayer = ranked[row].ID

	rounds := len(a.session.Rounds())
	a.cursorRound = min(max(a.cursorRound+dRound, 0), rounds-1)
	a.editInput.Reset()
}

// ApplyCorrection 用输入框的值修正选中的得分
func (a *App) ApplyCorrection() tea.Cmd {
	raw := strings.TrimSpace(a.editInput.Value())
	v, err := strconv.Atoi(raw)
	if err != nil {
		return a.notify(ToastError, fmt.Sprintf("%q is not a whole number", raw))
	}
	if a.live != nil {
		a.editInput.Reset()
		return a.sendLive(protocol.MsgCorrectScore, protocol.CorrectScorePayload{
			PlayerID: a.cursorPlayer, RoundIndex: a.cursorRound, Score: v,
		})
	}
	if err := a.session.CorrectScore(a.cursorPlayer, a.cursorRound, v); err != nil {
		return a.notify(ToastError, err.Error())
	}
	a.editInput.Reset()
	return a.commit()
}

// DeleteSelectedScore 将选中的得分清零
func (a *App) DeleteSelectedScore() tea.Cmd {
	if a.live != nil {
		return a.sendLive(protocol.MsgDeleteScore, protocol.DeleteScorePayload{
			PlayerID: a.cursorPlayer, RoundIndex: a.cursorRound,
		})
	}
	if err := a.session.DeleteScore(a.cursorPlayer, a.cursorRound); err != nil {
		return a.notify(ToastError, err.Error())
	}
	return a.commit()
}

// --- 需要确认的操作 ---

// RequestReset 放弃当前对局
func (a *App) RequestReset() {
	c := action.ConfirmResetGame()
	a.confirm = &c
}

// RequestClearAll 清除全部数据
func (a *App) RequestClearAll() {
	c := action.ConfirmClearAllData()
	a.confirm = &c
}

// RequestLogout 退出登录，仅在线时有效
func (a *App) RequestLogout() tea.Cmd {
	if a.api == nil {
		return a.notify(ToastInfo, "Not logged in")
	}
	c := action.ConfirmLogout()
	a.confirm = &c
	return nil
}
