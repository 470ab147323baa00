package model

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/action"
	"github.com/palemoky/point-calculator/internal/apiclient"
	"github.com/palemoky/point-calculator/internal/client"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

const (
	MinPlayers    = 2
	MaxPlayers    = 10
	toastDuration = 3 * time.Second
	maxToasts     = 3
)

// Options 客户端依赖
type Options struct {
	Presets []rule.Preset
	Cache   *client.Cache     // 可为 nil，不缓存
	API     *apiclient.Client // 可为 nil，离线模式
	Live    LiveConn          // 可为 nil，非实时对局
	Sound   SoundPlayer       // 可为 nil，静音
	Log     *zap.Logger
}

// App 计分器主模型
type App struct {
	phase     Phase
	prevPhase Phase

	// 当前对局
	session  *session.Session
	localID  string
	remoteID string
	gameName string

	// 开局界面，焦点 0 为对局名，1..n 为玩家，n+1 为规则
	gameNameInput textinput.Model
	nameInputs    []textinput.Model
	setupFocus    int
	presets       []PresetOption
	presetIdx     int

	// 对局界面
	scoreInputs  []textinput.Model // 按座位顺序
	scoreFocus   int
	editing      bool
	cursorPlayer string
	cursorRound  int
	editInput    textinput.Model

	// 确认框
	confirm    *action.Confirmation
	dispatcher action.Dispatcher
	pending    []tea.Cmd

	toasts []Toast

	history     []storage.SavedGame
	historyIdx  int
	leaderboard []storage.LeaderboardEntry

	// 同步状态：同一时间只有一个同步请求，期间的变更标记为 dirty
	syncing bool
	dirty   bool

	cache *client.Cache
	api   *apiclient.Client
	live  LiveConn
	sound SoundPlayer
	log   *zap.Logger

	initCmds []tea.Cmd

	width  int
	height int

	// 注入以避免循环引用
	viewRenderer ViewRenderer
	keyHandler   KeyHandler

	toastTTL time.Duration
	newID    func() string
	now      func() time.Time
}

// New 创建主模型，存在缓存时直接恢复上次的对局
func New(opts Options) *App {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	a := &App{
		phase:    PhaseSetup,
		session:  session.New(),
		cache:    opts.Cache,
		api:      opts.API,
		live:     opts.Live,
		sound:    opts.Sound,
		log:      log,
		toastTTL: toastDuration,
		newID:    func() string { return uuid.New().String() },
		now:      time.Now,
	}
	for _, p := range opts.Presets {
		a.presets = append(a.presets, PresetOption{Preset: p})
	}
	a.dispatcher = action.Dispatcher{
		Logout:       a.logout,
		ResetGame:    a.resetGame,
		DeleteGame:   a.deleteGame,
		DeleteRule:   a.deleteRule,
		ClearAllData: a.clearAllData,
	}

	a.gameNameInput = newInput("Game name (optional)", 40)
	a.editInput = newInput("new score", 8)
	a.resetSetup(nil)
	a.restore()
	return a
}

func newInput(placeholder string, limit int) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = limit
	ti.Width = limit
	return ti
}

// restore 从本地缓存恢复对局
func (a *App) restore() {
	if a.cache == nil {
		return
	}
	cached, s, err := a.cache.Load()
	if err != nil {
		a.log.Warn("恢复本地对局失败", zap.String("path", a.cache.Path()), zap.Error(err))
		a.initCmds = append(a.initCmds, a.notify(ToastError, "Could not restore the last game: "+err.Error()))
		return
	}
	if cached == nil {
		return
	}

	a.session = s
	a.localID = cached.LocalID
	if a.localID == "" {
		a.localID = a.newID()
	}
	a.remoteID = cached.RemoteID
	a.gameName = cached.Name
	a.enterGame()
	a.log.Info("已恢复本地对局", zap.String("local", a.localID), zap.Int("round", s.CurrentRound()))
}

// SetViewRenderer 注入界面渲染
func (a *App) SetViewRenderer(r ViewRenderer) { a.viewRenderer = r }

// SetKeyHandler 注入按键处理
func (a *App) SetKeyHandler(h KeyHandler) { a.keyHandler = h }

// --- tea.Model ---

func (a *App) Init() tea.Cmd {
	cmds := append([]tea.Cmd{textinput.Blink}, a.initCmds...)
	a.initCmds = nil
	if a.api != nil {
		cmds = append(cmds, a.loadRulesCmd())
	}
	if a.live != nil {
		cmds = append(cmds, listenLive(a.live))
	}
	return tea.Batch(cmds...)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		if a.keyHandler != nil {
			if handled, cmd := a.keyHandler(a, msg); handled {
				return a, cmd
			}
		}
		return a, a.updateFocused(msg)

	case LiveMsg:
		if a.live == nil {
			return a, nil
		}
		return a, tea.Batch(a.handleLive(msg.Msg), listenLive(a.live))

	case LiveClosedMsg:
		return a, a.handleLiveClosed(msg)

	case ClearToastMsg:
		a.removeToast(msg.ID)
		return a, nil

	case SyncedMsg:
		return a, a.handleSynced(msg)

	case SyncFailedMsg:
		return a, a.handleSyncFailed(msg)

	case RulesLoadedMsg:
		a.setRemoteRules(msg.Rules)
		return a, nil

	case HistoryLoadedMsg:
		a.history = msg.Games
		a.historyIdx = 0
		return a, nil

	case LeaderboardLoadedMsg:
		a.leaderboard = msg.Entries
		return a, nil

	case RemoteDoneMsg:
		if msg.Err != nil {
			a.log.Warn("远程操作失败", zap.Error(msg.Err))
			return a, a.notify(ToastError, msg.Err.Error())
		}
		if msg.Success != "" {
			return a, a.notify(ToastSuccess, msg.Success)
		}
		return a, nil
	}

	// 光标闪烁等消息交给当前输入框
	return a, a.updateFocused(msg)
}

func (a *App) View() string {
	if a.viewRenderer == nil {
		return ""
	}
	return a.viewRenderer(a)
}

// updateFocused 将消息交给当前获得焦点的输入框
func (a *App) updateFocused(msg tea.Msg) tea.Cmd {
	ti := a.focusedInput()
	if ti == nil {
		return nil
	}
	var cmd tea.Cmd
	*ti, cmd = ti.Update(msg)
	return cmd
}

func (a *App) focusedInput() *textinput.Model {
	if a.confirm != nil {
		return nil
	}
	switch a.phase {
	case PhaseSetup:
		switch {
		case a.setupFocus == 0:
			return &a.gameNameInput
		case a.setupFocus <= len(a.nameInputs):
			return &a.nameInputs[a.setupFocus-1]
		}
	case PhaseGame:
		if a.editing {
			return &a.editInput
		}
		if a.scoreFocus >= 0 && a.scoreFocus < len(a.scoreInputs) {
			return &a.scoreInputs[a.scoreFocus]
		}
	}
	return nil
}

// --- 提示 ---

// notify 显示提示并在数秒后移除
func (a *App) notify(kind ToastKind, message string) tea.Cmd {
	if kind == ToastError {
		a.play(CueError)
	}
	id := a.newID()
	a.toasts = append(a.toasts, Toast{ID: id, Kind: kind, Message: message})
	if len(a.toasts) > maxToasts {
		a.toasts = a.toasts[len(a.toasts)-maxToasts:]
	}
	return tea.Tick(a.toastTTL, func(time.Time) tea.Msg {
		return ClearToastMsg{ID: id}
	})
}

func (a *App) play(cue string) {
	if a.sound != nil {
		a.sound.Play(cue)
	}
}

func (a *App) removeToast(id string) {
	for i, t := range a.toasts {
		if t.ID == id {
			a.toasts = append(a.toasts[:i], a.toasts[i+1:]...)
			return
		}
	}
}

// --- 访问器 ---

func (a *App) Phase() Phase                            { return a.phase }
func (a *App) Session() *session.Session               { return a.session }
func (a *App) GameName() string                        { return a.gameName }
func (a *App) RemoteID() string                        { return a.remoteID }
func (a *App) Online() bool                            { return a.api != nil }
func (a *App) Live() bool                              { return a.live != nil }
func (a *App) Syncing() bool                           { return a.syncing }
func (a *App) Toasts() []Toast                         { return a.toasts }
func (a *App) Confirmation() *action.Confirmation      { return a.confirm }
func (a *App) GameNameInput() textinput.Model          { return a.gameNameInput }
func (a *App) NameInputs() []textinput.Model           { return a.nameInputs }
func (a *App) SetupFocus() int                         { return a.setupFocus }
func (a *App) Presets() []PresetOption                 { return a.presets }
func (a *App) PresetIdx() int                          { return a.presetIdx }
func (a *App) ScoreInputs() []textinput.Model          { return a.scoreInputs }
func (a *App) ScoreFocus() int                         { return a.scoreFocus }
func (a *App) Editing() bool                           { return a.editing }
func (a *App) EditInput() textinput.Model              { return a.editInput }
func (a *App) History() []storage.SavedGame            { return a.history }
func (a *App) HistoryIdx() int                         { return a.historyIdx }
func (a *App) Leaderboard() []storage.LeaderboardEntry { return a.leaderboard }
func (a *App) Width() int                              { return a.width }
func (a *App) Height() int                             { return a.height }

// Cursor 修正模式下选中的玩家与轮次下标
func (a *App) Cursor() (string, int) { return a.cursorPlayer, a.cursorRound }

// PresetFocused 开局界面焦点是否在规则选择上
func (a *App) PresetFocused() bool { return a.setupFocus == len(a.nameInputs)+1 }
