package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/game/room"
	"github.com/palemoky/point-calculator/internal/server/storage"
	"github.com/palemoky/point-calculator/internal/types"
)

// Store REST 接口依赖的存储
type Store interface {
	types.GameStore
	types.RuleStore
	ClearUser(ctx context.Context, owner string) error
	Ping(ctx context.Context) error
}

// APIDeps REST 接口依赖
type APIDeps struct {
	Store       Store
	Leaderboard types.Leaderboard
	Archive     types.Archiver // 可为 nil
	Rooms       *room.Manager
	Log         *zap.Logger
}

// API REST 接口
type API struct {
	store       Store
	leaderboard types.Leaderboard
	archive     types.Archiver
	rooms       *room.Manager
	log         *zap.Logger

	newID func() string
	now   func() time.Time
}

// NewAPI 创建 REST 接口
func NewAPI(deps APIDeps) *API {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &API{
		store:       deps.Store,
		leaderboard: deps.Leaderboard,
		archive:     deps.Archive,
		rooms:       deps.Rooms,
		log:         log,
		newID:       func() string { return uuid.New().String() },
		now:         time.Now,
	}
}

// Register 注册路由。public 无需登录，private 需要先经过鉴权中间件。
func (a *API) Register(public, private *gin.RouterGroup) {
	public.GET("/health", a.health)
	public.GET("/leaderboard", a.topPlayers)
	public.GET("/leaderboard/:player", a.playerRank)

	games := private.Group("/games")
	games.GET("/", a.listGames)
	games.POST("/", a.createGame)
	games.GET("/:id", a.getGame)
	games.PUT("/:id", a.updateGame)
	games.DELETE("/:id", a.deleteGame)

	rules := private.Group("/rules")
	rules.GET("", a.listRules)
	rules.POST("", a.createRule)
	rules.PUT("/:id", a.updateRule)
	rules.DELETE("/:id", a.deleteRule)

	private.GET("/archive", a.listArchive)
	private.DELETE("/me/data", a.clearData)
}

const (
	defaultTopLimit     = 10
	defaultArchiveLimit = 20
	maxListLimit        = 100
)

// queryLimit 读取 limit 参数，非法或 <= 0 时取默认值，超出上限时截断
func queryLimit(c *gin.Context, def int) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	return min(limit, maxListLimit)
}

func (a *API) health(c *gin.Context) {
	if err := a.store.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (a *API) topPlayers(c *gin.Context) {
	entries, err := a.leaderboard.Top(c.Request.Context(), queryLimit(c, defaultTopLimit))
	if err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (a *API) playerRank(c *gin.Context) {
	player := c.Param("player")
	rank, err := a.leaderboard.Rank(c.Request.Context(), player)
	if err != nil {
		a.WriteError(c, err)
		return
	}
	if rank < 0 {
		a.WriteError(c, apperrors.ErrPlayerNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"player": player, "rank": rank})
}

// listArchive 列出当前用户已结束对局的归档，未启用归档时返回空列表
func (a *API) listArchive(c *gin.Context) {
	if a.archive == nil {
		c.JSON(http.StatusOK, []storage.ArchivedGame{})
		return
	}
	rows, err := a.archive.ListByOwner(c.Request.Context(), auth.UserID(c), queryLimit(c, defaultArchiveLimit))
	if err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (a *API) clearData(c *gin.Context) {
	ctx := c.Request.Context()
	owner := auth.UserID(c)

	games, err := a.store.ListGames(ctx, owner, 0)
	if err != nil {
		a.WriteError(c, err)
		return
	}
	for _, g := range games {
		a.rooms.Evict(g.ID)
	}
	if err := a.store.ClearUser(ctx, owner); err != nil {
		a.WriteError(c, err)
		return
	}
	for _, g := range games {
		a.forgetArchive(ctx, g.ID)
	}

	a.log.Info("已清除用户数据", zap.String("user", owner), zap.Int("games", len(games)))
	c.Status(http.StatusNoContent)
}

// syncArchive 按对局是否结束写入或撤销归档，失败只记录日志
func (a *API) syncArchive(ctx context.Context, g *storage.SavedGame) {
	if a.archive == nil {
		return
	}
	if !g.Ended() {
		a.forgetArchive(ctx, g.ID)
		return
	}
	if err := a.archive.Record(ctx, g); err != nil {
		a.log.Warn("归档对局失败", zap.String("game", g.ID), zap.Error(err))
	}
}

func (a *API) forgetArchive(ctx context.Context, gameID string) {
	if a.archive == nil {
		return
	}
	if err := a.archive.Forget(ctx, gameID); err != nil {
		a.log.Warn("撤销归档失败", zap.String("game", gameID), zap.Error(err))
	}
}
