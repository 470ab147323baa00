package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

// createGameRequest 新建对局：给出玩家与规则，或直接给出完整快照
type createGameRequest struct {
	Name        string            `json:"name"`
	PlayerNames []string          `json:"playerNames"`
	Config      *rule.Config      `json:"config"`
	State       *session.Snapshot `json:"gameState"`
}

func (a *API) listGames(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	games, err := a.store.ListGames(c.Request.Context(), auth.UserID(c), limit)
	if err != nil {
		a.WriteError(c, err)
		return
	}
	// 托管中的对局以内存状态为准
	for i, g := range games {
		if r := a.rooms.Get(g.ID); r != nil {
			games[i] = r.Saved()
		}
	}
	c.JSON(http.StatusOK, games)
}

func (a *API) createGame(c *gin.Context) {
	var req createGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}

	s := session.New()
	var err error
	if req.State != nil {
		err = s.Load(*req.State)
	} else {
		err = s.Start(req.PlayerNames, req.Config)
	}
	if err != nil {
		a.WriteError(c, err)
		return
	}

	now := a.now()
	g := &storage.SavedGame{
		ID:    a.newID(),
		Owner: auth.UserID(c),
		Name:  strings.TrimSpace(req.Name),
		Date:  now,
	}
	if g.Name == "" {
		g.Name = "Game " + now.Format("2006-01-02 15:04")
	}
	s.SetID(g.ID)
	g.ApplySession(s)

	ctx := c.Request.Context()
	if err := a.store.SaveGame(ctx, g); err != nil {
		a.WriteError(c, err)
		return
	}
	a.syncArchive(ctx, g)

	a.log.Info("对局已创建", zap.String("game", g.ID), zap.String("user", g.Owner))
	c.JSON(http.StatusCreated, g)
}

func (a *API) getGame(c *gin.Context) {
	owner := auth.UserID(c)
	id := c.Param("id")
	if r := a.rooms.Get(id); r != nil && r.Owner() == owner {
		c.JSON(http.StatusOK, r.Saved())
		return
	}

	g, err := a.loadOwnedGame(c.Request.Context(), owner, id)
	if err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// updateGame 用快照替换对局。对局正在托管时交给房间处理，保证与实时变更串行。
func (a *API) updateGame(c *gin.Context) {
	var snap session.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		a.badRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	owner := auth.UserID(c)
	id := c.Param("id")

	if r := a.rooms.Get(id); r != nil && r.Owner() == owner {
		if err := r.Replace(snap); err != nil {
			a.WriteError(c, err)
			return
		}
		c.JSON(http.StatusOK, r.Saved())
		return
	}

	g, err := a.loadOwnedGame(ctx, owner, id)
	if err != nil {
		a.WriteError(c, err)
		return
	}
	if err := g.Apply(snap); err != nil {
		a.WriteError(c, err)
		return
	}
	if err := a.store.SaveGame(ctx, g); err != nil {
		a.WriteError(c, err)
		return
	}
	a.syncArchive(ctx, g)
	c.JSON(http.StatusOK, g)
}

func (a *API) deleteGame(c *gin.Context) {
	ctx := c.Request.Context()
	owner := auth.UserID(c)
	id := c.Param("id")

	if _, err := a.loadOwnedGame(ctx, owner, id); err != nil {
		a.WriteError(c, err)
		return
	}

	a.rooms.Evict(id)
	if err := a.store.DeleteGame(ctx, owner, id); err != nil {
		a.WriteError(c, err)
		return
	}
	a.forgetArchive(ctx, id)

	a.log.Info("对局已删除", zap.String("game", id), zap.String("user", owner))
	c.Status(http.StatusNoContent)
}

// loadOwnedGame 加载属于 owner 的对局，他人的对局按不存在处理
func (a *API) loadOwnedGame(ctx context.Context, owner, id string) (*storage.SavedGame, error) {
	g, err := a.store.LoadGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil || g.Owner != owner {
		return nil, apperrors.ErrGameNotFound
	}
	return g, nil
}
