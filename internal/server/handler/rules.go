package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

// ruleRequest 新建或更新规则预设
type ruleRequest struct {
	Name   string      `json:"name"`
	Config rule.Config `json:"config"`
}

func (r ruleRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return apperrors.ErrValidation.WithDetail("rule name is required")
	}
	return r.Config.Validate()
}

func (a *API) listRules(c *gin.Context) {
	rules, err := a.store.ListRules(c.Request.Context(), auth.UserID(c))
	if err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

func (a *API) createRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	if err := req.validate(); err != nil {
		a.WriteError(c, err)
		return
	}

	r := &storage.StoredRule{
		Preset: rule.Preset{
			ID:     a.newID(),
			Name:   strings.TrimSpace(req.Name),
			Config: req.Config,
		},
		Owner:     auth.UserID(c),
		UpdatedAt: a.now(),
	}
	if err := a.store.SaveRule(c.Request.Context(), r); err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, r)
}

func (a *API) updateRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		a.badRequest(c, err)
		return
	}
	if err := req.validate(); err != nil {
		a.WriteError(c, err)
		return
	}

	r, err := a.loadOwnedRule(c, c.Param("id"))
	if err != nil {
		a.WriteError(c, err)
		return
	}
	r.Name = strings.TrimSpace(req.Name)
	r.Config = req.Config
	r.UpdatedAt = a.now()

	if err := a.store.SaveRule(c.Request.Context(), r); err != nil {
		a.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (a *API) deleteRule(c *gin.Context) {
	r, err := a.loadOwnedRule(c, c.Param("id"))
	if err != nil {
		a.WriteError(c, err)
		return
	}
	if err := a.store.DeleteRule(c.Request.Context(), r.Owner, r.ID); err != nil {
		a.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) loadOwnedRule(c *gin.Context, id string) (*storage.StoredRule, error) {
	r, err := a.store.LoadRule(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if r == nil || r.Owner != auth.UserID(c) {
		return nil, apperrors.ErrRuleNotFound
	}
	return r, nil
}
