package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apperrors"
)

// statusOf 错误 → HTTP 状态码
func statusOf(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidMessage),
		errors.Is(err, apperrors.ErrOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrGameNotFound),
		errors.Is(err, apperrors.ErrRuleNotFound),
		errors.Is(err, apperrors.ErrPlayerNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrGameEnded),
		errors.Is(err, apperrors.ErrGameNotStarted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError 以 {code, message} 返回错误，未知错误不暴露细节
func (a *API) WriteError(c *gin.Context, err error) {
	status := statusOf(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("请求处理失败", zap.String("path", c.FullPath()), zap.Error(err))
		message = apperrors.ErrPersistFailed.Message
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    apperrors.CodeOf(err),
		"message": message,
	})
}

// badRequest 请求体无法解析
func (a *API) badRequest(c *gin.Context, err error) {
	a.WriteError(c, apperrors.ErrValidation.WithDetail(err.Error()))
}
