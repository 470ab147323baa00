package apperrors

import (
	"errors"

	"github.com/palemoky/point-calculator/internal/protocol"
)

// GameError 游戏错误（核心、存储与传输层共享）
type GameError struct {
	Code    int
	Message string
}

func (e *GameError) Error() string {
	return e.Message
}

// Is 按错误码匹配，带详情的错误仍然匹配对应的预定义错误
func (e *GameError) Is(target error) bool {
	var t *GameError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// WithDetail 返回同错误码、附带详细说明的新错误
func (e *GameError) WithDetail(detail string) *GameError {
	return &GameError{Code: e.Code, Message: e.Message + ": " + detail}
}

// 预定义错误
var (
	ErrValidation     = newError(protocol.ErrCodeValidation)
	ErrGameNotStarted = newError(protocol.ErrCodeGameNotStarted)
	ErrGameEnded      = newError(protocol.ErrCodeGameEnded)
	ErrOutOfRange     = newError(protocol.ErrCodeOutOfRange)
	ErrPlayerNotFound = newError(protocol.ErrCodePlayerNotFound)
	ErrGameNotFound   = newError(protocol.ErrCodeGameNotFound)
	ErrRuleNotFound   = newError(protocol.ErrCodeRuleNotFound)
	ErrUnauthorized   = newError(protocol.ErrCodeUnauthorized)
	ErrInvalidMessage = newError(protocol.ErrCodeInvalidMsg)
	ErrPersistFailed  = newError(protocol.ErrCodePersistFailed)
)

func newError(code int) *GameError {
	return &GameError{Code: code, Message: protocol.ErrorMessages[code]}
}

// CodeOf 提取错误码，非 GameError 返回 ErrCodeUnknown
func CodeOf(err error) int {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return protocol.ErrCodeUnknown
}
