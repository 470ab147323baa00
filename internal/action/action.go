// Package action 定义需要用户确认的操作。操作是封闭的类型集合，
// 确认后由 Dispatcher 按类型分派给对应的处理函数。
package action

import (
	"context"
	"errors"
	"fmt"
)

// Action 一个可被确认执行的操作
type Action interface {
	// Name 操作名，用于日志
	Name() string
	sealed()
}

// Logout 退出登录
type Logout struct{}

// ResetGame 放弃当前对局
type ResetGame struct{}

// DeleteGame 删除历史对局
type DeleteGame struct {
	GameID string
}

// DeleteRule 删除规则预设
type DeleteRule struct {
	RuleID string
}

// ClearAllData 清除全部对局与规则预设
type ClearAllData struct{}

func (Logout) Name() string       { return "logout" }
func (ResetGame) Name() string    { return "reset_game" }
func (DeleteGame) Name() string   { return "delete_game" }
func (DeleteRule) Name() string   { return "delete_rule" }
func (ClearAllData) Name() string { return "clear_all_data" }

func (Logout) sealed()       {}
func (ResetGame) sealed()    {}
func (DeleteGame) sealed()   {}
func (DeleteRule) sealed()   {}
func (ClearAllData) sealed() {}

var (
	// ErrUnhandled 操作没有注册处理函数
	ErrUnhandled = errors.New("action has no handler")
	// ErrUnknown 不属于已知操作类型
	ErrUnknown = errors.New("unknown action")
)

// Dispatcher 操作分派器，未设置的处理函数视为未处理
type Dispatcher struct {
	Logout       func(ctx context.Context) error
	ResetGame    func(ctx context.Context) error
	DeleteGame   func(ctx context.Context, gameID string) error
	DeleteRule   func(ctx context.Context, ruleID string) error
	ClearAllData func(ctx context.Context) error
}

// Dispatch 执行单个操作
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) error {
	var err error
	switch a := a.(type) {
	case Logout:
		if d.Logout == nil {
			return unhandled(a)
		}
		err = d.Logout(ctx)
	case ResetGame:
		if d.ResetGame == nil {
			return unhandled(a)
		}
		err = d.ResetGame(ctx)
	case DeleteGame:
		if d.DeleteGame == nil {
			return unhandled(a)
		}
		err = d.DeleteGame(ctx, a.GameID)
	case DeleteRule:
		if d.DeleteRule == nil {
			return unhandled(a)
		}
		err = d.DeleteRule(ctx, a.RuleID)
	case ClearAllData:
		if d.ClearAllData == nil {
			return unhandled(a)
		}
		err = d.ClearAllData(ctx)
	default:
		return fmt.Errorf("%w: %T", ErrUnknown, a)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", a.Name(), err)
	}
	return nil
}

// Run 按顺序执行确认框中的全部操作，遇到第一个错误即停止
func (d *Dispatcher) Run(ctx context.Context, c Confirmation) error {
	for _, a := range c.Actions {
		if err := d.Dispatch(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func unhandled(a Action) error {
	return fmt.Errorf("%w: %s", ErrUnhandled, a.Name())
}
