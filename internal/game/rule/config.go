package rule

import (
	"fmt"

	"github.com/palemoky/point-calculator/internal/apperrors"
)

// WinMetric 结束条件的度量方式
type WinMetric string

const (
	MetricRounds WinMetric = "rounds" // 达到目标轮数
	MetricPoints WinMetric = "points" // 达到目标分数
	MetricBoth   WinMetric = "both"   // 任一达成即结束
)

// WinCondition 排名方向
type WinCondition string

const (
	Highest WinCondition = "highest" // 分高者胜
	Lowest  WinCondition = "lowest"  // 分低者胜
)

// GameMode 目标分数的解释方式
type GameMode string

const (
	SuddenDeath GameMode = "sudden-death" // 任一玩家达到目标分即结束
	Elimination GameMode = "elimination"  // 达到目标分的玩家出局
)

// Config 胜负规则，创建后不可变（按值传递）
type Config struct {
	WinMetric    WinMetric    `json:"winMetric" yaml:"win_metric"`
	TargetRounds int          `json:"targetRounds" yaml:"target_rounds"`
	TargetPoints int          `json:"targetPoints" yaml:"target_points"`
	WinCondition WinCondition `json:"winCondition" yaml:"win_condition"`
	GameMode     GameMode     `json:"gameMode" yaml:"game_mode"`
}

// Preset 命名的规则预设
type Preset struct {
	ID     string `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Config Config `json:"config" yaml:"config"`
}

// UsesRounds 是否检查轮数
func (c Config) UsesRounds() bool {
	return c.WinMetric == MetricRounds || c.WinMetric == MetricBoth
}

// UsesPoints 是否检查分数
func (c Config) UsesPoints() bool {
	return c.WinMetric == MetricPoints || c.WinMetric == MetricBoth
}

// Validate 校验规则
func (c Config) Validate() error {
	switch c.WinMetric {
	case MetricRounds, MetricPoints, MetricBoth:
	default:
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("unknown win metric %q", c.WinMetric))
	}
	switch c.WinCondition {
	case Highest, Lowest:
	default:
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("unknown win condition %q", c.WinCondition))
	}
	switch c.GameMode {
	case SuddenDeath, Elimination:
	default:
		return apperrors.ErrValidation.WithDetail(fmt.Sprintf("unknown game mode %q", c.GameMode))
	}

	if c.UsesRounds() && c.TargetRounds <= 0 {
		return apperrors.ErrValidation.WithDetail("target rounds must be positive")
	}
	// 淘汰模式即使只按轮数结束，也需要淘汰线
	if (c.UsesPoints() || c.GameMode == Elimination) && c.TargetPoints <= 0 {
		return apperrors.ErrValidation.WithDetail("target points must be positive")
	}
	return nil
}

// String 返回规则的简短描述
func (c Config) String() string {
	var target string
	switch c.WinMetric {
	case MetricRounds:
		target = fmt.Sprintf("%d rounds", c.TargetRounds)
	case MetricPoints:
		target = fmt.Sprintf("%d points", c.TargetPoints)
	default:
		target = fmt.Sprintf("%d rounds or %d points", c.TargetRounds, c.TargetPoints)
	}
	return fmt.Sprintf("%s, %s wins, %s", target, c.WinCondition, c.GameMode)
}
