package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/palemoky/point-calculator/internal/game/rule"
)

// 环境变量前缀，例如 POINTCALC_SERVER_PORT
const envPrefix = "POINTCALC_"

// 默认值
const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 1780
	defaultRedisAddr       = "localhost:6379"
	defaultTokenTTL        = 24 // 小时
	defaultSaveTimeout     = 5  // 秒
	defaultRoomIdleTimeout = 30 // 分钟
	defaultSweepInterval   = 60 // 秒
	defaultLogLevel        = "info"
)

// Config 服务端与客户端共用的配置
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Auth    AuthConfig    `yaml:"auth"`
	Game    GameConfig    `yaml:"game"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
	Presets []rule.Preset `yaml:"presets"` // 客户端可选的规则预设
}

// ServerConfig HTTP / WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host" env:"SERVER_HOST"`
	Port           int      `yaml:"port" env:"SERVER_PORT"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"SERVER_ALLOWED_ORIGINS" envSeparator:","`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

// AuthConfig 令牌配置
type AuthConfig struct {
	Secret   string `yaml:"secret" env:"AUTH_SECRET"`
	TokenTTL int    `yaml:"token_ttl" env:"AUTH_TOKEN_TTL"` // 令牌有效期（小时）
}

// GameConfig 对局托管配置
type GameConfig struct {
	SaveTimeout     int `yaml:"save_timeout" env:"GAME_SAVE_TIMEOUT"`           // 单次保存超时（秒）
	RoomIdleTimeout int `yaml:"room_idle_timeout" env:"GAME_ROOM_IDLE_TIMEOUT"` // 无人观看的房间保留时长（分钟）
	SweepInterval   int `yaml:"sweep_interval" env:"GAME_SWEEP_INTERVAL"`       // 空闲房间清理间隔（秒）
}

// ArchiveConfig 已结束对局的 SQL 归档，DSN 为空时关闭
type ArchiveConfig struct {
	DSN string `yaml:"dsn" env:"ARCHIVE_DSN"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level       string `yaml:"level" env:"LOG_LEVEL"`
	Development bool   `yaml:"development" env:"LOG_DEVELOPMENT"`
}

// TokenTTLDuration 返回令牌有效期
func (c *AuthConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTL) * time.Hour
}

// SaveTimeoutDuration 返回保存超时
func (c *GameConfig) SaveTimeoutDuration() time.Duration {
	return time.Duration(c.SaveTimeout) * time.Second
}

// RoomIdleTimeoutDuration 返回空闲房间保留时长
func (c *GameConfig) RoomIdleTimeoutDuration() time.Duration {
	return time.Duration(c.RoomIdleTimeout) * time.Minute
}

// SweepIntervalDuration 返回清理间隔
func (c *GameConfig) SweepIntervalDuration() time.Duration {
	return time.Duration(c.SweepInterval) * time.Second
}

// Addr 返回监听地址
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load 加载配置文件，随后应用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	if err := validatePresets(cfg.Presets); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv 用环境变量覆盖已加载的配置
func ApplyEnv(cfg *Config) error {
	opts := env.Options{Prefix: envPrefix}
	// 逐段解析，规则预设只能来自配置文件
	targets := []any{&cfg.Server, &cfg.Redis, &cfg.Auth, &cfg.Game, &cfg.Archive, &cfg.Log}
	for _, target := range targets {
		if err := env.ParseWithOptions(target, opts); err != nil {
			return fmt.Errorf("解析环境变量失败: %w", err)
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = defaultRedisAddr
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = defaultTokenTTL
	}
	if cfg.Game.SaveTimeout == 0 {
		cfg.Game.SaveTimeout = defaultSaveTimeout
	}
	if cfg.Game.RoomIdleTimeout == 0 {
		cfg.Game.RoomIdleTimeout = defaultRoomIdleTimeout
	}
	if cfg.Game.SweepInterval == 0 {
		cfg.Game.SweepInterval = defaultSweepInterval
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
	if len(cfg.Presets) == 0 {
		cfg.Presets = DefaultPresets()
	}
}

func validatePresets(presets []rule.Preset) error {
	for _, p := range presets {
		if err := p.Config.Validate(); err != nil {
			return fmt.Errorf("规则预设 %q 无效: %w", p.Name, err)
		}
	}
	return nil
}

// Default 返回默认配置
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// DefaultPresets 内置规则预设
func DefaultPresets() []rule.Preset {
	return []rule.Preset{
		{
			ID:   "classic",
			Name: "Classic (10 rounds)",
			Config: rule.Config{
				WinMetric: rule.MetricRounds, TargetRounds: 10, TargetPoints: 100,
				WinCondition: rule.Highest, GameMode: rule.SuddenDeath,
			},
		},
		{
			ID:   "race-100",
			Name: "Race to 100",
			Config: rule.Config{
				WinMetric: rule.MetricPoints, TargetRounds: 10, TargetPoints: 100,
				WinCondition: rule.Highest, GameMode: rule.SuddenDeath,
			},
		},
		{
			ID:   "bust-100",
			Name: "Bust at 100 (lowest wins)",
			Config: rule.Config{
				WinMetric: rule.MetricPoints, TargetRounds: 10, TargetPoints: 100,
				WinCondition: rule.Lowest, GameMode: rule.Elimination,
			},
		},
	}
}
