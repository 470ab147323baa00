package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/apiclient"
	"github.com/palemoky/point-calculator/internal/client"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/logger"
	"github.com/palemoky/point-calculator/internal/sound"
	"github.com/palemoky/point-calculator/internal/transport"
	"github.com/palemoky/point-calculator/internal/ui"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径，留空使用内置规则预设")
	serverAddr := flag.String("server", "", "服务器地址，例如 localhost:1780，留空为离线模式")
	token := flag.String("token", os.Getenv("POINTCALC_TOKEN"), "访问令牌")
	gameID := flag.String("game", "", "加入服务器上的实时对局，需要 -server 与 -token")
	withSound := flag.Bool("sound", false, "开启提示音，~/.point-calculator/sounds 中的同名音频会替换内置音")
	flag.Parse()

	presets := config.DefaultPresets()
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("加载配置失败: %v", err)
		}
		presets = cfg.Presets
	}

	dir, err := client.DefaultDir()
	if err != nil {
		log.Fatalf("无法定位用户目录: %v", err)
	}
	// 日志写入文件，避免破坏终端界面
	zl, err := logger.NewFile(filepath.Join(dir, "client.log"))
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	opts := ui.Options{
		Presets: presets,
		Cache:   client.NewCache(filepath.Join(dir, "current.json")),
		Log:     zl,
	}
	if *serverAddr != "" {
		if *token == "" {
			log.Fatal("连接服务器需要 -token（可用 server -token-for <user> 生成）")
		}
		opts.API = apiclient.New(fmt.Sprintf("http://%s", *serverAddr), *token)
		zl.Info("在线模式", zap.String("server", *serverAddr))
	}
	if *gameID != "" {
		if opts.API == nil {
			log.Fatal("实时对局需要 -server")
		}
		conn := transport.NewClient(transport.GameURL(*serverAddr, *gameID), *token, zl)
		if err := conn.Connect(); err != nil {
			log.Fatalf("连接对局 %s 失败: %v", *gameID, err)
		}
		defer conn.Close()
		opts.Live = conn
		zl.Info("实时对局", zap.String("game", *gameID))
	}

	if *withSound {
		sm := sound.NewManager(filepath.Join(dir, "sounds"))
		if err := sm.Init(); err != nil {
			zl.Warn("提示音初始化失败", zap.Error(err))
		} else {
			defer sm.Close()
			opts.Sound = sm
		}
	}

	p := tea.NewProgram(ui.New(opts), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("启动客户端时出错: %v", err)
	}
}
