package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/logger"
	"github.com/palemoky/point-calculator/internal/server"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "配置文件路径")
	tokenFor := flag.String("token-for", "", "为指定用户签发访问令牌后退出")
	flag.Parse()

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Printf("加载配置文件失败，使用默认配置: %v", err)
		cfg = config.Default()
		if err := config.ApplyEnv(cfg); err != nil {
			log.Fatalf("解析环境变量失败: %v", err)
		}
	}

	if *tokenFor != "" {
		issueToken(cfg, *tokenFor)
		return
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	srv, err := server.NewServer(cfg, zl)
	if err != nil {
		zl.Fatal("创建服务器失败", zap.Error(err))
	}

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		<-quit
		zl.Info("正在关闭服务器...")
		srv.Shutdown(cfg.Game.SaveTimeoutDuration() + 5*time.Second)
		close(done)
	}()

	if err := srv.Start(); err != nil {
		zl.Fatal("服务器启动失败", zap.Error(err))
	}
	<-done
}

// issueToken 签发令牌并打印到标准输出
func issueToken(cfg *config.Config, userID string) {
	authn, err := auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTLDuration())
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}
	token, err := authn.IssueToken(userID)
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}
	fmt.Println(token)
}
