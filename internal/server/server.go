package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/palemoky/point-calculator/internal/auth"
	"github.com/palemoky/point-calculator/internal/config"
	"github.com/palemoky/point-calculator/internal/game/room"
	"github.com/palemoky/point-calculator/internal/logger"
	"github.com/palemoky/point-calculator/internal/server/handler"
	"github.com/palemoky/point-calculator/internal/server/storage"
	"github.com/palemoky/point-calculator/internal/types"
)

// Deps 服务器依赖，便于测试时注入
type Deps struct {
	Redis   *redis.Client
	Archive *storage.Archive // 可为 nil
	Auth    *auth.Authenticator
	Log     *zap.Logger
}

// Server HTTP / WebSocket 服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client
	redisStore  *storage.RedisStore
	leaderboard *storage.Leaderboard
	rooms       *room.Manager
	auth        *auth.Authenticator
	handler     *handler.Handler
	api         *handler.API
	log         *zap.Logger

	upgrader websocket.Upgrader
	engine   *gin.Engine
	http     *http.Server

	clients   map[string]*Client
	clientsMu sync.RWMutex
}

// NewServer 连接 Redis（以及可选的归档数据库）并创建服务器
func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis 连接失败: %w", err)
	}

	authn, err := auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTLDuration())
	if err != nil {
		return nil, err
	}

	var archive *storage.Archive
	if cfg.Archive.DSN != "" {
		archive, err = storage.OpenArchive(cfg.Archive.DSN, log)
		if err != nil {
			return nil, err
		}
	}

	return New(cfg, Deps{Redis: rdb, Archive: archive, Auth: authn, Log: log}), nil
}

// New 使用已有依赖创建服务器
func New(cfg *config.Config, deps Deps) *Server {
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}

	// 避免把 nil 指针包装成非 nil 接口
	var archive types.Archiver
	if deps.Archive != nil {
		archive = deps.Archive
	}

	s := &Server{
		config:      cfg,
		redis:       deps.Redis,
		redisStore:  storage.NewRedisStore(deps.Redis),
		leaderboard: storage.NewLeaderboard(deps.Redis),
		auth:        deps.Auth,
		log:         log,
		clients:     make(map[string]*Client),
	}
	s.rooms = room.NewManager(s.redisStore, archive, log, cfg.Game)
	s.handler = handler.NewHandler(s.rooms, log)
	s.api = handler.NewAPI(handler.APIDeps{
		Store:       s.redisStore,
		Leaderboard: s.leaderboard,
		Archive:     archive,
		Rooms:       s.rooms,
		Log:         log,
	})
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	s.engine = s.routes()
	return s
}

// routes 构建路由
func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(s.log))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if s.allowAnyOrigin() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = s.config.Server.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	public := r.Group("/api/v1")
	private := r.Group("/api/v1", s.auth.Middleware())
	s.api.Register(public, private)

	r.GET("/ws", s.auth.Middleware(), s.handleWebSocket)
	return r
}

// Handler 返回 HTTP 处理器（测试用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Rooms 房间管理器
func (s *Server) Rooms() *room.Manager {
	return s.rooms
}

// Start 启动服务器，阻塞直到服务器关闭
func (s *Server) Start() error {
	if err := s.rooms.Start(); err != nil {
		return err
	}

	addr := s.config.Server.Addr()
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.log.Info("服务器启动", zap.String("addr", addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) allowAnyOrigin() bool {
	origins := s.config.Server.AllowedOrigins
	return len(origins) == 0 || (len(origins) == 1 && origins[0] == "*")
}

// checkOrigin WebSocket 来源校验，与 CORS 使用同一份白名单
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || s.allowAnyOrigin() {
		return true
	}
	for _, allowed := range s.config.Server.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
