// Package main 是应用程序的入口点。
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"painpoint-advisor/internal/config"
	"painpoint-advisor/internal/handler"
	"painpoint-advisor/internal/middleware"
	"painpoint-advisor/internal/repository"
	"painpoint-advisor/internal/service"
	"painpoint-advisor/pkg/database"
	"painpoint-advisor/pkg/kafka"
	"painpoint-advisor/pkg/llm"
	"painpoint-advisor/pkg/log"
	"painpoint-advisor/pkg/search"
)

func main() {
	configPath := flag.String("config", "./configs/config.yaml", "path to the config file")
	flag.Parse()

	// 1. 初始化配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志记录器
	log.Init(cfg.Log.Level, cfg.Log.Format, cfg.Log.OutputPath)
	defer log.Sync() // 确保在程序退出时刷新所有缓冲的日志条目
	log.Info("日志记录器初始化成功")

	// 3. 初始化数据库和 Redis
	db, err := database.InitMySQL(cfg.Database.MySQL.DSN)
	if err != nil {
		log.Fatal("MySQL 初始化失败", err)
	}
	rdb, err := database.InitRedis(context.Background(), cfg.Database.Redis.Addr, cfg.Database.Redis.Password, cfg.Database.Redis.DB)
	if err != nil {
		log.Fatal("Redis 初始化失败", err)
	}
	producer := kafka.NewTurnProducer(cfg.Kafka)
	defer func() {
		if err := producer.Close(); err != nil {
			log.Error("关闭 Kafka 生产者失败", err)
		}
	}()

	// 4. 初始化 Repository
	conversationRepo := repository.NewConversationRepository(db)
	var locker repository.ConversationLocker
	if rdb != nil {
		locker = repository.NewRedisLocker(rdb, cfg.Chat.LockTTL)
	} else {
		log.Info("未配置 Redis，使用进程内会话锁")
		locker = repository.NewLocalLocker()
	}

	// 5. 初始化 Service (依赖注入)
	searchProvider, err := search.NewProvider(cfg.Search)
	if err != nil {
		log.Fatal("搜索服务初始化失败", err)
	}
	tools := service.NewToolExecutor(service.NewWebSearchTool(searchProvider))
	router := service.NewProviderRouter(
		llm.NewClient(cfg.LLM.Primary, cfg.LLM),
		llm.NewClient(cfg.LLM.Fallback, cfg.LLM),
		tools,
	)
	if !cfg.AnyProviderConfigured() {
		log.Warnw("No LLM provider configured", "primary", cfg.LLM.Primary.APIKeyEnv,
			"fallback", cfg.LLM.Fallback.APIKeyEnv, "offlineFallback", cfg.Chat.OfflineFallback)
	}

	local := service.NewLocalResponder()
	relay := service.NewStreamRelay(router, local, cfg.Chat.OfflineFallback, cfg.Chat.WordDelay)
	conversationService := service.NewConversationService(conversationRepo, locker, cfg.Chat.TitleMaxLen, cfg.Chat.ListLimit)
	chatService := service.NewChatService(router, relay, local, conversationService, producer, cfg.Chat.OfflineFallback)

	// 6. 设置 Gin 模式并创建路由引擎
	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())

	// 7. 注册路由
	apiV1 := r.Group("/api/v1")
	{
		chatGroup := apiV1.Group("/chat")
		{
			chatGroup.POST("", handler.NewChatHandler(chatService).PostMessage)
			chatGroup.GET("", handler.NewConversationHandler(conversationService).GetConversations)
		}
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 启动 HTTP 服务器并实现优雅停机
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: r,
	}

	go func() {
		log.Infof("服务启动于 %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP 服务监听失败: %s\n", err)
		}
	}()

	// 等待中断信号以实现优雅停机
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("接收到停机信号，正在关闭服务...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// 关闭 HTTP 服务器，进行中的流式响应会随请求上下文一起结束
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("HTTP 服务器关闭失败: %v", err)
	}
	log.Info("服务已优雅关闭")
}
