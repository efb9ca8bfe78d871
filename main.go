package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"goalscan-service/apifootball"
	"goalscan-service/config"
	"goalscan-service/database"
	"goalscan-service/services"
	"goalscan-service/web"
)

func main() {
	log.Println("Starting GoalScan Service...")

	// 加载配置
	cfg := config.Load()

	if cfg.APIFootballKey == "" {
		log.Fatal("APIFOOTBALL_KEY is required")
	}

	// 连接数据库
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// 运行数据库迁移
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	log.Println("Database connected and migrated")

	// 查询缓存: 配置了 Redis 时共享缓存,否则进程内缓存
	var cache services.LookupCache
	if cfg.RedisURL != "" {
		redisCache, err := services.NewRedisCache(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable, falling back to in-memory cache: %v", err)
			cache = services.NewMemoryCache()
		} else {
			defer redisCache.Close()
			cache = redisCache
		}
	} else {
		cache = services.NewMemoryCache()
	}

	// 上游 API 客户端
	client := apifootball.NewClientWithConfig(apifootball.Config{
		BaseURL: cfg.APIFootballBaseURL,
		APIKey:  cfg.APIFootballKey,
	})

	// 通知器
	larkNotifier := services.NewLarkNotifier(cfg.LarkWebhook)
	telegramNotifier := services.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)

	if err := larkNotifier.NotifyServiceStart(cfg.Environment, cfg.PollInterval); err != nil {
		log.Printf("Failed to send startup notification: %v", err)
	}

	// AMQP 告警发布器
	alertPublisher := services.NewAlertPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err := alertPublisher.Start(); err != nil {
		log.Printf("Alert publisher unavailable: %v", err)
	}

	// 创建WebSocket Hub
	wsHub := web.NewHub()
	go wsHub.Run()

	// 扫描配置
	scannerConfig, err := services.LoadScannerConfig(cfg.ScannerConfig)
	if err != nil {
		log.Fatalf("Failed to load scanner config: %v", err)
	}

	// 流水线组件
	historyProvider := services.NewAPIHistoryProvider(client)
	engine := services.NewScoringEngine(historyProvider)
	scanner := services.NewImbalanceScanner(scannerConfig)
	resultStore := services.NewResultStore(db)

	// 轮询协调器
	monitor := services.NewMatchMonitor(cfg, client, cache, engine, scanner,
		resultStore, alertPublisher, wsHub, larkNotifier, telegramNotifier)
	monitor.Start()

	log.Println("Match monitor started")

	// 定期清理过期数据
	cleanup := services.NewDataCleanupService(db, services.DefaultCleanupConfig())
	cleanup.Start()

	// 启动Web服务器
	server := web.NewServer(cfg, db, wsHub)
	go func() {
		if err := server.Start(); err != nil {
			log.Fatalf("Web server error: %v", err)
		}
	}()

	log.Printf("Web server started on port %s", cfg.Port)

	log.Println("Service is running. Press Ctrl+C to stop.")

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down service...")

	// 清理资源
	monitor.Stop()
	cleanup.Stop()
	alertPublisher.Stop()
	server.Stop()

	log.Println("Service stopped")
}
