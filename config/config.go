package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// 上游数据源配置
	APIFootballKey     string
	APIFootballBaseURL string

	// 轮询配置
	PollInterval    time.Duration
	MonitorLeagues  []int // 为空时监控全部进行中的比赛
	ScannerConfig   string
	AugmentedScore  bool // 是否启用带赔率变动因子的增强评分

	// 数据库配置
	DatabaseURL string

	// Redis 配置 (为空时使用进程内缓存)
	RedisURL string

	// 服务器配置
	Port string

	// 通知配置
	LarkWebhook    string
	TelegramToken  string
	TelegramChatID int64
	NotifyMinScore float64 // 评分达到该值才推送通知
	NotifyCooldown time.Duration

	// AMQP 告警发布配置 (为空时禁用)
	AMQPURL      string
	AMQPExchange string

	// 其他配置
	Environment string
}

func Load() *Config {
	// .env 仅用于本地开发,不存在时静默跳过
	if err := godotenv.Load(); err == nil {
		log.Println("[Config] Loaded .env file")
	}

	return &Config{
		// 上游数据源配置
		APIFootballKey:     getEnv("APIFOOTBALL_KEY", ""),
		APIFootballBaseURL: getEnv("APIFOOTBALL_BASE_URL", "https://v3.football.api-sports.io"),

		// 轮询配置
		PollInterval:   getEnvDuration("POLL_INTERVAL", 60*time.Second),
		MonitorLeagues: getEnvIntList("MONITOR_LEAGUES"),
		ScannerConfig:  getEnv("SCANNER_CONFIG", "scanner.yaml"),
		AugmentedScore: getEnv("AUGMENTED_SCORE", "true") == "true",

		// 数据库配置
		DatabaseURL: getEnv("DATABASE_URL", "postgres://localhost:5432/goalscan?sslmode=disable"),

		// Redis 配置
		RedisURL: getEnv("REDIS_URL", ""),

		// 服务器配置
		Port: getEnv("PORT", "8080"),

		// 通知配置
		LarkWebhook:    getEnv("LARK_WEBHOOK", ""),
		TelegramToken:  getEnv("TELEGRAM_TOKEN", ""),
		TelegramChatID: getEnvInt64("TELEGRAM_CHAT_ID", 0),
		NotifyMinScore: getEnvFloat("NOTIFY_MIN_SCORE", 75),
		NotifyCooldown: getEnvDuration("NOTIFY_COOLDOWN", 10*time.Minute),

		// AMQP 告警发布配置
		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "goalscan.alerts"),

		// 其他配置
		Environment: getEnv("ENVIRONMENT", "development"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result int64
	fmt.Sscanf(value, "%d", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var result float64
	fmt.Sscanf(value, "%f", &result)
	if result == 0 {
		return defaultValue
	}
	return result
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("[Config] Invalid duration for %s: %q, using default", key, value)
		return defaultValue
	}
	return d
}

// getEnvIntList 解析逗号分隔的整数列表,如 "39,140,135"
func getEnvIntList(key string) []int {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var result []int
	for _, part := range strings.Split(value, ",") {
		var id int
		if _, err := fmt.Sscanf(strings.TrimSpace(part), "%d", &id); err == nil && id > 0 {
			result = append(result, id)
		}
	}
	return result
}
