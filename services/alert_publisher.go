package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/streadway/amqp"

	"goalscan-service/logger"
	"goalscan-service/pkg/models"
)

// AlertPublisher 把评分/扫描告警发布到 AMQP 交换机
//
// 下游消费方 (风控、推送服务) 按路由键订阅:
// score.<recommendation> 与 scanner.<tier>。
// 未配置 AMQP 时创建禁用实例,发布调用全部为空操作。
type AlertPublisher struct {
	url      string
	exchange string
	conn     *amqp.Connection
	channel  *amqp.Channel
	enabled  bool
}

// NewAlertPublisher 创建告警发布器
func NewAlertPublisher(amqpURL, exchange string) *AlertPublisher {
	return &AlertPublisher{
		url:      amqpURL,
		exchange: exchange,
		enabled:  amqpURL != "",
	}
}

// Start 建立 AMQP 连接并声明交换机
func (p *AlertPublisher) Start() error {
	if !p.enabled {
		logger.Println("[AlertPublisher] Disabled (no AMQP URL)")
		return nil
	}

	logger.Printf("[AlertPublisher] Connecting to AMQP...")

	config := amqp.Config{
		Heartbeat: 60 * time.Second,
		Locale:    "en_US",
	}

	conn, err := amqp.DialConfig(p.url, config)
	if err != nil {
		return fmt.Errorf("failed to connect to AMQP: %w", err)
	}
	p.conn = conn

	channel, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to create channel: %w", err)
	}
	p.channel = channel

	if err := channel.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,   // arguments
	); err != nil {
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	logger.Printf("[AlertPublisher] Exchange declared: %s", p.exchange)
	return nil
}

// PublishScore 发布评分告警
func (p *AlertPublisher) PublishScore(match *models.CanonicalMatch, result *models.ScoreResult) error {
	if !p.enabled {
		return nil
	}

	routingKey := fmt.Sprintf("score.%s", strings.ToLower(string(result.Recommendation)))
	payload := map[string]interface{}{
		"fixture_id": match.FixtureID,
		"home":       match.Home.Name,
		"away":       match.Away.Name,
		"minute":     match.Minute,
		"score":      match.Score,
		"result":     result,
	}

	return p.publish(routingKey, payload)
}

// PublishScannerMatch 发布扫描命中告警
func (p *AlertPublisher) PublishScannerMatch(match *models.CanonicalMatch, result *models.ScannerResult) error {
	if !p.enabled {
		return nil
	}

	routingKey := fmt.Sprintf("scanner.%s", strings.ToLower(string(result.Tier)))
	payload := map[string]interface{}{
		"fixture_id": match.FixtureID,
		"home":       match.Home.Name,
		"away":       match.Away.Name,
		"minute":     match.Minute,
		"score":      match.Score,
		"result":     result,
	}

	return p.publish(routingKey, payload)
}

// publish 序列化并发布消息
func (p *AlertPublisher) publish(routingKey string, payload interface{}) error {
	if p.channel == nil {
		return fmt.Errorf("publisher not started")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	err = p.channel.Publish(
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Timestamp:   time.Now(),
			Body:        body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	return nil
}

// Stop 关闭连接
func (p *AlertPublisher) Stop() {
	if !p.enabled {
		return
	}
	logger.Println("[AlertPublisher] Stopping...")
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
