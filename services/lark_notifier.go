package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"goalscan-service/pkg/models"
)

// LarkNotifier 飞书机器人通知器
type LarkNotifier struct {
	webhookURL string
	client     *http.Client
	enabled    bool
}

// NewLarkNotifier 创建飞书通知器
func NewLarkNotifier(webhookURL string) *LarkNotifier {
	enabled := webhookURL != ""
	if enabled {
		log.Printf("[LarkNotifier] Initialized with webhook")
	} else {
		log.Printf("[LarkNotifier] Disabled (no webhook URL)")
	}

	return &LarkNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		enabled:    enabled,
	}
}

// LarkMessage 飞书消息结构
type LarkMessage struct {
	MsgType string      `json:"msg_type"`
	Content interface{} `json:"content"`
}

// LarkTextContent 文本消息内容
type LarkTextContent struct {
	Text string `json:"text"`
}

// LarkPostContent 富文本消息内容
type LarkPostContent struct {
	Post LarkPost `json:"post"`
}

type LarkPost struct {
	ZhCn LarkPostLang `json:"zh_cn"`
}

type LarkPostLang struct {
	Title   string          `json:"title"`
	Content [][]LarkElement `json:"content"`
}

type LarkElement struct {
	Tag    string `json:"tag"`
	Text   string `json:"text,omitempty"`
	Href   string `json:"href,omitempty"`
	UserID string `json:"user_id,omitempty"`
}

// SendText 发送文本消息
func (n *LarkNotifier) SendText(text string) error {
	if !n.enabled {
		return nil
	}

	message := LarkMessage{
		MsgType: "text",
		Content: LarkTextContent{
			Text: text,
		},
	}

	return n.send(message)
}

// SendRichText 发送富文本消息
func (n *LarkNotifier) SendRichText(title string, content [][]LarkElement) error {
	if !n.enabled {
		return nil
	}

	message := LarkMessage{
		MsgType: "post",
		Content: LarkPostContent{
			Post: LarkPost{
				ZhCn: LarkPostLang{
					Title:   title,
					Content: content,
				},
			},
		},
	}

	return n.send(message)
}

// send 发送消息
func (n *LarkNotifier) send(message LarkMessage) error {
	jsonData, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := n.client.Post(n.webhookURL, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return nil
}

// NotifyServiceStart 通知服务启动
func (n *LarkNotifier) NotifyServiceStart(environment string, pollInterval time.Duration) error {
	content := [][]LarkElement{
		{
			{Tag: "text", Text: "🚀 服务启动\n"},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("环境: %s\n", environment)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("轮询间隔: %s\n", pollInterval)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("时间: %s", time.Now().Format("2006-01-02 15:04:05"))},
		},
	}

	return n.SendRichText("GoalScan Service Started", content)
}

// NotifyOpportunity 通知高分晚场机会
func (n *LarkNotifier) NotifyOpportunity(match *models.CanonicalMatch, result *models.ScoreResult) error {
	stars := strings.Repeat("⭐", result.Stars)

	content := [][]LarkElement{
		{
			{Tag: "text", Text: fmt.Sprintf("🎯 晚场机会 %s\n", stars)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("%s %d-%d %s (第 %d 分钟)\n",
				match.Home.Name, match.Score.Home, match.Score.Away, match.Away.Name, match.Minute)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("评分: %.1f (%s)\n", result.Total, result.Recommendation)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("置信度: %.0f\n", result.Confidence)},
		},
	}

	if len(result.Alerts) > 0 {
		content = append(content, []LarkElement{
			{Tag: "text", Text: fmt.Sprintf("提示: %s\n", strings.Join(result.Alerts, "; "))},
		})
	}

	content = append(content, []LarkElement{
		{Tag: "text", Text: fmt.Sprintf("时间: %s", time.Now().Format("2006-01-02 15:04:05"))},
	})

	return n.SendRichText("Late-Game Opportunity", content)
}

// NotifyScannerMatch 通知失衡扫描命中
func (n *LarkNotifier) NotifyScannerMatch(match *models.CanonicalMatch, result *models.ScannerResult) error {
	content := [][]LarkElement{
		{
			{Tag: "text", Text: fmt.Sprintf("📡 失衡扫描命中 [%s]\n", result.Tier)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("%s %d-%d %s (第 %d 分钟)\n",
				match.Home.Name, match.Score.Home, match.Score.Away, match.Away.Name, match.Minute)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("失衡度: %.1f, 主导方: %s\n", result.ImbalanceScore, result.DominantSide)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("满足规则: %s\n", strings.Join(result.Satisfied, ", "))},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("时间: %s", time.Now().Format("2006-01-02 15:04:05"))},
		},
	}

	return n.SendRichText("Imbalance Scanner Match", content)
}

// NotifyCycleStats 通知轮询周期统计
func (n *LarkNotifier) NotifyCycleStats(live, scored, unscoreable, invalid int, period string) error {
	content := [][]LarkElement{
		{
			{Tag: "text", Text: fmt.Sprintf("📊 轮询统计 (%s)\n", period)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("监控比赛: %d\n", live)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("已评分: %d\n", scored)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("不可评分: %d\n", unscoreable)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("无效数据: %d\n", invalid)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("时间: %s", time.Now().Format("2006-01-02 15:04:05"))},
		},
	}

	return n.SendRichText("Polling Statistics", content)
}

// NotifyError 通知错误
func (n *LarkNotifier) NotifyError(component, message string) error {
	content := [][]LarkElement{
		{
			{Tag: "text", Text: "❌ 错误\n"},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("组件: %s\n", component)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("消息: %s\n", message)},
		},
		{
			{Tag: "text", Text: fmt.Sprintf("时间: %s", time.Now().Format("2006-01-02 15:04:05"))},
		},
	}

	return n.SendRichText("Error Alert", content)
}
