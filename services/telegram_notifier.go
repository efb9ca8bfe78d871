package services

import (
	"fmt"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"goalscan-service/pkg/models"
)

// TelegramNotifier Telegram 机器人通知器
type TelegramNotifier struct {
	bot     *tgbotapi.BotAPI
	chatID  int64
	enabled bool
}

// NewTelegramNotifier 创建 Telegram 通知器
// token 或 chatID 未配置时返回禁用的实例,调用方无需判空
func NewTelegramNotifier(token string, chatID int64) *TelegramNotifier {
	if token == "" || chatID == 0 {
		log.Printf("[TelegramNotifier] Disabled (no token or chat id)")
		return &TelegramNotifier{}
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		log.Printf("[TelegramNotifier] Init failed, disabled: %v", err)
		return &TelegramNotifier{}
	}

	log.Printf("[TelegramNotifier] Authorized as @%s", bot.Self.UserName)
	return &TelegramNotifier{
		bot:     bot,
		chatID:  chatID,
		enabled: true,
	}
}

// SendText 发送文本消息
func (n *TelegramNotifier) SendText(text string) error {
	if !n.enabled {
		return nil
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := n.bot.Send(msg)
	return err
}

// NotifyOpportunity 推送高分晚场机会
func (n *TelegramNotifier) NotifyOpportunity(match *models.CanonicalMatch, result *models.ScoreResult) error {
	if !n.enabled {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎯 <b>晚场机会</b> %s\n", strings.Repeat("⭐", result.Stars))
	fmt.Fprintf(&b, "%s %d-%d %s (第 %d 分钟)\n",
		match.Home.Name, match.Score.Home, match.Score.Away, match.Away.Name, match.Minute)
	fmt.Fprintf(&b, "评分: <b>%.1f</b> (%s), 置信度 %.0f\n", result.Total, result.Recommendation, result.Confidence)
	if len(result.Alerts) > 0 {
		fmt.Fprintf(&b, "提示: %s", strings.Join(result.Alerts, "; "))
	}

	return n.SendText(b.String())
}

// NotifyScannerMatch 推送失衡扫描命中
func (n *TelegramNotifier) NotifyScannerMatch(match *models.CanonicalMatch, result *models.ScannerResult) error {
	if !n.enabled {
		return nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📡 <b>失衡扫描命中</b> [%s]\n", result.Tier)
	fmt.Fprintf(&b, "%s %d-%d %s (第 %d 分钟)\n",
		match.Home.Name, match.Score.Home, match.Score.Away, match.Away.Name, match.Minute)
	fmt.Fprintf(&b, "失衡度 %.1f, 主导方 %s", result.ImbalanceScore, result.DominantSide)

	return n.SendText(b.String())
}

// NotifyError 推送错误
func (n *TelegramNotifier) NotifyError(component, message string) error {
	return n.SendText(fmt.Sprintf("❌ <b>%s</b>: %s", component, message))
}
