package main

import (
	"log"
	"os"
	"time"

	"goalscan-service/pkg/models"
	"goalscan-service/services"
)

func main() {
	webhookURL := os.Getenv("LARK_WEBHOOK_URL")
	if webhookURL == "" {
		log.Fatal("LARK_WEBHOOK_URL environment variable is required")
	}

	notifier := services.NewLarkNotifier(webhookURL)

	log.Println("Testing Lark notifications...")

	// 1. 测试文本消息
	log.Println("1. Sending text message...")
	if err := notifier.SendText("🧪 测试消息: Lark 集成测试"); err != nil {
		log.Printf("Failed: %v", err)
	} else {
		log.Println("✅ Text message sent")
	}
	time.Sleep(2 * time.Second)

	// 2. 测试服务启动通知
	log.Println("2. Sending service start notification...")
	if err := notifier.NotifyServiceStart("test", 60*time.Second); err != nil {
		log.Printf("Failed: %v", err)
	} else {
		log.Println("✅ Service start notification sent")
	}
	time.Sleep(2 * time.Second)

	// 3. 测试机会通知
	log.Println("3. Sending opportunity notification...")
	match := &models.CanonicalMatch{
		FixtureID:  123456,
		LeagueName: "Test League",
		Home:       models.Team{ID: 1, Name: "Home FC"},
		Away:       models.Team{ID: 2, Name: "Away FC"},
		Minute:     78,
		Score:      models.Score{Home: 1, Away: 1},
	}
	result := &models.ScoreResult{
		FixtureID:      123456,
		Scoreable:      true,
		Total:          82.5,
		Stars:          4,
		Recommendation: models.RecommendBuy,
		Confidence:     85,
		Alerts:         []string{"critical time, one-goal margin"},
		ComputedAt:     time.Now(),
	}
	if err := notifier.NotifyOpportunity(match, result); err != nil {
		log.Printf("Failed: %v", err)
	} else {
		log.Println("✅ Opportunity notification sent")
	}
	time.Sleep(2 * time.Second)

	// 4. 测试周期统计通知
	log.Println("4. Sending cycle stats notification...")
	if err := notifier.NotifyCycleStats(24, 18, 4, 2, "测试周期"); err != nil {
		log.Printf("Failed: %v", err)
	} else {
		log.Println("✅ Cycle stats notification sent")
	}
	time.Sleep(2 * time.Second)

	// 5. 测试错误通知
	log.Println("5. Sending error notification...")
	if err := notifier.NotifyError("TestComponent", "这是一个测试错误消息"); err != nil {
		log.Printf("Failed: %v", err)
	} else {
		log.Println("✅ Error notification sent")
	}

	log.Println("\n✅ All tests completed! Check your Lark group for messages.")
}
