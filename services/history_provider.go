package services

import (
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

// 历史数据参数
const (
	// 赛季晚场进球率缓存时长,赛季统计按天更新
	historyCacheTTL = 6 * time.Hour

	// 交锋史取最近场次
	headToHeadDepth = 5

	// 无赛季统计时使用的联赛平均晚场进球率
	leagueAverageLateGoalRate = 0.21
)

// LateGoalHistory 历史倾向因子的输入
//
// 三项均可缺失 (nil),缺失项在评分中记 0 分。
// 进球率为 0-1 区间的占比: 球队项为赛季进球落在 76-90 分钟的
// 比例,交锋项为近期交锋中出现晚场进球的场次比例。
type LateGoalHistory struct {
	HomeRate *float64
	AwayRate *float64
	H2HRate  *float64
}

// HistoryProvider 历史倾向数据提供方
type HistoryProvider interface {
	LateGoalHistory(match *models.CanonicalMatch) LateGoalHistory
}

// APIHistoryProvider 基于上游 API 的历史数据提供方
//
// 赛季统计与交锋史的查询成本高且变化慢,结果在内存缓存,
// 查询失败回退到联赛平均值而不是让评分失败。
type APIHistoryProvider struct {
	client *apifootball.Client

	mu        sync.RWMutex
	teamRates map[int]cachedRate // teamID -> 赛季晚场进球率
	h2hRates  map[int]cachedRate // fixtureID -> 交锋晚场进球率
}

type cachedRate struct {
	rate      *float64
	fetchedAt time.Time
}

// NewAPIHistoryProvider 创建历史数据提供方
func NewAPIHistoryProvider(client *apifootball.Client) *APIHistoryProvider {
	return &APIHistoryProvider{
		client:    client,
		teamRates: make(map[int]cachedRate),
		h2hRates:  make(map[int]cachedRate),
	}
}

// LateGoalHistory 查询一场比赛双方的晚场进球倾向
func (p *APIHistoryProvider) LateGoalHistory(match *models.CanonicalMatch) LateGoalHistory {
	season := currentSeason(time.Now())

	return LateGoalHistory{
		HomeRate: p.teamLateGoalRate(match.Home.ID, match.LeagueID, season),
		AwayRate: p.teamLateGoalRate(match.Away.ID, match.LeagueID, season),
		H2HRate:  p.headToHeadLateGoalRate(match),
	}
}

// teamLateGoalRate 球队赛季进球落在 76-90 分钟的比例
func (p *APIHistoryProvider) teamLateGoalRate(teamID, leagueID, season int) *float64 {
	p.mu.RLock()
	cached, ok := p.teamRates[teamID]
	p.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < historyCacheTTL {
		return cached.rate
	}

	rate := p.fetchTeamLateGoalRate(teamID, leagueID, season)

	p.mu.Lock()
	p.teamRates[teamID] = cachedRate{rate: rate, fetchedAt: time.Now()}
	p.mu.Unlock()

	return rate
}

func (p *APIHistoryProvider) fetchTeamLateGoalRate(teamID, leagueID, season int) *float64 {
	stats, err := p.client.GetTeamSeasonStatistics(teamID, leagueID, season)
	if err != nil {
		log.Printf("[HistoryProvider] 获取球队 %d 赛季统计失败,使用联赛平均值: %v", teamID, err)
		fallback := leagueAverageLateGoalRate
		return &fallback
	}

	bucket, ok := stats.Goals.For.Minute["76-90"]
	if !ok || bucket.Percentage == "" {
		// 上游未提供分布数据时不虚构球队倾向
		return nil
	}

	pct, err := parsePercentage(bucket.Percentage)
	if err != nil {
		log.Printf("[HistoryProvider] 球队 %d 的晚场进球占比无法解析: %q", teamID, bucket.Percentage)
		return nil
	}

	rate := pct / 100
	return &rate
}

// headToHeadLateGoalRate 近期交锋中出现晚场进球 (76 分钟后) 的场次比例
//
// 交锋史需要逐场拉取事件,成本高,结果按比赛缓存。
func (p *APIHistoryProvider) headToHeadLateGoalRate(match *models.CanonicalMatch) *float64 {
	p.mu.RLock()
	cached, ok := p.h2hRates[match.FixtureID]
	p.mu.RUnlock()
	if ok && time.Since(cached.fetchedAt) < historyCacheTTL {
		return cached.rate
	}

	rate := p.fetchHeadToHeadLateGoalRate(match)

	p.mu.Lock()
	p.h2hRates[match.FixtureID] = cachedRate{rate: rate, fetchedAt: time.Now()}
	p.mu.Unlock()

	return rate
}

func (p *APIHistoryProvider) fetchHeadToHeadLateGoalRate(match *models.CanonicalMatch) *float64 {
	fixtures, err := p.client.GetHeadToHead(match.Home.ID, match.Away.ID, headToHeadDepth)
	if err != nil {
		log.Printf("[HistoryProvider] 获取 %d-%d 交锋史失败: %v", match.Home.ID, match.Away.ID, err)
		return nil
	}
	if len(fixtures) == 0 {
		return nil
	}

	checked := 0
	withLateGoal := 0
	for _, record := range fixtures {
		if !strings.EqualFold(record.Fixture.Status.Short, "FT") {
			continue
		}
		events, err := p.client.GetFixtureEvents(record.Fixture.ID)
		if err != nil {
			log.Printf("[HistoryProvider] 获取交锋比赛 %d 事件失败: %v", record.Fixture.ID, err)
			continue
		}
		checked++
		for _, event := range events {
			if event.Type == "Goal" && event.Time.Elapsed >= 76 {
				withLateGoal++
				break
			}
		}
	}
	if checked == 0 {
		return nil
	}

	rate := float64(withLateGoal) / float64(checked)
	return &rate
}

// currentSeason 按欧洲赛季划分推算当前赛季年份 (7 月起算新赛季)
func currentSeason(now time.Time) int {
	if now.Month() >= time.July {
		return now.Year()
	}
	return now.Year() - 1
}

// parsePercentage 解析 "23%" 形式的百分比字符串
func parsePercentage(s string) (float64, error) {
	trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
	return strconv.ParseFloat(trimmed, 64)
}
