package services

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"goalscan-service/apifootball"
	"goalscan-service/config"
	"goalscan-service/pkg/models"
)

// 历史快照保留与通知去重参数
const (
	// 每场比赛最多保留的统一快照数
	maxHistorySnapshots = 40

	// 比赛从直播列表消失超过该时长后丢弃其历史
	historyExpiry = 3 * time.Hour
)

// Broadcaster 周期产出的实时广播出口 (由 WebSocket Hub 实现)
type Broadcaster interface {
	Broadcast(message interface{})
}

// Notifier 告警通知出口,Lark 与 Telegram 通知器都实现该接口
type Notifier interface {
	NotifyOpportunity(match *models.CanonicalMatch, result *models.ScoreResult) error
	NotifyScannerMatch(match *models.CanonicalMatch, result *models.ScannerResult) error
	NotifyError(component, message string) error
}

// MatchMonitor 轮询协调器
//
// 每个周期抓取全部进行中的比赛,对每场跑完整流水线:
// 验证 → 解析 → 归一化 → 评分 + 扫描 → 持久化 → 广播/通知。
// 单场比赛的故障 (panic 或抓取失败) 只跳过该场,不中断周期。
//
// 协调器同时是流水线的历史保管方: 走势窗口基准、半场基准、
// 上一轮赔率快照都由它维护并注入,流水线核心保持无状态。
type MatchMonitor struct {
	config *config.Config
	client *apifootball.Client
	cache  LookupCache

	validator  *DataValidator
	parser     *OddsParser
	normalizer *MatchNormalizer
	engine     *ScoringEngine
	scanner    *ImbalanceScanner

	store       *ResultStore
	publisher   *AlertPublisher
	broadcaster Broadcaster
	notifiers   []Notifier

	mu       sync.Mutex
	history  map[int]*fixtureHistory
	notified map[string]time.Time // 通知去重: 键为 "类别:fixture_id"

	done chan struct{}
}

// fixtureHistory 单场比赛跨周期累积的状态
type fixtureHistory struct {
	snapshots      []*models.CanonicalMatch
	halfTime       *models.CanonicalMatch
	prevOdds       *models.OddsSnapshot
	repricingCount int
	lastSeen       time.Time
}

// movementContext 组装赔率变动因子的输入
//
// 跨赔率商同向移动需要第二家赔率源佐证,当前上游只提供单一
// 赔率商,该信号保持无数据 (nil),不能用本方重报价计数替代。
func (h *fixtureHistory) movementContext() *OddsMovementContext {
	return &OddsMovementContext{
		Previous:       h.prevOdds,
		RepricingCount: h.repricingCount,
	}
}

// NewMatchMonitor 创建轮询协调器
func NewMatchMonitor(
	cfg *config.Config,
	client *apifootball.Client,
	cache LookupCache,
	engine *ScoringEngine,
	scanner *ImbalanceScanner,
	store *ResultStore,
	publisher *AlertPublisher,
	broadcaster Broadcaster,
	notifiers ...Notifier,
) *MatchMonitor {
	return &MatchMonitor{
		config:      cfg,
		client:      client,
		cache:       cache,
		validator:   NewDataValidator(),
		parser:      NewOddsParser(),
		normalizer:  NewMatchNormalizer(),
		engine:      engine,
		scanner:     scanner,
		store:       store,
		publisher:   publisher,
		broadcaster: broadcaster,
		notifiers:   notifiers,
		history:     make(map[int]*fixtureHistory),
		notified:    make(map[string]time.Time),
		done:        make(chan struct{}),
	}
}

// Start 启动轮询循环
func (m *MatchMonitor) Start() {
	go m.run()
}

// Stop 停止轮询
func (m *MatchMonitor) Stop() {
	close(m.done)
}

func (m *MatchMonitor) run() {
	log.Printf("[MatchMonitor] Polling every %s", m.config.PollInterval)

	// 立即执行一次
	m.runCycle()

	ticker := time.NewTicker(m.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.runCycle()
		case <-m.done:
			log.Println("[MatchMonitor] Stopped")
			return
		}
	}
}

// runCycle 执行一个轮询周期
func (m *MatchMonitor) runCycle() {
	started := time.Now()

	fixtures, err := m.client.GetLiveFixtures()
	if err != nil {
		log.Printf("[MatchMonitor] Failed to fetch live fixtures: %v", err)
		m.notifyError("MatchMonitor", fmt.Sprintf("fetch live fixtures: %v", err))
		return
	}

	fixtures = m.filterLeagues(fixtures)

	processed := 0
	for i := range fixtures {
		if m.processFixtureSafe(&fixtures[i]) {
			processed++
		}
	}

	m.expireHistory()

	log.Printf("[MatchMonitor] Cycle done: %d/%d fixtures processed in %s",
		processed, len(fixtures), time.Since(started).Round(time.Millisecond))
}

// filterLeagues 按配置的联赛白名单过滤
func (m *MatchMonitor) filterLeagues(fixtures []apifootball.FixtureRecord) []apifootball.FixtureRecord {
	if len(m.config.MonitorLeagues) == 0 {
		return fixtures
	}

	allowed := make(map[int]bool, len(m.config.MonitorLeagues))
	for _, id := range m.config.MonitorLeagues {
		allowed[id] = true
	}

	var filtered []apifootball.FixtureRecord
	for _, f := range fixtures {
		if allowed[f.League.ID] {
			filtered = append(filtered, f)
		}
	}
	return filtered
}

// processFixtureSafe 带 recover 的单场处理,panic 只丢弃该场
func (m *MatchMonitor) processFixtureSafe(record *apifootball.FixtureRecord) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[MatchMonitor] Panic processing fixture %d: %v", record.Fixture.ID, r)
			ok = false
		}
	}()

	return m.processFixture(record)
}

// processFixture 对一场比赛跑完整流水线
func (m *MatchMonitor) processFixture(record *apifootball.FixtureRecord) bool {
	fixtureID := record.Fixture.ID
	minute := 0
	if record.Fixture.Status.Elapsed != nil {
		minute = *record.Fixture.Status.Elapsed
	}

	stats := m.fetchStatistics(fixtureID)
	events := m.fetchEvents(fixtureID)
	oddsPayload := m.fetchOdds(fixtureID)

	// 同一轮抓取的载荷整体送验,验证与解析基于同一份数据
	validation := m.validator.Validate(record, stats, oddsPayload, events)
	if err := m.store.SaveValidation(fixtureID, validation); err != nil {
		log.Printf("[MatchMonitor] Save validation for %d failed: %v", fixtureID, err)
	}

	if !validation.Persistable() {
		log.Printf("[MatchMonitor] Fixture %d dropped as INVALID: %v", fixtureID, validation.InvalidReasons)
		return false
	}

	snapshot := m.parser.Parse(oddsPayload, minute)
	snapshot.FixtureID = fixtureID
	if err := m.store.SaveOddsSnapshot(fixtureID, snapshot); err != nil {
		log.Printf("[MatchMonitor] Save odds snapshot for %d failed: %v", fixtureID, err)
	}

	hist := m.historyFor(fixtureID)
	match := m.normalizer.Normalize(NormalizerInput{
		Fixture:          record,
		Stats:            stats,
		Events:           events,
		Odds:             snapshot,
		Validation:       validation,
		WindowBaseline:   hist.windowBaseline(minute),
		HalfTimeBaseline: hist.halfTime,
	})

	var result *models.ScoreResult
	if m.config.AugmentedScore {
		result = m.engine.ScoreAugmented(match, hist.movementContext())
	} else {
		result = m.engine.Score(match)
	}

	scan := m.scanner.Scan(match)

	m.persist(match, result, scan)
	m.broadcast(match, result, scan)
	m.notify(match, result, scan)

	m.updateHistory(hist, match, snapshot)
	return true
}

// fetchStatistics 抓取统计,短 TTL 缓存去重
func (m *MatchMonitor) fetchStatistics(fixtureID int) []apifootball.TeamStatistics {
	key := CacheKey("stats", fixtureID)
	if data, ok := m.cache.Get(key); ok {
		var stats []apifootball.TeamStatistics
		if err := json.Unmarshal(data, &stats); err == nil {
			return stats
		}
	}

	stats, err := m.client.GetFixtureStatistics(fixtureID)
	if err != nil {
		log.Printf("[MatchMonitor] Fetch statistics for %d failed: %v", fixtureID, err)
		return nil
	}

	if data, err := json.Marshal(stats); err == nil {
		m.cache.Set(key, DataClassLive, data)
	}
	return stats
}

// fetchEvents 抓取事件列表
//
// 抓取失败返回 nil 而不是空列表,验证器把两者区别对待。
func (m *MatchMonitor) fetchEvents(fixtureID int) []apifootball.MatchEvent {
	key := CacheKey("events", fixtureID)
	if data, ok := m.cache.Get(key); ok {
		var events []apifootball.MatchEvent
		if err := json.Unmarshal(data, &events); err == nil {
			return events
		}
	}

	events, err := m.client.GetFixtureEvents(fixtureID)
	if err != nil {
		log.Printf("[MatchMonitor] Fetch events for %d failed: %v", fixtureID, err)
		return nil
	}
	if events == nil {
		events = []apifootball.MatchEvent{}
	}

	if data, err := json.Marshal(events); err == nil {
		m.cache.Set(key, DataClassLive, data)
	}
	return events
}

// fetchOdds 抓取赔率,直播盘为主,开赛前回退到赛前盘
func (m *MatchMonitor) fetchOdds(fixtureID int) *apifootball.OddsPayload {
	key := CacheKey("odds", fixtureID)
	if data, ok := m.cache.Get(key); ok {
		var payload apifootball.OddsPayload
		if err := json.Unmarshal(data, &payload); err == nil {
			return &payload
		}
	}

	payload, err := m.client.GetLiveOdds(fixtureID)
	if err != nil {
		log.Printf("[MatchMonitor] Fetch live odds for %d failed: %v", fixtureID, err)
		return nil
	}
	if payload.Empty() {
		prematch, err := m.client.GetPreMatchOdds(fixtureID)
		if err != nil {
			log.Printf("[MatchMonitor] Fetch pre-match odds for %d failed: %v", fixtureID, err)
		} else if !prematch.Empty() {
			payload = prematch
		}
	}

	if data, err := json.Marshal(payload); err == nil {
		m.cache.Set(key, DataClassOdds, data)
	}
	return payload
}

// persist 持久化周期产出
func (m *MatchMonitor) persist(match *models.CanonicalMatch, result *models.ScoreResult, scan *models.ScannerResult) {
	if err := m.store.SaveScoreResult(match.Minute, result); err != nil {
		log.Printf("[MatchMonitor] Save score for %d failed: %v", match.FixtureID, err)
	}
	if err := m.store.SaveScannerResult(scan); err != nil {
		log.Printf("[MatchMonitor] Save scan for %d failed: %v", match.FixtureID, err)
	}
	if err := m.store.UpdateTrackedFixture(match); err != nil {
		log.Printf("[MatchMonitor] Update tracked fixture %d failed: %v", match.FixtureID, err)
	}
}

// broadcast 推送周期产出到 WebSocket
func (m *MatchMonitor) broadcast(match *models.CanonicalMatch, result *models.ScoreResult, scan *models.ScannerResult) {
	if m.broadcaster == nil {
		return
	}

	m.broadcaster.Broadcast(map[string]interface{}{
		"type":       "score_update",
		"fixture_id": match.FixtureID,
		"data": map[string]interface{}{
			"match": match,
			"score": result,
		},
	})

	if scan.Matched {
		m.broadcaster.Broadcast(map[string]interface{}{
			"type":       "scanner_match",
			"fixture_id": match.FixtureID,
			"data":       scan,
		})
	}
}

// notify 高分机会与强命中推送外部通知,同类通知按冷却窗口去重
func (m *MatchMonitor) notify(match *models.CanonicalMatch, result *models.ScoreResult, scan *models.ScannerResult) {
	if result.Scoreable && result.Total >= m.config.NotifyMinScore {
		if m.shouldNotify(fmt.Sprintf("score:%d", match.FixtureID)) {
			for _, n := range m.notifiers {
				if err := n.NotifyOpportunity(match, result); err != nil {
					log.Printf("[MatchMonitor] Opportunity notification failed: %v", err)
				}
			}
			if err := m.publisher.PublishScore(match, result); err != nil {
				log.Printf("[MatchMonitor] Publish score alert failed: %v", err)
			}
		}
	}

	if scan.Matched && scan.Tier == models.ScanTierStrong {
		if m.shouldNotify(fmt.Sprintf("scan:%d", match.FixtureID)) {
			for _, n := range m.notifiers {
				if err := n.NotifyScannerMatch(match, scan); err != nil {
					log.Printf("[MatchMonitor] Scanner notification failed: %v", err)
				}
			}
			if err := m.publisher.PublishScannerMatch(match, scan); err != nil {
				log.Printf("[MatchMonitor] Publish scan alert failed: %v", err)
			}
		}
	}
}

// shouldNotify 通知冷却窗口判定
func (m *MatchMonitor) shouldNotify(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if last, ok := m.notified[key]; ok && time.Since(last) < m.config.NotifyCooldown {
		return false
	}
	m.notified[key] = time.Now()
	return true
}

// notifyError 错误通知扇出
func (m *MatchMonitor) notifyError(component, message string) {
	for _, n := range m.notifiers {
		if err := n.NotifyError(component, message); err != nil {
			log.Printf("[MatchMonitor] Error notification failed: %v", err)
		}
	}
}

// historyFor 取出或创建一场比赛的历史状态
func (m *MatchMonitor) historyFor(fixtureID int) *fixtureHistory {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist, ok := m.history[fixtureID]
	if !ok {
		hist = &fixtureHistory{}
		m.history[fixtureID] = hist
	}
	return hist
}

// updateHistory 周期结束后累积历史状态
func (m *MatchMonitor) updateHistory(hist *fixtureHistory, match *models.CanonicalMatch, snapshot *models.OddsSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist.lastSeen = time.Now()

	hist.snapshots = append(hist.snapshots, match)
	if len(hist.snapshots) > maxHistorySnapshots {
		hist.snapshots = hist.snapshots[len(hist.snapshots)-maxHistorySnapshots:]
	}

	// 第一次看到半场状态时固定半场基准
	if hist.halfTime == nil && match.Status == models.MatchStatusHalfTime {
		hist.halfTime = match
	}

	if snapshot.HasAnyMarket() {
		if CountRepricing(hist.prevOdds, snapshot) {
			hist.repricingCount++
		}
		hist.prevOdds = snapshot
	}
}

// windowBaseline 选取约一个走势窗口之前的快照
//
// 取满足最小窗口年龄的最新快照;历史不足时返回 nil,
// 归一化器对应字段保持缺失。
func (h *fixtureHistory) windowBaseline(currentMinute int) *models.CanonicalMatch {
	for i := len(h.snapshots) - 1; i >= 0; i-- {
		if currentMinute-h.snapshots[i].Minute >= momentumWindowMinutes-5 {
			return h.snapshots[i]
		}
	}
	return nil
}

// expireHistory 清理早已结束的比赛的历史
func (m *MatchMonitor) expireHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for fixtureID, hist := range m.history {
		if now.Sub(hist.lastSeen) > historyExpiry {
			delete(m.history, fixtureID)
			delete(m.notified, fmt.Sprintf("score:%d", fixtureID))
			delete(m.notified, fmt.Sprintf("scan:%d", fixtureID))
		}
	}
}
