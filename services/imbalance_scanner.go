package services

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"goalscan-service/pkg/models"
)

// 扫描规则名称
const (
	RuleTimeWindow        = "time_window"
	RuleGoalDiff          = "goal_diff"
	RuleXGDiff            = "xg_diff"
	RuleShotDiff          = "shot_diff"
	RuleShotOnTargetDiff  = "shot_on_target_diff"
	RuleRecentShots       = "recent_shots"
	RuleAuthoritativeData = "authoritative_data"
)

// 失衡评分的线性组合权重
const (
	imbalanceShotWeight       = 3.0
	imbalanceSOTWeight        = 5.0
	imbalanceXGWeight         = 25.0
	imbalanceCornerWeight     = 2.0
	imbalancePossessionWeight = 0.5
	imbalanceScoreCap         = 100.0

	// 主导方判定的有向失衡阈值,绝对值低于该值视为均势
	dominanceThreshold = 10.0
)

// ScannerConfig 失衡扫描器阈值配置,可从 YAML 文件加载
type ScannerConfig struct {
	// 扫描的比赛时间窗口 (分钟)
	MinMinute int `yaml:"min_minute"`
	MaxMinute int `yaml:"max_minute"`

	// 净胜球绝对值上限
	MaxGoalDiff int `yaml:"max_goal_diff"`

	// 两队差值的下限阈值
	MinXGDiff           float64 `yaml:"min_xg_diff"`
	MinShotDiff         int     `yaml:"min_shot_diff"`
	MinShotOnTargetDiff int     `yaml:"min_shot_on_target_diff"`

	// 走势窗口内射门次数下限
	MinRecentShots int `yaml:"min_recent_shots"`

	// 是否要求统计数据通过真实性验证
	RequireAuthoritative bool `yaml:"require_authoritative"`
}

// DefaultScannerConfig 默认扫描配置
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MinMinute:            60,
		MaxMinute:            85,
		MaxGoalDiff:          1,
		MinXGDiff:            0.8,
		MinShotDiff:          6,
		MinShotOnTargetDiff:  3,
		MinRecentShots:       2,
		RequireAuthoritative: true,
	}
}

// LoadScannerConfig 从 YAML 文件加载扫描配置
// 文件不存在时返回默认配置,格式错误时报错
func LoadScannerConfig(path string) (ScannerConfig, error) {
	config := DefaultScannerConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, fmt.Errorf("读取扫描配置失败: %w", err)
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return config, fmt.Errorf("解析扫描配置失败: %w", err)
	}

	return config, nil
}

// ImbalanceScanner 结构性失衡扫描器
//
// 固定配置上的声明式规则求值器,与评分引擎独立运行在同一份
// 统一比赛聚合上。每条规则独立给出通过/失败与文字原因,
// 总体判定为: 时间窗口 ∧ 净胜球 ∧ (xG 差 ∨ 射门差),
// 刻意使用宽松的析取,任一统计信号单独成立即可入选。
type ImbalanceScanner struct {
	config ScannerConfig
}

// NewImbalanceScanner 创建扫描器
func NewImbalanceScanner(config ScannerConfig) *ImbalanceScanner {
	return &ImbalanceScanner{config: config}
}

// Scan 对一场比赛求值全部规则
func (s *ImbalanceScanner) Scan(match *models.CanonicalMatch) *models.ScannerResult {
	result := &models.ScannerResult{
		FixtureID:  match.FixtureID,
		ComputedAt: time.Now(),
	}

	timeWindow := s.evalTimeWindow(match)
	goalDiff := s.evalGoalDiff(match)
	xgDiff := s.evalXGDiff(match)
	shotDiff := s.evalShotDiff(match)

	rules := []models.RuleOutcome{
		timeWindow,
		goalDiff,
		xgDiff,
		shotDiff,
		s.evalShotOnTargetDiff(match),
		s.evalRecentShots(match),
	}

	authoritative := models.RuleOutcome{Passed: true}
	if s.config.RequireAuthoritative {
		authoritative = s.evalAuthoritative(match)
		rules = append(rules, authoritative)
	}

	result.Rules = rules
	for _, rule := range rules {
		if rule.Passed {
			result.Satisfied = append(result.Satisfied, rule.Name)
		} else {
			result.Failed = append(result.Failed, rule.Name)
		}
	}

	result.Matched = timeWindow.Passed && goalDiff.Passed &&
		(xgDiff.Passed || shotDiff.Passed) && authoritative.Passed

	// 档位只看满足的规则数量,不看失衡评分
	switch passed := len(result.Satisfied); {
	case passed >= 5:
		result.Tier = models.ScanTierStrong
	case passed >= 4:
		result.Tier = models.ScanTierModerate
	case passed >= 3:
		result.Tier = models.ScanTierWeak
	default:
		result.Tier = models.ScanTierNone
	}

	result.ImbalanceScore, result.DominantSide = s.imbalance(match)

	return result
}

func (s *ImbalanceScanner) evalTimeWindow(match *models.CanonicalMatch) models.RuleOutcome {
	passed := match.Minute >= s.config.MinMinute && match.Minute <= s.config.MaxMinute
	return models.RuleOutcome{
		Name:   RuleTimeWindow,
		Passed: passed,
		Reason: fmt.Sprintf("第 %d 分钟, 窗口 %d-%d", match.Minute, s.config.MinMinute, s.config.MaxMinute),
	}
}

func (s *ImbalanceScanner) evalGoalDiff(match *models.CanonicalMatch) models.RuleOutcome {
	diff := match.GoalDiff()
	if diff < 0 {
		diff = -diff
	}
	return models.RuleOutcome{
		Name:   RuleGoalDiff,
		Passed: diff <= s.config.MaxGoalDiff,
		Reason: fmt.Sprintf("净胜球 %d, 上限 %d", diff, s.config.MaxGoalDiff),
	}
}

func (s *ImbalanceScanner) evalXGDiff(match *models.CanonicalMatch) models.RuleOutcome {
	home := match.Statistics.Home.ExpectedGoals
	away := match.Statistics.Away.ExpectedGoals
	if home == nil || away == nil {
		return models.RuleOutcome{Name: RuleXGDiff, Passed: false, Reason: "缺少 xG 数据"}
	}
	diff := math.Abs(*home - *away)
	return models.RuleOutcome{
		Name:   RuleXGDiff,
		Passed: diff >= s.config.MinXGDiff,
		Reason: fmt.Sprintf("xG 差 %.2f, 下限 %.2f", diff, s.config.MinXGDiff),
	}
}

func (s *ImbalanceScanner) evalShotDiff(match *models.CanonicalMatch) models.RuleOutcome {
	home := match.Statistics.Home.Shots
	away := match.Statistics.Away.Shots
	if home == nil || away == nil {
		return models.RuleOutcome{Name: RuleShotDiff, Passed: false, Reason: "缺少射门数据"}
	}
	diff := *home - *away
	if diff < 0 {
		diff = -diff
	}
	return models.RuleOutcome{
		Name:   RuleShotDiff,
		Passed: diff >= s.config.MinShotDiff,
		Reason: fmt.Sprintf("射门差 %d, 下限 %d", diff, s.config.MinShotDiff),
	}
}

func (s *ImbalanceScanner) evalShotOnTargetDiff(match *models.CanonicalMatch) models.RuleOutcome {
	home := match.Statistics.Home.ShotsOnTarget
	away := match.Statistics.Away.ShotsOnTarget
	if home == nil || away == nil {
		return models.RuleOutcome{Name: RuleShotOnTargetDiff, Passed: false, Reason: "缺少射正数据"}
	}
	diff := *home - *away
	if diff < 0 {
		diff = -diff
	}
	return models.RuleOutcome{
		Name:   RuleShotOnTargetDiff,
		Passed: diff >= s.config.MinShotOnTargetDiff,
		Reason: fmt.Sprintf("射正差 %d, 下限 %d", diff, s.config.MinShotOnTargetDiff),
	}
}

func (s *ImbalanceScanner) evalRecentShots(match *models.CanonicalMatch) models.RuleOutcome {
	if match.Momentum.RecentShots == nil {
		return models.RuleOutcome{Name: RuleRecentShots, Passed: false, Reason: "缺少走势窗口数据"}
	}
	return models.RuleOutcome{
		Name:   RuleRecentShots,
		Passed: *match.Momentum.RecentShots >= s.config.MinRecentShots,
		Reason: fmt.Sprintf("近 %d 分钟射门 %d, 下限 %d", match.Momentum.WindowMinutes, *match.Momentum.RecentShots, s.config.MinRecentShots),
	}
}

func (s *ImbalanceScanner) evalAuthoritative(match *models.CanonicalMatch) models.RuleOutcome {
	return models.RuleOutcome{
		Name:   RuleAuthoritativeData,
		Passed: match.Statistics.Authoritative,
		Reason: "统计数据需通过真实性验证",
	}
}

// imbalance 结构性失衡评分与主导方分类
//
// 评分为各项差值绝对值的固定线性组合,截断到 0-100;
// 主导方按有向合计判定: 正值偏主队,负值偏客队。
func (s *ImbalanceScanner) imbalance(match *models.CanonicalMatch) (float64, string) {
	stats := &match.Statistics
	score := 0.0
	signed := 0.0

	add := func(diff, weight float64) {
		score += math.Abs(diff) * weight
		signed += diff * weight
	}

	if stats.Home.Shots != nil && stats.Away.Shots != nil {
		add(float64(*stats.Home.Shots-*stats.Away.Shots), imbalanceShotWeight)
	}
	if stats.Home.ShotsOnTarget != nil && stats.Away.ShotsOnTarget != nil {
		add(float64(*stats.Home.ShotsOnTarget-*stats.Away.ShotsOnTarget), imbalanceSOTWeight)
	}
	if stats.Home.ExpectedGoals != nil && stats.Away.ExpectedGoals != nil {
		add(*stats.Home.ExpectedGoals-*stats.Away.ExpectedGoals, imbalanceXGWeight)
	}
	if stats.Home.Corners != nil && stats.Away.Corners != nil {
		add(float64(*stats.Home.Corners-*stats.Away.Corners), imbalanceCornerWeight)
	}
	if stats.Home.Possession != nil && stats.Away.Possession != nil {
		add(*stats.Home.Possession-*stats.Away.Possession, imbalancePossessionWeight)
	}

	if score > imbalanceScoreCap {
		score = imbalanceScoreCap
	}

	side := "balanced"
	switch {
	case signed > dominanceThreshold:
		side = "home"
	case signed < -dominanceThreshold:
		side = "away"
	}

	return score, side
}
