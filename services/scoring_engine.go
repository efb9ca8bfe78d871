package services

import (
	"fmt"
	"time"

	"goalscan-service/pkg/models"
)

// 评分引擎固定参数
const (
	scoreBase = 30.0

	// 各因子取值区间
	scoreStateMin, scoreStateMax       = -10.0, 25.0
	attackVolumeMin, attackVolumeMax   = 0.0, 30.0
	momentumMin, momentumMax           = 0.0, 35.0
	historicalMin, historicalMax       = 0.0, 25.0
	specialEventsMin, specialEventsMax = -20.0, 20.0
	oddsMovementMin, oddsMovementMax   = -10.0, 20.0

	// 总分上限: 基础变体 / 赔率增强变体
	totalCapBase      = 100.0
	totalCapAugmented = 120.0
)

// 两套星级与建议档位阈值表。
// 增强变体的阈值不是基础变体的线性缩放,两张表都按给定常量处理。
var (
	starThresholdsBase      = [4]float64{90, 75, 60, 45}
	starThresholdsAugmented = [4]float64{105, 88, 70, 52}

	recThresholdsBase      = [3]float64{80, 65, 45}
	recThresholdsAugmented = [3]float64{95, 75, 50}
)

// ScoringEngine 晚场机会评分引擎
//
// 固定权重的规则系统,不是训练模型。输入为统一比赛聚合,
// 输出有界评分、因子拆解、置信度与告警文本。
// 不可评分的比赛返回显式的"无法评分"结果,绝不返回数值评分。
type ScoringEngine struct {
	history HistoryProvider
}

// NewScoringEngine 创建评分引擎
func NewScoringEngine(history HistoryProvider) *ScoringEngine {
	return &ScoringEngine{history: history}
}

// Score 基础变体评分,总分截断到 [0, 100]
func (e *ScoringEngine) Score(match *models.CanonicalMatch) *models.ScoreResult {
	return e.score(match, nil)
}

// ScoreAugmented 赔率增强变体,总分截断到 [0, 120]
//
// movement 携带上一轮赔率快照与盘口变动历史;为 nil 或缺少
// 历史快照时赔率因子整体跳过,记 0 分并标记数据不可用。
func (e *ScoringEngine) ScoreAugmented(match *models.CanonicalMatch, movement *OddsMovementContext) *models.ScoreResult {
	if movement == nil {
		movement = &OddsMovementContext{}
	}
	return e.score(match, movement)
}

func (e *ScoringEngine) score(match *models.CanonicalMatch, movement *OddsMovementContext) *models.ScoreResult {
	if match.Unscoreable {
		reason := match.NoStatsReason
		if reason == "" {
			reason = models.NoStatsReasonMissing
		}
		return models.NotScoreable(match.FixtureID, reason)
	}

	augmented := movement != nil

	result := &models.ScoreResult{
		FixtureID:  match.FixtureID,
		Scoreable:  true,
		Augmented:  augmented,
		ComputedAt: time.Now(),
	}

	scoreState, strongBehind := e.scoreStateFactor(match)
	result.StrongTeamLosing = strongBehind
	result.Factors.ScoreState = clamp(scoreState, scoreStateMin, scoreStateMax)
	result.Factors.AttackVolume = clamp(e.attackVolumeFactor(match), attackVolumeMin, attackVolumeMax)
	result.Factors.Momentum = clamp(e.momentumFactor(match), momentumMin, momentumMax)

	history := e.lookupHistory(match)
	result.Factors.Historical = clamp(e.historicalFactor(history), historicalMin, historicalMax)
	result.Factors.SpecialEvents = clamp(e.specialEventsFactor(match), specialEventsMin, specialEventsMax)

	total := scoreBase +
		result.Factors.ScoreState +
		result.Factors.AttackVolume +
		result.Factors.Momentum +
		result.Factors.Historical +
		result.Factors.SpecialEvents

	cap := totalCapBase
	if augmented {
		cap = totalCapAugmented
		if om, available := oddsMovementFactor(match, movement); available {
			v := clamp(om, oddsMovementMin, oddsMovementMax)
			result.Factors.OddsMovement = &v
			total += v
		}
	}

	result.Total = clamp(total, 0, cap)
	result.Confidence = e.confidence(match, history)
	result.Stars = starsFor(result.Total, augmented)
	result.Recommendation = recommendationFor(result.Total, augmented)
	result.Alerts = e.buildAlerts(match, result)

	return result
}

// scoreStateFactor 比分状态因子 (-10..+25)
//
// 比分越接近,边际进球价值越高: 平局 +18,一球差 +12,两球差 +5,
// 三球及以上 -10。让球盘看好的一方落后时再加 +15("强队落后"),
// 看好的一方恰好领先一球(脆弱领先)加 +5。
func (e *ScoringEngine) scoreStateFactor(match *models.CanonicalMatch) (float64, bool) {
	score := 0.0

	diff := match.GoalDiff()
	absDiff := diff
	if absDiff < 0 {
		absDiff = -absDiff
	}

	switch {
	case absDiff == 0:
		score += 18
	case absDiff == 1:
		score += 12
	case absDiff == 2:
		score += 5
	default:
		score -= 10
	}

	strongBehind := false
	favored := ""
	if match.Odds != nil {
		favored = match.Odds.FavoredSide()
	}
	if favored != "" {
		losing := match.LosingSide()
		if losing == favored {
			score += 15
			strongBehind = true
		}
		if (favored == "home" && diff == 1) || (favored == "away" && diff == -1) {
			score += 5
		}
	}

	return score, strongBehind
}

// attackVolumeFactor 进攻量因子 (0..+30)
func (e *ScoringEngine) attackVolumeFactor(match *models.CanonicalMatch) float64 {
	score := 0.0
	stats := &match.Statistics

	if total, ok := stats.TotalShots(); ok {
		switch {
		case total >= 25:
			score += 10
		case total >= 18:
			score += 6
		}

		// 射正率
		if stats.Home.ShotsOnTarget != nil && stats.Away.ShotsOnTarget != nil && total > 0 {
			onTarget := *stats.Home.ShotsOnTarget + *stats.Away.ShotsOnTarget
			accuracy := float64(onTarget) / float64(total)
			switch {
			case accuracy >= 0.45:
				score += 8
			case accuracy >= 0.35:
				score += 4
			}
		}
	}

	if stats.Home.Corners != nil && stats.Away.Corners != nil {
		corners := *stats.Home.Corners + *stats.Away.Corners
		switch {
		case corners >= 12:
			score += 6
		case corners >= 8:
			score += 3
		}
	}

	if totalXG, ok := stats.TotalExpectedGoals(); ok {
		switch {
		case totalXG >= 3.0:
			score += 10
		case totalXG >= 2.0:
			score += 5
		}

		// 预期进球赤字: 累计 xG 超出实际进球 50% 以上,
		// 说明存在大量未转化的机会
		if totalXG > float64(match.TotalGoals())*1.5 && totalXG > 0 {
			score += 8
		}
	}

	return score
}

// momentumFactor 近期走势因子 (0..+35,上限最高的因子)
//
// 每个子加成都以底层数据确实可用为前提,数据未经验证时记 0 分。
func (e *ScoringEngine) momentumFactor(match *models.CanonicalMatch) float64 {
	if match.Momentum.Quality == models.DataQualityUnavailable {
		return 0
	}

	score := 0.0
	window := &match.Momentum

	if window.RecentShots != nil {
		switch {
		case *window.RecentShots >= 5:
			score += 15
		case *window.RecentShots >= 3:
			score += 8
		case *window.RecentShots >= 1:
			score += 4
		}
	}

	if window.HalfIntensityRatio != nil && *window.HalfIntensityRatio > 1.5 {
		score += 10
	}

	if window.LosingSidePossession != nil {
		switch {
		case *window.LosingSidePossession >= 60:
			score += 10
		case *window.LosingSidePossession >= 55:
			score += 5
		}
	}

	// 危险进攻密度超出 (分钟数 × 0.3) 的线性期望
	if match.Statistics.Home.DangerousAttacks != nil && match.Statistics.Away.DangerousAttacks != nil && match.Minute > 0 {
		attacks := *match.Statistics.Home.DangerousAttacks + *match.Statistics.Away.DangerousAttacks
		if float64(attacks) > float64(match.Minute)*0.3 {
			score += 8
		}
	}

	return score
}

// historicalFactor 历史倾向因子 (0..+25)
//
// 赛季晚场进球率与交锋史都是可选输入,缺失一律记 0 分,
// 绝不从缺失数据推断历史。
func (e *ScoringEngine) historicalFactor(history LateGoalHistory) float64 {
	score := 0.0

	for _, rate := range []*float64{history.HomeRate, history.AwayRate} {
		if rate == nil {
			continue
		}
		switch {
		case *rate >= 0.28:
			score += 8
		case *rate >= 0.20:
			score += 5
		case *rate >= 0.12:
			score += 2
		}
	}

	if history.H2HRate != nil {
		switch {
		case *history.H2HRate >= 0.5:
			score += 9
		case *history.H2HRate >= 0.3:
			score += 5
		}
	}

	return score
}

// specialEventsFactor 特殊事件因子 (-20..+20)
func (e *ScoringEngine) specialEventsFactor(match *models.CanonicalMatch) float64 {
	score := 0.0

	homeReds, awayReds := match.RedCardCounts()
	if homeReds != awayReds {
		score += 12
	}

	if match.TotalGoals() >= 3 {
		score += 8
	}

	homeSubs, awaySubs := match.SubstitutionCounts()
	switch {
	case homeSubs < 5 && awaySubs < 5:
		score += 5
	case homeSubs >= 5 && awaySubs >= 5:
		score -= 8
	}

	if last := match.LastSubstitutionMinute(); last >= 0 && match.Minute-last <= 5 {
		score += 6
	}

	if match.HasVarOverturnedGoal() {
		score += 5
	}

	if match.Statistics.Home.Fouls != nil && match.Statistics.Away.Fouls != nil {
		if *match.Statistics.Home.Fouls+*match.Statistics.Away.Fouls > 25 {
			score -= 5
		}
	}

	// 接近五五开的控球僵局
	if match.Statistics.Home.Possession != nil && match.Statistics.Away.Possession != nil {
		diff := *match.Statistics.Home.Possession - *match.Statistics.Away.Possession
		if diff < 0 {
			diff = -diff
		}
		if diff <= 4 {
			score -= 3
		}
	}

	return score
}

// lookupHistory 查询历史数据,无提供方时返回空
func (e *ScoringEngine) lookupHistory(match *models.CanonicalMatch) LateGoalHistory {
	if e.history == nil {
		return LateGoalHistory{}
	}
	return e.history.LateGoalHistory(match)
}

// confidence 置信度 (0-100)
//
// 衡量输入数据的完备程度,不是预测准确率: 起点 30,
// 数据项每确认一类加固定增量。
func (e *ScoringEngine) confidence(match *models.CanonicalMatch, history LateGoalHistory) float64 {
	confidence := 30.0

	if match.Statistics.Authoritative {
		confidence += 25
	}
	if total, ok := match.Statistics.TotalShots(); ok && total > 0 {
		confidence += 10
	}
	if totalXG, ok := match.Statistics.TotalExpectedGoals(); ok && totalXG > 0 {
		confidence += 10
	}

	switch match.Momentum.Quality {
	case models.DataQualityReal:
		confidence += 10
	case models.DataQualityPartial:
		confidence += 5
	}

	if history.HomeRate != nil || history.AwayRate != nil || history.H2HRate != nil {
		confidence += 10
	}
	if match.Minute >= 70 {
		confidence += 5
	}

	return clamp(confidence, 0, 100)
}

// buildAlerts 由因子拆解派生告警文本,不携带独立状态
func (e *ScoringEngine) buildAlerts(match *models.CanonicalMatch, result *models.ScoreResult) []string {
	var alerts []string

	highBar := 90.0
	if result.Augmented {
		highBar = 105.0
	}
	if result.Total >= highBar {
		alerts = append(alerts, "very high probability of late goal")
	}

	if result.StrongTeamLosing {
		alerts = append(alerts, "strong team behind")
	}

	diff := match.GoalDiff()
	if diff < 0 {
		diff = -diff
	}
	if match.Minute >= 75 && diff == 1 {
		alerts = append(alerts, "critical time, one-goal margin")
	}

	if totalXG, ok := match.Statistics.TotalExpectedGoals(); ok {
		if totalXG > float64(match.TotalGoals())*1.5 && totalXG > 0 {
			alerts = append(alerts, fmt.Sprintf("expected-goals debt: %.2f xG vs %d goals", totalXG, match.TotalGoals()))
		}
	}

	homeReds, awayReds := match.RedCardCounts()
	if homeReds != awayReds {
		alerts = append(alerts, "numerical advantage after red card")
	}

	return alerts
}

// starsFor 星级 (1-5),两套阈值表按变体选择
func starsFor(total float64, augmented bool) int {
	thresholds := starThresholdsBase
	if augmented {
		thresholds = starThresholdsAugmented
	}
	for i, threshold := range thresholds {
		if total >= threshold {
			return 5 - i
		}
	}
	return 1
}

// recommendationFor 建议档位,两套阈值表按变体选择
func recommendationFor(total float64, augmented bool) models.Recommendation {
	thresholds := recThresholdsBase
	if augmented {
		thresholds = recThresholdsAugmented
	}
	switch {
	case total >= thresholds[0]:
		return models.RecommendStrongBuy
	case total >= thresholds[1]:
		return models.RecommendBuy
	case total >= thresholds[2]:
		return models.RecommendHold
	}
	return models.RecommendAvoid
}

// clamp 截断到闭区间
func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
