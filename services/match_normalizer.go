package services

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

// momentumWindowMinutes 近期走势窗口长度(分钟)
const momentumWindowMinutes = 20

// NormalizerInput 归一化器输入
//
// 同一轮抓取的原始载荷必须整体传入 — 验证与解析永远基于同一份快照,
// 管线中途不重新抓取。两个基准快照由调用方(轮询协调器)从历史缓存提供,
// 缺失时对应的走势字段为空。
type NormalizerInput struct {
	Fixture    *apifootball.FixtureRecord
	Stats      []apifootball.TeamStatistics
	Events     []apifootball.MatchEvent
	Odds       *models.OddsSnapshot
	Validation *models.ValidationResult

	// WindowBaseline 约 20 分钟前的统一快照,用于近期射门窗口
	WindowBaseline *models.CanonicalMatch

	// HalfTimeBaseline 半场结束时的统一快照,用于上下半场强度比
	HalfTimeBaseline *models.CanonicalMatch
}

// MatchNormalizer 比赛归一化器
//
// 把原始赛程/统计/事件与解析器输出、验证结论合并为统一的 CanonicalMatch,
// 并在统计缺失或可疑时打上不可评分标记。
type MatchNormalizer struct{}

// NewMatchNormalizer 创建比赛归一化器
func NewMatchNormalizer() *MatchNormalizer {
	return &MatchNormalizer{}
}

// Normalize 组装统一比赛聚合
func (n *MatchNormalizer) Normalize(input NormalizerInput) *models.CanonicalMatch {
	match := &models.CanonicalMatch{
		Odds:       input.Odds,
		CapturedAt: time.Now(),
	}
	if input.Validation != nil {
		match.Validation = *input.Validation
	}

	if input.Fixture != nil {
		match.FixtureID = input.Fixture.Fixture.ID
		match.LeagueID = input.Fixture.League.ID
		match.LeagueName = input.Fixture.League.Name
		match.Home = models.Team{ID: input.Fixture.Teams.Home.ID, Name: input.Fixture.Teams.Home.Name}
		match.Away = models.Team{ID: input.Fixture.Teams.Away.ID, Name: input.Fixture.Teams.Away.Name}
		match.Status = mapFixtureStatus(input.Fixture.Fixture.Status.Short)
		if input.Fixture.Fixture.Status.Elapsed != nil {
			match.Minute = *input.Fixture.Fixture.Status.Elapsed
		}
		if input.Fixture.Goals.Home != nil {
			match.Score.Home = *input.Fixture.Goals.Home
		}
		if input.Fixture.Goals.Away != nil {
			match.Score.Away = *input.Fixture.Goals.Away
		}
	}

	match.Statistics = n.normalizeStatistics(input, match)
	match.Events = normalizeEvents(input.Events)
	match.Momentum = n.deriveMomentum(input, match)

	n.applyScoreability(match)

	return match
}

// normalizeStatistics 自由文本统计项经映射表转为结构化统计
func (n *MatchNormalizer) normalizeStatistics(input NormalizerInput, match *models.CanonicalMatch) models.MatchStatistics {
	stats := models.MatchStatistics{
		Authoritative: input.Validation != nil && input.Validation.StatsReal,
	}

	if home := findTeamStatistics(input.Stats, match.Home.ID); home != nil {
		stats.Home = mapTeamStats(home)
	}
	if away := findTeamStatistics(input.Stats, match.Away.ID); away != nil {
		stats.Away = mapTeamStats(away)
	}

	return stats
}

// mapTeamStats 单队统计映射,未知标签直接忽略
func mapTeamStats(ts *apifootball.TeamStatistics) models.TeamStats {
	var out models.TeamStats

	for _, entry := range ts.Statistics {
		statType, ok := models.MapStatLabel(entry.Type)
		if !ok {
			continue
		}
		value := parseStatValue(entry.Value)
		if value == nil {
			continue
		}

		switch statType {
		case models.StatShotsTotal:
			out.Shots = intPtr(int(*value))
		case models.StatShotsOnTarget:
			out.ShotsOnTarget = intPtr(int(*value))
		case models.StatPossession:
			out.Possession = value
		case models.StatCorners:
			out.Corners = intPtr(int(*value))
		case models.StatDangerousAttacks:
			out.DangerousAttacks = intPtr(int(*value))
		case models.StatExpectedGoals:
			out.ExpectedGoals = value
		case models.StatFouls:
			out.Fouls = intPtr(int(*value))
		}
	}

	return out
}

// parseStatValue 解析多态统计值: 数字 / "55%" / "0.82" / null
func parseStatValue(raw json.RawMessage) *float64 {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return nil
	}

	s = strings.Trim(s, `"`)
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// normalizeEvents 事件列表转统一模型
func normalizeEvents(events []apifootball.MatchEvent) []models.MatchEvent {
	if events == nil {
		return nil
	}

	out := make([]models.MatchEvent, 0, len(events))
	for _, ev := range events {
		normalized := models.MatchEvent{
			Minute:     ev.Time.Elapsed,
			TeamID:     ev.Team.ID,
			Type:       models.EventType(ev.Type),
			Detail:     ev.Detail,
			PlayerName: ev.Player.Name,
			AssistName: ev.Assist.Name,
		}
		if ev.Time.Extra != nil {
			normalized.ExtraTime = *ev.Time.Extra
		}
		out = append(out, normalized)
	}
	return out
}

// deriveMomentum 从历史基准快照推导近期走势
//
// 每个字段只在底层数据确实存在时填充;没有足够旧的基准就保持 nil,
// 评分引擎对应子项记 0 分而不是使用默认值。
func (n *MatchNormalizer) deriveMomentum(input NormalizerInput, match *models.CanonicalMatch) models.MomentumWindow {
	window := models.MomentumWindow{
		WindowMinutes: momentumWindowMinutes,
		Quality:       models.DataQualityUnavailable,
	}

	if !match.Statistics.Authoritative {
		return window
	}
	window.Quality = models.DataQualityPartial

	// 近窗口射门: 当前合计减去基准快照合计
	if input.WindowBaseline != nil {
		nowTotal, nowOK := match.Statistics.TotalShots()
		baseTotal, baseOK := input.WindowBaseline.Statistics.TotalShots()
		age := match.Minute - input.WindowBaseline.Minute
		if nowOK && baseOK && age >= momentumWindowMinutes-5 {
			recent := nowTotal - baseTotal
			if recent < 0 {
				recent = 0
			}
			window.RecentShots = &recent
			window.Quality = models.DataQualityReal
		}
	}

	// 上下半场强度比: 以半场基准计算每分钟射门强度
	if input.HalfTimeBaseline != nil && match.Minute > 45 {
		nowTotal, nowOK := match.Statistics.TotalShots()
		htTotal, htOK := input.HalfTimeBaseline.Statistics.TotalShots()
		if nowOK && htOK && htTotal > 0 {
			secondHalfMinutes := float64(match.Minute - 45)
			if secondHalfMinutes > 0 {
				firstHalfRate := float64(htTotal) / 45.0
				secondHalfRate := float64(nowTotal-htTotal) / secondHalfMinutes
				if firstHalfRate > 0 {
					ratio := secondHalfRate / firstHalfRate
					window.HalfIntensityRatio = &ratio
				}
			}
		}
	}

	// 落后一方的近期控球率
	switch match.LosingSide() {
	case "home":
		window.LosingSidePossession = match.Statistics.Home.Possession
	case "away":
		window.LosingSidePossession = match.Statistics.Away.Possession
	}

	return window
}

// applyScoreability 设置不可评分标记
//
// 双方开赛 10 分钟后都是零射门,按采集故障处理而不是真实的 0-0 沉闷局面。
func (n *MatchNormalizer) applyScoreability(match *models.CanonicalMatch) {
	home := match.Statistics.Home
	away := match.Statistics.Away

	if home.Shots == nil && away.Shots == nil &&
		home.Possession == nil && away.Possession == nil {
		match.Unscoreable = true
		match.NoStatsReason = models.NoStatsReasonMissing
		return
	}

	if !match.Statistics.Authoritative {
		match.Unscoreable = true
		match.NoStatsReason = models.NoStatsReasonUnverified
		return
	}

	if match.Minute > 10 &&
		home.Shots != nil && away.Shots != nil &&
		*home.Shots == 0 && *away.Shots == 0 {
		match.Unscoreable = true
		match.NoStatsReason = models.NoStatsReasonZeroShots
	}
}

// mapFixtureStatus 上游状态码映射为统一状态
func mapFixtureStatus(short string) models.MatchStatus {
	switch short {
	case "NS", "TBD":
		return models.MatchStatusNotStarted
	case "1H":
		return models.MatchStatusFirstHalf
	case "HT":
		return models.MatchStatusHalfTime
	case "2H":
		return models.MatchStatusSecondHalf
	case "ET", "BT":
		return models.MatchStatusExtraTime
	case "P", "PEN":
		return models.MatchStatusPenalties
	case "FT", "AET":
		return models.MatchStatusFinished
	case "SUSP", "ABD", "CANC", "PST":
		return models.MatchStatusAbandoned
	}
	return models.MatchStatusUnknown
}

// intPtr 整数指针辅助
func intPtr(v int) *int { return &v }
