package services

import (
	"fmt"
	"strings"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

// DataValidator 数据质量验证器
//
// 对一次抓取的四类原始载荷(赛程/统计/赔率/事件)各自独立判定真伪,
// 合成 REAL / PARTIAL / INVALID 三级质量结论。所有子检查都不报错,
// 坏数据只会产生否定结论和带前缀的原因码。
type DataValidator struct{}

// NewDataValidator 创建数据验证器
func NewDataValidator() *DataValidator {
	return &DataValidator{}
}

// Validate 合成四个子检查的结论
//
// 质量等级规则: REAL 当且仅当 赛程∧统计∧赔率 全部真实;
// INVALID 当且仅当 赛程无效;其余为 PARTIAL。
func (v *DataValidator) Validate(
	fixture *apifootball.FixtureRecord,
	stats []apifootball.TeamStatistics,
	odds *apifootball.OddsPayload,
	events []apifootball.MatchEvent,
) *models.ValidationResult {
	result := &models.ValidationResult{}

	var reasons []string

	fixtureReal, fixtureReasons := v.CheckFixture(fixture)
	result.FixtureReal = fixtureReal
	reasons = append(reasons, prefixReasons("FIXTURE", fixtureReasons)...)

	statsReal, statsReasons := v.CheckStatistics(fixture, stats)
	result.StatsReal = statsReal
	reasons = append(reasons, prefixReasons("STATS", statsReasons)...)

	oddsReal, oddsReasons := v.CheckOdds(odds)
	result.OddsReal = oddsReal
	reasons = append(reasons, prefixReasons("ODDS", oddsReasons)...)

	// 事件检查不参与等级判定,结论单独记为诊断信息,
	// 保证 REAL 等级的 InvalidReasons 恒为空
	eventsReal, eventsReasons := v.CheckEvents(events)
	result.EventsReal = eventsReal
	result.Diagnostics = prefixReasons("EVENTS", eventsReasons)

	result.InvalidReasons = reasons

	switch {
	case !result.FixtureReal:
		result.Tier = models.TierInvalid
	case result.FixtureReal && result.StatsReal && result.OddsReal:
		result.Tier = models.TierReal
	default:
		result.Tier = models.TierPartial
	}

	return result
}

// CheckFixture 赛程检查
//
// 赛程 ID / 两队 ID / 联赛 ID 缺一不可;
// 比赛时间与比分在"未开赛"状态下合法为空,其余状态必须存在。
func (v *DataValidator) CheckFixture(fixture *apifootball.FixtureRecord) (bool, []string) {
	if fixture == nil {
		return false, []string{"MISSING"}
	}

	var reasons []string
	if fixture.Fixture.ID == 0 {
		reasons = append(reasons, "NO_FIXTURE_ID")
	}
	if fixture.Teams.Home.ID == 0 || fixture.Teams.Away.ID == 0 {
		reasons = append(reasons, "NO_TEAM_IDS")
	}
	if fixture.League.ID == 0 {
		reasons = append(reasons, "NO_LEAGUE_ID")
	}

	// 未开赛状态下 elapsed 和比分合法为空,属于显式豁免
	notStarted := fixture.Fixture.Status.Short == "NS" || fixture.Fixture.Status.Short == "TBD"
	if !notStarted {
		if fixture.Fixture.Status.Elapsed == nil {
			reasons = append(reasons, "NO_ELAPSED")
		}
		if fixture.Goals.Home == nil || fixture.Goals.Away == nil {
			reasons = append(reasons, "NO_SCORE")
		}
	}

	return len(reasons) == 0, reasons
}

// CheckStatistics 统计检查
//
// 统计列表为空或缺少某队条目即为失败;在此之上,四个关键统计项
// (射门/射正/控球/角球)若有超过一半在两队同时缺失,也判为不真实 —
// 局部缺失可以容忍,整体缺失不行。
func (v *DataValidator) CheckStatistics(fixture *apifootball.FixtureRecord, stats []apifootball.TeamStatistics) (bool, []string) {
	if len(stats) == 0 {
		return false, []string{"EMPTY"}
	}

	var reasons []string

	if fixture != nil {
		for _, teamID := range []int{fixture.Teams.Home.ID, fixture.Teams.Away.ID} {
			if teamID == 0 {
				continue
			}
			if findTeamStatistics(stats, teamID) == nil {
				reasons = append(reasons, fmt.Sprintf("TEAM_%d_MISSING", teamID))
			}
		}
	}
	if len(reasons) > 0 {
		return false, reasons
	}

	missing := 0
	for _, critical := range models.CriticalStatTypes {
		presentAnywhere := false
		for i := range stats {
			if statPresent(&stats[i], critical) {
				presentAnywhere = true
				break
			}
		}
		if !presentAnywhere {
			missing++
		}
	}

	if missing > len(models.CriticalStatTypes)/2 {
		return false, []string{"CRITICAL_MISSING"}
	}

	return true, nil
}

// CheckOdds 赔率检查
//
// 载荷形态判定与解析器一致;1X2/大小球/让球 任一盘口存在定价结果即为真实。
func (v *DataValidator) CheckOdds(odds *apifootball.OddsPayload) (bool, []string) {
	if odds.Empty() {
		return false, []string{"NOT_FETCHED"}
	}

	if odds.IsLive() {
		for _, id := range []int{LiveMarketFulltimeResult, LiveMarketOverUnder, LiveMarketTotalGoals, LiveMarketAsianHandicap} {
			market := findLiveMarket(odds.Live.Odds, id)
			if market == nil {
				continue
			}
			for _, value := range market.Values {
				if !value.Suspended && parsePrice(value.Odd) != nil {
					return true, nil
				}
			}
		}
		return false, []string{"NO_PRICED_MARKETS"}
	}

	for _, bookmaker := range odds.PreMatch.Bookmakers {
		for _, bet := range bookmaker.Bets {
			switch bet.ID {
			case PreMatchBetMatchWinner, PreMatchBetOverUnder, PreMatchBetAsianHandicap:
				for _, value := range bet.Values {
					if parsePrice(value.Odd) != nil {
						return true, nil
					}
				}
			}
		}
	}
	return false, []string{"NO_PRICED_MARKETS"}
}

// CheckEvents 事件检查
//
// 空事件列表是合法状态(比赛确实没有事件发生),只有 nil 列表才失败。
func (v *DataValidator) CheckEvents(events []apifootball.MatchEvent) (bool, []string) {
	if events == nil {
		return false, []string{"NIL"}
	}
	return true, nil
}

// findTeamStatistics 按队伍 ID 查找统计条目
func findTeamStatistics(stats []apifootball.TeamStatistics, teamID int) *apifootball.TeamStatistics {
	for i := range stats {
		if stats[i].Team.ID == teamID {
			return &stats[i]
		}
	}
	return nil
}

// statPresent 队伍统计里是否存在指定类型的非空值
func statPresent(ts *apifootball.TeamStatistics, statType models.StatType) bool {
	for _, entry := range ts.Statistics {
		mapped, ok := models.MapStatLabel(entry.Type)
		if !ok || mapped != statType {
			continue
		}
		if rawValuePresent(entry.Value) {
			return true
		}
	}
	return false
}

// rawValuePresent JSON 原始值是否为非 null 的有效值
func rawValuePresent(raw []byte) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// prefixReasons 给原因码加上来源前缀
func prefixReasons(prefix string, reasons []string) []string {
	if len(reasons) == 0 {
		return nil
	}
	out := make([]string, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, prefix+":"+r)
	}
	return out
}
