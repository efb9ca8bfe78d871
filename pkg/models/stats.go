package models

import "strings"

// StatType 统计项的封闭枚举
//
// 上游统计项类型是自由文本("Total Shots"、"Ball Possession" 等),
// 入库时统一映射到该枚举,下游代码不再匹配原始字符串。
type StatType string

const (
	StatShotsTotal       StatType = "shots_total"
	StatShotsOnTarget    StatType = "shots_on_target"
	StatPossession       StatType = "possession"
	StatCorners          StatType = "corners"
	StatDangerousAttacks StatType = "dangerous_attacks"
	StatExpectedGoals    StatType = "expected_goals"
	StatFouls            StatType = "fouls"
)

// CriticalStatTypes 判定统计数据真实性时的关键统计项
var CriticalStatTypes = []StatType{
	StatShotsTotal,
	StatShotsOnTarget,
	StatPossession,
	StatCorners,
}

// statLabelMap 上游自由文本标签到枚举的映射表
var statLabelMap = map[string]StatType{
	"total shots":       StatShotsTotal,
	"shots total":       StatShotsTotal,
	"shots on goal":     StatShotsOnTarget,
	"shots on target":   StatShotsOnTarget,
	"ball possession":   StatPossession,
	"possession":        StatPossession,
	"corner kicks":      StatCorners,
	"corners":           StatCorners,
	"dangerous attacks": StatDangerousAttacks,
	"expected_goals":    StatExpectedGoals,
	"expected goals":    StatExpectedGoals,
	"xg":                StatExpectedGoals,
	"fouls":             StatFouls,
}

// MapStatLabel 将上游统计项标签映射为枚举
// 未知标签返回 false,调用方应忽略该项而不是报错
func MapStatLabel(label string) (StatType, bool) {
	t, ok := statLabelMap[strings.ToLower(strings.TrimSpace(label))]
	return t, ok
}

// TeamStats 单队结构化统计
// 指针字段为 nil 表示上游未提供该项
type TeamStats struct {
	Shots            *int     `json:"shots,omitempty"`
	ShotsOnTarget    *int     `json:"shots_on_target,omitempty"`
	Possession       *float64 `json:"possession,omitempty"` // 百分比 0-100
	Corners          *int     `json:"corners,omitempty"`
	DangerousAttacks *int     `json:"dangerous_attacks,omitempty"`
	ExpectedGoals    *float64 `json:"expected_goals,omitempty"`
	Fouls            *int     `json:"fouls,omitempty"`
}

// MatchStatistics 两队结构化统计
type MatchStatistics struct {
	Home TeamStats `json:"home"`
	Away TeamStats `json:"away"`

	// Authoritative 统计数据是否来自真实采集(通过验证)
	Authoritative bool `json:"authoritative"`
}

// TotalShots 两队射门合计,任一队缺失返回 false
func (m *MatchStatistics) TotalShots() (int, bool) {
	if m.Home.Shots == nil || m.Away.Shots == nil {
		return 0, false
	}
	return *m.Home.Shots + *m.Away.Shots, true
}

// TotalExpectedGoals 两队预期进球合计,任一队缺失返回 false
func (m *MatchStatistics) TotalExpectedGoals() (float64, bool) {
	if m.Home.ExpectedGoals == nil || m.Away.ExpectedGoals == nil {
		return 0, false
	}
	return *m.Home.ExpectedGoals + *m.Away.ExpectedGoals, true
}
