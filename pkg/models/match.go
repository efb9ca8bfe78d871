package models

import "time"

// MatchStatus 比赛状态
type MatchStatus string

const (
	MatchStatusNotStarted MatchStatus = "not_started"
	MatchStatusFirstHalf  MatchStatus = "first_half"
	MatchStatusHalfTime   MatchStatus = "half_time"
	MatchStatusSecondHalf MatchStatus = "second_half"
	MatchStatusExtraTime  MatchStatus = "extra_time"
	MatchStatusPenalties  MatchStatus = "penalties"
	MatchStatusFinished   MatchStatus = "finished"
	MatchStatusAbandoned  MatchStatus = "abandoned"
	MatchStatusUnknown    MatchStatus = "unknown"
)

// Live 比赛是否进行中
func (s MatchStatus) Live() bool {
	switch s {
	case MatchStatusFirstHalf, MatchStatusHalfTime, MatchStatusSecondHalf, MatchStatusExtraTime:
		return true
	}
	return false
}

// Team 队伍信息
type Team struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Score 比分
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// EventType 比赛事件类型
type EventType string

const (
	EventGoal         EventType = "Goal"
	EventCard         EventType = "Card"
	EventSubstitution EventType = "subst"
	EventVar          EventType = "Var"
)

// MatchEvent 比赛事件
type MatchEvent struct {
	Minute     int       `json:"minute"`
	ExtraTime  int       `json:"extra_time,omitempty"`
	TeamID     int       `json:"team_id"`
	Type       EventType `json:"type"`
	Detail     string    `json:"detail"` // "Red Card" / "Normal Goal" / "Goal cancelled" 等
	PlayerName string    `json:"player_name,omitempty"`
	AssistName string    `json:"assist_name,omitempty"` // 进球为助攻者,换人为替补上场者
}

// DataQuality 派生数据的可信程度
type DataQuality string

const (
	DataQualityReal        DataQuality = "real"
	DataQualityPartial     DataQuality = "partial"
	DataQualityUnavailable DataQuality = "unavailable"
)

// MomentumWindow 由归一化器从历史快照推导的近期走势数据
//
// 所有字段为可选:缺少足够旧的基准快照时为 nil,评分引擎对应子项记 0 分。
type MomentumWindow struct {
	WindowMinutes int `json:"window_minutes"`

	// RecentShots 两队合计近窗口射门数
	RecentShots *int `json:"recent_shots,omitempty"`

	// HalfIntensityRatio 下半场相对上半场的每分钟射门强度比
	HalfIntensityRatio *float64 `json:"half_intensity_ratio,omitempty"`

	// LosingSidePossession 当前落后一方的近期控球率 (0-100)
	LosingSidePossession *float64 `json:"losing_side_possession,omitempty"`

	Quality DataQuality `json:"quality"`
}

// 归一化器设置的不可评分原因
const (
	NoStatsReasonMissing    = "STATS_MISSING"
	NoStatsReasonUnverified = "STATS_UNVERIFIED"
	NoStatsReasonZeroShots  = "SUSPICIOUS_ZERO_SHOTS"
)

// CanonicalMatch 管线组装出的统一比赛聚合
//
// 由单次管线调用独占构建,下游只读。
type CanonicalMatch struct {
	FixtureID  int    `json:"fixture_id"`
	LeagueID   int    `json:"league_id"`
	LeagueName string `json:"league_name,omitempty"`
	Home       Team   `json:"home"`
	Away       Team   `json:"away"`

	Status MatchStatus `json:"status"`
	Minute int         `json:"minute"`
	Score  Score       `json:"score"`

	Statistics MatchStatistics  `json:"statistics"`
	Events     []MatchEvent     `json:"events,omitempty"`
	Odds       *OddsSnapshot    `json:"odds,omitempty"`
	Validation ValidationResult `json:"validation"`
	Momentum   MomentumWindow   `json:"momentum"`

	// Unscoreable 统计数据缺失或可疑,评分引擎必须拒绝打分
	Unscoreable   bool   `json:"unscoreable"`
	NoStatsReason string `json:"no_stats_reason,omitempty"`

	CapturedAt time.Time `json:"captured_at"`
}

// GoalDiff 主队减客队的净胜球
func (m *CanonicalMatch) GoalDiff() int {
	return m.Score.Home - m.Score.Away
}

// TotalGoals 两队进球合计
func (m *CanonicalMatch) TotalGoals() int {
	return m.Score.Home + m.Score.Away
}

// LosingSide 当前落后一方,平局返回 ""
func (m *CanonicalMatch) LosingSide() string {
	switch {
	case m.Score.Home < m.Score.Away:
		return "home"
	case m.Score.Away < m.Score.Home:
		return "away"
	}
	return ""
}

// RedCardCounts 统计两队红牌数(含两黄变一红)
func (m *CanonicalMatch) RedCardCounts() (home, away int) {
	for _, ev := range m.Events {
		if ev.Type != EventCard {
			continue
		}
		switch ev.Detail {
		case "Red Card", "Second Yellow card":
			if ev.TeamID == m.Home.ID {
				home++
			} else if ev.TeamID == m.Away.ID {
				away++
			}
		}
	}
	return
}

// SubstitutionCounts 统计两队已用换人名额
func (m *CanonicalMatch) SubstitutionCounts() (home, away int) {
	for _, ev := range m.Events {
		if ev.Type != EventSubstitution {
			continue
		}
		if ev.TeamID == m.Home.ID {
			home++
		} else if ev.TeamID == m.Away.ID {
			away++
		}
	}
	return
}

// LastSubstitutionMinute 最近一次换人的分钟数,无换人返回 -1
func (m *CanonicalMatch) LastSubstitutionMinute() int {
	last := -1
	for _, ev := range m.Events {
		if ev.Type == EventSubstitution && ev.Minute > last {
			last = ev.Minute
		}
	}
	return last
}

// HasVarOverturnedGoal 是否存在被 VAR 取消的进球
func (m *CanonicalMatch) HasVarOverturnedGoal() bool {
	for _, ev := range m.Events {
		if ev.Type == EventVar && (ev.Detail == "Goal cancelled" || ev.Detail == "Goal Disallowed") {
			return true
		}
	}
	return false
}
