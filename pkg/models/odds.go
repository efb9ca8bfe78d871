package models

import "time"

// FetchStatus 赔率抓取状态
type FetchStatus string

const (
	FetchStatusSuccess    FetchStatus = "success"
	FetchStatusEmpty      FetchStatus = "empty"
	FetchStatusError      FetchStatus = "error"
	FetchStatusNotFetched FetchStatus = "not_fetched"
)

// OverUnderLine 大小球盘口线
type OverUnderLine struct {
	Line   float64  `json:"line"`
	Over   *float64 `json:"over,omitempty"`
	Under  *float64 `json:"under,omitempty"`
	IsMain bool     `json:"is_main"`
}

// Priced 两侧赔率是否齐全
func (l *OverUnderLine) Priced() bool {
	return l != nil && l.Over != nil && l.Under != nil
}

// OddsSnapshot 统一的赔率快照
//
// 每场比赛每次抓取产生一个快照,解析后不再修改,下一轮轮询产生新快照替代。
// 不变式: Status == success 时 1X2/大小球/让球 三类盘口至少一类非空;
// empty/error 快照不携带任何价格数据。
type OddsSnapshot struct {
	FixtureID int `json:"fixture_id"`

	// 1X2 独赢盘
	Home *float64 `json:"home,omitempty"`
	Draw *float64 `json:"draw,omitempty"`
	Away *float64 `json:"away,omitempty"`

	// 大小球: 全部可用盘口线(按线值升序,去重)与主盘口线
	Lines    []OverUnderLine `json:"lines,omitempty"`
	MainLine *OverUnderLine  `json:"main_line,omitempty"`

	// 固定线位(兼容旧版展示)
	Over15  *float64 `json:"over_1_5,omitempty"`
	Under15 *float64 `json:"under_1_5,omitempty"`
	Over25  *float64 `json:"over_2_5,omitempty"`
	Under25 *float64 `json:"under_2_5,omitempty"`
	Over35  *float64 `json:"over_3_5,omitempty"`
	Under35 *float64 `json:"under_3_5,omitempty"`

	// 亚洲让球盘 (线值以主队为准,负数表示主队让球)
	HandicapLine *float64 `json:"handicap_line,omitempty"`
	HandicapHome *float64 `json:"handicap_home,omitempty"`
	HandicapAway *float64 `json:"handicap_away,omitempty"`

	// 来源信息
	IsLive     bool        `json:"is_live"`
	Bookmaker  string      `json:"bookmaker,omitempty"`
	CapturedAt time.Time   `json:"captured_at"`
	Status     FetchStatus `json:"status"`

	// RawAvailable 快照是否携带可用价格数据
	RawAvailable bool `json:"raw_available"`
}

// HasAnyMarket 是否存在任一已定价盘口
func (s *OddsSnapshot) HasAnyMarket() bool {
	if s == nil {
		return false
	}
	return s.Home != nil || s.MainLine.Priced() || s.HandicapLine != nil
}

// FavoredSide 根据让球线判断盘口看好的一方
// 返回 "home" / "away",无让球数据或让球线为零时返回 ""
func (s *OddsSnapshot) FavoredSide() string {
	if s == nil || s.HandicapLine == nil || *s.HandicapLine == 0 {
		return ""
	}
	if *s.HandicapLine < 0 {
		return "home"
	}
	return "away"
}

// EmptySnapshot 构造一个不携带价格数据的快照
func EmptySnapshot(fixtureID int, isLive bool, status FetchStatus) *OddsSnapshot {
	return &OddsSnapshot{
		FixtureID:  fixtureID,
		IsLive:     isLive,
		CapturedAt: time.Now(),
		Status:     status,
	}
}
