package models

// QualityTier 数据质量等级
type QualityTier string

const (
	// TierReal 赛程/统计/赔率全部验证为真实数据
	TierReal QualityTier = "REAL"

	// TierPartial 赛程真实但统计或赔率不完整
	TierPartial QualityTier = "PARTIAL"

	// TierInvalid 赛程本身无效,整场数据不可用
	TierInvalid QualityTier = "INVALID"
)

// ValidationResult 单场比赛的数据质量判定
//
// 不变式: Tier == REAL 当且仅当 FixtureReal && StatsReal && OddsReal;
// Tier == INVALID 当且仅当 !FixtureReal;其余为 PARTIAL。
// 下游只有在 Tier != INVALID 时才允许落库。
type ValidationResult struct {
	FixtureReal bool `json:"fixture_real"`
	StatsReal   bool `json:"stats_real"`
	OddsReal    bool `json:"odds_real"`
	EventsReal  bool `json:"events_real"`

	Tier QualityTier `json:"tier"`

	// InvalidReasons 机器可读的失败原因,带来源前缀
	// (FIXTURE: / STATS: / ODDS:)。只收录参与质量等级判定的
	// 三类来源,因此 Tier == REAL 时该列表必为空。
	InvalidReasons []string `json:"invalid_reasons,omitempty"`

	// Diagnostics 不参与质量等级判定的检查结论 (EVENTS:),
	// 事件列表缺失只在此记录,不拉低等级。
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Persistable 数据是否允许落库
func (r *ValidationResult) Persistable() bool {
	return r != nil && r.Tier != TierInvalid
}
