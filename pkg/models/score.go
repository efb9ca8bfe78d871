package models

import "time"

// Recommendation 评分建议档位
type Recommendation string

const (
	RecommendStrongBuy Recommendation = "STRONG_BUY"
	RecommendBuy       Recommendation = "BUY"
	RecommendHold      Recommendation = "HOLD"
	RecommendAvoid     Recommendation = "AVOID"
)

// FactorBreakdown 各评分因子得分
//
// 每个因子有文档约定的取值区间,评分引擎在写入前逐项截断:
// ScoreState -10..+25, AttackVolume 0..+30, Momentum 0..+35,
// Historical 0..+25, SpecialEvents -20..+20, OddsMovement -10..+20。
// OddsMovement 仅在增强评分变体中出现,无历史快照时为 nil。
type FactorBreakdown struct {
	ScoreState    float64  `json:"score_state"`
	AttackVolume  float64  `json:"attack_volume"`
	Momentum      float64  `json:"momentum"`
	Historical    float64  `json:"historical"`
	SpecialEvents float64  `json:"special_events"`
	OddsMovement  *float64 `json:"odds_movement,omitempty"`
}

// ScoreResult 评分引擎输出
//
// Scoreable == false 时不携带数值评分,只携带不可评分原因;
// 数值评分与"无法评分"永远不会混用同一表达。
type ScoreResult struct {
	FixtureID int  `json:"fixture_id"`
	Scoreable bool `json:"scoreable"`

	// Scoreable == false 时填写
	UnscoreableReason string `json:"unscoreable_reason,omitempty"`

	// 以下字段仅在 Scoreable == true 时有效
	Total            float64         `json:"total"`
	Factors          FactorBreakdown `json:"factors"`
	Stars            int             `json:"stars"` // 1-5
	Recommendation   Recommendation  `json:"recommendation"`
	StrongTeamLosing bool            `json:"strong_team_losing"`
	Alerts           []string        `json:"alerts,omitempty"`

	// Confidence 0-100,衡量输入数据的完备程度,不代表预测准确率
	Confidence float64 `json:"confidence"`

	// Augmented 是否为包含赔率变动因子的增强变体 (上限 120)
	Augmented bool `json:"augmented"`

	ComputedAt time.Time `json:"computed_at"`
}

// NotScoreable 构造不可评分结果
func NotScoreable(fixtureID int, reason string) *ScoreResult {
	return &ScoreResult{
		FixtureID:         fixtureID,
		Scoreable:         false,
		UnscoreableReason: reason,
		ComputedAt:        time.Now(),
	}
}
