package models

import "time"

// ScanTier 扫描器推荐档位,仅由满足的规则数量决定
type ScanTier string

const (
	ScanTierStrong   ScanTier = "STRONG"
	ScanTierModerate ScanTier = "MODERATE"
	ScanTierWeak     ScanTier = "WEAK"
	ScanTierNone     ScanTier = "NONE"
)

// RuleOutcome 单条扫描规则的判定
type RuleOutcome struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Reason string `json:"reason"`
}

// ScannerResult 结构性失衡扫描器输出
type ScannerResult struct {
	FixtureID int  `json:"fixture_id"`
	Matched   bool `json:"matched"`

	Rules     []RuleOutcome `json:"rules"`
	Satisfied []string      `json:"satisfied"`
	Failed    []string      `json:"failed"`

	// ImbalanceScore 0-100 的结构性失衡线性组合
	ImbalanceScore float64 `json:"imbalance_score"`

	// DominantSide home / away / balanced
	DominantSide string `json:"dominant_side"`

	Tier ScanTier `json:"tier"`

	ComputedAt time.Time `json:"computed_at"`
}
