package services

import (
	"math"

	"goalscan-service/pkg/models"
)

// 盘口变动判定参数
const (
	// 主盘大球价格变动超过该比例视为一次显著重报价
	repricingThreshold = 0.05

	// 大球价格下行超过该比例视为市场向"有球"方向移动
	overPriceDropThreshold = 0.02

	// 市场隐含总进球与 xG 外推总进球的分歧阈值
	marketXGDivergence = 0.75
)

// OddsMovementContext 赔率变动因子的外部输入
//
// 本流水线单轮只产出当前快照,变动判定需要的历史由轮询方维护:
// Previous 为同一比赛上一轮的赔率快照,RepricingCount 为轮询方
// 累计观察到的显著重报价次数,CrossBookDrift 为多家赔率商同向
// 移动的外部信号 (nil 表示无此数据)。
type OddsMovementContext struct {
	Previous       *models.OddsSnapshot
	RepricingCount int
	CrossBookDrift *bool
}

// oddsMovementFactor 赔率变动因子 (-10..+20),仅增强变体使用
//
// 无历史快照时因子整体不可用,返回 available == false,
// 调用方跳过该因子而不是记 0 分后计入拆解。
func oddsMovementFactor(match *models.CanonicalMatch, ctx *OddsMovementContext) (float64, bool) {
	current := match.Odds
	if ctx.Previous == nil || current == nil {
		return 0, false
	}
	if !ctx.Previous.HasAnyMarket() || !current.HasAnyMarket() {
		return 0, false
	}

	score := 0.0

	// 让球盘收紧: 盘口线绝对值向 0 靠拢,市场认为实力差缩小
	if current.HandicapLine != nil && ctx.Previous.HandicapLine != nil {
		currAbs := math.Abs(*current.HandicapLine)
		prevAbs := math.Abs(*ctx.Previous.HandicapLine)
		switch {
		case currAbs < prevAbs:
			score += 10
		case currAbs > prevAbs:
			score -= 5
		}
	}

	// 主盘大球价格走低: 市场向进球方向倾斜
	if current.MainLine.Priced() && ctx.Previous.MainLine.Priced() &&
		current.MainLine.Line == ctx.Previous.MainLine.Line {
		prev := *ctx.Previous.MainLine.Over
		curr := *current.MainLine.Over
		if prev > 0 {
			change := (curr - prev) / prev
			switch {
			case change <= -overPriceDropThreshold:
				score += 8
			case change >= overPriceDropThreshold:
				score -= 5
			}
		}
	}

	if ctx.CrossBookDrift != nil && *ctx.CrossBookDrift {
		score += 12
	}

	if ctx.RepricingCount >= 2 {
		score += 8
	}

	// 市场隐含总进球与 xG 外推的分歧: xG 显示的进球预期
	// 明显高于主盘盘口线时,市场尚未完全消化场面
	if current.MainLine.Priced() && match.Minute > 0 {
		if totalXG, ok := match.Statistics.TotalExpectedGoals(); ok {
			projected := totalXG / float64(match.Minute) * 90
			if projected-current.MainLine.Line > marketXGDivergence {
				score += 6
			}
		}
	}

	return score, true
}

// CountRepricing 判断两个快照间主盘大球价格是否发生显著重报价
//
// 轮询方在每轮抓取后调用,把返回值累加进 OddsMovementContext。
func CountRepricing(previous, current *models.OddsSnapshot) bool {
	if previous == nil || current == nil {
		return false
	}
	if !previous.MainLine.Priced() || !current.MainLine.Priced() {
		return false
	}
	if previous.MainLine.Line != current.MainLine.Line {
		return false
	}
	prev := *previous.MainLine.Over
	if prev <= 0 {
		return false
	}
	return math.Abs(*current.MainLine.Over-prev)/prev > repricingThreshold
}
