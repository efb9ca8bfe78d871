package services

import (
	"testing"

	"goalscan-service/pkg/models"
)

func TestFixtureHistoryMovementContext(t *testing.T) {
	prev := &models.OddsSnapshot{
		Status: models.FetchStatusSuccess,
		MainLine: &models.OverUnderLine{
			Line: 2.5, Over: floatP(1.95), Under: floatP(1.85),
		},
	}
	hist := &fixtureHistory{prevOdds: prev, repricingCount: 3}

	ctx := hist.movementContext()
	if ctx.Previous != prev {
		t.Error("expected previous snapshot carried into the context")
	}
	if ctx.RepricingCount != 3 {
		t.Errorf("RepricingCount = %d, want 3", ctx.RepricingCount)
	}
	// 单一赔率商上游无法观察跨商同向移动,该信号必须保持无数据,
	// 不能由本方重报价计数推导
	if ctx.CrossBookDrift != nil {
		t.Errorf("CrossBookDrift = %v, want nil", *ctx.CrossBookDrift)
	}
}

func TestMovementContextRepricingBonusOnly(t *testing.T) {
	match := liveMatch(78, 1, 1)
	match.Odds = &models.OddsSnapshot{
		Status: models.FetchStatusSuccess,
		MainLine: &models.OverUnderLine{
			Line: 2.5, Over: floatP(1.90), Under: floatP(1.90),
		},
	}
	hist := &fixtureHistory{
		prevOdds: &models.OddsSnapshot{
			Status: models.FetchStatusSuccess,
			MainLine: &models.OverUnderLine{
				Line: 2.5, Over: floatP(1.91), Under: floatP(1.89),
			},
		},
		repricingCount: 2,
	}

	factor, available := oddsMovementFactor(match, hist.movementContext())
	if !available {
		t.Fatal("previous snapshot supplied, expected factor available")
	}
	// 主盘价格变动不足 2%,仅重报价计数加 8 分;
	// 跨商信号无数据时不得叠加其 12 分
	if factor != 8 {
		t.Errorf("odds-movement factor = %.1f, want 8", factor)
	}
}
