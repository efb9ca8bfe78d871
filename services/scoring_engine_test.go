package services

import (
	"strings"
	"testing"
	"time"

	"goalscan-service/pkg/models"
)

func intP(v int) *int           { return &v }
func floatP(v float64) *float64 { return &v }

// stubHistory 固定返回值的历史数据提供方
type stubHistory struct {
	history LateGoalHistory
}

func (s *stubHistory) LateGoalHistory(match *models.CanonicalMatch) LateGoalHistory {
	return s.history
}

func liveMatch(minute, homeGoals, awayGoals int) *models.CanonicalMatch {
	return &models.CanonicalMatch{
		FixtureID: 1001,
		Home:      models.Team{ID: 10, Name: "Home FC"},
		Away:      models.Team{ID: 20, Name: "Away FC"},
		Status:    models.MatchStatusSecondHalf,
		Minute:    minute,
		Score:     models.Score{Home: homeGoals, Away: awayGoals},
		Statistics: models.MatchStatistics{
			Home:          models.TeamStats{Shots: intP(8), ShotsOnTarget: intP(3)},
			Away:          models.TeamStats{Shots: intP(6), ShotsOnTarget: intP(2)},
			Authoritative: true,
		},
		CapturedAt: time.Now(),
	}
}

func TestScoreBalancedDraw(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(80, 1, 1)

	result := engine.Score(match)

	if !result.Scoreable {
		t.Fatalf("expected scoreable result, got reason %s", result.UnscoreableReason)
	}
	if result.Factors.ScoreState != 18 {
		t.Errorf("expected score-state factor 18 for a draw, got %.1f", result.Factors.ScoreState)
	}
	if result.StrongTeamLosing {
		t.Error("no handicap data, strong-team-losing should be false")
	}
	for _, alert := range result.Alerts {
		if strings.Contains(alert, "strong team behind") {
			t.Errorf("unexpected strong-team alert: %s", alert)
		}
	}
}

func TestScoreFavoredSideBehind(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(82, 0, 1)
	match.Odds = &models.OddsSnapshot{
		Status:       models.FetchStatusSuccess,
		HandicapLine: floatP(-1.5),
	}

	result := engine.Score(match)

	if !result.StrongTeamLosing {
		t.Error("home favored by -1.5 and losing, expected strong-team-losing flag")
	}
	// 一球差 +12 与强队落后 +15 合计 27,截断到因子上限 25
	if result.Factors.ScoreState != 25 {
		t.Errorf("expected score-state factor clamped to 25, got %.1f", result.Factors.ScoreState)
	}

	hasStrongAlert := false
	hasCriticalAlert := false
	for _, alert := range result.Alerts {
		if strings.Contains(alert, "strong team behind") {
			hasStrongAlert = true
		}
		if strings.Contains(alert, "critical time") {
			hasCriticalAlert = true
		}
	}
	if !hasStrongAlert {
		t.Error("expected strong-team-behind alert")
	}
	if !hasCriticalAlert {
		t.Error("minute 82 with one-goal margin, expected critical-time alert")
	}
}

func TestScoreUnscoreableMatch(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(35, 0, 0)
	match.Unscoreable = true
	match.NoStatsReason = models.NoStatsReasonZeroShots

	result := engine.Score(match)

	if result.Scoreable {
		t.Fatal("unscoreable match must not produce a numeric score")
	}
	if result.UnscoreableReason != models.NoStatsReasonZeroShots {
		t.Errorf("expected reason %s, got %s", models.NoStatsReasonZeroShots, result.UnscoreableReason)
	}
	if result.Total != 0 || result.Stars != 0 {
		t.Error("not-scoreable result must not carry score fields")
	}
}

func TestScoreBounded(t *testing.T) {
	history := &stubHistory{history: LateGoalHistory{
		HomeRate: floatP(0.40),
		AwayRate: floatP(0.35),
		H2HRate:  floatP(0.8),
	}}
	engine := NewScoringEngine(history)

	// 把所有因子推到上限的极端场面
	match := liveMatch(85, 1, 1)
	match.Statistics.Home = models.TeamStats{
		Shots:            intP(20),
		ShotsOnTarget:    intP(10),
		Possession:       floatP(62),
		Corners:          intP(9),
		DangerousAttacks: intP(60),
		ExpectedGoals:    floatP(2.8),
	}
	match.Statistics.Away = models.TeamStats{
		Shots:            intP(12),
		ShotsOnTarget:    intP(6),
		Possession:       floatP(38),
		Corners:          intP(5),
		DangerousAttacks: intP(30),
		ExpectedGoals:    floatP(1.4),
	}
	match.Momentum = models.MomentumWindow{
		WindowMinutes:      20,
		RecentShots:        intP(7),
		HalfIntensityRatio: floatP(2.1),
		Quality:            models.DataQualityReal,
	}
	match.Events = []models.MatchEvent{
		{Minute: 55, TeamID: 20, Type: models.EventCard, Detail: "Red Card"},
		{Minute: 81, TeamID: 10, Type: models.EventSubstitution},
	}

	result := engine.Score(match)

	if result.Total > 100 {
		t.Errorf("base variant total must not exceed 100, got %.1f", result.Total)
	}
	if result.Total < 0 {
		t.Errorf("total must not be negative, got %.1f", result.Total)
	}
	if result.Factors.AttackVolume > 30 {
		t.Errorf("attack-volume factor exceeds its cap: %.1f", result.Factors.AttackVolume)
	}
	if result.Factors.Momentum > 35 {
		t.Errorf("momentum factor exceeds its cap: %.1f", result.Factors.Momentum)
	}
	if result.Factors.Historical > 25 {
		t.Errorf("historical factor exceeds its cap: %.1f", result.Factors.Historical)
	}
	if result.Factors.OddsMovement != nil {
		t.Error("base variant must not carry an odds-movement factor")
	}
	if result.Confidence > 100 {
		t.Errorf("confidence exceeds 100: %.1f", result.Confidence)
	}
}

func TestScoreMomentumGatedOnAvailability(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(75, 0, 0)
	match.Momentum = models.MomentumWindow{Quality: models.DataQualityUnavailable}

	result := engine.Score(match)

	if result.Factors.Momentum != 0 {
		t.Errorf("momentum data unavailable, factor should be 0, got %.1f", result.Factors.Momentum)
	}
}

func TestScoreAugmentedWithoutHistorySkipsOddsFactor(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(78, 1, 1)

	result := engine.ScoreAugmented(match, &OddsMovementContext{})

	if !result.Augmented {
		t.Error("expected augmented result")
	}
	if result.Factors.OddsMovement != nil {
		t.Error("no previous snapshot, odds-movement factor should be absent")
	}
}

func TestScoreAugmentedOddsMovement(t *testing.T) {
	engine := NewScoringEngine(nil)
	match := liveMatch(78, 1, 1)
	match.Odds = &models.OddsSnapshot{
		Status:       models.FetchStatusSuccess,
		HandicapLine: floatP(-0.5),
		MainLine: &models.OverUnderLine{
			Line: 2.5, Over: floatP(1.80), Under: floatP(2.00),
		},
	}
	drift := true
	ctx := &OddsMovementContext{
		Previous: &models.OddsSnapshot{
			Status:       models.FetchStatusSuccess,
			HandicapLine: floatP(-1.0),
			MainLine: &models.OverUnderLine{
				Line: 2.5, Over: floatP(1.95), Under: floatP(1.85),
			},
		},
		RepricingCount: 2,
		CrossBookDrift: &drift,
	}

	result := engine.ScoreAugmented(match, ctx)

	if result.Factors.OddsMovement == nil {
		t.Fatal("previous snapshot supplied, expected odds-movement factor")
	}
	// 盘口收紧 +10, 大球价格下行 +8, 多商同向 +12, 重报价 +8 合计 38,
	// 截断到因子上限 20
	if *result.Factors.OddsMovement != 20 {
		t.Errorf("expected odds-movement factor clamped to 20, got %.1f", *result.Factors.OddsMovement)
	}
	if result.Total > 120 {
		t.Errorf("augmented total must not exceed 120, got %.1f", result.Total)
	}
}

func TestConfidenceAccumulation(t *testing.T) {
	history := &stubHistory{history: LateGoalHistory{HomeRate: floatP(0.25)}}
	engine := NewScoringEngine(history)

	match := liveMatch(72, 1, 0)
	match.Statistics.Home.ExpectedGoals = floatP(1.2)
	match.Statistics.Away.ExpectedGoals = floatP(0.8)
	match.Momentum = models.MomentumWindow{
		RecentShots: intP(2),
		Quality:     models.DataQualityReal,
	}

	result := engine.Score(match)

	// 30 基础 + 25 权威统计 + 10 射门 + 10 xG + 10 走势 + 10 历史 + 5 晚场
	if result.Confidence != 100 {
		t.Errorf("expected confidence 100, got %.1f", result.Confidence)
	}
}

func TestStarsAndRecommendationTables(t *testing.T) {
	cases := []struct {
		total     float64
		augmented bool
		stars     int
		rec       models.Recommendation
	}{
		{95, false, 5, models.RecommendStrongBuy},
		{78, false, 4, models.RecommendBuy},
		{62, false, 3, models.RecommendHold},
		{50, false, 2, models.RecommendHold},
		{30, false, 1, models.RecommendAvoid},
		{110, true, 5, models.RecommendStrongBuy},
		{90, true, 4, models.RecommendBuy},
		{60, true, 2, models.RecommendHold},
	}

	for _, c := range cases {
		if got := starsFor(c.total, c.augmented); got != c.stars {
			t.Errorf("starsFor(%.0f, %v) = %d, want %d", c.total, c.augmented, got, c.stars)
		}
		if got := recommendationFor(c.total, c.augmented); got != c.rec {
			t.Errorf("recommendationFor(%.0f, %v) = %s, want %s", c.total, c.augmented, got, c.rec)
		}
	}
}
