package services

import (
	"encoding/json"
	"math"
	"testing"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

func realValidation() *models.ValidationResult {
	return &models.ValidationResult{
		FixtureReal: true,
		StatsReal:   true,
		OddsReal:    true,
		EventsReal:  true,
		Tier:        models.TierReal,
	}
}

func baseline(minute, homeShots, awayShots int) *models.CanonicalMatch {
	return &models.CanonicalMatch{
		Minute: minute,
		Statistics: models.MatchStatistics{
			Home:          models.TeamStats{Shots: intP(homeShots)},
			Away:          models.TeamStats{Shots: intP(awayShots)},
			Authoritative: true,
		},
	}
}

func TestNormalizeFullMatch(t *testing.T) {
	normalizer := NewMatchNormalizer()
	parser := NewOddsParser()

	snap := parser.Parse(validLiveOdds(), 70)
	match := normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      validStats(),
		Events:     []apifootball.MatchEvent{},
		Odds:       snap,
		Validation: realValidation(),
	})

	if match.FixtureID != 8001 {
		t.Errorf("FixtureID = %d, want 8001", match.FixtureID)
	}
	if match.LeagueID != 39 || match.LeagueName != "Premier League" {
		t.Errorf("League = %d/%q, want 39/Premier League", match.LeagueID, match.LeagueName)
	}
	if match.Home.ID != 50 || match.Away.ID != 51 {
		t.Errorf("Teams = %d/%d, want 50/51", match.Home.ID, match.Away.ID)
	}
	if match.Status != models.MatchStatusSecondHalf {
		t.Errorf("Status = %v, want second_half", match.Status)
	}
	if match.Minute != 70 {
		t.Errorf("Minute = %d, want 70", match.Minute)
	}
	if match.Score.Home != 1 || match.Score.Away != 1 {
		t.Errorf("Score = %d-%d, want 1-1", match.Score.Home, match.Score.Away)
	}

	if match.Statistics.Home.Shots == nil || *match.Statistics.Home.Shots != 12 {
		t.Errorf("Home.Shots = %v, want 12", match.Statistics.Home.Shots)
	}
	if match.Statistics.Home.Possession == nil || *match.Statistics.Home.Possession != 58 {
		t.Errorf("Home.Possession = %v, want 58", match.Statistics.Home.Possession)
	}
	if match.Statistics.Away.Corners == nil || *match.Statistics.Away.Corners != 3 {
		t.Errorf("Away.Corners = %v, want 3", match.Statistics.Away.Corners)
	}
	if !match.Statistics.Authoritative {
		t.Error("Authoritative = false, want true")
	}

	if match.Odds == nil || match.Odds.Home == nil {
		t.Error("Odds snapshot not attached")
	}
	if match.Unscoreable {
		t.Errorf("Unscoreable = true (reason %q), want scoreable", match.NoStatsReason)
	}
}

func TestNormalizeMissingStats(t *testing.T) {
	normalizer := NewMatchNormalizer()

	match := normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      nil,
		Validation: &models.ValidationResult{FixtureReal: true, Tier: models.TierPartial},
	})

	if !match.Unscoreable {
		t.Fatal("Unscoreable = false, want true with no statistics")
	}
	if match.NoStatsReason != models.NoStatsReasonMissing {
		t.Errorf("NoStatsReason = %q, want %q", match.NoStatsReason, models.NoStatsReasonMissing)
	}
}

func TestNormalizeUnverifiedStats(t *testing.T) {
	normalizer := NewMatchNormalizer()

	validation := realValidation()
	validation.StatsReal = false
	validation.Tier = models.TierPartial

	match := normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      validStats(),
		Validation: validation,
	})

	if match.Statistics.Authoritative {
		t.Error("Authoritative = true, want false")
	}
	if !match.Unscoreable || match.NoStatsReason != models.NoStatsReasonUnverified {
		t.Errorf("Unscoreable/reason = %v/%q, want true/%q",
			match.Unscoreable, match.NoStatsReason, models.NoStatsReasonUnverified)
	}
}

func TestNormalizeZeroShotsGuard(t *testing.T) {
	normalizer := NewMatchNormalizer()

	zeroShots := func(teamID int) apifootball.TeamStatistics {
		return apifootball.TeamStatistics{
			Team: apifootball.TeamRef{ID: teamID},
			Statistics: []apifootball.StatEntry{
				statEntry("Total Shots", "0"),
				statEntry("Ball Possession", `"50%"`),
			},
		}
	}

	// 开赛 10 分钟后双方零射门按采集故障处理
	match := normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      []apifootball.TeamStatistics{zeroShots(50), zeroShots(51)},
		Validation: realValidation(),
	})
	if !match.Unscoreable || match.NoStatsReason != models.NoStatsReasonZeroShots {
		t.Errorf("Unscoreable/reason = %v/%q, want true/%q",
			match.Unscoreable, match.NoStatsReason, models.NoStatsReasonZeroShots)
	}

	// 比赛刚开始时零射门是正常局面
	early := validFixture()
	early.Fixture.Status = apifootball.FixtureStatus{Short: "1H", Elapsed: intP(6)}
	match = normalizer.Normalize(NormalizerInput{
		Fixture:    early,
		Stats:      []apifootball.TeamStatistics{zeroShots(50), zeroShots(51)},
		Validation: realValidation(),
	})
	if match.Unscoreable {
		t.Errorf("Unscoreable = true at minute 6, want false")
	}
}

func TestNormalizeRecentShotsWindow(t *testing.T) {
	normalizer := NewMatchNormalizer()

	match := normalizer.Normalize(NormalizerInput{
		Fixture:        validFixture(),
		Stats:          validStats(), // 合计 19 射门,当前 70 分钟
		Validation:     realValidation(),
		WindowBaseline: baseline(50, 8, 4), // 合计 12,20 分钟前
	})

	if match.Momentum.RecentShots == nil || *match.Momentum.RecentShots != 7 {
		t.Fatalf("RecentShots = %v, want 7", match.Momentum.RecentShots)
	}
	if match.Momentum.Quality != models.DataQualityReal {
		t.Errorf("Quality = %v, want real", match.Momentum.Quality)
	}

	// 基准不够旧时不推导近期射门
	match = normalizer.Normalize(NormalizerInput{
		Fixture:        validFixture(),
		Stats:          validStats(),
		Validation:     realValidation(),
		WindowBaseline: baseline(62, 8, 4),
	})
	if match.Momentum.RecentShots != nil {
		t.Errorf("RecentShots = %v with 8-minute-old baseline, want nil", match.Momentum.RecentShots)
	}
	if match.Momentum.Quality != models.DataQualityPartial {
		t.Errorf("Quality = %v, want partial", match.Momentum.Quality)
	}

	// 上游统计回拨时近期射门钳制为 0 而不是负数
	match = normalizer.Normalize(NormalizerInput{
		Fixture:        validFixture(),
		Stats:          validStats(),
		Validation:     realValidation(),
		WindowBaseline: baseline(50, 15, 10),
	})
	if match.Momentum.RecentShots == nil || *match.Momentum.RecentShots != 0 {
		t.Errorf("RecentShots = %v, want clamped 0", match.Momentum.RecentShots)
	}
}

func TestNormalizeHalfIntensityRatio(t *testing.T) {
	normalizer := NewMatchNormalizer()

	// 半场基准合计 9 (0.2/分钟),70 分钟合计 19,下半场 10/25 = 0.4/分钟
	match := normalizer.Normalize(NormalizerInput{
		Fixture:          validFixture(),
		Stats:            validStats(),
		Validation:       realValidation(),
		HalfTimeBaseline: baseline(45, 6, 3),
	})

	if match.Momentum.HalfIntensityRatio == nil {
		t.Fatal("HalfIntensityRatio = nil, want derived")
	}
	if math.Abs(*match.Momentum.HalfIntensityRatio-2.0) > 1e-9 {
		t.Errorf("HalfIntensityRatio = %v, want 2.0", *match.Momentum.HalfIntensityRatio)
	}
}

func TestNormalizeLosingSidePossession(t *testing.T) {
	normalizer := NewMatchNormalizer()

	fixture := validFixture()
	fixture.Goals = apifootball.Goals{Home: intP(0), Away: intP(1)}

	match := normalizer.Normalize(NormalizerInput{
		Fixture:    fixture,
		Stats:      validStats(),
		Validation: realValidation(),
	})

	if match.Momentum.LosingSidePossession == nil || *match.Momentum.LosingSidePossession != 58 {
		t.Errorf("LosingSidePossession = %v, want home's 58", match.Momentum.LosingSidePossession)
	}
}

func TestNormalizeMomentumRequiresAuthoritativeStats(t *testing.T) {
	normalizer := NewMatchNormalizer()

	validation := realValidation()
	validation.StatsReal = false

	match := normalizer.Normalize(NormalizerInput{
		Fixture:        validFixture(),
		Stats:          validStats(),
		Validation:     validation,
		WindowBaseline: baseline(50, 8, 4),
	})

	if match.Momentum.Quality != models.DataQualityUnavailable {
		t.Errorf("Quality = %v, want unavailable", match.Momentum.Quality)
	}
	if match.Momentum.RecentShots != nil {
		t.Errorf("RecentShots = %v, want nil", match.Momentum.RecentShots)
	}
}

func TestNormalizeEvents(t *testing.T) {
	normalizer := NewMatchNormalizer()

	events := []apifootball.MatchEvent{
		{
			Time:   apifootball.EventTime{Elapsed: 45, Extra: intP(2)},
			Team:   apifootball.TeamRef{ID: 50},
			Player: apifootball.EventActor{Name: "Striker"},
			Type:   "Goal",
			Detail: "Normal Goal",
		},
		{
			Time:   apifootball.EventTime{Elapsed: 63},
			Team:   apifootball.TeamRef{ID: 51},
			Type:   "Card",
			Detail: "Red Card",
		},
	}

	match := normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      validStats(),
		Events:     events,
		Validation: realValidation(),
	})

	if len(match.Events) != 2 {
		t.Fatalf("len(Events) = %d, want 2", len(match.Events))
	}
	if match.Events[0].Type != models.EventGoal || match.Events[0].ExtraTime != 2 {
		t.Errorf("Events[0] = %+v, want goal at 45+2", match.Events[0])
	}
	if _, away := match.RedCardCounts(); away != 1 {
		t.Errorf("away red cards = %d, want 1", away)
	}

	// nil 事件列表保持 nil,与空列表区分
	match = normalizer.Normalize(NormalizerInput{
		Fixture:    validFixture(),
		Stats:      validStats(),
		Events:     nil,
		Validation: realValidation(),
	})
	if match.Events != nil {
		t.Errorf("Events = %v, want nil", match.Events)
	}
}

func TestParseStatValue(t *testing.T) {
	cases := []struct {
		raw  string
		want *float64
	}{
		{"12", floatP(12)},
		{`"58%"`, floatP(58)},
		{`"0.82"`, floatP(0.82)},
		{"null", nil},
		{"", nil},
		{`"n/a"`, nil},
	}

	for _, c := range cases {
		got := parseStatValue(json.RawMessage(c.raw))
		if (got == nil) != (c.want == nil) {
			t.Errorf("parseStatValue(%q) = %v, want %v", c.raw, got, c.want)
			continue
		}
		if got != nil && *got != *c.want {
			t.Errorf("parseStatValue(%q) = %v, want %v", c.raw, *got, *c.want)
		}
	}
}

func TestMapFixtureStatus(t *testing.T) {
	cases := []struct {
		short string
		want  models.MatchStatus
	}{
		{"NS", models.MatchStatusNotStarted},
		{"1H", models.MatchStatusFirstHalf},
		{"HT", models.MatchStatusHalfTime},
		{"2H", models.MatchStatusSecondHalf},
		{"ET", models.MatchStatusExtraTime},
		{"FT", models.MatchStatusFinished},
		{"SUSP", models.MatchStatusAbandoned},
		{"WEIRD", models.MatchStatusUnknown},
	}

	for _, c := range cases {
		if got := mapFixtureStatus(c.short); got != c.want {
			t.Errorf("mapFixtureStatus(%q) = %v, want %v", c.short, got, c.want)
		}
	}
}
