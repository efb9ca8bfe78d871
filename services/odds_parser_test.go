package services

import (
	"reflect"
	"testing"

	"goalscan-service/apifootball"
	"goalscan-service/pkg/models"
)

func boolP(v bool) *bool    { return &v }
func strP(v string) *string { return &v }

func liveValue(value, odd, handicap string, main bool) apifootball.LiveBetValue {
	v := apifootball.LiveBetValue{Value: value, Odd: odd}
	if handicap != "" {
		v.Handicap = strP(handicap)
	}
	if main {
		v.Main = boolP(true)
	}
	return v
}

func livePayload(markets ...apifootball.LiveBet) *apifootball.OddsPayload {
	return &apifootball.OddsPayload{Live: &apifootball.LiveOdds{
		Fixture: apifootball.FixtureInfo{ID: 9001},
		Odds:    markets,
	}}
}

func TestParseLivePayload(t *testing.T) {
	parser := NewOddsParser()

	payload := livePayload(
		apifootball.LiveBet{ID: LiveMarketFulltimeResult, Values: []apifootball.LiveBetValue{
			liveValue("Home", "2.10", "", false),
			liveValue("Draw", "3.30", "", false),
			liveValue("Away", "3.60", "", false),
		}},
		apifootball.LiveBet{ID: LiveMarketOverUnder, Values: []apifootball.LiveBetValue{
			liveValue("Over", "1.95", "3.5", false),
			liveValue("Under", "1.85", "3.5", false),
			liveValue("Over", "1.90", "2.5", false),
			liveValue("Under", "1.90", "2.5", false),
		}},
		apifootball.LiveBet{ID: LiveMarketAsianHandicap, Values: []apifootball.LiveBetValue{
			liveValue("Home", "1.95", "-0.5", true),
			liveValue("Away", "1.88", "-0.5", true),
		}},
	)

	snap := parser.Parse(payload, 60)
	if snap.Status != models.FetchStatusSuccess {
		t.Fatalf("Status = %v, want success", snap.Status)
	}
	if !snap.RawAvailable {
		t.Error("RawAvailable = false, want true")
	}
	if !snap.IsLive {
		t.Error("IsLive = false, want true")
	}
	if snap.FixtureID != 9001 {
		t.Errorf("FixtureID = %d, want 9001", snap.FixtureID)
	}
	if snap.Home == nil || *snap.Home != 2.10 {
		t.Errorf("Home = %v, want 2.10", snap.Home)
	}
	if snap.Draw == nil || *snap.Draw != 3.30 {
		t.Errorf("Draw = %v, want 3.30", snap.Draw)
	}
	if snap.Away == nil || *snap.Away != 3.60 {
		t.Errorf("Away = %v, want 3.60", snap.Away)
	}

	// 盘口线按线值升序
	if len(snap.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(snap.Lines))
	}
	if snap.Lines[0].Line != 2.5 || snap.Lines[1].Line != 3.5 {
		t.Errorf("Lines order = [%v %v], want [2.5 3.5]", snap.Lines[0].Line, snap.Lines[1].Line)
	}

	// 无显式主盘标记,按固定优先顺序选 2.5
	if !snap.MainLine.Priced() || snap.MainLine.Line != 2.5 {
		t.Errorf("MainLine = %+v, want priced line 2.5", snap.MainLine)
	}
	if snap.Over25 == nil || *snap.Over25 != 1.90 {
		t.Errorf("Over25 = %v, want 1.90", snap.Over25)
	}
	if snap.Over35 == nil || *snap.Over35 != 1.95 {
		t.Errorf("Over35 = %v, want 1.95", snap.Over35)
	}

	if snap.HandicapLine == nil || *snap.HandicapLine != -0.5 {
		t.Errorf("HandicapLine = %v, want -0.5", snap.HandicapLine)
	}
	if snap.HandicapHome == nil || *snap.HandicapHome != 1.95 {
		t.Errorf("HandicapHome = %v, want 1.95", snap.HandicapHome)
	}
}

func TestParseRepeatedCallsIdentical(t *testing.T) {
	parser := NewOddsParser()

	payload := livePayload(
		apifootball.LiveBet{ID: LiveMarketFulltimeResult, Values: []apifootball.LiveBetValue{
			liveValue("Home", "2.10", "", false),
			liveValue("Draw", "3.30", "", false),
			liveValue("Away", "3.60", "", false),
		}},
		apifootball.LiveBet{ID: LiveMarketOverUnder, Values: []apifootball.LiveBetValue{
			liveValue("Over", "1.95", "3.5", false),
			liveValue("Under", "1.85", "3.5", false),
			liveValue("Over", "1.90", "2.5", false),
			liveValue("Under", "1.90", "2.5", false),
		}},
		apifootball.LiveBet{ID: LiveMarketAsianHandicap, Values: []apifootball.LiveBetValue{
			liveValue("Home", "1.95", "-0.5", true),
			liveValue("Away", "1.88", "-0.5", true),
		}},
	)

	// 同一载荷重复解析必须得到相同快照,抓取时间戳除外
	first := parser.Parse(payload, 60)
	second := parser.Parse(payload, 60)
	first.CapturedAt = second.CapturedAt
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated parse differs:\nfirst  = %+v\nsecond = %+v", first, second)
	}
}

func TestParseLiveExplicitMainLine(t *testing.T) {
	parser := NewOddsParser()

	payload := livePayload(apifootball.LiveBet{ID: LiveMarketOverUnder, Values: []apifootball.LiveBetValue{
		liveValue("Over", "1.90", "2.5", false),
		liveValue("Under", "1.90", "2.5", false),
		liveValue("Over", "2.05", "1.5", true),
		liveValue("Under", "1.75", "1.5", true),
	}})

	snap := parser.Parse(payload, 60)
	if snap.MainLine == nil || snap.MainLine.Line != 1.5 {
		t.Errorf("MainLine = %+v, want explicit 1.5", snap.MainLine)
	}
}

func TestParseLiveClosestLineFallback(t *testing.T) {
	parser := NewOddsParser()

	market := apifootball.LiveBet{ID: LiveMarketOverUnder, Values: []apifootball.LiveBetValue{
		liveValue("Over", "1.80", "0.75", false),
		liveValue("Under", "2.00", "0.75", false),
		liveValue("Over", "2.20", "4.25", false),
		liveValue("Under", "1.65", "4.25", false),
	}}

	// 优先顺序里的线值一条都没有,退到距目标最近的已定价线。
	// 75 分钟以后目标降为 1.5,选中 0.75
	snap := parser.Parse(livePayload(market), 80)
	if snap.MainLine == nil || snap.MainLine.Line != 0.75 {
		t.Errorf("MainLine at minute 80 = %+v, want 0.75", snap.MainLine)
	}

	// 75 分钟之前目标为 2.5,两条线距离相同时取先遇到的 0.75
	snap = parser.Parse(livePayload(market), 30)
	if snap.MainLine == nil || snap.MainLine.Line != 0.75 {
		t.Errorf("MainLine at minute 30 = %+v, want 0.75", snap.MainLine)
	}
}

func TestParseLiveTotalGoalsFallback(t *testing.T) {
	parser := NewOddsParser()

	// 大小球市场 36 缺失,退回总进球市场 25
	payload := livePayload(apifootball.LiveBet{ID: LiveMarketTotalGoals, Values: []apifootball.LiveBetValue{
		liveValue("Over", "1.88", "2.5", false),
		liveValue("Under", "1.92", "2.5", false),
	}})

	snap := parser.Parse(payload, 50)
	if snap.Status != models.FetchStatusSuccess {
		t.Fatalf("Status = %v, want success", snap.Status)
	}
	if snap.MainLine == nil || snap.MainLine.Line != 2.5 {
		t.Errorf("MainLine = %+v, want 2.5 from fallback market", snap.MainLine)
	}
}

func TestParseLiveAllSuspended(t *testing.T) {
	parser := NewOddsParser()

	suspended := func(value, odd, handicap string) apifootball.LiveBetValue {
		v := liveValue(value, odd, handicap, false)
		v.Suspended = true
		return v
	}

	payload := livePayload(
		apifootball.LiveBet{ID: LiveMarketFulltimeResult, Values: []apifootball.LiveBetValue{
			suspended("Home", "2.10", ""),
			suspended("Draw", "3.30", ""),
			suspended("Away", "3.60", ""),
		}},
		apifootball.LiveBet{ID: LiveMarketOverUnder, Values: []apifootball.LiveBetValue{
			suspended("Over", "1.90", "2.5"),
			suspended("Under", "1.90", "2.5"),
		}},
	)

	// 盘口存在但全部封盘,按空快照处理
	snap := parser.Parse(payload, 70)
	if snap.Status != models.FetchStatusEmpty {
		t.Errorf("Status = %v, want empty", snap.Status)
	}
	if snap.RawAvailable {
		t.Error("RawAvailable = true, want false")
	}
	if snap.Home != nil || snap.MainLine != nil || snap.HandicapLine != nil {
		t.Error("suspended payload should not carry prices")
	}
}

func TestParseEmptyPayload(t *testing.T) {
	parser := NewOddsParser()

	snap := parser.Parse(&apifootball.OddsPayload{}, 0)
	if snap.Status != models.FetchStatusEmpty {
		t.Errorf("Status = %v, want empty", snap.Status)
	}
	if snap.RawAvailable {
		t.Error("RawAvailable = true, want false")
	}
}

func TestParsePreMatchBookmakerPreference(t *testing.T) {
	parser := NewOddsParser()

	matchWinner := apifootball.Bet{ID: PreMatchBetMatchWinner, Values: []apifootball.BetValue{
		{Value: "Home", Odd: "1.80"},
		{Value: "Draw", Odd: "3.50"},
		{Value: "Away", Odd: "4.20"},
	}}

	payload := &apifootball.OddsPayload{PreMatch: &apifootball.PreMatchOdds{
		Fixture: apifootball.FixtureInfo{ID: 9002},
		Bookmakers: []apifootball.BookmakerOdds{
			{ID: 99, Name: "Obscure", Bets: []apifootball.Bet{matchWinner}},
			{ID: 8, Name: "Bet365", Bets: []apifootball.Bet{matchWinner}},
		},
	}}

	snap := parser.Parse(payload, 0)
	if snap.Bookmaker != "Bet365" {
		t.Errorf("Bookmaker = %q, want Bet365", snap.Bookmaker)
	}
	if snap.IsLive {
		t.Error("IsLive = true, want false")
	}
	if snap.Home == nil || *snap.Home != 1.80 {
		t.Errorf("Home = %v, want 1.80", snap.Home)
	}
}

func TestParsePreMatchBookmakerFallback(t *testing.T) {
	parser := NewOddsParser()

	payload := &apifootball.OddsPayload{PreMatch: &apifootball.PreMatchOdds{
		Fixture: apifootball.FixtureInfo{ID: 9003},
		Bookmakers: []apifootball.BookmakerOdds{
			{ID: 40, Name: "NoPrices", Bets: []apifootball.Bet{
				{ID: PreMatchBetMatchWinner, Values: []apifootball.BetValue{{Value: "Home", Odd: "-"}}},
			}},
			{ID: 41, Name: "HasPrices", Bets: []apifootball.Bet{
				{ID: PreMatchBetMatchWinner, Values: []apifootball.BetValue{
					{Value: "Home", Odd: "2.00"},
					{Value: "Draw", Odd: "3.20"},
					{Value: "Away", Odd: "3.80"},
				}},
			}},
		},
	}}

	snap := parser.Parse(payload, 0)
	if snap.Bookmaker != "HasPrices" {
		t.Errorf("Bookmaker = %q, want first bookmaker with prices", snap.Bookmaker)
	}
}

func TestParsePreMatchOverUnderLabels(t *testing.T) {
	parser := NewOddsParser()

	payload := &apifootball.OddsPayload{PreMatch: &apifootball.PreMatchOdds{
		Fixture: apifootball.FixtureInfo{ID: 9004},
		Bookmakers: []apifootball.BookmakerOdds{
			{ID: 8, Name: "Bet365", Bets: []apifootball.Bet{
				{ID: PreMatchBetOverUnder, Values: []apifootball.BetValue{
					{Value: "Over 3.5", Odd: "2.40"},
					{Value: "Under 3.5", Odd: "1.55"},
					{Value: "Over 2.5", Odd: "1.75"},
					{Value: "Under 2.5", Odd: "2.05"},
					{Value: "Exactly 2", Odd: "3.10"}, // 非 over/under 标签忽略
				}},
			}},
		},
	}}

	snap := parser.Parse(payload, 0)
	if len(snap.Lines) != 2 {
		t.Fatalf("len(Lines) = %d, want 2", len(snap.Lines))
	}
	if snap.Lines[0].Line != 2.5 || snap.Lines[1].Line != 3.5 {
		t.Errorf("Lines order = [%v %v], want [2.5 3.5]", snap.Lines[0].Line, snap.Lines[1].Line)
	}
	if snap.MainLine == nil || snap.MainLine.Line != 2.5 {
		t.Errorf("MainLine = %+v, want 2.5", snap.MainLine)
	}
	if snap.Under25 == nil || *snap.Under25 != 2.05 {
		t.Errorf("Under25 = %v, want 2.05", snap.Under25)
	}
}

func TestParsePreMatchHandicapLabels(t *testing.T) {
	parser := NewOddsParser()

	payload := &apifootball.OddsPayload{PreMatch: &apifootball.PreMatchOdds{
		Fixture: apifootball.FixtureInfo{ID: 9005},
		Bookmakers: []apifootball.BookmakerOdds{
			{ID: 8, Name: "Bet365", Bets: []apifootball.Bet{
				{ID: PreMatchBetAsianHandicap, Values: []apifootball.BetValue{
					{Value: "Home -1.5", Odd: "2.10"},
					{Value: "Away +1.5", Odd: "1.78"},
				}},
			}},
		},
	}}

	snap := parser.Parse(payload, 0)
	// 客队 +1.5 换算到主队视角即 -1.5,与主队标签同线配对
	if snap.HandicapLine == nil || *snap.HandicapLine != -1.5 {
		t.Fatalf("HandicapLine = %v, want -1.5", snap.HandicapLine)
	}
	if snap.HandicapHome == nil || *snap.HandicapHome != 2.10 {
		t.Errorf("HandicapHome = %v, want 2.10", snap.HandicapHome)
	}
	if snap.HandicapAway == nil || *snap.HandicapAway != 1.78 {
		t.Errorf("HandicapAway = %v, want 1.78", snap.HandicapAway)
	}
	if snap.FavoredSide() != "home" {
		t.Errorf("FavoredSide = %q, want home", snap.FavoredSide())
	}
}

func TestParsePrice(t *testing.T) {
	cases := []struct {
		odd  string
		want *float64
	}{
		{"1.95", floatP(1.95)},
		{" 2.10 ", floatP(2.10)},
		{"0", nil},
		{"-1.5", nil},
		{"", nil},
		{"abc", nil},
	}

	for _, c := range cases {
		got := parsePrice(c.odd)
		if (got == nil) != (c.want == nil) {
			t.Errorf("parsePrice(%q) = %v, want %v", c.odd, got, c.want)
			continue
		}
		if got != nil && *got != *c.want {
			t.Errorf("parsePrice(%q) = %v, want %v", c.odd, *got, *c.want)
		}
	}
}
