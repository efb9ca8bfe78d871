package services

import (
	"testing"
	"time"

	"goalscan-service/database"
	"goalscan-service/pkg/models"
)

func TestScoreRowMap(t *testing.T) {
	factors := `{"score_state":25,"attack_volume":18}`
	alerts := "critical time;one-goal margin"
	row := &database.ScoreResultRow{
		ID:               7,
		FixtureID:        4001,
		Scoreable:        true,
		Total:            floatP(82.5),
		Stars:            intP(4),
		Recommendation:   strP("BUY"),
		Confidence:       floatP(85),
		StrongTeamLosing: true,
		Augmented:        true,
		Minute:           intP(78),
		Factors:          &factors,
		Alerts:           &alerts,
		ComputedAt:       time.Now(),
	}

	result := scoreRowMap(row)
	if result["fixture_id"] != int64(4001) {
		t.Errorf("fixture_id = %v, want 4001", result["fixture_id"])
	}
	if result["total"] != 82.5 {
		t.Errorf("total = %v, want 82.5", result["total"])
	}
	if result["minute"] != 78 {
		t.Errorf("minute = %v, want 78", result["minute"])
	}
	breakdown, ok := result["factors"].(models.FactorBreakdown)
	if !ok {
		t.Fatalf("factors = %T, want FactorBreakdown", result["factors"])
	}
	if breakdown.ScoreState != 25 || breakdown.AttackVolume != 18 {
		t.Errorf("breakdown = %+v, want score_state 25 / attack_volume 18", breakdown)
	}
	alertList, ok := result["alerts"].([]string)
	if !ok || len(alertList) != 2 {
		t.Errorf("alerts = %v, want two entries", result["alerts"])
	}
}

func TestScoreRowMapUnscoreable(t *testing.T) {
	reason := "STATS_MISSING"
	row := &database.ScoreResultRow{
		ID:                8,
		FixtureID:         4002,
		Scoreable:         false,
		UnscoreableReason: &reason,
		Minute:            intP(64),
		ComputedAt:        time.Now(),
	}

	result := scoreRowMap(row)
	if result["unscoreable_reason"] != "STATS_MISSING" {
		t.Errorf("unscoreable_reason = %v, want STATS_MISSING", result["unscoreable_reason"])
	}
	if _, present := result["total"]; present {
		t.Error("unscoreable row must not carry a total")
	}
	if _, present := result["recommendation"]; present {
		t.Error("unscoreable row must not carry a recommendation")
	}
}

func TestScannerRowMap(t *testing.T) {
	side := "home"
	satisfied := "time_window;goal_diff;xg_diff"
	row := &database.ScannerResultRow{
		ID:             3,
		FixtureID:      4003,
		Tier:           "STRONG",
		ImbalanceScore: 64.5,
		DominantSide:   &side,
		Satisfied:      &satisfied,
		ComputedAt:     time.Now(),
	}

	result := scannerRowMap(row)
	if result["tier"] != "STRONG" {
		t.Errorf("tier = %v, want STRONG", result["tier"])
	}
	if result["dominant_side"] != "home" {
		t.Errorf("dominant_side = %v, want home", result["dominant_side"])
	}
	rules, ok := result["satisfied"].([]string)
	if !ok || len(rules) != 3 {
		t.Errorf("satisfied = %v, want three rules", result["satisfied"])
	}

	// 可空列缺省时对应键不出现
	bare := scannerRowMap(&database.ScannerResultRow{ID: 4, FixtureID: 4004, Tier: "NONE"})
	if _, present := bare["dominant_side"]; present {
		t.Error("nil dominant_side must not appear in the map")
	}
}
