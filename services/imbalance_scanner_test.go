package services

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"goalscan-service/pkg/models"
)

func scannerMatch() *models.CanonicalMatch {
	match := liveMatch(75, 1, 1)
	match.Statistics.Home = models.TeamStats{
		Shots:         intP(16),
		ShotsOnTarget: intP(7),
		Possession:    floatP(58),
		Corners:       intP(8),
		ExpectedGoals: floatP(2.1),
	}
	match.Statistics.Away = models.TeamStats{
		Shots:         intP(7),
		ShotsOnTarget: intP(3),
		Possession:    floatP(42),
		Corners:       intP(3),
		ExpectedGoals: floatP(0.9),
	}
	match.Statistics.Authoritative = true
	match.Momentum = models.MomentumWindow{
		WindowMinutes: 20,
		RecentShots:   intP(4),
		Quality:       models.DataQualityReal,
	}
	return match
}

func TestScanAllRulesPass(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())
	result := scanner.Scan(scannerMatch())

	if !result.Matched {
		t.Fatalf("expected match verdict, failed rules: %v", result.Failed)
	}
	if len(result.Failed) != 0 {
		t.Errorf("expected all rules to pass, failed: %v", result.Failed)
	}
	if result.Tier != models.ScanTierStrong {
		t.Errorf("7 satisfied rules should yield STRONG, got %s", result.Tier)
	}
	if result.DominantSide != "home" {
		t.Errorf("home dominates every statistic, got dominant side %s", result.DominantSide)
	}
}

// 总体判定是析取: xG 规则失败但射门差规则通过,仍应判定入选
func TestScanDisjunction(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	match := scannerMatch()
	match.Statistics.Home.ExpectedGoals = floatP(1.2)
	match.Statistics.Away.ExpectedGoals = floatP(0.9)

	result := scanner.Scan(match)

	if !result.Matched {
		t.Fatal("shot-differential rule alone should satisfy the disjunction")
	}
	xgPassed := true
	for _, rule := range result.Rules {
		if rule.Name == RuleXGDiff {
			xgPassed = rule.Passed
		}
	}
	if xgPassed {
		t.Error("xG differential 0.3 should fail against the 0.8 threshold")
	}
}

func TestScanTimeWindowGate(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	match := scannerMatch()
	match.Minute = 30

	result := scanner.Scan(match)
	if result.Matched {
		t.Error("minute 30 is outside the window, verdict must be false")
	}
}

func TestScanGoalDiffGate(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	match := scannerMatch()
	match.Score = models.Score{Home: 3, Away: 0}

	result := scanner.Scan(match)
	if result.Matched {
		t.Error("three-goal margin exceeds the differential cap, verdict must be false")
	}
}

func TestScanTierByRuleCount(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	// 射正差与走势窗口不达标,其余 5 条通过
	match := scannerMatch()
	match.Statistics.Home.ShotsOnTarget = intP(4)
	match.Statistics.Away.ShotsOnTarget = intP(3)
	match.Momentum.RecentShots = intP(1)

	result := scanner.Scan(match)
	if !result.Matched {
		t.Fatalf("core rules still pass, failed: %v", result.Failed)
	}
	if result.Tier != models.ScanTierStrong {
		t.Errorf("5 satisfied rules should yield STRONG, got %s", result.Tier)
	}

	match.Statistics.Home.Corners = nil
	match.Statistics.Home.ExpectedGoals = nil
	result = scanner.Scan(match)
	if result.Tier != models.ScanTierModerate {
		t.Errorf("4 satisfied rules should yield MODERATE, got %s", result.Tier)
	}
}

func TestScanMissingStatsFailWithReason(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	match := scannerMatch()
	match.Statistics.Home.ExpectedGoals = nil
	match.Statistics.Away.ExpectedGoals = nil

	result := scanner.Scan(match)
	for _, rule := range result.Rules {
		if rule.Name == RuleXGDiff {
			if rule.Passed {
				t.Error("missing xG data must fail the rule, not pass it")
			}
			if rule.Reason == "" {
				t.Error("failed rule should carry a reason")
			}
		}
	}
}

func TestImbalanceScoreLinearCombination(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())
	result := scanner.Scan(scannerMatch())

	// |9|*3 + |4|*5 + |1.2|*25 + |5|*2 + |16|*0.5 = 95
	expected := 9*3.0 + 4*5.0 + 1.2*25.0 + 5*2.0 + 16*0.5
	if math.Abs(result.ImbalanceScore-expected) > 1e-9 {
		t.Errorf("expected imbalance score %.1f, got %.1f", expected, result.ImbalanceScore)
	}
}

func TestImbalanceScoreCapped(t *testing.T) {
	scanner := NewImbalanceScanner(DefaultScannerConfig())

	match := scannerMatch()
	match.Statistics.Home.ExpectedGoals = floatP(4.5)
	match.Statistics.Away.ExpectedGoals = floatP(0.2)

	result := scanner.Scan(match)
	if result.ImbalanceScore != 100 {
		t.Errorf("imbalance score must cap at 100, got %.1f", result.ImbalanceScore)
	}
}

func TestLoadScannerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scanner.yaml")
	content := []byte("min_minute: 65\nmax_minute: 88\nmin_xg_diff: 1.0\n")
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadScannerConfig(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if config.MinMinute != 65 || config.MaxMinute != 88 {
		t.Errorf("expected window 65-88, got %d-%d", config.MinMinute, config.MaxMinute)
	}
	if config.MinXGDiff != 1.0 {
		t.Errorf("expected xG threshold 1.0, got %.1f", config.MinXGDiff)
	}
	// 未出现的键保持默认值
	if config.MinShotDiff != 6 {
		t.Errorf("expected default shot threshold 6, got %d", config.MinShotDiff)
	}
}

func TestLoadScannerConfigMissingFile(t *testing.T) {
	config, err := LoadScannerConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got error: %v", err)
	}
	if config != DefaultScannerConfig() {
		t.Error("expected default configuration")
	}
}
