package database

import (
	"time"
)

// OddsSnapshotRow 赔率快照记录
type OddsSnapshotRow struct {
	ID           int64     `db:"id"`
	FixtureID    int64     `db:"fixture_id"`
	IsLive       bool      `db:"is_live"`
	FetchStatus  string    `db:"fetch_status"`
	Bookmaker    *string   `db:"bookmaker"`
	HomeOdds     *float64  `db:"home_odds"`
	DrawOdds     *float64  `db:"draw_odds"`
	AwayOdds     *float64  `db:"away_odds"`
	MainLine     *float64  `db:"main_line"`
	MainOver     *float64  `db:"main_over"`
	MainUnder    *float64  `db:"main_under"`
	HandicapLine *float64  `db:"handicap_line"`
	Snapshot     string    `db:"snapshot"` // 完整快照 JSON
	CapturedAt   time.Time `db:"captured_at"`
	CreatedAt    time.Time `db:"created_at"`
}

// ValidationResultRow 数据质量验证记录
type ValidationResultRow struct {
	ID          int64     `db:"id"`
	FixtureID   int64     `db:"fixture_id"`
	Tier        string    `db:"tier"`
	FixtureReal bool      `db:"fixture_real"`
	StatsReal   bool      `db:"stats_real"`
	OddsReal    bool      `db:"odds_real"`
	EventsReal  bool      `db:"events_real"`
	Reasons     *string   `db:"reasons"`
	CreatedAt   time.Time `db:"created_at"`
}

// ScoreResultRow 评分结果记录
type ScoreResultRow struct {
	ID                int64     `db:"id"`
	FixtureID         int64     `db:"fixture_id"`
	Scoreable         bool      `db:"scoreable"`
	UnscoreableReason *string   `db:"unscoreable_reason"`
	Total             *float64  `db:"total"`
	Stars             *int      `db:"stars"`
	Recommendation    *string   `db:"recommendation"`
	Confidence        *float64  `db:"confidence"`
	StrongTeamLosing  bool      `db:"strong_team_losing"`
	Augmented         bool      `db:"augmented"`
	Minute            *int      `db:"minute"`
	Factors           *string   `db:"factors"` // 因子拆解 JSON
	Alerts            *string   `db:"alerts"`
	ComputedAt        time.Time `db:"computed_at"`
	CreatedAt         time.Time `db:"created_at"`
}

// ScannerResultRow 失衡扫描结果记录
type ScannerResultRow struct {
	ID             int64     `db:"id"`
	FixtureID      int64     `db:"fixture_id"`
	Matched        bool      `db:"matched"`
	Tier           string    `db:"tier"`
	ImbalanceScore float64   `db:"imbalance_score"`
	DominantSide   *string   `db:"dominant_side"`
	Satisfied      *string   `db:"satisfied"`
	Failed         *string   `db:"failed"`
	ComputedAt     time.Time `db:"computed_at"`
	CreatedAt      time.Time `db:"created_at"`
}

// TrackedFixture 监控中的比赛
type TrackedFixture struct {
	ID          int64      `db:"id"`
	FixtureID   int64      `db:"fixture_id"`
	LeagueID    *int64     `db:"league_id"`
	HomeTeam    *string    `db:"home_team"`
	AwayTeam    *string    `db:"away_team"`
	Status      string     `db:"status"`
	CycleCount  int        `db:"cycle_count"`
	LastMinute  *int       `db:"last_minute"`
	LastCycleAt *time.Time `db:"last_cycle_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}
