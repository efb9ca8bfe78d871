package services

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"goalscan-service/database"
	"goalscan-service/pkg/models"
)

// ResultStore 流水线产出的持久化层
//
// 只有通过验证 (tier != INVALID) 的周期产出才会写入,
// 写入失败记录日志但不中断轮询周期。
type ResultStore struct {
	db *sql.DB
}

// NewResultStore 创建结果存储
func NewResultStore(db *sql.DB) *ResultStore {
	return &ResultStore{db: db}
}

// SaveOddsSnapshot 保存赔率快照
func (s *ResultStore) SaveOddsSnapshot(fixtureID int, snap *models.OddsSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	var bookmaker *string
	if snap.Bookmaker != "" {
		bookmaker = &snap.Bookmaker
	}

	var mainLine, mainOver, mainUnder *float64
	if snap.MainLine.Priced() {
		mainLine = &snap.MainLine.Line
		mainOver = snap.MainLine.Over
		mainUnder = snap.MainLine.Under
	}

	query := `
		INSERT INTO odds_snapshots (fixture_id, is_live, fetch_status, bookmaker,
			home_odds, draw_odds, away_odds, main_line, main_over, main_under,
			handicap_line, snapshot, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err = s.db.Exec(query, fixtureID, snap.IsLive, string(snap.Status), bookmaker,
		snap.Home, snap.Draw, snap.Away, mainLine, mainOver, mainUnder,
		snap.HandicapLine, string(raw), snap.CapturedAt)
	return err
}

// SaveValidation 保存验证结果
func (s *ResultStore) SaveValidation(fixtureID int, v *models.ValidationResult) error {
	// 落库时失败原因与诊断信息合并存储
	all := append(append([]string{}, v.InvalidReasons...), v.Diagnostics...)
	var reasons *string
	if len(all) > 0 {
		joined := strings.Join(all, ";")
		reasons = &joined
	}

	query := `
		INSERT INTO validation_results (fixture_id, tier, fixture_real, stats_real,
			odds_real, events_real, reasons)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.db.Exec(query, fixtureID, string(v.Tier), v.FixtureReal, v.StatsReal,
		v.OddsReal, v.EventsReal, reasons)
	return err
}

// SaveScoreResult 保存评分结果
func (s *ResultStore) SaveScoreResult(minute int, r *models.ScoreResult) error {
	if !r.Scoreable {
		query := `
			INSERT INTO score_results (fixture_id, scoreable, unscoreable_reason, minute, computed_at)
			VALUES ($1, FALSE, $2, $3, $4)
		`
		_, err := s.db.Exec(query, r.FixtureID, r.UnscoreableReason, minute, r.ComputedAt)
		return err
	}

	factors, err := json.Marshal(r.Factors)
	if err != nil {
		return err
	}

	var alerts *string
	if len(r.Alerts) > 0 {
		joined := strings.Join(r.Alerts, ";")
		alerts = &joined
	}

	query := `
		INSERT INTO score_results (fixture_id, scoreable, total, stars, recommendation,
			confidence, strong_team_losing, augmented, minute, factors, alerts, computed_at)
		VALUES ($1, TRUE, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.Exec(query, r.FixtureID, r.Total, r.Stars, string(r.Recommendation),
		r.Confidence, r.StrongTeamLosing, r.Augmented, minute, string(factors), alerts, r.ComputedAt)
	return err
}

// SaveScannerResult 保存扫描结果
func (s *ResultStore) SaveScannerResult(r *models.ScannerResult) error {
	var satisfied, failed *string
	if len(r.Satisfied) > 0 {
		joined := strings.Join(r.Satisfied, ";")
		satisfied = &joined
	}
	if len(r.Failed) > 0 {
		joined := strings.Join(r.Failed, ";")
		failed = &joined
	}

	query := `
		INSERT INTO scanner_results (fixture_id, matched, tier, imbalance_score,
			dominant_side, satisfied, failed, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.db.Exec(query, r.FixtureID, r.Matched, string(r.Tier), r.ImbalanceScore,
		r.DominantSide, satisfied, failed, r.ComputedAt)
	return err
}

// UpdateTrackedFixture 更新监控中的比赛记录
func (s *ResultStore) UpdateTrackedFixture(match *models.CanonicalMatch) error {
	query := `
		INSERT INTO tracked_fixtures (fixture_id, league_id, home_team, away_team,
			status, cycle_count, last_minute, last_cycle_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $7)
		ON CONFLICT (fixture_id)
		DO UPDATE SET
			status = $5,
			cycle_count = tracked_fixtures.cycle_count + 1,
			last_minute = $6,
			last_cycle_at = $7,
			updated_at = $7
	`

	_, err := s.db.Exec(query, match.FixtureID, match.LeagueID, match.Home.Name,
		match.Away.Name, string(match.Status), match.Minute, time.Now())
	return err
}

// GetRecentScores 获取最近的评分结果
func (s *ResultStore) GetRecentScores(limit, offset int, minTotal float64) ([]map[string]interface{}, error) {
	query := `
		SELECT id, fixture_id, scoreable, unscoreable_reason, total, stars,
		       recommendation, confidence, strong_team_losing, augmented,
		       minute, factors, alerts, computed_at
		FROM score_results
		WHERE scoreable = TRUE AND total >= $1
		ORDER BY computed_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.Query(query, minTotal, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var row database.ScoreResultRow
		if err := rows.Scan(&row.ID, &row.FixtureID, &row.Scoreable, &row.UnscoreableReason,
			&row.Total, &row.Stars, &row.Recommendation, &row.Confidence,
			&row.StrongTeamLosing, &row.Augmented, &row.Minute, &row.Factors,
			&row.Alerts, &row.ComputedAt); err != nil {
			return nil, err
		}
		results = append(results, scoreRowMap(&row))
	}

	return results, rows.Err()
}

// scoreRowMap 把评分结果行转成 API 响应用的键值结构
func scoreRowMap(row *database.ScoreResultRow) map[string]interface{} {
	result := map[string]interface{}{
		"id":          row.ID,
		"fixture_id":  row.FixtureID,
		"scoreable":   row.Scoreable,
		"computed_at": row.ComputedAt,
	}
	if row.Minute != nil {
		result["minute"] = *row.Minute
	}

	if !row.Scoreable {
		if row.UnscoreableReason != nil {
			result["unscoreable_reason"] = *row.UnscoreableReason
		}
		return result
	}

	result["strong_team_losing"] = row.StrongTeamLosing
	result["augmented"] = row.Augmented
	if row.Total != nil {
		result["total"] = *row.Total
	}
	if row.Stars != nil {
		result["stars"] = *row.Stars
	}
	if row.Recommendation != nil {
		result["recommendation"] = *row.Recommendation
	}
	if row.Confidence != nil {
		result["confidence"] = *row.Confidence
	}
	if row.Factors != nil {
		var breakdown models.FactorBreakdown
		if err := json.Unmarshal([]byte(*row.Factors), &breakdown); err == nil {
			result["factors"] = breakdown
		}
	}
	if row.Alerts != nil {
		result["alerts"] = strings.Split(*row.Alerts, ";")
	}
	return result
}

// GetFixtureScores 获取一场比赛的评分历史
func (s *ResultStore) GetFixtureScores(fixtureID int) ([]map[string]interface{}, error) {
	query := `
		SELECT id, scoreable, unscoreable_reason, total, stars, recommendation,
		       confidence, minute, computed_at
		FROM score_results
		WHERE fixture_id = $1
		ORDER BY computed_at ASC
	`

	rows, err := s.db.Query(query, fixtureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		row := database.ScoreResultRow{FixtureID: int64(fixtureID)}
		if err := rows.Scan(&row.ID, &row.Scoreable, &row.UnscoreableReason,
			&row.Total, &row.Stars, &row.Recommendation, &row.Confidence,
			&row.Minute, &row.ComputedAt); err != nil {
			return nil, err
		}
		results = append(results, scoreRowMap(&row))
	}

	return results, rows.Err()
}

// GetScannerMatches 获取命中扫描规则的比赛
func (s *ResultStore) GetScannerMatches(limit int) ([]map[string]interface{}, error) {
	query := `
		SELECT id, fixture_id, tier, imbalance_score, dominant_side, satisfied, computed_at
		FROM scanner_results
		WHERE matched = TRUE
		ORDER BY computed_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []map[string]interface{}
	for rows.Next() {
		var row database.ScannerResultRow
		if err := rows.Scan(&row.ID, &row.FixtureID, &row.Tier, &row.ImbalanceScore,
			&row.DominantSide, &row.Satisfied, &row.ComputedAt); err != nil {
			return nil, err
		}
		results = append(results, scannerRowMap(&row))
	}

	return results, rows.Err()
}

// scannerRowMap 把扫描结果行转成 API 响应用的键值结构
func scannerRowMap(row *database.ScannerResultRow) map[string]interface{} {
	result := map[string]interface{}{
		"id":              row.ID,
		"fixture_id":      row.FixtureID,
		"tier":            row.Tier,
		"imbalance_score": row.ImbalanceScore,
		"computed_at":     row.ComputedAt,
	}
	if row.DominantSide != nil {
		result["dominant_side"] = *row.DominantSide
	}
	if row.Satisfied != nil {
		result["satisfied"] = strings.Split(*row.Satisfied, ";")
	}
	return result
}

// GetLatestSnapshot 获取一场比赛最近一次的赔率快照行,无记录返回 nil
func (s *ResultStore) GetLatestSnapshot(fixtureID int) (*database.OddsSnapshotRow, error) {
	query := `
		SELECT id, fixture_id, is_live, fetch_status, bookmaker, home_odds, draw_odds,
		       away_odds, main_line, main_over, main_under, handicap_line, snapshot,
		       captured_at, created_at
		FROM odds_snapshots
		WHERE fixture_id = $1
		ORDER BY captured_at DESC
		LIMIT 1
	`

	var row database.OddsSnapshotRow
	err := s.db.QueryRow(query, fixtureID).Scan(&row.ID, &row.FixtureID, &row.IsLive,
		&row.FetchStatus, &row.Bookmaker, &row.HomeOdds, &row.DrawOdds, &row.AwayOdds,
		&row.MainLine, &row.MainOver, &row.MainUnder, &row.HandicapLine, &row.Snapshot,
		&row.CapturedAt, &row.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// GetRecentValidations 获取最近的验证结果行
func (s *ResultStore) GetRecentValidations(limit int) ([]database.ValidationResultRow, error) {
	query := `
		SELECT id, fixture_id, tier, fixture_real, stats_real, odds_real, events_real,
		       reasons, created_at
		FROM validation_results
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []database.ValidationResultRow
	for rows.Next() {
		var row database.ValidationResultRow
		if err := rows.Scan(&row.ID, &row.FixtureID, &row.Tier, &row.FixtureReal,
			&row.StatsReal, &row.OddsReal, &row.EventsReal, &row.Reasons, &row.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// GetTopTracked 按累计周期数获取监控最久的比赛
func (s *ResultStore) GetTopTracked(limit int) ([]database.TrackedFixture, error) {
	query := `
		SELECT id, fixture_id, league_id, home_team, away_team, status, cycle_count,
		       last_minute, last_cycle_at, created_at, updated_at
		FROM tracked_fixtures
		ORDER BY cycle_count DESC
		LIMIT $1
	`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []database.TrackedFixture
	for rows.Next() {
		var row database.TrackedFixture
		if err := rows.Scan(&row.ID, &row.FixtureID, &row.LeagueID, &row.HomeTeam,
			&row.AwayTeam, &row.Status, &row.CycleCount, &row.LastMinute,
			&row.LastCycleAt, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, err
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// GetStats 获取统计信息
func (s *ResultStore) GetStats() (map[string]int, error) {
	stats := map[string]int{}

	counters := map[string]string{
		"tracked_fixtures": "SELECT COUNT(*) FROM tracked_fixtures",
		"odds_snapshots":   "SELECT COUNT(*) FROM odds_snapshots",
		"score_results":    "SELECT COUNT(*) FROM score_results",
		"scanner_matches":  "SELECT COUNT(*) FROM scanner_results WHERE matched = TRUE",
		"invalid_payloads": "SELECT COUNT(*) FROM validation_results WHERE tier = 'INVALID'",
	}

	for name, query := range counters {
		var count int
		if err := s.db.QueryRow(query).Scan(&count); err != nil {
			return nil, err
		}
		stats[name] = count
	}

	return stats, nil
}
