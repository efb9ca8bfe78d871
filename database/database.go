package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Connect 连接到数据库
func Connect(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// 测试连接
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// 设置连接池
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

// Migrate 运行数据库迁移
func Migrate(db *sql.DB) error {
	migrations := []string{
		// 赔率快照表
		`CREATE TABLE IF NOT EXISTS odds_snapshots (
			id BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT NOT NULL,
			is_live BOOLEAN NOT NULL,
			fetch_status VARCHAR(20) NOT NULL,
			bookmaker VARCHAR(60),
			home_odds DOUBLE PRECISION,
			draw_odds DOUBLE PRECISION,
			away_odds DOUBLE PRECISION,
			main_line DOUBLE PRECISION,
			main_over DOUBLE PRECISION,
			main_under DOUBLE PRECISION,
			handicap_line DOUBLE PRECISION,
			snapshot JSONB NOT NULL,
			captured_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_snapshots_fixture_id ON odds_snapshots(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_odds_snapshots_captured_at ON odds_snapshots(captured_at)`,

		// 数据质量验证记录表
		`CREATE TABLE IF NOT EXISTS validation_results (
			id BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT NOT NULL,
			tier VARCHAR(10) NOT NULL,
			fixture_real BOOLEAN NOT NULL,
			stats_real BOOLEAN NOT NULL,
			odds_real BOOLEAN NOT NULL,
			events_real BOOLEAN NOT NULL,
			reasons TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_results_fixture_id ON validation_results(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_validation_results_tier ON validation_results(tier)`,

		// 评分结果表
		`CREATE TABLE IF NOT EXISTS score_results (
			id BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT NOT NULL,
			scoreable BOOLEAN NOT NULL,
			unscoreable_reason VARCHAR(50),
			total DOUBLE PRECISION,
			stars INTEGER,
			recommendation VARCHAR(20),
			confidence DOUBLE PRECISION,
			strong_team_losing BOOLEAN DEFAULT FALSE,
			augmented BOOLEAN DEFAULT FALSE,
			minute INTEGER,
			factors JSONB,
			alerts TEXT,
			computed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_results_fixture_id ON score_results(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_score_results_total ON score_results(total)`,
		`CREATE INDEX IF NOT EXISTS idx_score_results_computed_at ON score_results(computed_at)`,

		// 失衡扫描结果表
		`CREATE TABLE IF NOT EXISTS scanner_results (
			id BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT NOT NULL,
			matched BOOLEAN NOT NULL,
			tier VARCHAR(10) NOT NULL,
			imbalance_score DOUBLE PRECISION NOT NULL,
			dominant_side VARCHAR(10),
			satisfied TEXT,
			failed TEXT,
			computed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scanner_results_fixture_id ON scanner_results(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_scanner_results_matched ON scanner_results(matched)`,

		// 监控中的比赛表
		`CREATE TABLE IF NOT EXISTS tracked_fixtures (
			id BIGSERIAL PRIMARY KEY,
			fixture_id BIGINT UNIQUE NOT NULL,
			league_id BIGINT,
			home_team VARCHAR(120),
			away_team VARCHAR(120),
			status VARCHAR(20) DEFAULT 'active',
			cycle_count INTEGER DEFAULT 0,
			last_minute INTEGER,
			last_cycle_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_fixtures_fixture_id ON tracked_fixtures(fixture_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tracked_fixtures_status ON tracked_fixtures(status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}
