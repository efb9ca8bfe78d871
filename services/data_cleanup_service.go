package services

import (
	"database/sql"
	"fmt"
	"time"

	"goalscan-service/logger"
)

// DataCleanupService 数据清理服务
//
// 按保留策略定期删除过期的快照与结果记录,防止高频轮询把库撑爆。
type DataCleanupService struct {
	db     *sql.DB
	config CleanupConfig
	done   chan struct{}
}

// CleanupConfig 清理配置
type CleanupConfig struct {
	RetainDaysSnapshots   int           // odds_snapshots 保留天数
	RetainDaysValidations int           // validation_results 保留天数
	RetainDaysResults     int           // score_results, scanner_results 保留天数
	RetainDaysTracked     int           // tracked_fixtures 保留天数
	Interval              time.Duration // 清理周期
}

// DefaultCleanupConfig 默认保留策略
//
// 快照与验证记录量最大保留最短,评分/扫描结果用于回看保留更久。
func DefaultCleanupConfig() CleanupConfig {
	return CleanupConfig{
		RetainDaysSnapshots:   7,
		RetainDaysValidations: 7,
		RetainDaysResults:     30,
		RetainDaysTracked:     30,
		Interval:              12 * time.Hour,
	}
}

// CleanupResult 单表清理结果
type CleanupResult struct {
	TableName    string `json:"table_name"`
	DeletedRows  int64  `json:"deleted_rows"`
	RetainedDays int    `json:"retained_days"`
	Error        error  `json:"-"`
}

// NewDataCleanupService 创建数据清理服务
func NewDataCleanupService(db *sql.DB, config CleanupConfig) *DataCleanupService {
	return &DataCleanupService{
		db:     db,
		config: config,
		done:   make(chan struct{}),
	}
}

// Start 启动定期清理
func (s *DataCleanupService) Start() {
	go s.run()
	logger.Printf("[DataCleanup] Started, interval %v", s.config.Interval)
}

// Stop 停止定期清理
func (s *DataCleanupService) Stop() {
	close(s.done)
}

func (s *DataCleanupService) run() {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			results, _ := s.ExecuteCleanup()
			for _, r := range results {
				if r.Error != nil {
					logger.Errorf("[DataCleanup] %s: %v", r.TableName, r.Error)
					continue
				}
				if r.DeletedRows > 0 {
					logger.Printf("[DataCleanup] %s: deleted %d rows older than %d days",
						r.TableName, r.DeletedRows, r.RetainedDays)
				}
			}
		case <-s.done:
			return
		}
	}
}

// ExecuteCleanup 按保留策略清理全部表
func (s *DataCleanupService) ExecuteCleanup() ([]CleanupResult, error) {
	// 表名 -> 保留天数
	retention := []struct {
		table string
		days  int
	}{
		{"odds_snapshots", s.config.RetainDaysSnapshots},
		{"validation_results", s.config.RetainDaysValidations},
		{"score_results", s.config.RetainDaysResults},
		{"scanner_results", s.config.RetainDaysResults},
		{"tracked_fixtures", s.config.RetainDaysTracked},
	}

	results := make([]CleanupResult, 0, len(retention))
	for _, r := range retention {
		results = append(results, s.cleanupTable(r.table, r.days))
	}
	return results, nil
}

// cleanupTable 清理单个表的过期数据
func (s *DataCleanupService) cleanupTable(tableName string, retainDays int) CleanupResult {
	result := CleanupResult{
		TableName:    tableName,
		RetainedDays: retainDays,
	}

	timeField := s.getTimeField(tableName)
	if timeField == "" {
		result.Error = fmt.Errorf("no time field found for table %s", tableName)
		return result
	}

	cutoffTime := time.Now().AddDate(0, 0, -retainDays)
	query := fmt.Sprintf("DELETE FROM %s WHERE %s < $1", tableName, timeField)

	res, err := s.db.Exec(query, cutoffTime)
	if err != nil {
		result.Error = fmt.Errorf("failed to delete from %s: %w", tableName, err)
		return result
	}

	deletedRows, err := res.RowsAffected()
	if err != nil {
		result.Error = fmt.Errorf("failed to get rows affected: %w", err)
		return result
	}

	result.DeletedRows = deletedRows
	return result
}

// getTimeField 获取表的时间字段
func (s *DataCleanupService) getTimeField(tableName string) string {
	timeFields := map[string]string{
		"odds_snapshots":     "captured_at",
		"validation_results": "created_at",
		"score_results":      "computed_at",
		"scanner_results":    "computed_at",
		"tracked_fixtures":   "updated_at",
	}
	return timeFields[tableName]
}

// GetTableSizes 获取所有表的大小(需要数据库权限)
func (s *DataCleanupService) GetTableSizes() (map[string]int64, error) {
	query := `
		SELECT
			tablename,
			pg_total_relation_size(schemaname||'.'||tablename) AS size_bytes
		FROM pg_tables
		WHERE schemaname = 'public'
		ORDER BY size_bytes DESC
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query table sizes: %w", err)
	}
	defer rows.Close()

	sizes := make(map[string]int64)
	for rows.Next() {
		var tableName string
		var sizeBytes int64
		if err := rows.Scan(&tableName, &sizeBytes); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		sizes[tableName] = sizeBytes
	}

	return sizes, nil
}

// GetTableRowCounts 获取所有表的行数
func (s *DataCleanupService) GetTableRowCounts() (map[string]int64, error) {
	tables := []string{
		"odds_snapshots", "validation_results", "score_results",
		"scanner_results", "tracked_fixtures",
	}

	counts := make(map[string]int64)
	for _, tableName := range tables {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName)
		var count int64
		if err := s.db.QueryRow(query).Scan(&count); err != nil {
			// 表不存在时跳过
			continue
		}
		counts[tableName] = count
	}

	return counts, nil
}
