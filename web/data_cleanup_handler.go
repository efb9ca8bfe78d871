package web

import (
	"encoding/json"
	"net/http"

	"goalscan-service/services"
)

// handleGetTableStats 获取表统计信息
func (s *Server) handleGetTableStats(w http.ResponseWriter, r *http.Request) {
	dataCleanup := services.NewDataCleanupService(s.db, services.DefaultCleanupConfig())

	rowCounts, err := dataCleanup.GetTableRowCounts()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	tableSizes, err := dataCleanup.GetTableSizes()
	if err != nil {
		// 没有权限查询表大小时只返回行数
		tableSizes = make(map[string]int64)
	}

	type TableStat struct {
		TableName string  `json:"table_name"`
		RowCount  int64   `json:"row_count"`
		SizeBytes int64   `json:"size_bytes"`
		SizeMB    float64 `json:"size_mb"`
	}

	stats := []TableStat{}
	for tableName, rowCount := range rowCounts {
		sizeBytes := tableSizes[tableName]
		stats = append(stats, TableStat{
			TableName: tableName,
			RowCount:  rowCount,
			SizeBytes: sizeBytes,
			SizeMB:    float64(sizeBytes) / 1024 / 1024,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"stats":   stats,
	})
}

// handleManualCleanup 手动触发数据清理
func (s *Server) handleManualCleanup(w http.ResponseWriter, r *http.Request) {
	dataCleanup := services.NewDataCleanupService(s.db, services.DefaultCleanupConfig())

	results, err := dataCleanup.ExecuteCleanup()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	totalDeleted := int64(0)
	cleanupResults := []map[string]interface{}{}

	for _, result := range results {
		totalDeleted += result.DeletedRows
		entry := map[string]interface{}{
			"table_name":    result.TableName,
			"deleted_rows":  result.DeletedRows,
			"retained_days": result.RetainedDays,
		}
		if result.Error != nil {
			entry["error"] = result.Error.Error()
		}
		cleanupResults = append(cleanupResults, entry)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":       true,
		"total_deleted": totalDeleted,
		"results":       cleanupResults,
	})
}
