package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// JSONExporter 输出记录数组,字段名与 CompetitionRateRecord 的json标签一致
type JSONExporter struct{}

// Extension 实现Exporter接口
func (e *JSONExporter) Extension() string { return ".json" }

// Export 实现Exporter接口
func (e *JSONExporter) Export(path string, records []models.CompetitionRateRecord) error {
	if records == nil {
		records = []models.CompetitionRateRecord{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入JSON文件失败: %w", err)
	}

	utils.Infof("📄 已导出 %d 条记录: %s", len(records), path)
	return nil
}
