// Package export 将竞争率记录写出为 xlsx / json / sqlite 文件
package export

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// Exporter 导出器接口
type Exporter interface {
	// Export 将记录写入path,已存在的文件会被覆盖
	Export(path string, records []models.CompetitionRateRecord) error

	// Extension 输出文件扩展名(含点)
	Extension() string
}

// New 按格式名创建导出器: xlsx, json, sqlite
func New(format string) (Exporter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "xlsx", "excel":
		return &ExcelExporter{}, nil
	case "json":
		return &JSONExporter{}, nil
	case "sqlite", "db":
		return &SQLiteExporter{}, nil
	}
	return nil, fmt.Errorf("不支持的输出格式: %s", format)
}

// OutputPath 拼接输出路径,filename不含扩展名时补上导出器的扩展名
func OutputPath(dir, filename string, exporter Exporter) string {
	if filepath.Ext(filename) != exporter.Extension() {
		filename += exporter.Extension()
	}
	return filepath.Join(dir, filename)
}

// SortRecords 按 대학명 升序、경쟁률 降序、모집단위 升序 稳定排序(原地)
func SortRecords(records []models.CompetitionRateRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.UniversityName != b.UniversityName {
			return a.UniversityName < b.UniversityName
		}
		if a.CompetitionRate != b.CompetitionRate {
			return a.CompetitionRate > b.CompetitionRate
		}
		return a.DepartmentName < b.DepartmentName
	})
}

// universityTotals 대학별 汇总行
type universityTotals struct {
	name       string
	records    int
	quota      int
	applicants int
}

// summarizeByUniversity 按대학명汇总,顺序为首次出现的顺序
func summarizeByUniversity(records []models.CompetitionRateRecord) []universityTotals {
	index := make(map[string]int)
	var totals []universityTotals
	for _, r := range records {
		i, ok := index[r.UniversityName]
		if !ok {
			i = len(totals)
			index[r.UniversityName] = i
			totals = append(totals, universityTotals{name: r.UniversityName})
		}
		totals[i].records++
		totals[i].quota += r.Quota
		totals[i].applicants += r.ApplicantCount
	}
	return totals
}

// rate 汇总경쟁률,모집인원为0时为0
func (u universityTotals) rate() float64 {
	if u.quota == 0 {
		return 0
	}
	return float64(u.applicants) / float64(u.quota)
}
