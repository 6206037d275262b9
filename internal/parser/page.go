package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// PageResult 单个页面的解析结果
type PageResult struct {
	Records       []models.CompetitionRateRecord
	TablesSeen    int
	TablesMatched int
}

// ParsePage 解析已解码的页面HTML,按表格和行的文档顺序产出记录
// 没有任何数据表格时返回models.ErrNoRateTable
func ParsePage(html string, src models.SourceDescriptor) (*PageResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	university := CleanUniversityName(src.DisplayName)
	tables := ExtractTables(doc)
	result := &PageResult{TablesSeen: len(tables)}

	for _, table := range tables {
		plan := Classify(table.Headers)
		if !plan.DataBearing {
			continue
		}
		result.TablesMatched++

		ctx := RecordContext{
			University:    university,
			TableGroup:    tableGroup(table, plan),
			AdmissionType: tableAdmissionType(table),
		}

		for _, row := range WalkRows(table, plan) {
			if plan.MultiGroup {
				result.Records = append(result.Records, NormalizeBlocks(row, plan, ctx)...)
				continue
			}
			if rec := Normalize(row, plan, ctx); rec != nil {
				result.Records = append(result.Records, *rec)
			}
		}
	}

	if result.TablesMatched == 0 {
		return result, models.ErrNoRateTable
	}
	result.Records = Dedupe(result.Records)
	return result, nil
}

// tableGroup 表格级군: 标签/上下文文本优先,其次是表头中唯一的군
// 混合标记的表格不推断单个군
func tableGroup(table models.RawTable, plan models.ColumnPlan) models.AdmissionGroup {
	if IsMixedGroup(table.Label) {
		return models.GroupUnknown
	}
	for _, text := range table.Context {
		if IsMixedGroup(text) {
			return models.GroupUnknown
		}
		if g := ExtractGroup(text); g.IsKnown() {
			return g
		}
	}
	if !plan.MultiGroup && plan.HeaderGroup.IsKnown() {
		return plan.HeaderGroup
	}
	return models.GroupUnknown
}

// tableAdmissionType 从标签中提取전형名,没有标签时使用默认值
func tableAdmissionType(table models.RawTable) string {
	if table.Label == "" {
		return DefaultAdmissionType
	}
	return ExtractAdmissionType(table.Label)
}

// Dedupe 源内按(대학명, 군, 모집단위)去重
// 重复记录的지원인원和모집인원分别累加,경쟁률按合并后的人数重新计算
func Dedupe(records []models.CompetitionRateRecord) []models.CompetitionRateRecord {
	if len(records) == 0 {
		return records
	}

	index := make(map[string]int, len(records))
	merged := make([]models.CompetitionRateRecord, 0, len(records))
	dup := make(map[int]bool)

	for _, r := range records {
		key := r.DedupeKey()
		i, ok := index[key]
		if !ok {
			index[key] = len(merged)
			merged = append(merged, r)
			continue
		}

		cur := &merged[i]
		cur.ApplicantCount += r.ApplicantCount
		cur.Quota += r.Quota
		dup[i] = true
	}

	for i := range dup {
		cur := merged[i]
		rate := cur.CompetitionRate
		if cur.Quota > 0 {
			rate = float64(cur.ApplicantCount) / float64(cur.Quota)
		}
		merged[i] = models.NewRecord(cur.UniversityName, cur.AdmissionGroup, cur.AdmissionType,
			cur.DepartmentName, cur.Quota, cur.ApplicantCount, rate)
	}
	return merged
}
