package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

var (
	// 人数后面常见的限定词: "1이내"、"3명"、"약 5명 내외"
	countQualifierRe = regexp.MustCompile(`(?:이내|내외|이하|미만|이상|명|인|약)`)
	leadingIntRe     = regexp.MustCompile(`^\d+`)
	rateSeparatorRe  = regexp.MustCompile(`(?::|대)1$`)
	leadingRateRe    = regexp.MustCompile(`^\d+(?:\.\d+)?`)

	// 학과名中需要剥离的括号군标记
	departmentGroupRe = regexp.MustCompile(`[「\[(（]\s*[가나다]\s*(?:[」\])）]\s*군|군\s*[」\])）])`)
)

// RecordContext 表格级的记录上下文
type RecordContext struct {
	University    string
	TableGroup    models.AdmissionGroup // 由表格标签/上下文解析出的군
	AdmissionType string
}

// ParseCount 解析모집인원/지원인원,无法解析时返回0
func ParseCount(text string) int {
	s := strings.ReplaceAll(text, ",", "")
	s = strings.Join(strings.Fields(normalizeSpace(s)), "")
	s = countQualifierRe.ReplaceAllString(s, "")

	m := leadingIntRe.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// ParseRate 解析경쟁률,取开头的数字部分: "3.50 : 1" -> 3.5, "-" -> 0
func ParseRate(text string) float64 {
	s := strings.Join(strings.Fields(normalizeSpace(text)), "")
	s = strings.ReplaceAll(s, ",", "")
	s = rateSeparatorRe.ReplaceAllString(s, "")

	m := leadingRateRe.FindString(s)
	if m == "" {
		return 0
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0
	}
	return f
}

// Normalize 将单个虚拟行转换为规范记录
// 학과为空/保留标签,或모집인원与지원인원都为0时返回nil
func Normalize(row models.VirtualRow, plan models.ColumnPlan, ctx RecordContext) *models.CompetitionRateRecord {
	dept, ok := departmentOf(row, plan)
	if !ok {
		return nil
	}

	quota := ParseCount(row.Get(plan.Quota))
	applicants := ParseCount(row.Get(plan.Applicants))
	if quota == 0 && applicants == 0 {
		return nil
	}

	rec := models.NewRecord(
		ctx.University,
		resolveGroup(row, plan, ctx),
		admissionTypeOf(row, plan, ctx),
		dept,
		quota,
		applicants,
		ParseRate(row.Get(plan.Rate)),
	)
	return &rec
}

// NormalizeBlocks 横向多군表格: 每个군块各产生一条记录,共享同一학과
func NormalizeBlocks(row models.VirtualRow, plan models.ColumnPlan, ctx RecordContext) []models.CompetitionRateRecord {
	dept, ok := departmentOf(row, plan)
	if !ok {
		return nil
	}

	admissionType := admissionTypeOf(row, plan, ctx)
	records := make([]models.CompetitionRateRecord, 0, len(plan.Blocks))
	for _, b := range plan.Blocks {
		quota := ParseCount(row.Get(b.Quota))
		applicants := ParseCount(row.Get(b.Applicants))
		if quota == 0 && applicants == 0 {
			continue
		}
		records = append(records, models.NewRecord(
			ctx.University, b.Group, admissionType, dept,
			quota, applicants, ParseRate(row.Get(b.Rate)),
		))
	}
	return records
}

func departmentOf(row models.VirtualRow, plan models.ColumnPlan) (string, bool) {
	raw := strings.TrimSpace(row.Get(plan.Department))
	if raw == "" || isReservedLabel(raw, "") {
		return "", false
	}
	dept := cleanDepartmentName(raw)
	if dept == "" || isReservedLabel(dept, "") {
		return "", false
	}
	return dept, true
}

// resolveGroup 行级군解析,优先级: 显式군列 > 학과/首列文本 > 表格级군 > unknown
func resolveGroup(row models.VirtualRow, plan models.ColumnPlan, ctx RecordContext) models.AdmissionGroup {
	if plan.Has(plan.Group) {
		if g := models.ParseGroup(row.Get(plan.Group)); g.IsKnown() {
			return g
		}
	}
	if g := ExtractGroup(row.Get(plan.Department)); g.IsKnown() {
		return g
	}
	if plan.Department != 0 {
		if g := ExtractGroup(row.Get(0)); g.IsKnown() {
			return g
		}
	}
	if ctx.TableGroup.IsKnown() {
		return ctx.TableGroup
	}
	return models.GroupUnknown
}

func admissionTypeOf(row models.VirtualRow, plan models.ColumnPlan, ctx RecordContext) string {
	if plan.Has(plan.Type) {
		if t := strings.TrimSpace(row.Get(plan.Type)); t != "" {
			return ExtractAdmissionType(t)
		}
	}
	if ctx.AdmissionType != "" {
		return ctx.AdmissionType
	}
	return DefaultAdmissionType
}

// cleanDepartmentName 去除括号군标记并合并连续空白
func cleanDepartmentName(name string) string {
	s := departmentGroupRe.ReplaceAllString(normalizeSpace(name), " ")
	return strings.Join(strings.Fields(s), " ")
}
