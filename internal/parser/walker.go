package parser

import (
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// 汇总行/表头回显行的保留标签(比较前去除所有空白)
var reservedLabels = map[string]bool{
	"총계": true, "합계": true, "소계": true, "계": true,
	"대학": true, "모집단위": true, "학과": true, "학부": true, "전공": true,
	"모집인원": true, "계열": true, "전체": true, "total": true,
}

var reservedSuffixes = []string{"소계", "합계", "총계"}

// spanState 单列的rowspan继承状态
type spanState struct {
	remaining int
	value     string
}

// Walk 按rowspan/colspan重建表格的逻辑行
//
// 每个至少含一个单元格的物理行产生一个虚拟行,每个逻辑列都有值。
// 被上方rowspan覆盖的列直接继承,不消耗本行的物理单元格;
// 物理单元格不足时剩余列填空字符串。
func Walk(table models.RawTable, plan models.ColumnPlan) []models.VirtualRow {
	width := table.Width()
	if width == 0 {
		width = plan.Width
	}
	if width == 0 {
		return nil
	}

	state := make([]spanState, width)
	rows := make([]models.VirtualRow, 0, len(table.Rows))
	quotaCols := plan.QuotaColumns()
	deptHeader := departmentHeader(table, plan)

	// 모집인원的继承来源: 最近一个학과不是汇总标签的行
	source := -1

	for idx, physical := range table.Rows {
		if len(physical) == 0 {
			// 空<tr>不产生虚拟行,但仍然占用被rowspan覆盖的行
			for col := range state {
				if state[col].remaining > 0 {
					state[col].remaining--
				}
			}
			continue
		}

		row := models.VirtualRow{
			RowIndex:  idx,
			Cells:     make([]string, width),
			Inherited: make([]bool, width),
		}

		next := 0
		for col := 0; col < width; col++ {
			if state[col].remaining > 0 {
				row.Cells[col] = state[col].value
				row.Inherited[col] = true
				state[col].remaining--
				continue
			}
			if next >= len(physical) {
				continue
			}

			cell := physical[next]
			next++
			span := max(cell.ColSpan, 1)
			filled := 0
			for dc := 0; dc < span && col+dc < width; dc++ {
				c := col + dc
				if dc > 0 && state[c].remaining > 0 {
					// colspan撞上仍在继承的列时以继承值为准
					break
				}
				row.Cells[c] = cell.Text
				if cell.RowSpan > 1 {
					state[c] = spanState{remaining: cell.RowSpan - 1, value: cell.Text}
				}
				filled++
			}
			col += filled - 1
		}

		if source >= 0 {
			inheritQuota(&row, rows[source], plan, quotaCols)
		}
		if dept := strings.TrimSpace(row.Get(plan.Department)); dept != "" && !isReservedLabel(dept, deptHeader) {
			source = len(rows)
		}
		rows = append(rows, row)
	}

	return rows
}

// inheritQuota 모집인원单元格为空且没有rowspan继承时,沿用上一个학과行的值
// 部分页面视觉上合并了모집인원单元格,却在子行上丢掉了rowspan属性
func inheritQuota(row *models.VirtualRow, last models.VirtualRow, plan models.ColumnPlan, quotaCols []int) {
	if strings.TrimSpace(row.Get(plan.Department)) == "" {
		return
	}
	for _, col := range quotaCols {
		if col >= len(row.Cells) || row.Inherited[col] || strings.TrimSpace(row.Cells[col]) != "" {
			continue
		}
		row.Cells[col] = last.Get(col)
	}
}

// WalkRows 重建逻辑行并丢弃학과为空或为保留标签的行
func WalkRows(table models.RawTable, plan models.ColumnPlan) []models.VirtualRow {
	if !plan.Has(plan.Department) {
		return nil
	}

	deptHeader := departmentHeader(table, plan)
	all := Walk(table, plan)
	rows := make([]models.VirtualRow, 0, len(all))
	for _, row := range all {
		dept := strings.TrimSpace(row.Get(plan.Department))
		if dept == "" || isReservedLabel(dept, deptHeader) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

func departmentHeader(table models.RawTable, plan models.ColumnPlan) string {
	if plan.Department >= 0 && plan.Department < len(table.Headers) {
		return table.Headers[plan.Department]
	}
	return ""
}

// isReservedLabel 判断是否为汇总行或表头回显标签
func isReservedLabel(text, header string) bool {
	s := compact(text)
	if s == "" {
		return false
	}
	if reservedLabels[strings.ToLower(s)] {
		return true
	}
	for _, suffix := range reservedSuffixes {
		if strings.HasSuffix(s, suffix) {
			return true
		}
	}
	return header != "" && s == compact(header)
}
