package parser

import (
	"strings"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// 학과类表头标记,按优先级排列
var departmentMarkers = []string{"모집단위", "학과", "전공"}

// 数值列表头标记(모집인원/지원인원/경쟁률)
var numericMarkers = []string{"인원", "지원", "경쟁", "정원"}

// columnRule 语义列的表头匹配规则
type columnRule struct {
	include []string // 按优先级依次尝试的子串
	exclude []string // 包含这些子串的表头不参与匹配
}

var (
	quotaRule = columnRule{
		include: []string{"모집인원", "인원", "정원"},
		exclude: []string{"지원", "모집단위", "경쟁"},
	}
	applicantRule = columnRule{
		include: []string{"지원인원", "지원자", "지원"},
		exclude: []string{"경쟁", "모집인원"},
	}
	rateRule = columnRule{
		include: []string{"경쟁률", "경쟁"},
	}
	typeRule = columnRule{
		include: []string{"전형"},
		exclude: []string{"모집단위", "학과", "전공", "인원", "지원", "경쟁", "정원"},
	}
)

// 显式군列的表头(精确匹配)
var groupHeaders = map[string]bool{"군": true, "모집군": true}

func isDepartmentHeader(text string) bool {
	for _, m := range departmentMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

func isNumericHeader(text string) bool {
	for _, m := range numericMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// Classify 根据表头推导列规划
//
// 表头中没有任何학과类标记的表格被视为非数据表格(DataBearing=false)。
// 数值列先按表头子串匹配,找不到时按相对학과列的位置回退:
// 모집인원 = 학과+1, 지원인원 = 모집인원+1, 경쟁률 = 지원인원+1
func Classify(headers []string) models.ColumnPlan {
	plan := models.ColumnPlan{
		Department:   models.NotFound,
		Quota:        models.NotFound,
		Applicants:   models.NotFound,
		Rate:         models.NotFound,
		Group:        models.NotFound,
		Type:         models.NotFound,
		HeaderGroups: make(map[int]models.AdmissionGroup),
		HeaderGroup:  models.GroupUnknown,
		Width:        len(headers),
	}

	texts := make([]string, len(headers))
	for i, h := range headers {
		texts[i] = compact(h)
	}

	for _, marker := range departmentMarkers {
		if idx := indexContaining(texts, marker, nil, nil); idx != models.NotFound {
			plan.Department = idx
			break
		}
	}
	if plan.Department == models.NotFound {
		return plan
	}
	plan.DataBearing = true

	for i, t := range texts {
		if groupHeaders[t] {
			plan.Group = i
			break
		}
	}

	for i, h := range headers {
		if i == plan.Department || i == plan.Group {
			continue
		}
		if g := ExtractGroup(h); g.IsKnown() {
			plan.HeaderGroups[i] = g
		}
	}

	claimed := map[int]bool{plan.Department: true}
	if plan.Group != models.NotFound {
		claimed[plan.Group] = true
	}
	plan.Type = findColumn(texts, typeRule, claimed, nil)
	if plan.Type != models.NotFound {
		claimed[plan.Type] = true
	}

	groups := distinctGroups(plan.HeaderGroups)
	switch {
	case len(groups) >= 2:
		plan.MultiGroup = true
		plan.Blocks = buildBlocks(texts, plan.HeaderGroups, groups, claimed)
	case len(groups) == 1:
		plan.HeaderGroup = groups[0]
	}

	plan.Quota = findColumn(texts, quotaRule, claimed, nil)
	if plan.Quota == models.NotFound {
		plan.Quota = positional(plan.Department+1, plan.Width, claimed)
	}
	if plan.Quota != models.NotFound {
		claimed[plan.Quota] = true
	}

	plan.Applicants = findColumn(texts, applicantRule, claimed, nil)
	if plan.Applicants == models.NotFound && plan.Quota != models.NotFound {
		plan.Applicants = positional(plan.Quota+1, plan.Width, claimed)
	}
	if plan.Applicants != models.NotFound {
		claimed[plan.Applicants] = true
	}

	plan.Rate = findColumn(texts, rateRule, claimed, nil)
	if plan.Rate == models.NotFound && plan.Applicants != models.NotFound {
		plan.Rate = positional(plan.Applicants+1, plan.Width, claimed)
	}

	return plan
}

// buildBlocks 为横向多군表格构建每个군的列块
func buildBlocks(texts []string, headerGroups map[int]models.AdmissionGroup, groups []models.AdmissionGroup, claimed map[int]bool) []models.GroupBlock {
	blocks := make([]models.GroupBlock, 0, len(groups))
	for _, g := range groups {
		cols := make([]int, 0)
		for i := range texts {
			if headerGroups[i] == g && !claimed[i] {
				cols = append(cols, i)
			}
		}
		inBlock := make(map[int]bool, len(cols))
		for _, c := range cols {
			inBlock[c] = true
		}

		used := make(map[int]bool)
		pick := func(rule columnRule, fallback int) int {
			if idx := findColumn(texts, rule, used, inBlock); idx != models.NotFound {
				used[idx] = true
				return idx
			}
			if fallback < len(cols) && !used[cols[fallback]] {
				used[cols[fallback]] = true
				return cols[fallback]
			}
			return models.NotFound
		}

		block := models.GroupBlock{Group: g}
		block.Quota = pick(quotaRule, 0)
		block.Applicants = pick(applicantRule, 1)
		block.Rate = pick(rateRule, 2)
		blocks = append(blocks, block)
	}
	return blocks
}

// findColumn 按规则查找列; within非nil时只在其中查找
func findColumn(texts []string, rule columnRule, claimed, within map[int]bool) int {
	for _, inc := range rule.include {
		if idx := indexContaining(texts, inc, rule.exclude, func(i int) bool {
			return claimed[i] || (within != nil && !within[i])
		}); idx != models.NotFound {
			return idx
		}
	}
	return models.NotFound
}

func indexContaining(texts []string, needle string, exclude []string, skip func(int) bool) int {
	for i, t := range texts {
		if skip != nil && skip(i) {
			continue
		}
		if !strings.Contains(t, needle) {
			continue
		}
		excluded := false
		for _, ex := range exclude {
			if ex != needle && strings.Contains(t, ex) && !strings.Contains(needle, ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			return i
		}
	}
	return models.NotFound
}

func positional(idx, width int, claimed map[int]bool) int {
	if idx < 0 || idx >= width || claimed[idx] {
		return models.NotFound
	}
	return idx
}

func distinctGroups(headerGroups map[int]models.AdmissionGroup) []models.AdmissionGroup {
	seen := make(map[models.AdmissionGroup]int)
	for col, g := range headerGroups {
		if first, ok := seen[g]; !ok || col < first {
			seen[g] = col
		}
	}

	groups := make([]models.AdmissionGroup, 0, len(seen))
	for _, g := range models.AllGroups {
		if _, ok := seen[g]; ok {
			groups = append(groups, g)
		}
	}
	// 按首次出现的列排序
	for i := 1; i < len(groups); i++ {
		for j := i; j > 0 && seen[groups[j]] < seen[groups[j-1]]; j-- {
			groups[j], groups[j-1] = groups[j-1], groups[j]
		}
	}
	return groups
}

// compact 去除所有空白,用于表头比较
func compact(s string) string {
	return strings.Join(strings.Fields(normalizeSpace(s)), "")
}
