package models

// RawCell 表格中的一个物理单元格
type RawCell struct {
	Text     string // 已trim的单元格文本
	RowSpan  int    // >=1
	ColSpan  int    // >=1
	IsHeader bool   // 是否为th
}

// RawTable 解析后的HTML表格,仅在解析单个页面期间存在
type RawTable struct {
	// Index 表格在页面中的序号(从0开始,按文档顺序)
	Index int

	// Label 表格的上下文标签(caption或前置标题文本)
	Label string

	// Context 按优先级排列的候选上下文文本(caption优先,其次是就近的前置文本)
	Context []string

	// Headers 逻辑列的表头文本(多行表头已展开合并)
	Headers []string

	// HeaderRows 原始表头行
	HeaderRows [][]RawCell

	// Rows 数据行(物理行,按文档顺序)
	Rows [][]RawCell
}

// Width 表头声明的逻辑列数
func (t *RawTable) Width() int {
	return len(t.Headers)
}

// NotFound 列未找到
const NotFound = -1

// GroupBlock 横向多군表格中某一군占用的列
type GroupBlock struct {
	Group      AdmissionGroup
	Quota      int
	Applicants int
	Rate       int
}

// ColumnPlan 单个表格的列规划,由表头一次性推导,之后只读
type ColumnPlan struct {
	// DataBearing 表格是否包含学科级别的竞争率数据
	DataBearing bool

	Department int // 모집단위
	Quota      int // 모집인원
	Applicants int // 지원인원
	Rate       int // 경쟁률
	Group      int // 显式的군列 (군 / 모집군)
	Type       int // 전형列(可选)

	// HeaderGroups 表头文本本身编码了군的列
	HeaderGroups map[int]AdmissionGroup

	// MultiGroup 表头中出现>=2个不同的군(横向排布的多군表格)
	MultiGroup bool

	// Blocks 多군表格中每个군的列块,按首次出现顺序
	Blocks []GroupBlock

	// HeaderGroup 表头中仅出现一个군时记录该군,作为表格级补充
	HeaderGroup AdmissionGroup

	// Width 表头逻辑列数
	Width int
}

// Has 判断列索引是否有效
func (p ColumnPlan) Has(col int) bool {
	return col >= 0 && col < p.Width
}

// QuotaColumns 所有모집인원列(包括多군块内的列)
func (p ColumnPlan) QuotaColumns() []int {
	cols := make([]int, 0, 1+len(p.Blocks))
	if p.MultiGroup {
		for _, b := range p.Blocks {
			if p.Has(b.Quota) {
				cols = append(cols, b.Quota)
			}
		}
		return cols
	}
	if p.Has(p.Quota) {
		cols = append(cols, p.Quota)
	}
	return cols
}

// VirtualRow 重建后的逻辑行
// 每个表头声明的列都有值(确实缺失时为空字符串)
type VirtualRow struct {
	// RowIndex 对应的物理数据行序号
	RowIndex int

	// Cells 逻辑列索引 -> 解析后的文本
	Cells []string

	// Inherited 该列的值是否来自上方行的rowspan继承
	Inherited []bool
}

// Get 安全获取列值
func (r VirtualRow) Get(col int) string {
	if col < 0 || col >= len(r.Cells) {
		return ""
	}
	return r.Cells[col]
}
