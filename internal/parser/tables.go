package parser

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

const (
	// maxContextDepth 向上查找前置文本时最多回溯的祖先层数
	maxContextDepth = 3

	// maxContextTexts 每个表格最多收集的上下文候选数
	maxContextTexts = 4

	// maxLabelRunes 上下文文本的最大长度(过长的一般是正文段落而不是标题)
	maxLabelRunes = 120

	// maxSpan rowspan/colspan的上限,防止异常属性撑爆网格
	maxSpan = 500

	// maxHeaderScan 没有th表头时,在前几行中查找학과表头行
	maxHeaderScan = 3
)

// ExtractTables 按文档顺序提取页面中的所有数据表格
// 包含嵌套表格的布局表格会被跳过
func ExtractTables(doc *goquery.Document) []models.RawTable {
	tables := make([]models.RawTable, 0)

	doc.Find("table").Each(func(i int, tbl *goquery.Selection) {
		if tbl.Find("table").Length() > 0 {
			return
		}

		rt, titles := buildRawTable(tbl)
		rt.Index = len(tables)
		rt.Context = tableContext(tbl, titles)
		if len(rt.Context) > 0 {
			rt.Label = rt.Context[0]
		}
		tables = append(tables, rt)
	})

	return tables
}

// buildRawTable 将table元素转换为RawTable(表头行 + 数据行)
// 表头上方占满整行的标题行(如 "가군 일반전형 경쟁률 현황")不参与表头展开,作为上下文返回
func buildRawTable(tbl *goquery.Selection) (models.RawTable, []string) {
	var headerRows, rows, bodyRows [][]models.RawCell

	thead := tbl.ChildrenFiltered("thead")
	thead.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
		headerRows = append(headerRows, rowCells(tr))
	})

	tbl.ChildrenFiltered("tbody, tfoot, tr").Each(func(_ int, sec *goquery.Selection) {
		if goquery.NodeName(sec) == "tr" {
			rows = append(rows, rowCells(sec))
			return
		}
		sec.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
			rows = append(rows, rowCells(tr))
		})
	})

	width := max(gridWidth(headerRows), gridWidth(rows))

	var titles []string
	headerRows, titles = peelTitleRows(headerRows, width)
	if len(headerRows) == 0 {
		var more []string
		headerRows, bodyRows, more = splitHeaderRows(rows, width)
		titles = append(titles, more...)
	} else {
		bodyRows = rows
	}

	return models.RawTable{
		Headers:    expandHeaders(headerRows),
		HeaderRows: headerRows,
		Rows:       bodyRows,
	}, titles
}

// splitHeaderRows 没有thead时推断表头行:
// 去掉开头的标题行后,连续的全th行为表头;
// 若没有th行,在前maxHeaderScan行中找학과表头行,其上方的行作为标题
func splitHeaderRows(rows [][]models.RawCell, width int) (header, body [][]models.RawCell, titles []string) {
	rest, titles := peelTitleRows(rows, width)

	n := 0
	for n < len(rest) && allHeaderCells(rest[n]) {
		n++
	}
	if n > 0 {
		return rest[:n], rest[n:], titles
	}

	for i := 0; i < len(rest) && i < maxHeaderScan; i++ {
		if !isHeaderRow(rest[i]) {
			continue
		}
		for _, r := range rest[:i] {
			if text := rowText(r); text != "" {
				titles = append(titles, text)
			}
		}
		return rest[i : i+1], rest[i+1:], titles
	}
	return nil, rows, nil
}

// peelTitleRows 去掉开头由单个占满整行的单元格构成的标题行
func peelTitleRows(rows [][]models.RawCell, width int) ([][]models.RawCell, []string) {
	var titles []string
	for len(rows) > 0 && isTitleRow(rows[0], width) {
		titles = append(titles, rows[0][0].Text)
		rows = rows[1:]
	}
	return rows, titles
}

func isTitleRow(row []models.RawCell, width int) bool {
	return width > 1 && len(row) == 1 && row[0].ColSpan >= width && row[0].Text != ""
}

// isHeaderRow 同时含학과类标记和数值列标记的行才视为表头
// "국어국문학과"之类的数据行只命中前者
func isHeaderRow(row []models.RawCell) bool {
	dept, numeric := false, false
	for _, c := range row {
		switch {
		case isDepartmentHeader(c.Text):
			dept = true
		case isNumericHeader(c.Text):
			numeric = true
		}
	}
	return dept && numeric
}

// gridWidth 多单元格行按colspan累计的最大宽度
func gridWidth(rows [][]models.RawCell) int {
	width := 0
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		w := 0
		for _, c := range row {
			w += max(c.ColSpan, 1)
		}
		width = max(width, w)
	}
	return width
}

func rowText(row []models.RawCell) string {
	parts := make([]string, 0, len(row))
	for _, c := range row {
		if c.Text != "" {
			parts = append(parts, c.Text)
		}
	}
	return strings.Join(parts, " ")
}

func allHeaderCells(row []models.RawCell) bool {
	if len(row) == 0 {
		return false
	}
	for _, c := range row {
		if !c.IsHeader {
			return false
		}
	}
	return true
}

// rowCells 提取一行中的th/td单元格
func rowCells(tr *goquery.Selection) []models.RawCell {
	cells := make([]models.RawCell, 0)
	tr.ChildrenFiltered("th, td").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, models.RawCell{
			Text:     cellText(cell),
			RowSpan:  spanAttr(cell, "rowspan"),
			ColSpan:  spanAttr(cell, "colspan"),
			IsHeader: goquery.NodeName(cell) == "th",
		})
	})
	return cells
}

// cellText 单元格文本: 不间断空格替换为空格,仅trim两端(保留内部的连续空格)
func cellText(cell *goquery.Selection) string {
	return strings.TrimSpace(normalizeSpace(cell.Text()))
}

func spanAttr(cell *goquery.Selection, name string) int {
	v, ok := cell.Attr(name)
	if !ok {
		return 1
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 1 {
		return 1
	}
	if n > maxSpan {
		return maxSpan
	}
	return n
}

// expandHeaders 将多行表头按rowspan/colspan展开为逻辑列
// 每个逻辑列的表头文本由上到下去重后以空格连接,如 "지원현황 경쟁률"
func expandHeaders(rows [][]models.RawCell) []string {
	if len(rows) == 0 {
		return nil
	}

	grid := make([][]string, len(rows))
	for r, row := range rows {
		col := 0
		for _, cell := range row {
			for col < len(grid[r]) && strings.HasPrefix(grid[r][col], "\x00") {
				col++
			}
			for dr := 0; dr < cell.RowSpan && r+dr < len(rows); dr++ {
				for dc := 0; dc < cell.ColSpan; dc++ {
					setGrid(grid, r+dr, col+dc, cell.Text)
				}
			}
			col += cell.ColSpan
		}
	}

	width := 0
	for _, row := range grid {
		if len(row) > width {
			width = len(row)
		}
	}

	headers := make([]string, width)
	for c := 0; c < width; c++ {
		parts := make([]string, 0, len(grid))
		for r := range grid {
			if c >= len(grid[r]) {
				continue
			}
			text := strings.TrimPrefix(grid[r][c], "\x00")
			if text == "" {
				continue
			}
			if len(parts) > 0 && parts[len(parts)-1] == text {
				continue
			}
			parts = append(parts, text)
		}
		headers[c] = strings.Join(parts, " ")
	}
	return headers
}

// setGrid 写入网格,已占用的格子用"\x00"前缀标记(空文本单元也需要占位)
func setGrid(grid [][]string, r, c int, text string) {
	for len(grid[r]) <= c {
		grid[r] = append(grid[r], "")
	}
	grid[r][c] = "\x00" + text
}

// tableContext 收集表格的上下文候选文本: caption优先,其次是表内标题行,
// 最后是就近的前置兄弟节点文本
// 遇到前一个表格即停止,避免借用上一个表格的标题
func tableContext(tbl *goquery.Selection, titles []string) []string {
	texts := make([]string, 0, maxContextTexts)
	full := func() bool { return len(texts) >= maxContextTexts }
	add := func(s string) {
		s = strings.TrimSpace(normalizeSpace(s))
		if s == "" || len([]rune(s)) > maxLabelRunes {
			return
		}
		texts = append(texts, s)
	}

	if caption := tbl.ChildrenFiltered("caption"); caption.Length() > 0 {
		add(caption.Text())
	}
	for _, title := range titles {
		if !full() {
			add(title)
		}
	}

	node := tbl
	for depth := 0; depth <= maxContextDepth && !full(); depth++ {
		boundary := false
		node.PrevAll().EachWithBreak(func(_ int, prev *goquery.Selection) bool {
			if prev.Is("script, style") {
				return true
			}
			if prev.Is("table") || prev.Find("table").Length() > 0 {
				boundary = true
				return false
			}
			add(prev.Text())
			return !full()
		})
		if boundary || len(texts) > 0 {
			break
		}
		node = node.Parent()
		if node.Length() == 0 || node.Is("body, html") {
			break
		}
	}
	return texts
}
