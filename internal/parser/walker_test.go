package parser

import (
	"testing"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// cell 构造单元格的测试辅助函数
func cell(text string) models.RawCell {
	return models.RawCell{Text: text, RowSpan: 1, ColSpan: 1}
}

func spanned(text string, rowspan, colspan int) models.RawCell {
	return models.RawCell{Text: text, RowSpan: rowspan, ColSpan: colspan}
}

func row(texts ...string) []models.RawCell {
	cells := make([]models.RawCell, len(texts))
	for i, t := range texts {
		cells[i] = cell(t)
	}
	return cells
}

func newTable(headers []string, rows ...[]models.RawCell) models.RawTable {
	return models.RawTable{Headers: headers, Rows: rows}
}

var rateHeaders = []string{"모집단위", "모집인원", "지원인원", "경쟁률"}

func TestWalk_RowspanInheritance(t *testing.T) {
	table := newTable(
		[]string{"계열", "모집단위", "모집인원", "지원인원", "경쟁률"},
		[]models.RawCell{spanned("인문대학", 3, 1), cell("국어국문학과"), cell("10"), cell("25"), cell("2.50")},
		row("영어영문학과", "12", "30", "2.50"),
		row("사학과", "8", "16", "2.00"),
	)
	plan := Classify(table.Headers)

	rows := Walk(table, plan)
	if len(rows) != 3 {
		t.Fatalf("期望3个虚拟行, got %d", len(rows))
	}
	for i, r := range rows {
		if r.Cells[0] != "인문대학" {
			t.Errorf("第%d行继承值 = %q, want 인문대학", i, r.Cells[0])
		}
	}
	if rows[0].Inherited[0] || !rows[1].Inherited[0] || !rows[2].Inherited[0] {
		t.Errorf("Inherited标记错误: %v %v %v", rows[0].Inherited, rows[1].Inherited, rows[2].Inherited)
	}
	if rows[2].Cells[1] != "사학과" || rows[2].Cells[4] != "2.00" {
		t.Errorf("第3行错位: %v", rows[2].Cells)
	}
}

func TestWalk_RowInvariant(t *testing.T) {
	table := newTable(rateHeaders,
		row("물리학과", "15", "30", "2.00"),
		nil,
		row("화학과"),
		[]models.RawCell{spanned("합계", 1, 2), cell("200"), cell("2.00")},
	)
	plan := Classify(table.Headers)

	rows := Walk(table, plan)
	if len(rows) != 3 {
		t.Fatalf("虚拟行数应等于非空物理行数3, got %d", len(rows))
	}
	for i, r := range rows {
		if len(r.Cells) != len(table.Headers) || len(r.Inherited) != len(table.Headers) {
			t.Errorf("第%d行列数 = %d, want %d", i, len(r.Cells), len(table.Headers))
		}
	}

	t.Run("物理单元格不足时填空", func(t *testing.T) {
		if rows[1].Cells[0] != "화학과" || rows[1].Cells[2] != "" || rows[1].Cells[3] != "" {
			t.Errorf("got %v", rows[1].Cells)
		}
	})

	t.Run("colspan填充多个逻辑列", func(t *testing.T) {
		want := []string{"합계", "합계", "200", "2.00"}
		for i, v := range want {
			if rows[2].Cells[i] != v {
				t.Errorf("Cells[%d] = %q, want %q", i, rows[2].Cells[i], v)
			}
		}
	})

	if rows[1].RowIndex != 2 {
		t.Errorf("RowIndex应对应物理行, got %d", rows[1].RowIndex)
	}
}

func TestWalk_QuotaInheritance(t *testing.T) {
	t.Run("모집인원为空时沿用上一行", func(t *testing.T) {
		table := newTable(rateHeaders,
			row("물리학과", "15", "30", "2.00"),
			row("화학과", "", "45", "3.00"),
		)
		rows := Walk(table, Classify(table.Headers))
		if rows[1].Cells[1] != "15" {
			t.Errorf("got %q, want 15", rows[1].Cells[1])
		}
		if rows[1].Inherited[1] {
			t.Error("这不是rowspan继承")
		}
	})

	t.Run("rowspan继承的모집인원不消耗单元格", func(t *testing.T) {
		table := newTable(rateHeaders,
			[]models.RawCell{cell("물리학과"), spanned("15", 2, 1), cell("30"), cell("2.00")},
			row("화학과", "45", "3.00"),
		)
		rows := Walk(table, Classify(table.Headers))
		if rows[1].Cells[1] != "15" || rows[1].Cells[2] != "45" || rows[1].Cells[3] != "3.00" {
			t.Errorf("got %v", rows[1].Cells)
		}
	})

	t.Run("不从소계行继承", func(t *testing.T) {
		table := newTable(rateHeaders,
			row("A학과", "10", "20", "2.00"),
			row("소계", "30", "60", "2.00"),
			row("B학과", "", "5", ""),
		)
		rows := WalkRows(table, Classify(table.Headers))
		if len(rows) != 2 {
			t.Fatalf("期望2行, got %d", len(rows))
		}
		if rows[1].Cells[0] != "B학과" || rows[1].Cells[1] != "10" {
			t.Errorf("got %v, want 모집인원=10", rows[1].Cells)
		}
	})

	t.Run("학과为空时不继承", func(t *testing.T) {
		table := newTable(rateHeaders,
			row("물리학과", "15", "30", "2.00"),
			row("", "", "", ""),
		)
		rows := Walk(table, Classify(table.Headers))
		if rows[1].Cells[1] != "" {
			t.Errorf("got %q", rows[1].Cells[1])
		}
	})
}

func TestWalk_EmptyRowKeepsSpan(t *testing.T) {
	// 空<tr>位于rowspan范围内时同样消耗一行
	table := newTable([]string{"계열", "모집단위", "모집인원"},
		[]models.RawCell{spanned("공학계열", 3, 1), cell("기계공학과"), cell("20")},
		nil,
		row("전자공학과", "30"),
	)
	rows := Walk(table, Classify(table.Headers))
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[1].Cells[0] != "공학계열" || rows[1].Cells[1] != "전자공학과" {
		t.Errorf("got %v", rows[1].Cells)
	}
}

func TestWalkRows(t *testing.T) {
	t.Run("空表格返回空列表", func(t *testing.T) {
		table := newTable(rateHeaders)
		if rows := WalkRows(table, Classify(table.Headers)); len(rows) != 0 {
			t.Errorf("got %d rows", len(rows))
		}
	})

	t.Run("过滤汇总行和表头回显行", func(t *testing.T) {
		table := newTable(rateHeaders,
			row("국어국문학과", "10", "25", "2.50"),
			row("총계", "10", "25", "2.50"),
			row("합계", "1", "1", "1"),
			row("소계", "1", "1", "1"),
			row("인문대학 소계", "1", "1", "1"),
			row("모집단위", "모집인원", "지원인원", "경쟁률"),
			row("   ", "3", "3", "1.00"),
			row("TOTAL", "3", "3", "1.00"),
			row("경영학과", "5", "10", "2.00"),
		)
		rows := WalkRows(table, Classify(table.Headers))
		if len(rows) != 2 {
			t.Fatalf("期望保留2行, got %d", len(rows))
		}
		if rows[0].Cells[0] != "국어국문학과" || rows[1].Cells[0] != "경영학과" {
			t.Errorf("got %q %q", rows[0].Cells[0], rows[1].Cells[0])
		}
	})

	t.Run("非数据表格", func(t *testing.T) {
		table := newTable([]string{"구분", "비고"}, row("a", "b"))
		if rows := WalkRows(table, Classify(table.Headers)); rows != nil {
			t.Errorf("got %v", rows)
		}
	})
}

func TestIsReservedLabel(t *testing.T) {
	reserved := []string{"총계", "합 계", "소계", "계", "대학", "학부", "전체", "Total", "공과대학소계"}
	for _, s := range reserved {
		if !isReservedLabel(s, "") {
			t.Errorf("%q应为保留标签", s)
		}
	}

	normal := []string{"국어국문학과", "계열통합", "대학원연계", ""}
	for _, s := range normal {
		if isReservedLabel(s, "") {
			t.Errorf("%q不应为保留标签", s)
		}
	}

	if !isReservedLabel("학과 (전공)", "학과(전공)") {
		t.Error("与学科列表头相同的文本应视为表头回显")
	}
}
