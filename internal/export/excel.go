package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

const (
	// RecordsSheet 记录工作表名
	RecordsSheet = "경쟁률"

	// SummarySheet 대학별汇总工作表名
	SummarySheet = "대학별"
)

var (
	// 与 models.ExportHeaders 顺序一致
	recordColumnWidths = []float64{22, 8, 20, 30, 10, 10, 10, 14}

	summaryHeaders      = []string{"대학명", "모집단위 수", "모집인원", "지원인원", "경쟁률"}
	summaryColumnWidths = []float64{22, 12, 10, 10, 10}
)

// ExcelExporter 基于excelize的xlsx导出器
type ExcelExporter struct{}

// Extension 实现Exporter接口
func (e *ExcelExporter) Extension() string { return ".xlsx" }

// Export 实现Exporter接口
// 第一个工作表为全部记录,第二个为대학별汇总
func (e *ExcelExporter) Export(path string, records []models.CompetitionRateRecord) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = closeErr
		}
	}()

	if err := f.SetSheetName("Sheet1", RecordsSheet); err != nil {
		return fmt.Errorf("重命名工作表失败: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "bottom", Color: "#9BC2E6", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("创建表头样式失败: %w", err)
	}

	rows := make([][]interface{}, 0, len(records))
	for _, r := range records {
		rows = append(rows, r.ExportRow())
	}
	if err := writeSheet(f, RecordsSheet, models.ExportHeaders, recordColumnWidths, headerStyle, rows); err != nil {
		return err
	}

	totals := summarizeByUniversity(records)
	summaryRows := make([][]interface{}, 0, len(totals))
	for _, u := range totals {
		summaryRows = append(summaryRows, []interface{}{u.name, u.records, u.quota, u.applicants, u.rate()})
	}
	if err := writeSheet(f, SummarySheet, summaryHeaders, summaryColumnWidths, headerStyle, summaryRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if err := utils.EnsureParentDir(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}

	utils.Infof("📊 已导出 %d 条记录: %s", len(records), path)
	return nil
}

// writeSheet 用StreamWriter写入表头和数据行,首行冻结
func writeSheet(f *excelize.File, sheet string, headers []string, widths []float64, headerStyle int, rows [][]interface{}) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("创建StreamWriter失败 [%s]: %w", sheet, err)
	}

	// 列宽和冻结窗格必须在写入任何行之前设置
	for i, width := range widths {
		if err := sw.SetColWidth(i+1, i+1, width); err != nil {
			return err
		}
	}
	if err := sw.SetPanes(&excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	header := make([]interface{}, len(headers))
	for i, h := range headers {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: h}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return err
	}

	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("写入第%d行失败 [%s]: %w", i+2, sheet, err)
		}
	}

	return sw.Flush()
}
