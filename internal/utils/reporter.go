package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/RecoveryAshes/ratecrawl/internal/models"
)

// Reporter 运行报告生成器
type Reporter struct {
	reportsDir string
}

// NewReporter 创建报告生成器,报告写入 {outputDir}/reports
func NewReporter(outputDir string) *Reporter {
	return &Reporter{
		reportsDir: filepath.Join(outputDir, "reports"),
	}
}

// GenerateReport 保存运行报告 reports/run_<时间戳>.json
// 返回报告文件路径
func (r *Reporter) GenerateReport(summary *models.RunSummary) (string, error) {
	if err := os.MkdirAll(r.reportsDir, 0755); err != nil {
		return "", fmt.Errorf("创建报告目录失败: %w", err)
	}

	startedAt := summary.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	path := TimestampedPath(r.reportsDir, "run", ".json", startedAt)

	if err := r.saveJSONReport(path, summary); err != nil {
		return "", err
	}

	Infof("运行报告已生成: %s", path)
	return path, nil
}

// saveJSONReport 保存JSON报告
func (r *Reporter) saveJSONReport(path string, data interface{}) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化JSON失败: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("写入报告文件失败: %w", err)
	}

	Debugf("保存报告: %s", path)
	return nil
}

// FormatSummary 生成控制台汇总文本
func FormatSummary(summary *models.RunSummary) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	b.WriteString("爬取完成!\n")
	fmt.Fprintf(&b, "源总数: %d (成功 %d, 无数据 %d, 失败 %d, 跳过 %d, 手工 %d)\n",
		summary.Sources, summary.Succeeded, summary.Empty, summary.Failed, summary.Skipped, summary.Manual)
	fmt.Fprintf(&b, "记录总数: %d\n", summary.Records)

	for _, group := range models.AllGroups {
		fmt.Fprintf(&b, "  %s: %d\n", group, summary.PerGroup[group])
	}
	if summary.Unresolved > 0 {
		fmt.Fprintf(&b, "  군未识别: %d\n", summary.Unresolved)
	}
	fmt.Fprintf(&b, "耗时: %.2f秒\n", summary.Duration)

	failed := make([]models.SourceResult, 0)
	for _, result := range summary.Results {
		if result.Status == models.SourceFailed {
			failed = append(failed, result)
		}
	}
	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i].SourceID < failed[j].SourceID })
		b.WriteString("失败的源:\n")
		for _, result := range failed {
			fmt.Fprintf(&b, "  - %s (%s): %s\n", result.Name, result.SourceID, result.Error)
		}
	}
	b.WriteString(strings.Repeat("=", 60))
	return b.String()
}

// NewProgressBar 创建进度条
func NewProgressBar(max int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(max,
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}
