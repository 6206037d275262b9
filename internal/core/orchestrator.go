package core

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/sourcegraph/conc/iter"

	"github.com/RecoveryAshes/ratecrawl/internal/crawlers"
	"github.com/RecoveryAshes/ratecrawl/internal/models"
	"github.com/RecoveryAshes/ratecrawl/internal/parser"
	"github.com/RecoveryAshes/ratecrawl/internal/utils"
)

// Orchestrator 按源调度 获取 → 解码 → 解析 流程
// 每个源独立超时、独立失败,一个源的错误不会影响其他源
type Orchestrator struct {
	config       models.CrawlConfig
	fetcher      crawlers.Fetcher
	showProgress bool
}

// NewOrchestrator 创建调度器
func NewOrchestrator(config models.CrawlConfig, fetcher crawlers.Fetcher) *Orchestrator {
	if config.Workers < 1 {
		config.Workers = 1
	}
	return &Orchestrator{
		config:  config,
		fetcher: fetcher,
	}
}

// SetProgress 是否在终端显示进度条
func (o *Orchestrator) SetProgress(enabled bool) {
	o.showProgress = enabled
}

// Run 处理所有源,返回汇总和全部记录
// 各源结果按输入顺序合并;源内记录保持表格和行的文档顺序
func (o *Orchestrator) Run(ctx context.Context, sources []models.SourceDescriptor) (*models.RunSummary, []models.CompetitionRateRecord) {
	summary := models.NewRunSummary()
	utils.Infof("🚀 开始爬取: %d个源, 并发=%d, 单源超时=%v", len(sources), o.config.Workers, o.config.TimeoutDuration())

	var bar *progressbar.ProgressBar
	if o.showProgress && len(sources) > 0 {
		bar = utils.NewProgressBar(len(sources), "爬取竞争率")
	}

	// 每个任务返回自己的结果,全部完成后按输入顺序合并
	mapper := iter.Mapper[models.SourceDescriptor, models.SourceResult]{MaxGoroutines: o.config.Workers}
	results := mapper.Map(sources, func(src *models.SourceDescriptor) models.SourceResult {
		result := o.processSource(ctx, *src)
		if bar != nil {
			_ = bar.Add(1)
		}
		return result
	})
	if bar != nil {
		_ = bar.Finish()
	}

	records := make([]models.CompetitionRateRecord, 0)
	for _, result := range results {
		summary.Add(result)
		records = append(records, result.Records...)
	}
	summary.Duration = time.Since(summary.StartedAt).Seconds()

	utils.Infof("✅ 爬取完成: 成功=%d, 无数据=%d, 失败=%d, 跳过=%d, 手工=%d, 记录=%d, 耗时=%.2f秒",
		summary.Succeeded, summary.Empty, summary.Failed, summary.Skipped, summary.Manual, summary.Records, summary.Duration)

	return summary, records
}

// processSource 处理单个源,任何错误(包括panic)都记为该源失败
func (o *Orchestrator) processSource(ctx context.Context, src models.SourceDescriptor) (result models.SourceResult) {
	logger := utils.SourceLogger(src.ID, src.DisplayName)
	start := time.Now()

	result = models.SourceResult{
		SourceID: src.ID,
		Name:     src.DisplayName,
		URL:      src.URL,
	}
	defer func() {
		result.Duration = time.Since(start).Seconds()
	}()

	if !src.IsActive {
		result.Status = models.SourceSkipped
		logger.Debug().Msg("源未启用, 跳过")
		return result
	}

	if len(src.Manual) > 0 {
		result.Status = models.SourceManual
		result.Records = manualRecords(src)
		result.RecordCount = len(result.Records)
		logger.Info().Int("records", result.RecordCount).Msg("使用手工注入的数据")
		return result
	}

	defer func() {
		if r := recover(); r != nil {
			result.Status = models.SourceFailed
			result.Records = nil
			result.RecordCount = 0
			result.Error = fmt.Sprintf("处理时发生panic: %v", r)
			logger.Error().Str("stack", string(debug.Stack())).Msg(result.Error)
		}
	}()

	sourceCtx, cancel := context.WithTimeout(ctx, o.config.TimeoutDuration())
	defer cancel()

	page, err := o.fetcher.Fetch(sourceCtx, src.URL)
	if err != nil {
		var fetchErr *models.FetchError
		if errors.As(err, &fetchErr) && fetchErr.SourceID == "" {
			fetchErr.SourceID = src.ID
		}
		result.Status = models.SourceFailed
		result.Error = err.Error()
		logger.Error().Err(err).Str("url", src.URL).Msg("获取页面失败")
		return result
	}

	html := parser.Decode(page.Body, page.ContentType)
	parsed, err := parser.ParsePage(html, src)
	if parsed != nil {
		result.TablesSeen = parsed.TablesSeen
		result.TablesMatched = parsed.TablesMatched
	}
	if err != nil {
		if errors.Is(err, models.ErrNoRateTable) {
			result.Status = models.SourceEmpty
			result.Error = err.Error()
			logger.Warn().Int("tables", result.TablesSeen).Msg("未找到竞争率表格")
			return result
		}
		result.Status = models.SourceFailed
		result.Error = err.Error()
		logger.Error().Err(err).Msg("解析页面失败")
		return result
	}

	if len(parsed.Records) == 0 {
		result.Status = models.SourceEmpty
		result.Error = models.ErrNoRecords.Error()
		logger.Warn().Int("tables_matched", result.TablesMatched).Msg("表格已识别但未解析出记录")
		return result
	}

	result.Status = models.SourceSucceeded
	result.Records = parsed.Records
	result.RecordCount = len(parsed.Records)
	logger.Info().
		Int("tables_matched", result.TablesMatched).
		Int("records", result.RecordCount).
		Msg("解析完成")
	return result
}

// manualRecords 将手工注入的数据转换为记录
// 未给出경쟁률时按 지원인원/모집인원 计算
func manualRecords(src models.SourceDescriptor) []models.CompetitionRateRecord {
	university := parser.CleanUniversityName(src.DisplayName)

	records := make([]models.CompetitionRateRecord, 0, len(src.Manual))
	for _, m := range src.Manual {
		admissionType := m.AdmissionType
		if admissionType == "" {
			admissionType = parser.DefaultAdmissionType
		}
		rate := m.Rate
		if rate <= 0 && m.Quota > 0 {
			rate = float64(m.ApplicantCount) / float64(m.Quota)
		}
		records = append(records, models.NewRecord(
			university,
			models.ParseGroup(m.AdmissionGroup),
			admissionType,
			m.DepartmentName,
			m.Quota,
			m.ApplicantCount,
			rate,
		))
	}
	return records
}
