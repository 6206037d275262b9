package models

import (
	"encoding/json"
	"time"
)

// FetchedPage 获取到的原始页面
// Body保持原始字节,不做字符集转换
type FetchedPage struct {
	URL         string
	StatusCode  int
	ContentType string // 服务器声明的Content-Type(原样)
	Body        []byte
}

// SourceStatus 单个源的处理结果状态
type SourceStatus string

const (
	SourceSucceeded SourceStatus = "succeeded" // 成功
	SourceFailed    SourceStatus = "failed"    // 失败(网络/超时/解析异常)
	SourceEmpty     SourceStatus = "empty"     // 没有匹配的表格或记录
	SourceSkipped   SourceStatus = "skipped"   // 非活跃,已跳过
	SourceManual    SourceStatus = "manual"    // 手工注入
)

// SourceResult 单个源的处理结果
type SourceResult struct {
	SourceID      string                  `json:"source_id"`
	Name          string                  `json:"name"`
	URL           string                  `json:"url"`
	Status        SourceStatus            `json:"status"`
	TablesSeen    int                     `json:"tables_seen"`
	TablesMatched int                     `json:"tables_matched"`
	RecordCount   int                     `json:"record_count"`
	Error         string                  `json:"error,omitempty"`
	Duration      float64                 `json:"duration"` // 秒
	Records       []CompetitionRateRecord `json:"-"`
}

// RunSummary 一次运行的汇总统计
type RunSummary struct {
	RunID      string  `json:"run_id"`
	Sources    int     `json:"sources"`
	Succeeded  int     `json:"succeeded"`
	Failed     int     `json:"failed"`
	Empty      int     `json:"empty"`
	Skipped    int     `json:"skipped"`
	Manual     int     `json:"manual"`
	Records    int     `json:"records"`
	Unresolved int     `json:"unresolved_group"` // 군未能识别的记录数
	Duration   float64 `json:"duration"`         // 秒

	// PerGroup 各군的记录数
	PerGroup map[AdmissionGroup]int `json:"per_group"`

	StartedAt time.Time      `json:"started_at"`
	Results   []SourceResult `json:"results"`
}

// NewRunSummary 创建空汇总
func NewRunSummary() *RunSummary {
	return &RunSummary{
		RunID:     NewRunID(),
		PerGroup:  make(map[AdmissionGroup]int),
		StartedAt: time.Now(),
	}
}

// Add 将一个源的结果计入汇总
func (s *RunSummary) Add(result SourceResult) {
	s.Sources++
	switch result.Status {
	case SourceSucceeded:
		s.Succeeded++
	case SourceFailed:
		s.Failed++
	case SourceEmpty:
		s.Empty++
	case SourceSkipped:
		s.Skipped++
	case SourceManual:
		s.Manual++
	}

	for _, r := range result.Records {
		s.Records++
		if r.AdmissionGroup.IsKnown() {
			s.PerGroup[r.AdmissionGroup]++
		} else {
			s.Unresolved++
		}
	}
	s.Results = append(s.Results, result)
}

// ToJSON 序列化为JSON
func (s *RunSummary) ToJSON() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}
