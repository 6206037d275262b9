package models

import (
	"fmt"
	"net/url"
	"path"
	"strings"
)

// SourceDescriptor 一个可爬取单元(一所大学的竞争率页面)
// 在配置阶段创建,运行期间不可变
type SourceDescriptor struct {
	ID          string `json:"source_id"`    // 由URL派生的稳定键
	DisplayName string `json:"display_name"` // 大学名(已去除后缀噪声)
	URL         string `json:"url"`          // 页面地址
	IsActive    bool   `json:"is_active"`    // 非活跃的源直接跳过

	// Manual 手工注入的数据(仅用于完全无法解析的页面)
	// 非空时不发起请求,直接输出这些记录
	Manual []ManualRecord `json:"manual,omitempty"`
}

// ManualRecord 手工注入的单条记录
type ManualRecord struct {
	AdmissionGroup string  `mapstructure:"group" yaml:"group" json:"group"`
	AdmissionType  string  `mapstructure:"type" yaml:"type" json:"type"`
	DepartmentName string  `mapstructure:"department" yaml:"department" json:"department"`
	Quota          int     `mapstructure:"quota" yaml:"quota" json:"quota"`
	ApplicantCount int     `mapstructure:"applicants" yaml:"applicants" json:"applicants"`
	Rate           float64 `mapstructure:"rate" yaml:"rate" json:"rate"`
}

// SourceEntry sources.yaml中的一项
type SourceEntry struct {
	Name   string         `mapstructure:"name" yaml:"name"`
	URL    string         `mapstructure:"url" yaml:"url"`
	Active *bool          `mapstructure:"active" yaml:"active"` // 缺省为true
	Manual []ManualRecord `mapstructure:"manual" yaml:"manual"`
}

// SourceConfig 表示sources.yaml配置文件的结构
type SourceConfig struct {
	Sources []SourceEntry `mapstructure:"sources" yaml:"sources"`
}

// NewSourceDescriptor 根据配置项创建SourceDescriptor
func NewSourceDescriptor(entry SourceEntry) (SourceDescriptor, error) {
	rawURL := strings.TrimSpace(entry.URL)
	if err := ValidateURL(rawURL); err != nil {
		return SourceDescriptor{}, fmt.Errorf("源 [%s] URL无效: %w", entry.Name, err)
	}

	active := true
	if entry.Active != nil {
		active = *entry.Active
	}

	return SourceDescriptor{
		ID:          SourceIDFromURL(rawURL),
		DisplayName: strings.TrimSpace(entry.Name),
		URL:         rawURL,
		IsActive:    active,
		Manual:      entry.Manual,
	}, nil
}

// SourceIDFromURL 从URL派生稳定的源ID
// 格式: {主机名(去掉www.)}/{最后一段路径(去掉扩展名)}
//
//	https://addon.jinhakapply.com/RatioV1/RatioH/Ratio10190231.html -> addon.jinhakapply.com/Ratio10190231
//	http://ratio.uwayapply.com/Sl5KOk4mZkpMYGZKZiUmOiZKLWZUZg==      -> ratio.uwayapply.com/Sl5KOk4mZkpMYGZKZiUmOiZKLWZUZg==
func SourceIDFromURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	host := strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	segment := path.Base(strings.TrimRight(parsed.Path, "/"))
	if segment == "." || segment == "/" {
		segment = ""
	}
	segment = strings.TrimSuffix(segment, path.Ext(segment))

	if segment == "" && parsed.RawQuery != "" {
		segment = parsed.RawQuery
	}
	if segment == "" {
		return host
	}
	return host + "/" + segment
}
