package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRateTable 页面中没有任何可识别的竞争率表格
	ErrNoRateTable = errors.New("未找到竞争率表格")

	// ErrNoRecords 表格已识别但未产生任何有效记录
	ErrNoRecords = errors.New("未解析出有效记录")
)

// FetchError 获取页面失败
type FetchError struct {
	SourceID   string
	URL        string
	StatusCode int // 0表示未收到响应
	Cause      error
}

// Error 实现error接口
func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("获取页面失败 [%s] HTTP %d: %v", e.URL, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("获取页面失败 [%s]: %v", e.URL, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *FetchError) Unwrap() error {
	return e.Cause
}

// ConfigError 配置文件错误
type ConfigError struct {
	// FilePath 配置文件路径
	FilePath string

	// Cause 底层错误 (如viper.ConfigParseError)
	Cause error
}

// Error 实现error接口
func (e *ConfigError) Error() string {
	return fmt.Sprintf("配置文件错误 [%s]: %v", e.FilePath, e.Cause)
}

// Unwrap 支持errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Cause
}
